package output

import (
	"fmt"

	"github.com/logrusorgru/aurora/v3"
	hlo "github.com/mt-inside/http-log/pkg/output"
)

const notAvailable = "N/A"

// Styler is http-log's TtyStyler plus what the report needs on top. Built on a disabled Aurora it emits plain text, byte for byte.
type Styler struct {
	hlo.TtyStyler
	au aurora.Aurora
}

func NewStyler(au aurora.Aurora) Styler {
	return Styler{TtyStyler: hlo.NewTtyStyler(au), au: au}
}

func NewTtyStyler(colour bool) Styler {
	return NewStyler(aurora.NewAurora(colour))
}

func (s Styler) Frame(title string) string {
	return s.au.Bold(title).String()
}

// Optional renders an absent value as the not-available marker.
func (s Styler) Optional(v *string) string {
	if v == nil {
		return s.Info(notAvailable)
	}
	return s.Noun(*v)
}

// Status colours by class: anything under 400 worked, 4xx is the client's problem, the rest the server's.
func (s Styler) Status(code int, message string) string {
	text := fmt.Sprintf("%d", code)
	if message != "" {
		text += " " + message
	}

	switch {
	case code < 400:
		return s.Ok(text)
	case code < 500:
		return s.Warn(text)
	default:
		return s.Fail(text)
	}
}
