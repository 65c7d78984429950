package output

import (
	"crypto/tls"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mt-inside/url-screener/pkg/state"
)

const boxWidth = 40

type node struct {
	icon     string
	text     string
	children []node
}

type field struct {
	label string
	value string
}

/* A section is a title and the nodes under it.
* Sections are drawn in the order listed; a section whose builder returns no nodes is left out entirely.
 */
type section struct {
	title string
	nodes func(s Styler, r *state.Report) []node
}

var sections = []section{
	{"OVERVIEW & PERFORMANCE", overviewNodes},
	{"HEADERS", headerNodes},
	{"📄 CONTENT ANALYSIS", contentNodes},
	{"🌍 NETWORK & LOCATION", networkNodes},
}

// Report writes the boxed report for one target, or its error box if it failed. Either way it's followed by a blank line.
func Report(w io.Writer, s Styler, r *state.Report) error {
	var b strings.Builder

	if r.Failed() {
		errorBox(&b, s, r)
	} else {
		reportBox(&b, s, r)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func Usage(w io.Writer, prog string) error {
	_, err := fmt.Fprintf(w, "Usage: %s <URL1> [URL2] ...\n", prog)
	return err
}

func reportBox(b *strings.Builder, s Styler, r *state.Report) {
	b.WriteString(rule("╔══ REQUEST TO:", s.Addr(r.Target), r.Target) + "\n")

	for _, sec := range sections {
		nodes := sec.nodes(s, r)
		if len(nodes) == 0 {
			continue
		}
		b.WriteString("║\n")
		b.WriteString(rule("╠══", s.Frame(sec.title), sec.title) + "\n")
		writeTree(b, "  ", nodes)
	}

	b.WriteString("╚" + strings.Repeat("═", boxWidth-1) + "\n")
}

func errorBox(b *strings.Builder, s Styler, r *state.Report) {
	b.WriteString(rule("╔══ ERROR FOR:", s.Addr(r.Target), r.Target) + "\n")
	fmt.Fprintf(b, "║  ❌ %s: %s\n", s.Fail(r.Err.Kind.String()), r.Err.Message())
	b.WriteString("╚" + strings.Repeat("═", boxWidth-1) + "\n")
}

// rule draws a box line with a caption, filled out to the box width. plain is the caption without colour codes, for measuring.
func rule(lead, caption, plain string) string {
	n := boxWidth - utf8.RuneCountInString(lead) - 1 - utf8.RuneCountInString(plain) - 1
	if n < 2 {
		n = 2
	}
	return lead + " " + caption + " " + strings.Repeat("═", n)
}

func writeTree(b *strings.Builder, prefix string, nodes []node) {
	for i, n := range nodes {
		connector, indent := "├─", "│  "
		if i == len(nodes)-1 {
			connector, indent = "└─", "   "
		}

		lead := " "
		if n.icon != "" {
			lead = n.icon + " "
		}

		b.WriteString("║" + prefix + connector + lead + n.text + "\n")
		writeTree(b, prefix+indent, n.children)
	}
}

// fields lines up the values of a list of labelled lines.
func fields(fs ...field) []node {
	width := 0
	for _, f := range fs {
		width = max(width, len(f.label)+1)
	}

	nodes := make([]node, 0, len(fs))
	for _, f := range fs {
		nodes = append(nodes, node{text: fmt.Sprintf("%-*s %s", width, f.label+":", f.value)})
	}
	return nodes
}

func overviewNodes(s Styler, r *state.Report) []node {
	rD := r.Response
	if rD == nil {
		rD = state.NewResponseData()
	}

	fs := []field{{"Protocol", s.Noun(rD.HttpProto)}}
	if rD.TlsEnabled {
		fs = append(fs,
			field{"TLS", s.Noun(tls.VersionName(rD.TlsAgreedVersion)) + ", " + s.Noun(tls.CipherSuiteName(rD.TlsAgreedCipherSuite))},
			field{"HSTS", s.YesNo(rD.HeaderValue("strict-transport-security") != "")},
		)
	}
	fs = append(fs, field{"Status", s.Status(rD.HttpStatusCode, rD.HttpStatusMessage)})
	if !rD.TransportConnTime.IsZero() {
		fs = append(fs, field{"Connect time", millis(s, rD.ConnectMillis())})
	}
	fs = append(fs, field{"Response time", millis(s, rD.ElapsedMillis())})
	if rD.RedirectTarget != nil {
		fs = append(fs, field{"Redirect", s.Addr(rD.RedirectTarget.String()) + " " + s.Info("(not followed)")})
	}

	return fields(fs...)
}

func headerNodes(s Styler, r *state.Report) []node {
	hs := r.Headers
	if hs.Empty() {
		return nil
	}

	nodes := make([]node, 0, len(hs.Plain)+1)
	for _, h := range hs.Plain {
		nodes = append(nodes, node{text: fmt.Sprintf("%s : %s", s.Noun(pad(h.Name, hs.NameWidth)), h.Value)})
	}

	if hs.Ratelimit != nil {
		nodes = append(nodes, ratelimitNode(s, hs.Ratelimit))
	}
	if hs.CORS != nil {
		nodes = append(nodes, corsNode(s, hs.CORS))
	}

	if len(hs.Cookies) > 0 {
		cookies := make([]node, 0, len(hs.Cookies))
		for _, c := range hs.Cookies {
			cookies = append(cookies, cookieNode(s, c))
		}
		nodes = append(nodes, node{
			text:     s.Noun(pad("Set-Cookie", hs.NameWidth)) + " :",
			children: cookies,
		})
	}

	return nodes
}

func ratelimitNode(s Styler, r *state.HttpRatelimit) node {
	n := node{text: fmt.Sprintf("Rate limit: %s of %s remaining, resets in %s",
		s.Bright(strconv.FormatUint(r.Remain, 10)),
		s.Bright(strconv.FormatUint(r.Bucket, 10)),
		s.Noun(r.Reset.String()),
	)}
	for _, p := range r.Policies {
		n.children = append(n.children, node{text: fmt.Sprintf("%s per %s", s.Bright(strconv.FormatUint(p.Bucket, 10)), s.Noun(p.Window.String()))})
	}
	return n
}

func corsNode(s Styler, c *state.HttpCORS) node {
	n := node{text: "CORS: allows origin " + s.Addr(c.Origin)}
	if len(c.Methods) > 0 {
		n.children = append(n.children, node{text: "Methods: " + s.Noun(strings.Join(c.Methods, ", "))})
	}
	if len(c.Headers) > 0 {
		n.children = append(n.children, node{text: "Headers: " + s.Noun(strings.Join(c.Headers, ", "))})
	}
	if len(c.ExposeHeaders) > 0 {
		n.children = append(n.children, node{text: "Exposes: " + s.Noun(strings.Join(c.ExposeHeaders, ", "))})
	}
	n.children = append(n.children,
		node{text: fmt.Sprintf("Max age: %ss", s.Bright(strconv.FormatInt(c.MaxAge, 10)))},
		node{text: "Credentials: " + s.YesNo(c.Credentials)},
	)
	return n
}

func cookieNode(s Styler, c state.Cookie) node {
	n := node{icon: "🍪", text: s.Ok(c.Pair)}
	for _, attr := range c.Attributes {
		n.children = append(n.children, node{text: attr})
	}
	if len(c.Flags) > 0 {
		n.children = append(n.children, node{text: "Flags: " + s.Warn(strings.Join(c.Flags, ", "))})
	}
	return n
}

func contentNodes(s Styler, r *state.Report) []node {
	cs := r.Content
	if cs == nil {
		cs = &state.ContentSummary{}
	}

	return fields(
		field{"HTML title", s.Optional(cs.Title)},
		field{"Meta description", s.Optional(cs.Description)},
		field{"First heading", s.Optional(cs.Heading)},
		field{"Links (total)", s.Bright(strconv.Itoa(cs.LinkCount))},
		field{"Images (total)", s.Bright(strconv.Itoa(cs.ImageCount))},
	)
}

func networkNodes(s Styler, r *state.Report) []node {
	ip := s.Info(notAvailable)
	if r.Response != nil && r.Response.DnsResolvedIP != nil {
		ip = s.Addr(r.Response.DnsResolvedIP.String())
	}

	fs := []field{{"IP address", ip}}

	if r.DnsSecValid != nil {
		if *r.DnsSecValid {
			fs = append(fs, field{"DNSSEC", s.Ok("valid")})
		} else {
			fs = append(fs, field{"DNSSEC", s.Fail("not validated")})
		}
	}

	if r.Geo.Success() {
		fs = append(fs,
			field{"Location", s.Noun(r.Geo.Location())},
			field{"Timezone", s.Noun(r.Geo.Timezone)},
			field{"Provider/ISP", fmt.Sprintf("%s (%s)", s.Noun(r.Geo.ISP), r.Geo.Org)},
		)
	} else {
		fs = append(fs, field{"Location info", s.Warn("could not be determined.")})
	}

	return fields(fs...)
}

func millis(s Styler, ms float64) string {
	return s.Bright(strconv.FormatFloat(ms, 'f', 2, 64)) + " ms"
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}
