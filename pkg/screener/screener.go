package screener

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/davecgh/go-spew/spew"
	"github.com/tetratelabs/telemetry"

	"github.com/mt-inside/url-screener/pkg/output"
	"github.com/mt-inside/url-screener/pkg/parser"
	"github.com/mt-inside/url-screener/pkg/probes"
	"github.com/mt-inside/url-screener/pkg/state"
)

// Screener runs targets through probe, analysis and rendering, one at a time.
type Screener struct {
	Prog        string
	RequestData *state.RequestData

	Resolver   probes.Resolver
	Geolocator probes.Geolocator
	// nil means DNSSEC isn't checked
	DNSSEC probes.DNSSECChecker

	Styler output.Styler
	Out    io.Writer
}

func New(prog string, requestData *state.RequestData, s output.Styler, out io.Writer) *Screener {
	return &Screener{
		Prog:        prog,
		RequestData: requestData,
		Resolver:    probes.NewResolver(requestData),
		Geolocator:  probes.NewGeolocator(requestData),
		DNSSEC:      probes.NewDNSSECChecker(requestData),
		Styler:      s,
		Out:         out,
	}
}

/* Run reports on every target, in order, and says how many of them failed.
* A failed target gets an error box and we move on to the next; the only error returned is failure to write the output.
 */
func (sc *Screener) Run(ctx context.Context, targets []string) (int, error) {
	if len(targets) == 0 {
		return 0, output.Usage(sc.Out, sc.Prog)
	}

	failed := 0
	for _, target := range targets {
		report := sc.Screen(ctx, target)
		if report.Failed() {
			failed++
		}

		if log.Level() >= telemetry.LevelDebug {
			log.Debug("Report assembled", "target", target, "report", spew.Sdump(report))
		}

		if err := output.Report(sc.Out, sc.Styler, report); err != nil {
			return failed, err
		}
	}

	return failed, nil
}

// Screen gathers everything about one target. It doesn't fail; a failure is recorded in the report.
func (sc *Screener) Screen(ctx context.Context, target string) *state.Report {
	report := &state.Report{Target: target}

	responseData, err := probes.Probe(ctx, sc.Resolver, sc.RequestData, target)
	if err != nil {
		var pe *state.ProbeError
		if !errors.As(err, &pe) {
			pe = state.NewProbeError(state.ErrorTransport, err)
		}
		log.Debug("Target failed", "target", target, "kind", pe.Kind, "error", pe.Err)
		report.Err = pe
		return report
	}
	report.Response = responseData

	report.Headers = parser.Headers(responseData.HttpHeaders)

	doc := parser.HTML(responseData.BodyBytes, responseData.HeaderValue("content-type"))
	report.Content = parser.Content(doc)

	report.Geo = sc.Geolocator.Locate(ctx, responseData.DnsResolvedIP)

	report.DnsSecValid = sc.checkDnssec(responseData.RequestURL.Hostname())

	return report
}

func (sc *Screener) checkDnssec(host string) *bool {
	if sc.DNSSEC == nil {
		return nil
	}
	// Addresses aren't names; there's nothing to validate
	if net.ParseIP(host) != nil {
		return nil
	}

	err := sc.DNSSEC.Check(host)
	if err != nil {
		log.Debug("DNSSEC validation failed", "name", host, "error", err)
	}
	valid := err == nil
	return &valid
}
