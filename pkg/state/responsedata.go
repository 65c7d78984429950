package state

import (
	"math"
	"net"
	"net/url"
	"strings"
	"time"
)

// Header is one response header line, exactly as it came off the wire.
type Header struct {
	Name  string
	Value string
}

/* On timing:
* - StartTime is taken immediately before name resolution, so the elapsed figure includes DNS, connect, TLS, request, and the whole body
* - BodyCompleteTime is taken once the last body byte has been read
 */
type ResponseData struct {
	RequestURL *url.URL

	StartTime time.Time

	DnsResolvedIP net.IP

	TransportConnTime time.Time

	TlsEnabled           bool
	TlsAgreedVersion     uint16
	TlsAgreedCipherSuite uint16

	HttpProto         string
	HttpStatusCode    int // stdlib has no special type for this
	HttpStatusMessage string
	HttpHeaders       []Header

	BodyCompleteTime time.Time
	BodyBytes        []byte

	RedirectTarget *url.URL
}

func NewResponseData() *ResponseData {
	return &ResponseData{}
}

// ElapsedMillis is the request's round trip in milliseconds, rounded to two decimal places.
func (rD *ResponseData) ElapsedMillis() float64 {
	return millis(rD.BodyCompleteTime.Sub(rD.StartTime))
}

func millis(d time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}

// ConnectMillis is how long resolution and the TCP connect took, in milliseconds to two decimal places. Zero if we never connected.
func (rD *ResponseData) ConnectMillis() float64 {
	if rD.TransportConnTime.IsZero() {
		return 0
	}
	return millis(rD.TransportConnTime.Sub(rD.StartTime))
}

// HeaderValue returns the first value of the named header, matched case-insensitively.
func (rD *ResponseData) HeaderValue(name string) string {
	return HeaderValue(rD.HttpHeaders, name)
}

func HeaderValue(hs []Header, name string) string {
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// HeaderValues returns every value of the named header, in order, with comma-separated lists split out.
func HeaderValues(hs []Header, name string) []string {
	var vs []string
	for _, h := range hs {
		if !strings.EqualFold(h.Name, name) {
			continue
		}
		for _, v := range strings.Split(h.Value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				vs = append(vs, v)
			}
		}
	}
	return vs
}
