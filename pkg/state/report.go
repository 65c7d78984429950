package state

import (
	"strings"
	"time"
)

// Cookie is one Set-Cookie header, split into its parts.
type Cookie struct {
	Pair       string   // name=value
	Attributes []string // Path=/, Max-Age=3600, ...
	Flags      []string // Secure, HttpOnly, ...
}

type HeaderSet struct {
	Plain   []Header
	Cookies []Cookie
	// Widest name in Plain; every displayed name is padded to this.
	NameWidth int

	// nil when the response carried none
	Ratelimit *HttpRatelimit
	CORS      *HttpCORS
}

type HttpRatelimitPolicy struct {
	Bucket uint64
	Window time.Duration
}

// HttpRatelimit is the server's advertised rate limit, per draft-ietf-httpapi-ratelimit-headers.
type HttpRatelimit struct {
	Bucket   uint64 // expiring limit, ie the one currently counting down
	Remain   uint64
	Reset    time.Duration
	Policies []HttpRatelimitPolicy
}

type HttpCORS struct {
	Origin        string
	Methods       []string
	Headers       []string
	ExposeHeaders []string
	MaxAge        int64 // seconds
	Credentials   bool
}

func (hs *HeaderSet) Empty() bool {
	return hs == nil || (len(hs.Plain) == 0 && len(hs.Cookies) == 0)
}

// ContentSummary is what we could pull out of the body's HTML. Nil strings weren't found.
type ContentSummary struct {
	Title       *string
	Description *string
	Heading     *string
	LinkCount   int
	ImageCount  int
}

const (
	GeoStatusSuccess = "success"
	GeoStatusFail    = "fail"
)

// GeoInfo mirrors the ip-api.com response body.
type GeoInfo struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	City     string `json:"city"`
	Region   string `json:"regionName"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
	ISP      string `json:"isp"`
	Org      string `json:"org"`
}

func GeoUnavailable() GeoInfo {
	return GeoInfo{Status: GeoStatusFail}
}

func (g GeoInfo) Success() bool {
	return g.Status == GeoStatusSuccess
}

func (g GeoInfo) Location() string {
	return strings.Join([]string{g.City, g.Region, g.Country}, ", ")
}

// Report is everything gathered about one target. Either Err is set, or Response is.
type Report struct {
	Target string

	Response *ResponseData
	Headers  *HeaderSet
	Content  *ContentSummary
	Geo      GeoInfo
	// nil when DNSSEC wasn't checked
	DnsSecValid *bool

	Err *ProbeError
}

func (r *Report) Failed() bool {
	return r.Err != nil
}
