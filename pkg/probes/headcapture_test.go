package probes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mt-inside/url-screener/pkg/state"
)

func TestParseHead(t *testing.T) {
	raw := "HTTP/1.1 100 Continue\r\n" +
		"\r\n" +
		"HTTP/1.1 200 Everything Is Fine\r\n" +
		"server: teapot\r\n" +
		"Set-Cookie: a=1; Path=/\r\n" +
		"X-Folded: first\r\n" +
		"  second\r\n" +
		"set-cookie: b=2; Secure\r\n" +
		"not a header\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n" +
		"hello"

	head, err := parseHead([]byte(raw))
	require.NoError(t, err)

	require.Equal(t, "HTTP/1.1", head.proto)
	require.Equal(t, 200, head.code)
	require.Equal(t, "Everything Is Fine", head.reason)
	require.Equal(t,
		[]state.Header{
			{Name: "server", Value: "teapot"},
			{Name: "Set-Cookie", Value: "a=1; Path=/"},
			{Name: "X-Folded", Value: "first second"},
			{Name: "set-cookie", Value: "b=2; Secure"},
			{Name: "Content-Length", Value: "5"},
		},
		head.headers,
	)
}

func TestParseHeadNoReason(t *testing.T) {
	head, err := parseHead([]byte("HTTP/1.0 204\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, 204, head.code)
	require.Equal(t, "", head.reason)
	require.Empty(t, head.headers)
}

func TestParseHeadMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"\x16\x03\x01 not http at all\r\n\r\n",
		"HTTP/1.1 abc OK\r\n\r\n",
		"HTTP/1.1 200 OK\r\nTruncated: yes\r\n",
	} {
		_, err := parseHead([]byte(raw))
		require.Error(t, err, raw)
	}
}

func TestHeadCaptureLimit(t *testing.T) {
	hc := &headCapture{}
	hc.record(make([]byte, maxHeadCapture-1))
	hc.record([]byte("abc"))
	hc.record([]byte("def"))

	require.Len(t, hc.Bytes(), maxHeadCapture)
}

func TestHeadersFromMap(t *testing.T) {
	hs := http.Header{}
	hs.Add("X-B", "1")
	hs.Add("Set-Cookie", "one=1")
	hs.Add("Set-Cookie", "two=2")
	hs.Add("Content-Type", "text/html")

	require.Equal(t,
		[]state.Header{
			{Name: "Content-Type", Value: "text/html"},
			{Name: "Set-Cookie", Value: "one=1"},
			{Name: "Set-Cookie", Value: "two=2"},
			{Name: "X-B", Value: "1"},
		},
		headersFromMap(hs),
	)
}
