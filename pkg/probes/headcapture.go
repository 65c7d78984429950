package probes

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mt-inside/url-screener/pkg/state"
)

/* net/http hands us headers as a map, which loses their order (and the server's casing).
* We want them exactly as sent, so the (post-TLS) connection is teed into a buffer and the response head re-parsed from that.
* Connections are never reused, so the buffer only ever holds the one response.
 */

const maxHeadCapture = 1 << 20

type headCapture struct {
	mu  sync.Mutex // the transport reads on its own goroutine
	buf bytes.Buffer
}

func (hc *headCapture) wrap(c net.Conn) net.Conn {
	return &recordingConn{Conn: c, hc: hc}
}

func (hc *headCapture) record(p []byte) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	room := maxHeadCapture - hc.buf.Len()
	if room <= 0 {
		return
	}
	if len(p) > room {
		p = p[:room]
	}
	hc.buf.Write(p)
}

func (hc *headCapture) Bytes() []byte {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return bytes.Clone(hc.buf.Bytes())
}

type recordingConn struct {
	net.Conn
	hc *headCapture
}

func (c *recordingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.hc.record(p[:n])
	}
	return n, err
}

type responseHead struct {
	proto   string
	code    int
	reason  string
	headers []state.Header
}

// parseHead reads the first final (non-1xx) response head out of raw.
func parseHead(raw []byte) (*responseHead, error) {
	tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("reading status line: %w", err)
		}

		proto, status, ok := strings.Cut(line, " ")
		if !ok || !strings.HasPrefix(proto, "HTTP/") {
			return nil, fmt.Errorf("malformed status line %q", line)
		}
		codeStr, reason, _ := strings.Cut(status, " ")
		code, err := strconv.Atoi(codeStr)
		if err != nil {
			return nil, fmt.Errorf("malformed status code %q: %w", codeStr, err)
		}

		head := &responseHead{proto: proto, code: code, reason: strings.TrimSpace(reason)}
		for {
			l, err := tp.ReadContinuedLine()
			if err != nil {
				return nil, fmt.Errorf("reading headers: %w", err)
			}
			if l == "" {
				break
			}
			name, value, ok := strings.Cut(l, ":")
			if !ok {
				log.Debug("Skipping malformed header line", "line", l)
				continue
			}
			head.headers = append(head.headers, state.Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
		}

		// Interim responses (100 Continue, 103 Early Hints) are skipped by net/http too
		if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
			continue
		}

		return head, nil
	}
}

// headersFromMap is the fallback when the wire capture is unusable: every value kept, names sorted.
func headersFromMap(hs http.Header) []state.Header {
	names := make([]string, 0, len(hs))
	for name := range hs {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []state.Header
	for _, name := range names {
		for _, v := range hs[name] {
			out = append(out, state.Header{Name: name, Value: v})
		}
	}
	return out
}
