package probes

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/mt-inside/url-screener/pkg/state"
)

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// getDialer connects to the address we resolved, whatever name the HTTP client thinks it's dialing.
func getDialer(requestData *state.RequestData, responseData *state.ResponseData) dialFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		_, port, err := net.SplitHostPort(address)
		if err != nil {
			return nil, err
		}
		addr := net.JoinHostPort(responseData.DnsResolvedIP.String(), port)

		dialer := &net.Dialer{
			Timeout: requestData.Timeout,
			// Note: happens "after creating the network connection but before actually dialing."
			Control: func(network, address string, rawConn syscall.RawConn) error {
				log.Debug("Dialing", "net", network, "addr", address)
				return nil
			},
		}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		log.Debug("Connected", "to", conn.RemoteAddr(), "from", conn.LocalAddr())

		responseData.TransportConnTime = time.Now()

		return conn, nil
	}
}

func buildClient(
	requestData *state.RequestData,
	responseData *state.ResponseData,
	capture *headCapture,
) *http.Client {
	dial := getDialer(requestData, responseData)

	tr := &http.Transport{
		// Always straight to the resolved address; a proxy would hide what a direct request gets
		Proxy: nil,
		DialContext: func(ctx context.Context, network, address string) (net.Conn, error) {
			conn, err := dial(ctx, network, address)
			if err != nil {
				return nil, err
			}
			return capture.wrap(conn), nil
		},
		DialTLSContext:        getDialTLS(requestData, responseData, capture, dial),
		TLSHandshakeTimeout:   requestData.Timeout,
		ResponseHeaderTimeout: requestData.Timeout,
		DisableCompression:    true,
		DisableKeepAlives:     true,
		// We do TLS ourselves without ALPN, so this is HTTP/1.1 only, which also keeps the header capture simple
		ForceAttemptHTTP2: false,
	}

	return &http.Client{
		Transport:     tr,
		CheckRedirect: getCheckRedirect(),
	}
}

// Redirects are reported, never followed.
func getCheckRedirect() func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		log.Debug("Not following redirect", "to", req.URL.String())
		return http.ErrUseLastResponse
	}
}

func checkScheme(scheme string) error {
	switch scheme {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("unsupported scheme %q (want http or https)", scheme)
	}
}
