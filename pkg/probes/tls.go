package probes

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/mt-inside/url-screener/pkg/state"
	"github.com/mt-inside/url-screener/pkg/utils"
)

/* Unlike a debugging tool, we don't want to carry on past a bad cert: verification is left on and a failure fails the target.
* TLS is done here rather than by the Transport so that the recording conn sits above it and sees plaintext.
 */
func getDialTLS(
	requestData *state.RequestData,
	responseData *state.ResponseData,
	capture *headCapture,
	dial dialFunc,
) dialFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		serverName, _, err := net.SplitHostPort(address)
		if err != nil {
			return nil, err
		}

		conn, err := dial(ctx, network, address)
		if err != nil {
			return nil, err
		}

		tlsConn := tls.Client(conn, &tls.Config{
			ServerName: serverName, // SNI for TLS vhosting, and the name the cert's verified against
			RootCAs:    requestData.TlsServingCAs,
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}

		cs := tlsConn.ConnectionState()
		responseData.TlsAgreedVersion = cs.Version
		responseData.TlsAgreedCipherSuite = cs.CipherSuite
		log.Debug("TLS handshake complete",
			"sni", utils.ServerNameConformant(serverName), // crypto/tls leaves IPs out of SNI, but still verifies them against the cert's IP SANs
			"version", tls.VersionName(cs.Version),
			"cipher", tls.CipherSuiteName(cs.CipherSuite),
			"peer", cs.PeerCertificates[0].Subject.String(),
		)

		return capture.wrap(tlsConn), nil
	}
}
