package utils

import "net"

/* RFC 6066 §3 (https://www.rfc-editor.org/rfc/rfc6066) limits the SNI ServerName to
* - DNS names only
* - no ports
* - no literal IPs
* A URL's host can be any of those, so callers check before expecting it to go on the wire.
 */
func ServerNameConformant(host string) bool {
	if host == "" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return false
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return false
	}
	return true
}
