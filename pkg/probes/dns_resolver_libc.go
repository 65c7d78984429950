//go:build cgo && !netgo

package probes

/* There's no API to ask which lookup functions net will use, so this mirrors the linker's choice:
* libc iff cgo is on and netgo isn't set. CGO_ENABLED=0 doesn't set netgo, hence the two tags.
 */

const DnsResolverName = "CGO (libc getaddrinfo(), honouring nsswitch.conf)"
