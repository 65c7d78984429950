//go:build !cgo || netgo

package probes

const DnsResolverName = "Go (native, reading /etc/hosts and /etc/resolv.conf only)"
