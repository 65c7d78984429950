package probes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/peterzen/goresolver"

	"github.com/mt-inside/url-screener/pkg/state"
)

const resolvConfPath = "/etc/resolv.conf"

// Resolver turns a hostname into the one IP we'll connect to.
type Resolver interface {
	Resolve(ctx context.Context, name string) (net.IP, error)
}

func NewResolver(requestData *state.RequestData) Resolver {
	switch requestData.DnsResolver {
	case state.ResolverDNS:
		return &DNSResolver{ConfigPath: resolvConfPath, Timeout: requestData.Timeout}
	default:
		return SystemResolver{}
	}
}

// SystemResolver asks the Go std library, which honours /etc/hosts and (with cgo) nsswitch.
type SystemResolver struct{}

func (SystemResolver) Resolve(ctx context.Context, name string) (net.IP, error) {
	if ip := net.ParseIP(name); ip != nil {
		return ip, nil
	}

	log.Debug("Resolving", "name", name, "resolver", DnsResolverName)
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no addresses", Name: name, IsNotFound: true}
	}
	if len(addrs) > 1 {
		log.Debug("Host resolves to >1 IP, using first", "count", len(addrs))
	}

	return addrs[0].IP, nil
}

/* DNSResolver does the queries itself, against the servers in resolv.conf.
* - This only looks in DNS, like say nslookup does; /etc/hosts is never consulted
* - The search path is walked per resolv.conf (ndots etc), A before AAAA
* - We ask the server to recurse for us, so CNAME chains come back in one answer
 */
type DNSResolver struct {
	// If nil, ConfigPath is read on every lookup
	Config     *dns.ClientConfig
	ConfigPath string
	Timeout    time.Duration
}

func (r *DNSResolver) Resolve(ctx context.Context, name string) (net.IP, error) {
	if ip := net.ParseIP(name); ip != nil {
		return ip, nil
	}

	dnsConfig := r.Config
	if dnsConfig == nil {
		var err error
		dnsConfig, err = dns.ClientConfigFromFile(r.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("reading resolver config: %w", err)
		}
	}

	c := dns.Client{
		Dialer: &net.Dialer{Timeout: r.Timeout},
	}

	var lastErr error
serversLoop:
	for _, serverHost := range dnsConfig.Servers {
		server := net.JoinHostPort(serverHost, dnsConfig.Port)
		log.Debug("Trying DNS server", "addr", server)

		for _, fqdn := range dnsConfig.NameList(name) {
			log.Debug("Trying search path item", "fqdn", fqdn)

			for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
				m := new(dns.Msg)
				m.SetQuestion(fqdn, qtype)

				in, _, err := c.ExchangeContext(ctx, m, server)
				if err != nil {
					lastErr = err
					continue serversLoop
				}

				if ip := firstAddress(fqdn, in.Answer); ip != nil {
					return ip, nil
				}
			}
		}

		// This server answered for every name on the search path and had nothing
		return nil, &net.DNSError{Err: "no such host", Name: name, Server: server, IsNotFound: true}
	}

	if lastErr == nil {
		lastErr = errors.New("no nameservers configured")
	}
	return nil, fmt.Errorf("all DNS servers failed: %w", lastErr)
}

func firstAddress(question string, answers []dns.RR) net.IP {
	for _, ans := range answers {
		switch t := ans.(type) {
		case *dns.CNAME:
			log.Debug("CNAME", "from", t.Hdr.Name, "to", t.Target)
		case *dns.A:
			log.Debug("Resolved", "name", question, "addr", t.A, "ttl", time.Duration(t.Hdr.Ttl)*time.Second)
			return t.A
		case *dns.AAAA:
			log.Debug("Resolved", "name", question, "addr", t.AAAA, "ttl", time.Duration(t.Hdr.Ttl)*time.Second)
			return t.AAAA
		}
	}
	return nil
}

// DNSSECChecker returns nil iff the name's records validate all the way up to the root.
type DNSSECChecker interface {
	Check(name string) error
}

// NewDNSSECChecker returns nil when the check isn't wanted.
func NewDNSSECChecker(requestData *state.RequestData) DNSSECChecker {
	if !requestData.DnsSecCheck {
		return nil
	}
	return DNSSECValidator{ConfigPath: resolvConfPath}
}

/* Validating DNSSEC ourselves means all the RRSIG, DNSKEY, DS queries right up to the root. goresolver does exactly that.
 * Recursive resolvers are known to strip DNSSEC-related records, so asking the local stub to do it isn't trustworthy.
 */
type DNSSECValidator struct {
	ConfigPath string
}

func (v DNSSECValidator) Check(name string) error {
	resolver, err := goresolver.NewResolver(v.ConfigPath)
	if err != nil {
		return fmt.Errorf("building DNSSEC resolver: %w", err)
	}

	_, err = resolver.StrictNSQuery(dns.Fqdn(name), dns.TypeA)
	return err
}
