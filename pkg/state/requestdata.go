package state

import (
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/mt-inside/url-screener/internal/build"
)

const (
	ResolverSystem = "system"
	ResolverDNS    = "dns"

	DefaultGeoEndpoint = "http://ip-api.com"
	DefaultTimeout     = 10 * time.Second
)

// RequestData holds the settings shared by every probe in a run. It's built once and never mutated.
type RequestData struct {
	Timeout time.Duration

	DnsResolver string
	DnsSecCheck bool

	// nil means the system roots
	TlsServingCAs *x509.CertPool

	HttpUserAgent string

	GeoEnabled  bool
	GeoEndpoint string
}

func NewRequestData() *RequestData {
	return &RequestData{
		Timeout:       DefaultTimeout,
		DnsResolver:   ResolverSystem,
		HttpUserAgent: build.UserAgent(),
		GeoEnabled:    true,
		GeoEndpoint:   DefaultGeoEndpoint,
	}
}

func RequestDataFromViper() (*RequestData, error) {
	requestData := NewRequestData()

	if t := viper.GetDuration("timeout"); t > 0 {
		requestData.Timeout = t
	}

	switch r := viper.GetString("resolver"); r {
	case "", ResolverSystem:
		requestData.DnsResolver = ResolverSystem
	case ResolverDNS:
		requestData.DnsResolver = ResolverDNS
	default:
		return nil, fmt.Errorf("unknown resolver %q (want %s or %s)", r, ResolverSystem, ResolverDNS)
	}
	requestData.DnsSecCheck = viper.GetBool("dnssec")

	/* Load TLS material */

	if caPaths := viper.GetStringSlice("ca"); len(caPaths) > 0 {
		pool := x509.NewCertPool()
		for _, caPath := range caPaths {
			bytes, err := os.ReadFile(caPath)
			if err != nil {
				return nil, fmt.Errorf("reading CA file: %w", err)
			}
			if ok := pool.AppendCertsFromPEM(bytes); !ok {
				return nil, fmt.Errorf("no PEM certificates found in %s", caPath)
			}
		}
		requestData.TlsServingCAs = pool
	}

	if ua := viper.GetString("user-agent"); ua != "" {
		requestData.HttpUserAgent = ua
	}

	requestData.GeoEnabled = !viper.GetBool("no-geo")
	if ep := viper.GetString("geo-api"); ep != "" {
		requestData.GeoEndpoint = ep
	}

	return requestData, nil
}
