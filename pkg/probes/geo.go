package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mt-inside/url-screener/pkg/state"
)

// Geolocator is best-effort: it never fails, it just says it doesn't know.
type Geolocator interface {
	Locate(ctx context.Context, ip net.IP) state.GeoInfo
}

func NewGeolocator(requestData *state.RequestData) Geolocator {
	if !requestData.GeoEnabled {
		return NoGeolocator{}
	}
	return &IPAPIGeolocator{
		Endpoint: requestData.GeoEndpoint,
		Timeout:  requestData.Timeout,
		Client:   &http.Client{},
	}
}

type NoGeolocator struct{}

func (NoGeolocator) Locate(context.Context, net.IP) state.GeoInfo {
	return state.GeoUnavailable()
}

// IPAPIGeolocator talks to ip-api.com, or anything with the same API: GET /json/{ip}
type IPAPIGeolocator struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

func (g *IPAPIGeolocator) Locate(ctx context.Context, ip net.IP) state.GeoInfo {
	info, err := g.locate(ctx, ip)
	if err != nil {
		log.Debug("Geolocation unavailable", "ip", ip, "error", err)
		return state.GeoUnavailable()
	}
	return info
}

func (g *IPAPIGeolocator) locate(ctx context.Context, ip net.IP) (state.GeoInfo, error) {
	if ip == nil {
		return state.GeoInfo{}, fmt.Errorf("no address to locate")
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	u := strings.TrimRight(g.Endpoint, "/") + "/json/" + url.PathEscape(ip.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return state.GeoInfo{}, err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return state.GeoInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return state.GeoInfo{}, fmt.Errorf("lookup returned %s", resp.Status)
	}

	var info state.GeoInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return state.GeoInfo{}, fmt.Errorf("decoding lookup response: %w", err)
	}
	if !info.Success() {
		return state.GeoInfo{}, fmt.Errorf("lookup status %q: %s", info.Status, info.Message)
	}
	log.Debug("Geolocated", "ip", ip, "country", info.Country, "isp", info.ISP)

	return info, nil
}
