package probes

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mt-inside/url-screener/pkg/state"
)

func geoServer(t *testing.T, handler http.HandlerFunc) *IPAPIGeolocator {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &IPAPIGeolocator{
		Endpoint: srv.URL + "/",
		Timeout:  2 * time.Second,
		Client:   srv.Client(),
	}
}

func TestLocateSuccess(t *testing.T) {
	paths := make(chan string, 1)
	g := geoServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, `{"status":"success","country":"Netherlands","regionName":"North Holland","city":"Amsterdam","timezone":"Europe/Amsterdam","isp":"Example ISP","org":"Example Org","query":"192.0.2.1"}`)
	})

	info := g.Locate(context.Background(), net.ParseIP("192.0.2.1"))

	require.Equal(t, "/json/192.0.2.1", <-paths)
	require.True(t, info.Success())
	require.Equal(t, "Amsterdam, North Holland, Netherlands", info.Location())
	require.Equal(t, "Europe/Amsterdam", info.Timezone)
	require.Equal(t, "Example ISP", info.ISP)
	require.Equal(t, "Example Org", info.Org)
}

func TestLocateUnavailable(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"fail status": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"fail","message":"private range","query":"10.0.0.1"}`)
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"rate limited": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>nope</html>`)
		},
		"no status": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"country":"Nowhere"}`)
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			g := geoServer(t, handler)
			info := g.Locate(context.Background(), net.ParseIP("10.0.0.1"))
			require.Equal(t, state.GeoUnavailable(), info)
			require.False(t, info.Success())
		})
	}
}

func TestLocateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := &IPAPIGeolocator{Endpoint: url, Timeout: time.Second, Client: &http.Client{}}
	require.False(t, g.Locate(context.Background(), net.ParseIP("192.0.2.1")).Success())
}

func TestLocateNoAddress(t *testing.T) {
	var called atomic.Bool
	g := geoServer(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})

	require.False(t, g.Locate(context.Background(), nil).Success())
	require.False(t, called.Load())
}

func TestNewGeolocator(t *testing.T) {
	rd := state.NewRequestData()
	rd.GeoEnabled = false
	g := NewGeolocator(rd)
	require.IsType(t, NoGeolocator{}, g)
	require.False(t, g.Locate(context.Background(), net.ParseIP("192.0.2.1")).Success())

	rd.GeoEnabled = true
	rd.GeoEndpoint = "http://geo.example"
	g = NewGeolocator(rd)
	require.IsType(t, &IPAPIGeolocator{}, g)
	require.Equal(t, "http://geo.example", g.(*IPAPIGeolocator).Endpoint)
}
