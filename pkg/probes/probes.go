package probes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mt-inside/url-screener/pkg/state"
)

// ParseTarget checks a user-supplied URL is something we can make a request to.
func ParseTarget(rawURL string) (*url.URL, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if err := checkScheme(target.Scheme); err != nil {
		return nil, err
	}
	if target.Hostname() == "" {
		return nil, errors.New("no host in URL")
	}
	return target, nil
}

/* Probe makes exactly one request to target.
* The clock starts just before name resolution and stops once the last body byte is in.
* Any error returned is a *state.ProbeError, saying which stage failed.
 */
func Probe(
	ctx context.Context,
	resolver Resolver,
	requestData *state.RequestData,
	rawURL string,
) (*state.ResponseData, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, state.NewProbeError(state.ErrorInput, err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestData.Timeout)
	defer cancel()

	responseData := state.NewResponseData()
	responseData.RequestURL = target
	responseData.TlsEnabled = target.Scheme == "https"

	responseData.StartTime = time.Now()

	ip, err := resolver.Resolve(ctx, target.Hostname())
	if err != nil {
		return nil, state.NewProbeError(state.ErrorResolution, err)
	}
	responseData.DnsResolvedIP = ip

	capture := &headCapture{}
	client := buildClient(requestData, responseData, capture)

	request, err := buildHttpRequest(ctx, requestData, target)
	if err != nil {
		return nil, state.NewProbeError(state.ErrorInput, err)
	}

	if err := probe(responseData, client, request, capture); err != nil {
		return nil, state.NewProbeError(state.ErrorTransport, err)
	}

	return responseData, nil
}

func buildHttpRequest(
	ctx context.Context,
	requestData *state.RequestData,
	target *url.URL,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}

	// Host defaults to the URL's, which is what we want; the connection address comes from our own resolution
	req.Header.Set("user-agent", requestData.HttpUserAgent)
	req.Header.Set("accept", "*/*")

	return req, nil
}

func probe(
	responseData *state.ResponseData,
	client *http.Client,
	req *http.Request,
	capture *headCapture,
) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	responseData.BodyCompleteTime = time.Now()
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	responseData.BodyBytes = rawBody

	responseData.HttpProto = resp.Proto
	responseData.HttpStatusCode = resp.StatusCode

	head, err := parseHead(capture.Bytes())
	if err == nil && head.code != resp.StatusCode {
		err = fmt.Errorf("captured status %d doesn't match %d", head.code, resp.StatusCode)
	}
	if err == nil {
		responseData.HttpStatusMessage = head.reason
		responseData.HttpHeaders = head.headers
	} else {
		log.Debug("Can't use captured response head, falling back to unordered headers", "error", err)
		responseData.HttpStatusMessage = strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
		responseData.HttpHeaders = headersFromMap(resp.Header)
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if loc, err := resp.Location(); err == nil {
			responseData.RedirectTarget = loc
		}
	}

	return nil
}
