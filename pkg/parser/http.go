package parser

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mt-inside/url-screener/pkg/state"
)

// Headers splits a response's headers into the plain ones and the Set-Cookies, preserving order within each.
func Headers(hs []state.Header) *state.HeaderSet {
	set := &state.HeaderSet{}

	for _, h := range hs {
		if strings.EqualFold(h.Name, "set-cookie") {
			set.Cookies = append(set.Cookies, Cookie(h.Value))
			continue
		}
		set.Plain = append(set.Plain, h)
		if len(h.Name) > set.NameWidth {
			set.NameWidth = len(h.Name)
		}
	}
	log.Debug("Decomposed headers", "plain", len(set.Plain), "cookies", len(set.Cookies))

	set.Ratelimit = Ratelimit(hs)
	set.CORS = CORS(hs)

	return set
}

/* Format
 * set-cookie: session=abc; Path=/; Max-Age=3600; Secure; HttpOnly
 * - first section is always the cookie's own name=value
 * - then attributes (have an =) and flags (don't), in any order
 */
func Cookie(value string) state.Cookie {
	sections := strings.Split(value, ";")

	c := state.Cookie{Pair: strings.TrimSpace(sections[0])}

	for _, section := range sections[1:] {
		section = strings.TrimSpace(section)
		if section == "" {
			// trailing or doubled ;
			continue
		}
		if strings.Contains(section, "=") {
			c.Attributes = append(c.Attributes, section)
		} else {
			c.Flags = append(c.Flags, section)
		}
	}

	return c
}

/* As of Aug '23 these headers are draft standard [https://datatracker.ietf.org/doc/draft-ietf-httpapi-ratelimit-headers/]
* Envoy emits draft 3 (x-ratelimit-*); draft 7 folds it into ratelimit + ratelimit-policy
 */
func Ratelimit(hs []state.Header) *state.HttpRatelimit {
	/* Note on the log levels:
	 * - Info for parse errors, cause either we don't code that case yet, or the origin is buggy
	 * - Debug for algo trace
	 */

	if limitH := state.HeaderValues(hs, "x-ratelimit-limit"); len(limitH) != 0 {
		return parseDraft03(hs, limitH)
	} else if limitH := state.HeaderValues(hs, "ratelimit"); len(limitH) != 0 {
		return parseDraft07(hs, limitH)
	}

	log.Debug("No ratelimit header")
	return nil
}

func parseDraft03(hs []state.Header, limitH []string) *state.HttpRatelimit {

	/* Format
	 * x-ratelimit-limit: 42, 69;w=1, 101;w=3600 (first expiring bucket, then policies)
	 * x-ratelimit-remaining: 3
	 * x-ratelimit-reset: 11 (seconds)
	 */

	log.Debug("Found ratelimit policies", "count", len(limitH)-1)
	expiring, err := strconv.ParseUint(limitH[0], 10, 64)
	if err != nil {
		log.Info("x-ratelimit-limit's expiring-limit doesn't parse", "error", err)
		return nil
	}

	// RECOMMENDED
	remain, err := strconv.ParseUint(state.HeaderValue(hs, "x-ratelimit-remaining"), 10, 64)
	if err != nil {
		log.Info("can't parse ratelimit remaining", "error", err)
	}

	// REQUIRED, but we've got something to show without it
	resetN, err := strconv.Atoi(state.HeaderValue(hs, "x-ratelimit-reset"))
	if err != nil {
		log.Info("can't parse ratelimit reset duration", "error", err)
	}

	policies, err := parsePolicies(limitH[1:])
	if err != nil {
		log.Info("unknown x-ratelimit-limit policy format", "error", err)
		return nil
	}

	return &state.HttpRatelimit{
		Bucket:   expiring,
		Remain:   remain,
		Reset:    time.Duration(resetN) * time.Second,
		Policies: policies,
	}
}

func parseDraft07(hs []state.Header, limitH []string) *state.HttpRatelimit {

	/* Format
	 * ratelimit: limit=42, remaining=3, reset=11 (seconds)
	 * ratelimit-policy: 69;w=1, 101;w=3600
	 */

	r := &state.HttpRatelimit{}
	for _, item := range limitH {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			log.Info("unknown ratelimit format", "item", item)
			return nil
		}
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			log.Info("can't parse ratelimit item", "item", item, "error", err)
			return nil
		}
		switch strings.TrimSpace(k) {
		case "limit":
			r.Bucket = n
		case "remaining":
			r.Remain = n
		case "reset":
			r.Reset = time.Duration(n) * time.Second
		default:
			log.Debug("Unhandled ratelimit item", "item", item)
		}
	}

	policies, err := parsePolicies(state.HeaderValues(hs, "ratelimit-policy"))
	if err != nil {
		log.Info("unknown ratelimit-policy format", "error", err)
		return nil
	}
	r.Policies = policies

	return r
}

// Policy format: 69;w=1 (quota, then ;-separated parameters; w is the window in seconds)
func parsePolicies(ps []string) ([]state.HttpRatelimitPolicy, error) {
	var policies []state.HttpRatelimitPolicy

	for _, p := range ps {
		sections := strings.Split(p, ";")
		log.Debug("Parsed policy", "sections", len(sections))

		bucket, err := strconv.ParseUint(strings.TrimSpace(sections[0]), 10, 64)
		if err != nil {
			return nil, err
		}
		policy := state.HttpRatelimitPolicy{Bucket: bucket}

		for _, section := range sections[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(section), "=")
			if !ok {
				return nil, errors.New("expecting policy section to have form foo=bar")
			}
			switch k {
			// MANDATORY
			case "w":
				window, err := strconv.Atoi(v)
				if err != nil {
					log.Info("can't parse ratelimit window", "error", err)
				} else {
					policy.Window = time.Duration(window) * time.Second
				}
			default:
				log.Debug("Unhandled policy statement", "statement", section)
			}
		}

		policies = append(policies, policy)
	}

	return policies, nil
}

// CORS headers only really mean anything in reply to a request with an Origin, which we don't send; servers that send them anyway are worth noting.
func CORS(hs []state.Header) *state.HttpCORS {
	origin := state.HeaderValue(hs, "access-control-allow-origin")
	if origin == "" {
		return nil
	}

	cors := &state.HttpCORS{
		Origin:        origin,
		Methods:       state.HeaderValues(hs, "access-control-allow-methods"),
		Headers:       state.HeaderValues(hs, "access-control-allow-headers"),
		ExposeHeaders: state.HeaderValues(hs, "access-control-expose-headers"),
		MaxAge:        5, // default
	}

	if maxAge := state.HeaderValue(hs, "access-control-max-age"); maxAge != "" {
		if n, err := strconv.ParseInt(maxAge, 10, 64); err == nil {
			cors.MaxAge = n
		} else {
			log.Info("can't parse access-control-max-age", "error", err)
		}
	}

	if creds := state.HeaderValue(hs, "access-control-allow-credentials"); creds != "" {
		if b, err := strconv.ParseBool(creds); err == nil {
			cors.Credentials = b
		} else {
			log.Info("can't parse access-control-allow-credentials", "error", err)
		}
	}

	return cors
}
