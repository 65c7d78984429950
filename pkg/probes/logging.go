package probes

import "github.com/tetratelabs/telemetry/scope"

var log = scope.Register("probes", "DNS, HTTP and geolocation network probes")
