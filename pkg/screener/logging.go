package screener

import "github.com/tetratelabs/telemetry/scope"

var log = scope.Register("screener", "Per-URL report pipeline")
