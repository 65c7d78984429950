package parser

import "github.com/tetratelabs/telemetry/scope"

/* Note on the log levels:
 * - nothing is an Error, cause we can always gracefully recover
 * - Info for input we couldn't make sense of, cause either we don't code that case yet, or the origin is buggy
 * - Debug for algo trace
 */
var log = scope.Register("parser", "HTTP header and body parsing")
