/* url-screener fetches each URL given to it exactly once and prints a report on what came back.
*
* PIPELINE
* Each URL goes through the same steps, one URL at a time, in the order given
* * The host is resolved to one IP (the first answer)
*   * `--resolver system` (default) uses the Go std library, which honours /etc/hosts and, when built with cgo, nsswitch
*   * `--resolver dns` queries the resolv.conf servers directly, walking the search list
*   * IP literals are used as-is
* * A single GET is made to that IP, with the URL's host in `Host` and SNI
*   * The clock starts just before resolution and stops after the last body byte
*   * Certificates are always verified; `--ca` replaces the system roots. A bad cert fails the URL, there's no retry in plaintext
*   * Redirects are shown, never followed
*   * HTTP/1.1 only
* * The body is parsed as HTML for title, meta description, first h1, and link and image counts
* * The IP is geolocated with ip-api.com (`--geo-api`, `--no-geo`). This is best-effort
*
* OUTPUT
* One boxed report per URL on stdout, each followed by a blank line.
* A URL that can't be parsed, resolved or fetched gets a short error box instead, and the next URL is tried.
* Colour is used only when stdout is a terminal, and never with `--no-color`.
*
* EXIT STATUS
* 0 if every URL got a full report (or none were given), 1 if any got an error box, 2 if we couldn't run at all.
*
* Every flag can also be set from the environment, eg URL_SCREENER_TIMEOUT=3s
 */
package main
