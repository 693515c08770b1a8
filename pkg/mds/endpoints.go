package mds

import (
	"net/url"
	"strings"
)

// ExtractEndpoint is the path of the bulk-extract endpoint.
const ExtractEndpoint = "/api/v1/extract"

// ExtractURL constructs the first-page URL for the given resumption token.
// Subsequent pages use the server-supplied next_url as-is.
func ExtractURL(baseURL, token string) string {
	params := url.Values{}
	params.Set("resume", token)

	return strings.TrimRight(baseURL, "/") + ExtractEndpoint + "?" + params.Encode()
}
