package capture

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sizeHeader is added by the transport and stripped from captured headers.
const sizeHeader = "Content-Length"

// rawBodyKey wraps bodies that are not JSON objects.
const rawBodyKey = "raw"

// FromRequest normalizes an inbound request into an Entry, honoring the
// per-field include flags in opts. The request body is fully read and then
// restored on r.Body so downstream handlers can read it again.
func FromRequest(r *http.Request, opts Options) (*Entry, error) {
	entry := &Entry{
		ID:          uuid.NewString(),
		Body:        map[string]any{},
		QueryParams: map[string]string{},
		Headers:     map[string]string{},
		Occurred:    time.Now().UTC(),
	}

	if opts.Method {
		entry.Method = r.Method
	}
	if opts.IP {
		entry.IP = clientAddr(r)
	}
	if opts.QueryParams {
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				entry.QueryParams[key] = values[0]
			}
		}
	}
	if opts.Headers {
		for key, values := range r.Header {
			if strings.EqualFold(key, sizeHeader) {
				continue
			}
			if len(values) > 0 {
				entry.Headers[key] = values[0]
			}
		}
	}
	if opts.Body && r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		entry.Body = parseBody(data)
	}

	return entry, nil
}

// parseBody decodes a JSON object body into a map. Anything else (including
// an empty body) is kept as-is under the raw key so no payload is lost.
func parseBody(data []byte) map[string]any {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err == nil {
		return body
	}
	return map[string]any{rawBodyKey: string(data)}
}

// clientAddr extracts the client IP from the request, preferring the bare
// host over host:port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
