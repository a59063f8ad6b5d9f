package pull

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/feed"
	"github.com/preston-bernstein/scoreboard-feed-service/internal/upstream"
)

// maxBodyBytes caps a single scoreboard document.
const maxBodyBytes = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (d *Driver) fetchRoute(ctx context.Context, route upstream.Route) (json.RawMessage, *feed.RouteError) {
	start := time.Now()
	status := 0
	raw, err := func() (json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, route.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
			return nil, nil
		}
		return decodeBody(resp, route.Name)
	}()

	var routeErr *feed.RouteError
	switch {
	case err != nil:
		routeErr = &feed.RouteError{Route: route.Name, Err: err}
	case raw == nil:
		routeErr = &feed.RouteError{Route: route.Name, StatusCode: status}
	}
	if routeErr != nil {
		d.metrics.RecordRouteAttempt(route.Name, status, time.Since(start), routeErr)
		return nil, routeErr
	}
	d.metrics.RecordRouteAttempt(route.Name, status, time.Since(start), nil)
	return raw, nil
}

// decodeBody parses the whole body as one JSON document; trailing bytes after
// it are a parse error. Bodies not declared as JSON are parsed anyway, minus
// any BOM and surrounding whitespace; some proxies mislabel JSON as text/plain.
func decodeBody(resp *http.Response, source string) (json.RawMessage, error) {
	text, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !isJSONContentType(resp.Header.Get("Content-Type")) {
		text = bytes.TrimSpace(bytes.TrimPrefix(text, utf8BOM))
	}
	var raw json.RawMessage
	if err := json.Unmarshal(text, &raw); err != nil {
		return nil, &feed.ParseError{Source: source, Err: err}
	}
	return raw, nil
}

func isJSONContentType(header string) bool {
	if header == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
