package resolvers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	HTTP_TIMEOUT      = 10 * time.Second
	// MAX_RESPONSE_SIZE bounds the body read from a web API.
	MAX_RESPONSE_SIZE = 1 << 20
)

// jsonAPI is a small rate limited JSON-over-HTTP client shared by the
// resolvers that talk to web APIs instead of contracts.
type jsonAPI struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// newJSONAPI limits requests to rps per second. rps <= 0 disables the limit.
func newJSONAPI(baseURL string, client *http.Client, rps float64) *jsonAPI {
	if client == nil {
		client = &http.Client{Timeout: HTTP_TIMEOUT}
	}
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &jsonAPI{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// get decodes the JSON body at baseURL+path into out. A 404 returns
// found == false with a nil error.
func (a *jsonAPI) get(ctx context.Context, path string, out interface{}) (found bool, err error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_RESPONSE_SIZE+1))
	if err != nil {
		return false, err
	}
	if len(body) > MAX_RESPONSE_SIZE {
		return false, fmt.Errorf("GET %s: response larger than %d bytes", path, MAX_RESPONSE_SIZE)
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("GET %s: unexpected status %d: %s", path, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf(
			"couldn't unmarshal %s from %s, err: %w",
			string(body),
			path,
			err,
		)
	}
	return true, nil
}
