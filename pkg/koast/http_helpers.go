package koast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yorch/koast/pkg/idx"
)

// doJSON performs one HTTP request with auth headers computed fresh from the
// current session state, and returns the raw decoded body. Responses outside
// the 2xx range, and requests that never produce a response, surface as
// *TransportError. Header computation happens-before the network call;
// nothing here retries.
func (c *Client) doJSON(
	ctx context.Context,
	method, rawURL string,
	query url.Values,
	body any,
) (json.RawMessage, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("koast: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	if len(query) > 0 {
		separator := "?"
		if strings.Contains(rawURL, "?") {
			separator = "&"
		}
		rawURL += separator + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("koast: failed to create request: %w", err)
	}

	headers, err := c.user.authHeaders()
	if err != nil {
		return nil, fmt.Errorf("koast: failed to build auth headers: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	req.Header.Set(HeaderRequestID, idx.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Payload: payload}
	}

	return payload, nil
}
