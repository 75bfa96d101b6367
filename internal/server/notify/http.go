package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of a failed response is kept for logging.
const maxErrorBody = 4 << 10

// HTTPNotifier posts the confirmation payload to an external endpoint.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

// NewHTTPNotifier builds a notifier for url. A nil client means
// http.DefaultClient; request lifetime is governed by ctx.
func NewHTTPNotifier(url string, client *http.Client) *HTTPNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPNotifier{url: url, client: client}
}

func (n *HTTPNotifier) SendRSVPConfirmation(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return doJSON(n.client, req, nil)
}

// doJSON executes req, maps non-2xx answers to *DeliveryError and decodes a
// successful body into out when out is non-nil.
func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{Status: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DeliveryError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
