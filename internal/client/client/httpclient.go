package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thabitrevor/wedding/internal/common"
)

// HTTPClient implements Client over the JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for baseURL (e.g. http://127.0.0.1:8080).
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

func (c *HTTPClient) SubmitRSVP(ctx context.Context, req RSVPRequest) (*RSVPResult, error) {
	var out RSVPResult
	if err := c.do(ctx, http.MethodPost, "/api/rsvps", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListPhotos(ctx context.Context) ([]Photo, error) {
	var out struct {
		Photos []Photo `json:"photos"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/photos", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Photos, nil
}

func (c *HTTPClient) AdminLogin(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", "", map[string]string{"password": password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) ListGuests(ctx context.Context, token string) ([]Guest, error) {
	var out struct {
		RSVPs []Guest `json:"rsvps"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/rsvps", token, nil, &out); err != nil {
		return nil, err
	}
	return out.RSVPs, nil
}

func (c *HTTPClient) Stats(ctx context.Context, token string) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/rsvps/stats", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// errorBody covers both error shapes the server sends: {error, message} from
// the RSVP workflow and {error} elsewhere.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		apiErr := &APIError{Status: resp.StatusCode, Message: eb.Message}
		if eb.Message == "" {
			apiErr.Message = eb.Error
		} else {
			apiErr.Kind = eb.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
