package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/containerd/errdefs"
	"github.com/oakline/planboard/internal/content"
	"github.com/oakline/planboard/internal/logger"
)

// APIError wraps non-2xx responses from the content store.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content api error: status=%d body=%s", e.StatusCode, e.Body)
}

// HTTPService is the real Service implementation speaking JSON over HTTP.
type HTTPService struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewHTTPService creates a client with sane defaults.
func NewHTTPService(baseURL, apiKey string, timeout time.Duration) *HTTPService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPService{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: timeout,
	}
}

// FetchPage queries one page of content for a brand and month.
func (s *HTTPService) FetchPage(ctx context.Context, brand string, offset, limit int, monthYear string) (Page, error) {
	q := url.Values{}
	q.Set("brand_name", brand)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("live_month_year", monthYear)

	var page Page
	err := s.do(ctx, http.MethodGet, "/content?"+q.Encode(), nil, &page)
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

// Upsert creates or partially updates one item and returns the
// server-reconciled record.
func (s *HTTPService) Upsert(ctx context.Context, req UpsertRequest) (content.Item, error) {
	var item content.Item
	if err := s.do(ctx, http.MethodPost, "/content", req, &item); err != nil {
		return content.Item{}, err
	}
	return item, nil
}

// Delete removes one item by id. A missing id is reported as a not-found
// error classifiable with errdefs.IsNotFound.
func (s *HTTPService) Delete(ctx context.Context, id string) error {
	err := s.do(ctx, http.MethodDelete, "/content/"+url.PathEscape(id), nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("delete content %s: %w", id, errdefs.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *HTTPService) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: s.Timeout}
	}

	logger.WithComponent("remote").Debugf("%s %s", method, path)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
