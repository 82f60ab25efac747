package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/chatgate/internal/core"
)

const defaultTimeout = 120 * time.Second

// Params are the settings shared by every provider. Empty BaseURL
// selects the provider's public endpoint.
type Params struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type baseProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func newBaseProvider(p Params, defaultURL string) baseProvider {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	return baseProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  p.APIKey,
		model:   p.Model,
	}
}

func (b *baseProvider) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return resp, nil
}

// post sends body and decodes a 200 response into out. Other statuses
// become a *StatusError.
func (b *baseProvider) post(ctx context.Context, path string, body any, headers map[string]string, out any) error {
	resp, err := b.doRequest(ctx, http.MethodPost, path, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
