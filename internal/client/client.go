// Package client talks to the infrastructure service that receives generated
// RailJSON documents.
package client

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
	"strings"
	"time"

	"railgen/internal/codec"
	"railgen/internal/domain"
)

var (
	// ErrNoBaseURL is returned by New when no service address is given.
	ErrNoBaseURL = errors.New("client: empty base url")
	// ErrNotFound is returned when the service does not know an infrastructure id.
	ErrNotFound = errors.New("client: infrastructure not found")
)

// StatusError carries an unexpected HTTP status and the start of the response body.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("client: %s %s: http %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client is a minimal infrastructure service REST client.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	codec   *codec.RailJSONCodec
}

// New constructs a client. A zero timeout leaves requests bounded by their context only.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		codec:   codec.NewRailJSONCodec(),
	}, nil
}

type importResponse struct {
	Infra int64 `json:"infra"`
}

// ImportInfra uploads a document under name and returns the id the service assigned.
// generateData asks the service to derive its layers right away.
func (c *Client) ImportInfra(ctx context.Context, name string, generateData bool, infra *domain.Infra) (int64, error) {
	if name == "" {
		return 0, errors.New("client: empty infrastructure name")
	}
	payload, err := codec.Marshal(infra)
	if err != nil {
		return 0, fmt.Errorf("encode infrastructure: %w", err)
	}

	query := url.Values{}
	query.Set("name", name)
	query.Set("generate_data", strconv.FormatBool(generateData))

	var resp importResponse
	if err := c.do(ctx, http.MethodPost, "/infra/railjson?"+query.Encode(), payload, http.StatusCreated, &resp); err != nil {
		return 0, err
	}
	return resp.Infra, nil
}

// FetchInfra downloads the RailJSON of an imported infrastructure.
func (c *Client) FetchInfra(ctx context.Context, id int64) (*domain.Infra, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/infra/%d/railjson", id), nil, http.StatusOK, &raw); err != nil {
		return nil, err
	}
	return c.codec.Parse(bytes.NewReader(raw))
}

// DeleteInfra removes an imported infrastructure.
func (c *Client) DeleteInfra(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/infra/%d/", id), nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	// DELETE answers 204, older services 200
	if resp.StatusCode != want && !(want == http.StatusNoContent && resp.StatusCode == http.StatusOK) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s response: %w", method, path, err)
	}
	return nil
}
