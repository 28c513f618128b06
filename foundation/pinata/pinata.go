// Package pinata provides a client for pinning JSON documents to IPFS
// through the Pinata API and reading them back through a gateway.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Default hosts used when the configuration leaves them empty.
const (
	DefaultAPIHost = "https://api.pinata.cloud"
	DefaultGateway = "https://gateway.pinata.cloud/ipfs/"
)

// maxErrorBody limits how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// ErrNoCredentials is returned when neither a JWT nor an API key pair is set.
var ErrNoCredentials = errors.New("pinata credentials not configured")

// StatusError is returned when Pinata or the gateway answers with a
// non success status code.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (se *StatusError) Error() string {
	if se.Body == "" {
		return fmt.Sprintf("pinata: status %d", se.StatusCode)
	}
	return fmt.Sprintf("pinata: status %d: %s", se.StatusCode, se.Body)
}

// Transient reports whether retrying the same request could succeed.
func (se *StatusError) Transient() bool {
	return se.StatusCode >= http.StatusInternalServerError || se.StatusCode == http.StatusTooManyRequests
}

// Config represents the settings required to talk to Pinata.
type Config struct {
	APIHost   string
	Gateway   string
	JWT       string
	APIKey    string
	APISecret string
}

// Client provides access to the Pinata pinning API and an IPFS gateway.
type Client struct {
	apiHost   string
	gateway   string
	jwt       string
	apiKey    string
	apiSecret string
	http      *http.Client
}

// New constructs a client. The http client is expected to carry any
// transport level settings; per call deadlines come from the context.
func New(cfg Config, client *http.Client) (*Client, error) {
	if cfg.JWT == "" && (cfg.APIKey == "" || cfg.APISecret == "") {
		return nil, ErrNoCredentials
	}

	apiHost := cfg.APIHost
	if apiHost == "" {
		apiHost = DefaultAPIHost
	}

	gateway := cfg.Gateway
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}

	if client == nil {
		client = http.DefaultClient
	}

	c := Client{
		apiHost:   strings.TrimSuffix(apiHost, "/"),
		gateway:   gateway,
		jwt:       cfg.JWT,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      client,
	}

	return &c, nil
}

// PinResponse is the document Pinata returns after pinning.
type PinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinJSON pins the content under the given display name and returns the
// content identifier Pinata assigned.
func (c *Client) PinJSON(ctx context.Context, name string, content any) (PinResponse, error) {
	body := struct {
		PinataContent  any `json:"pinataContent"`
		PinataMetadata struct {
			Name string `json:"name"`
		} `json:"pinataMetadata"`
	}{
		PinataContent: content,
	}
	body.PinataMetadata.Name = name

	data, err := json.Marshal(body)
	if err != nil {
		return PinResponse{}, fmt.Errorf("marshal pin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiHost+"/pinning/pinJSONToIPFS", bytes.NewReader(data))
	if err != nil {
		return PinResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var pr PinResponse
	if err := c.do(req, &pr); err != nil {
		return PinResponse{}, err
	}

	return pr, nil
}

// Fetch reads the JSON document stored under the cid from the gateway and
// decodes it into dest.
func (c *Client) Fetch(ctx context.Context, cid string, dest any) error {
	if cid == "" {
		return errors.New("pinata: empty cid")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gateway+url.PathEscape(cid), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, dest)
}

// =============================================================================

func (c *Client) authorize(req *http.Request) {
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
		return
	}

	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.apiSecret)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
