// Package geo resolves a client IP to its country through the ipapi.co lookup service.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://ipapi.co"

type ipapiResponse struct {
	CountryCode string `json:"country_code"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// Detector implements domain.CountryDetector.
type Detector struct {
	client  *http.Client
	baseURL string
}

// NewDetector returns a Detector calling ipapi.co with client. A nil client gets a
// short-timeout default since detection only pre-fills a form field.
func NewDetector(client *http.Client) *Detector {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	return &Detector{client: client, baseURL: defaultBaseURL}
}

// WithBaseURL points the detector at another ipapi-compatible host.
func (d *Detector) WithBaseURL(baseURL string) *Detector {
	d.baseURL = strings.TrimSuffix(baseURL, "/")
	return d
}

func (d *Detector) Detect(ctx context.Context, ip string) (string, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", fmt.Errorf("invalid ip %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return "", fmt.Errorf("ip %s is not publicly routable", parsed)
	}

	url := fmt.Sprintf("%s/%s/json/", d.baseURL, parsed.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch from ipapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ipapi returned status: %d", resp.StatusCode)
	}

	var data ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode ipapi response: %w", err)
	}
	if data.Error {
		return "", fmt.Errorf("ipapi error: %s", data.Reason)
	}
	if len(data.CountryCode) != 2 {
		return "", fmt.Errorf("ipapi returned country %q", data.CountryCode)
	}
	return strings.ToUpper(data.CountryCode), nil
}
