package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"medfund/internal/core/port"
)

// Client asks a remote KYC service whether an address is verified.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ port.IdentityService = (*Client)(nil)

func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type kycStatus struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

// IsKYCVerified calls GET {base}/kyc/{address}. An unknown address (404) is
// not verified.
func (c *Client) IsKYCVerified(ctx context.Context, address string) (bool, error) {
	u := c.baseURL + "/kyc/" + url.PathEscape(strings.TrimSpace(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build kyc request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("kyc request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("kyc returned %s", resp.Status)
	}
	var status kycStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("decode kyc response: %w", err)
	}
	return status.Verified, nil
}

// AddressSet is a fixed, case-insensitive set of addresses. It serves as the
// KYC allow-list when no identity service is configured, and as the
// administrator list.
type AddressSet map[string]struct{}

var (
	_ port.IdentityService = AddressSet(nil)
	_ port.AccessControl   = AddressSet(nil)
)

func NewAddressSet(addresses ...string) AddressSet {
	s := make(AddressSet, len(addresses))
	for _, a := range addresses {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			s[a] = struct{}{}
		}
	}
	return s
}

func (s AddressSet) Contains(address string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(address))]
	return ok
}

func (s AddressSet) IsKYCVerified(_ context.Context, address string) (bool, error) {
	return s.Contains(address), nil
}

func (s AddressSet) IsAdmin(_ context.Context, address string) (bool, error) {
	return s.Contains(address), nil
}
