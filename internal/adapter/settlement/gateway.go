package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"medfund/internal/core/port"
)

// Gateway sends transfer instructions to a remote settlement service. The
// service is expected to deduplicate on the Idempotency-Key header.
type Gateway struct {
	url    string
	client *http.Client
}

var _ port.SettlementLedger = (*Gateway)(nil)

// NewGateway creates a gateway posting to baseURL + "/transfers".
func NewGateway(baseURL string, client *http.Client) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{url: strings.TrimRight(baseURL, "/") + "/transfers", client: client}
}

type gatewayError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Transfer posts instr. 4xx answers other than 408 and 429 are rejections;
// everything else is a transient failure the caller may retry.
func (g *Gateway) Transfer(ctx context.Context, instr port.TransferInstruction) (port.TransferConfirmation, error) {
	body, err := json.Marshal(instr)
	if err != nil {
		return port.TransferConfirmation{}, fmt.Errorf("encode transfer: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return port.TransferConfirmation{}, fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", instr.IdempotencyKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return port.TransferConfirmation{}, fmt.Errorf("transfer request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests:
		return port.TransferConfirmation{}, fmt.Errorf("transfer returned %s", resp.Status)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var ge gatewayError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&ge)
		return port.TransferConfirmation{}, fmt.Errorf("%w: %s %s", port.ErrTransferRejected, resp.Status, ge.Message)
	default:
		return port.TransferConfirmation{}, fmt.Errorf("transfer returned %s", resp.Status)
	}

	var conf port.TransferConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return port.TransferConfirmation{}, fmt.Errorf("decode transfer confirmation: %w", err)
	}
	return conf, nil
}
