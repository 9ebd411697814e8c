package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nereus-labs/datanft-gateway/internal/adapter"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
)

// feePayload is the provider's JSON encoding of a signed fee quote
type feePayload struct {
	ProviderFeeAddress string      `json:"providerFeeAddress"`
	ProviderFeeToken   string      `json:"providerFeeToken"`
	ProviderFeeAmount  string      `json:"providerFeeAmount"`
	V                  uint8       `json:"v"`
	R                  string      `json:"r"`
	S                  string      `json:"s"`
	ValidUntil         json.Number `json:"validUntil"`
	ProviderData       string      `json:"providerData"`
}

// InitializeResult is the provider's answer to an order initialization.
// The fee quote has a short validity window and must never be cached.
type InitializeResult struct {
	DatatokenAddress string
	Nonce            string
	ProviderFee      domain.ProviderFee
}

// Client talks to the external content provider
//
//go:generate mockgen -source=client.go -destination=../mocks/provider.go -package=mocks -mock_names=Client=MockProviderClient
type Client interface {
	// Encrypt sends a payload to the provider encryption endpoint and
	// returns the hex-encoded ciphertext
	Encrypt(ctx context.Context, payload interface{}, chainID uint64) (string, error)

	// Initialize fetches a fresh signed provider fee for an order
	Initialize(ctx context.Context, did domain.DID, serviceID string, fileIndex int, consumer string) (*InitializeResult, error)

	// Nonce fetches the next download nonce for a consumer
	Nonce(ctx context.Context, consumer string) (string, error)

	// DownloadEndpoint returns the base download URL files are served from
	DownloadEndpoint() string
}

type providerClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewClient creates a content provider client
func NewClient(httpClient adapter.HTTPClient, baseURL string) Client {
	return &providerClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Encrypt sends a payload to the provider encryption endpoint
func (c *providerClient) Encrypt(ctx context.Context, payload interface{}, chainID uint64) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/services/encrypt?chainId=%d", c.baseURL, chainID)
	respBody, err := c.httpClient.Post(ctx, endpoint, "application/octet-stream", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: encrypt: %v", domain.ErrExternalService, err)
	}

	encrypted := strings.TrimSpace(string(respBody))
	if encrypted == "" {
		return "", fmt.Errorf("%w: encrypt returned empty body", domain.ErrExternalService)
	}

	return encrypted, nil
}

// Initialize fetches a fresh signed provider fee for an order
func (c *providerClient) Initialize(ctx context.Context, did domain.DID, serviceID string, fileIndex int, consumer string) (*InitializeResult, error) {
	endpoint := fmt.Sprintf("%s/api/services/initialize?documentId=%s&serviceId=%s&fileIndex=%d&consumerAddress=%s",
		c.baseURL,
		url.QueryEscape(did.String()),
		url.QueryEscape(serviceID),
		fileIndex,
		url.QueryEscape(consumer),
	)

	var resp struct {
		Datatoken   string      `json:"datatoken"`
		Nonce       json.Number `json:"nonce"`
		ProviderFee feePayload  `json:"providerFee"`
	}
	if err := c.httpClient.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("%w: initialize: %v", domain.ErrExternalService, err)
	}

	fee, err := decodeFee(resp.ProviderFee)
	if err != nil {
		return nil, fmt.Errorf("%w: initialize fee: %v", domain.ErrExternalService, err)
	}

	return &InitializeResult{
		DatatokenAddress: resp.Datatoken,
		Nonce:            resp.Nonce.String(),
		ProviderFee:      fee,
	}, nil
}

// Nonce fetches the next download nonce for a consumer
func (c *providerClient) Nonce(ctx context.Context, consumer string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/services/nonce?userAddress=%s", c.baseURL, url.QueryEscape(consumer))

	var resp struct {
		Nonce json.Number `json:"nonce"`
	}
	if err := c.httpClient.Get(ctx, endpoint, &resp); err != nil {
		return "", fmt.Errorf("%w: nonce: %v", domain.ErrExternalService, err)
	}

	// The next usable nonce must be strictly greater than the stored one
	current, err := strconv.ParseUint(resp.Nonce.String(), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: nonce %q: %v", domain.ErrExternalService, resp.Nonce.String(), err)
	}

	return strconv.FormatUint(current+1, 10), nil
}

// DownloadEndpoint returns the base download URL files are served from
func (c *providerClient) DownloadEndpoint() string {
	return c.baseURL + "/api/services/download"
}

// decodeFee converts the provider's JSON fee quote into the ABI-ready form
func decodeFee(p feePayload) (domain.ProviderFee, error) {
	amount, ok := new(big.Int).SetString(p.ProviderFeeAmount, 10)
	if !ok {
		return domain.ProviderFee{}, fmt.Errorf("invalid fee amount %q", p.ProviderFeeAmount)
	}

	validUntil, ok := new(big.Int).SetString(p.ValidUntil.String(), 10)
	if !ok {
		return domain.ProviderFee{}, fmt.Errorf("invalid validUntil %q", p.ValidUntil.String())
	}

	var r, s [32]byte
	copy(r[:], common.FromHex(p.R))
	copy(s[:], common.FromHex(p.S))

	return domain.ProviderFee{
		ProviderFeeAddress: common.HexToAddress(p.ProviderFeeAddress),
		ProviderFeeToken:   common.HexToAddress(p.ProviderFeeToken),
		ProviderFeeAmount:  amount,
		V:                  p.V,
		R:                  r,
		S:                  s,
		ValidUntil:         validUntil,
		ProviderData:       common.FromHex(p.ProviderData),
	}, nil
}
