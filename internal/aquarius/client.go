package aquarius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nereus-labs/datanft-gateway/internal/adapter"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
)

// ValidationResult is the index's verdict on a submitted descriptor
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Hash   string          `json:"hash"`
	Errors json.RawMessage `json:"errors,omitempty"`
}

// queryResponse is the Elasticsearch-style envelope of asset queries
type queryResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Client talks to the external metadata index (Aquarius)
//
//go:generate mockgen -source=client.go -destination=../mocks/aquarius.go -package=mocks -mock_names=Client=MockAquariusClient
type Client interface {
	// Validate submits a descriptor for validation before publication
	Validate(ctx context.Context, doc *domain.DDO) (*ValidationResult, error)

	// Resolve fetches the current descriptor for a DID
	Resolve(ctx context.Context, did domain.DID) (*domain.DDO, error)

	// QueryByOwner lists the raw indexed assets owned by an address on a chain
	QueryByOwner(ctx context.Context, owner string, chainID uint64) ([]json.RawMessage, error)
}

type aquariusClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewClient creates a metadata index client
func NewClient(httpClient adapter.HTTPClient, baseURL string) Client {
	return &aquariusClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Validate submits a descriptor for validation before publication
func (c *aquariusClient) Validate(ctx context.Context, doc *domain.DDO) (*ValidationResult, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ddo: %w", err)
	}

	url := c.baseURL + "/api/aquarius/assets/ddo/validate"
	respBody, err := c.httpClient.Post(ctx, url, "application/octet-stream", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: validate: %v", domain.ErrExternalService, err)
	}

	var result ValidationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: validate response: %v", domain.ErrExternalService, err)
	}

	return &result, nil
}

// Resolve fetches the current descriptor for a DID
func (c *aquariusClient) Resolve(ctx context.Context, did domain.DID) (*domain.DDO, error) {
	url := c.baseURL + "/api/aquarius/assets/ddo/" + did.String()

	var doc domain.DDO
	if err := c.httpClient.Get(ctx, url, &doc); err != nil {
		if isNotFoundErr(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, did)
		}
		return nil, fmt.Errorf("%w: resolve %s: %v", domain.ErrExternalService, did, err)
	}

	return &doc, nil
}

// QueryByOwner lists the raw indexed assets owned by an address on a chain
func (c *aquariusClient) QueryByOwner(ctx context.Context, owner string, chainID uint64) ([]json.RawMessage, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{"match": map[string]interface{}{"nft.owner": owner}},
					map[string]interface{}{"match": map[string]interface{}{"chainId": chainID}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"metadata.created": map[string]interface{}{"order": "desc"}},
		},
		"size": 100,
	}

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	url := c.baseURL + "/api/aquarius/assets/query"
	respBody, err := c.httpClient.Post(ctx, url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: query by owner: %v", domain.ErrExternalService, err)
	}

	var resp queryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: query response: %v", domain.ErrExternalService, err)
	}

	assets := make([]json.RawMessage, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		assets = append(assets, hit.Source)
	}

	return assets, nil
}

// isNotFoundErr checks if the error is a 404 from the index
func isNotFoundErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "status code 404")
}
