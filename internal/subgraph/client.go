package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nereus-labs/datanft-gateway/internal/adapter"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
)

// ordersQuery fetches the confirmed consumption orders of one consumer,
// newest first
const ordersQuery = `query OrdersData($user: String!) {
  orders(
    orderBy: createdTimestamp
    orderDirection: desc
    where: { consumer: $user }
  ) {
    id
    tx
    serviceIndex
    createdTimestamp
    datatoken {
      id
      address
      symbol
      name
    }
  }
}`

// graphQLRequest is the request envelope of the subgraph endpoint
type graphQLRequest struct {
	Query     string      `json:"query"`
	Variables interface{} `json:"variables"`
}

// Client queries the chain index (subgraph) for consumption orders
//
//go:generate mockgen -source=client.go -destination=../mocks/subgraph.go -package=mocks -mock_names=Client=MockSubgraphClient
type Client interface {
	// OrdersByConsumer lists confirmed orders of a wallet, newest first
	OrdersByConsumer(ctx context.Context, consumer string) ([]domain.Order, error)

	// LatestOrder returns the most recent order of the wallet for the
	// datatoken, or nil when none exists
	LatestOrder(ctx context.Context, consumer, datatoken string) (*domain.Order, error)
}

type subgraphClient struct {
	httpClient adapter.HTTPClient
	endpoint   string
}

// NewClient creates a subgraph client
func NewClient(httpClient adapter.HTTPClient, endpoint string) Client {
	return &subgraphClient{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

// OrdersByConsumer lists confirmed orders of a wallet, newest first
func (c *subgraphClient) OrdersByConsumer(ctx context.Context, consumer string) ([]domain.Order, error) {
	payload, err := json.Marshal(graphQLRequest{
		Query: ordersQuery,
		Variables: map[string]string{
			"user": strings.ToLower(consumer),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	respBody, err := c.httpClient.Post(ctx, c.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: orders query: %v", domain.ErrExternalService, err)
	}

	var resp struct {
		Data struct {
			Orders []struct {
				ID               string      `json:"id"`
				Tx               string      `json:"tx"`
				ServiceIndex     uint64      `json:"serviceIndex"`
				CreatedTimestamp json.Number `json:"createdTimestamp"`
				Datatoken        struct {
					Address string `json:"address"`
				} `json:"datatoken"`
			} `json:"orders"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: orders response: %v", domain.ErrExternalService, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: subgraph: %s", domain.ErrExternalService, resp.Errors[0].Message)
	}

	orders := make([]domain.Order, 0, len(resp.Data.Orders))
	for _, o := range resp.Data.Orders {
		created, _ := o.CreatedTimestamp.Int64()
		orders = append(orders, domain.Order{
			TxHash:           o.Tx,
			DatatokenAddress: o.Datatoken.Address,
			ServiceIndex:     o.ServiceIndex,
			CreatedTimestamp: created,
		})
	}

	return orders, nil
}

// LatestOrder returns the most recent order of the wallet for the datatoken
func (c *subgraphClient) LatestOrder(ctx context.Context, consumer, datatoken string) (*domain.Order, error) {
	orders, err := c.OrdersByConsumer(ctx, consumer)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if strings.EqualFold(orders[i].DatatokenAddress, datatoken) {
			return &orders[i], nil
		}
	}

	return nil, nil
}
