package subgraph_test

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/mocks"
	"github.com/nereus-labs/datanft-gateway/internal/subgraph"
)

const (
	subgraphURL = "https://subgraph.example.com/query"
	testWallet  = "0x1234567890AbcdEF1234567890aBcdef12345678"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func newTestClient(t *testing.T) (subgraph.Client, *mocks.MockHTTPClient) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockHTTP := mocks.NewMockHTTPClient(ctrl)
	return subgraph.NewClient(mockHTTP, subgraphURL), mockHTTP
}

const ordersResponse = `{
	"data": {
		"orders": [
			{
				"id": "order-2",
				"tx": "0xorder2",
				"serviceIndex": 0,
				"createdTimestamp": 1750000200,
				"datatoken": {"id": "t2", "address": "0x0000000000000000000000000000000000000abc", "symbol": "CLIMAT", "name": "Climate Access Token"}
			},
			{
				"id": "order-1",
				"tx": "0xorder1",
				"serviceIndex": 0,
				"createdTimestamp": 1750000100,
				"datatoken": {"id": "t1", "address": "0x00000000000000000000000000000000000000dd", "symbol": "OTHER", "name": "Other Token"}
			}
		]
	}
}`

func TestOrdersByConsumer(t *testing.T) {
	client, mockHTTP := newTestClient(t)
	ctx := context.Background()

	mockHTTP.EXPECT().
		Post(ctx, subgraphURL, "application/json", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ string, body io.Reader) ([]byte, error) {
			payload, err := io.ReadAll(body)
			require.NoError(t, err)
			// The consumer variable is lowercased to match subgraph storage
			assert.Contains(t, string(payload), `"user":"0x1234567890abcdef1234567890abcdef12345678"`)
			return []byte(ordersResponse), nil
		})

	orders, err := client.OrdersByConsumer(ctx, testWallet)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "0xorder2", orders[0].TxHash)
	assert.Equal(t, int64(1750000200), orders[0].CreatedTimestamp)
	assert.Equal(t, "0x0000000000000000000000000000000000000abc", orders[0].DatatokenAddress)
}

func TestOrdersByConsumer_GraphQLError(t *testing.T) {
	client, mockHTTP := newTestClient(t)
	ctx := context.Background()

	mockHTTP.EXPECT().
		Post(ctx, subgraphURL, "application/json", gomock.Any()).
		Return([]byte(`{"errors": [{"message": "syntax error"}]}`), nil)

	_, err := client.OrdersByConsumer(ctx, testWallet)
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestLatestOrder_CaseInsensitiveMatch(t *testing.T) {
	client, mockHTTP := newTestClient(t)
	ctx := context.Background()

	mockHTTP.EXPECT().
		Post(ctx, subgraphURL, "application/json", gomock.Any()).
		Return([]byte(ordersResponse), nil)

	// Checksummed input still matches the lowercase subgraph address
	order, err := client.LatestOrder(ctx, testWallet, "0x0000000000000000000000000000000000000Abc")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "0xorder2", order.TxHash)
}

func TestLatestOrder_NoMatch(t *testing.T) {
	client, mockHTTP := newTestClient(t)
	ctx := context.Background()

	mockHTTP.EXPECT().
		Post(ctx, subgraphURL, "application/json", gomock.Any()).
		Return([]byte(ordersResponse), nil)

	order, err := client.LatestOrder(ctx, testWallet, "0x00000000000000000000000000000000000000FF")
	require.NoError(t, err)
	assert.Nil(t, order)
}
