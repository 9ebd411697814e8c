package txbuilder_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/mocks"
	"github.com/nereus-labs/datanft-gateway/internal/txbuilder"
)

var (
	factoryAddr   = common.HexToAddress("0x00000000000000000000000000000000000000F1")
	dispenserAddr = common.HexToAddress("0x00000000000000000000000000000000000000D1")
	oceanAddr     = common.HexToAddress("0x00000000000000000000000000000000000000C1")
	ownerAddr     = common.HexToAddress("0x1234567890AbcdEF1234567890aBcdef12345678")
	datatokenAddr = common.HexToAddress("0x0000000000000000000000000000000000000Abc")
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

func newTestBuilder(t *testing.T) (*txbuilder.Builder, *mocks.MockLedgerClient) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockLedger := mocks.NewMockLedgerClient(ctrl)
	builder, err := txbuilder.NewBuilder(mockLedger, txbuilder.Addresses{
		NFTFactory: factoryAddr,
		Dispenser:  dispenserAddr,
		OceanToken: oceanAddr,
	})
	require.NoError(t, err)

	return builder, mockLedger
}

func testDraft() domain.MetadataDraft {
	return domain.MetadataDraft{
		NFTName:         "Climate Dataset",
		NFTSymbol:       "CLIM",
		DatatokenName:   "Climate Access Token",
		DatatokenSymbol: "CLIMAT",
		Description:     "Hourly temperature readings",
	}
}

func TestGasLimitHex_Buffer(t *testing.T) {
	tests := []struct {
		estimate uint64
		want     string
	}{
		{100000, "0x" + strconv.FormatUint(120000, 16)},
		{21000, "0x" + strconv.FormatUint(25200, 16)},
		// rounding is always up
		{1, "0x2"},
		{5, "0x6"},
		{10, "0xc"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, txbuilder.GasLimitHex(tt.estimate))
	}
}

func TestCreateAssetPair(t *testing.T) {
	builder, mockLedger := newTestBuilder(t)
	ctx := context.Background()

	mockLedger.EXPECT().
		EstimateGas(ctx, ownerAddr, factoryAddr, gomock.Any()).
		Return(uint64(100000), nil)

	tx, err := builder.CreateAssetPair(ctx, ownerAddr, testDraft())
	require.NoError(t, err)

	assert.Equal(t, factoryAddr.Hex(), tx.To)
	assert.True(t, strings.HasPrefix(tx.Data, "0x"))
	assert.Greater(t, len(tx.Data), 10)
	assert.Equal(t, "0x1d4c0", tx.GasLimit)
}

func TestCreateAssetPair_EstimationFailure(t *testing.T) {
	builder, mockLedger := newTestBuilder(t)
	ctx := context.Background()

	mockLedger.EXPECT().
		EstimateGas(ctx, ownerAddr, factoryAddr, gomock.Any()).
		Return(uint64(0), errors.New("execution reverted"))

	_, err := builder.CreateAssetPair(ctx, ownerAddr, testDraft())
	assert.ErrorIs(t, err, domain.ErrTransactionWouldFail)
}

func TestSetMetadata(t *testing.T) {
	builder, mockLedger := newTestBuilder(t)
	ctx := context.Background()
	nftAddr := common.HexToAddress("0x00000000000000000000000000000000000000EE")

	mockLedger.EXPECT().
		EstimateGas(ctx, ownerAddr, nftAddr, gomock.Any()).
		Return(uint64(80000), nil)

	tx, err := builder.SetMetadata(ctx, nftAddr, ownerAddr,
		domain.MetadataStateActive,
		"https://provider.example.com",
		"0xdeadbeef",
		"0x"+strings.Repeat("ab", 32),
	)
	require.NoError(t, err)

	assert.Equal(t, nftAddr.Hex(), tx.To)
	assert.True(t, strings.HasPrefix(tx.Data, "0x"))
}

func TestDispense_FallbackGasOnEstimationFailure(t *testing.T) {
	builder, mockLedger := newTestBuilder(t)
	ctx := context.Background()

	mockLedger.EXPECT().
		EstimateGas(ctx, ownerAddr, dispenserAddr, gomock.Any()).
		Return(uint64(0), errors.New("execution reverted"))

	tx, err := builder.Dispense(ctx, ownerAddr, datatokenAddr, big.NewInt(1))
	require.NoError(t, err)

	assert.Equal(t, dispenserAddr.Hex(), tx.To)
	assert.Equal(t, "0x1e8480", tx.GasLimit)
}

func TestMintToDispenser(t *testing.T) {
	builder, mockLedger := newTestBuilder(t)
	ctx := context.Background()

	mockLedger.EXPECT().
		EstimateGas(ctx, ownerAddr, datatokenAddr, gomock.Any()).
		Return(uint64(50000), nil)

	tx, err := builder.MintToDispenser(ctx, ownerAddr, datatokenAddr, big.NewInt(1))
	require.NoError(t, err)

	assert.Equal(t, datatokenAddr.Hex(), tx.To)
	assert.Equal(t, "0xea60", tx.GasLimit)
}

func TestStartOrder(t *testing.T) {
	builder, mockLedger := newTestBuilder(t)
	ctx := context.Background()

	mockLedger.EXPECT().
		EstimateGas(ctx, ownerAddr, datatokenAddr, gomock.Any()).
		Return(uint64(150000), nil)

	fee := domain.ProviderFee{
		ProviderFeeAmount: big.NewInt(0),
		ValidUntil:        big.NewInt(0),
		ProviderData:      []byte{},
	}

	tx, err := builder.StartOrder(ctx, ownerAddr, datatokenAddr, 0, fee, domain.ZeroConsumeMarketFee())
	require.NoError(t, err)

	assert.Equal(t, datatokenAddr.Hex(), tx.To)
	assert.True(t, strings.HasPrefix(tx.Data, "0x"))
}
