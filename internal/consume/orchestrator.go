package consume

import (
	"context"
	"fmt"
	"math/big"
	"net/url"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/nereus-labs/datanft-gateway/internal/aquarius"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/ledger"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/provider"
	"github.com/nereus-labs/datanft-gateway/internal/subgraph"
	"github.com/nereus-labs/datanft-gateway/internal/txbuilder"
)

// oneToken is a single access token in base units. One token buys one order.
var oneToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Result is a prepared consumption: either an existing confirmed order
// (empty transaction batch) or the ordered unsigned transactions the wallet
// must sign to obtain access.
type Result struct {
	DID              domain.DID                  `json:"did"`
	ServiceID        string                      `json:"serviceId"`
	ServiceIndex     uint64                      `json:"serviceIndex"`
	DatatokenAddress string                      `json:"datatokenAddress"`
	AlreadyOwned     bool                        `json:"alreadyOwned"`
	OrderTxID        string                      `json:"orderTxId,omitempty"`
	Transactions     []domain.ConsumeTransaction `json:"transactions"`
}

// Orchestrator drives the consumption flow: order detection, token
// acquisition and order placement, then download authorization.
type Orchestrator struct {
	ledger           ledger.Client
	aquarius         aquarius.Client
	provider         provider.Client
	subgraph         subgraph.Client
	builder          *txbuilder.Builder
	dispenserAddress common.Address
	chainID          uint64
}

// NewOrchestrator creates a consumption orchestrator
func NewOrchestrator(ledgerClient ledger.Client, aquariusClient aquarius.Client, providerClient provider.Client, subgraphClient subgraph.Client, builder *txbuilder.Builder, dispenserAddress common.Address, chainID uint64) *Orchestrator {
	return &Orchestrator{
		ledger:           ledgerClient,
		aquarius:         aquariusClient,
		provider:         providerClient,
		subgraph:         subgraphClient,
		builder:          builder,
		dispenserAddress: dispenserAddress,
		chainID:          chainID,
	}
}

// PrepareConsume resolves the asset and returns the transactions still
// needed for access. A wallet with a confirmed order gets an empty batch and
// the existing order id; otherwise the batch carries, in signing order, an
// optional mint to refill the dispenser, an optional dispense to the wallet,
// and the order placement with a fresh provider fee.
func (o *Orchestrator) PrepareConsume(ctx context.Context, nftAddress, wallet string) (*Result, error) {
	if !common.IsHexAddress(nftAddress) {
		return nil, fmt.Errorf("%w: nft address %q", domain.ErrInvalidInput, nftAddress)
	}
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("%w: wallet address %q", domain.ErrInvalidInput, wallet)
	}

	did := domain.NewDID(nftAddress, o.chainID)
	doc, err := o.aquarius.Resolve(ctx, did)
	if err != nil {
		return nil, err
	}

	service := doc.AccessService()
	if service == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoAccessService, did)
	}
	serviceIndex := uint64(0)
	for i := range doc.Services {
		if &doc.Services[i] == service {
			serviceIndex = uint64(i)
			break
		}
	}

	datatoken := common.HexToAddress(service.DatatokenAddress)
	walletAddr := common.HexToAddress(wallet)

	result := &Result{
		DID:              did,
		ServiceID:        service.ID,
		ServiceIndex:     serviceIndex,
		DatatokenAddress: datatoken.Hex(),
		Transactions:     []domain.ConsumeTransaction{},
	}

	// A confirmed order grants access without any new transaction
	existing, err := o.subgraph.LatestOrder(ctx, wallet, datatoken.Hex())
	if err != nil {
		logger.WarnCtx(ctx, "order lookup failed, falling back to full flow",
			zap.String("did", did.String()),
			zap.Error(err))
	} else if existing != nil {
		result.AlreadyOwned = true
		result.OrderTxID = existing.TxHash
		return result, nil
	}

	balance, err := o.ledger.BalanceOf(ctx, datatoken, walletAddr)
	if err != nil {
		return nil, err
	}

	if balance.Cmp(oneToken) < 0 {
		dispenserBalance, err := o.ledger.BalanceOf(ctx, datatoken, o.dispenserAddress)
		if err != nil {
			return nil, err
		}

		if dispenserBalance.Cmp(oneToken) < 0 {
			mintTx, err := o.builder.MintToDispenser(ctx, walletAddr, datatoken, oneToken)
			if err != nil {
				return nil, err
			}
			result.Transactions = append(result.Transactions, domain.ConsumeTransaction{
				Step:    domain.ConsumeStepMint,
				Message: "Refill the dispenser with one access token",
				Data:    *mintTx,
			})
		}

		dispenseTx, err := o.builder.Dispense(ctx, walletAddr, datatoken, oneToken)
		if err != nil {
			return nil, err
		}
		result.Transactions = append(result.Transactions, domain.ConsumeTransaction{
			Step:    domain.ConsumeStepDispense,
			Message: "Obtain one access token from the dispenser",
			Data:    *dispenseTx,
		})
	}

	// The fee quote is short-lived, so it is fetched last
	initResult, err := o.provider.Initialize(ctx, did, service.ID, 0, wallet)
	if err != nil {
		return nil, err
	}

	orderTx, err := o.builder.StartOrder(ctx, walletAddr, datatoken, serviceIndex, initResult.ProviderFee, domain.ZeroConsumeMarketFee())
	if err != nil {
		return nil, err
	}
	result.Transactions = append(result.Transactions, domain.ConsumeTransaction{
		Step:    domain.ConsumeStepStartOrder,
		Message: "Place the consumption order",
		Data:    *orderTx,
	})

	logger.InfoCtx(ctx, "prepared consumption batch",
		zap.String("did", did.String()),
		zap.String("wallet", wallet),
		zap.Int("transactions", len(result.Transactions)))

	return result, nil
}

// IssueDownloadAuthorization assembles the single-use download challenge
// for a confirmed order. The wallet signs the challenge hash externally and
// appends the signature to the returned URL.
func (o *Orchestrator) IssueDownloadAuthorization(ctx context.Context, nftAddress, wallet, orderTxID string, fileIndex int) (*domain.DownloadAuthorization, error) {
	if !common.IsHexAddress(nftAddress) {
		return nil, fmt.Errorf("%w: nft address %q", domain.ErrInvalidInput, nftAddress)
	}
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("%w: wallet address %q", domain.ErrInvalidInput, wallet)
	}
	if orderTxID == "" {
		return nil, fmt.Errorf("%w: order transaction id is required", domain.ErrInvalidInput)
	}

	did := domain.NewDID(nftAddress, o.chainID)
	doc, err := o.aquarius.Resolve(ctx, did)
	if err != nil {
		return nil, err
	}

	service := doc.AccessService()
	if service == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoAccessService, did)
	}

	nonce, err := o.provider.Nonce(ctx, wallet)
	if err != nil {
		return nil, err
	}

	challenge := crypto.Keccak256Hash([]byte(did.String() + nonce))

	params := url.Values{}
	params.Set("fileIndex", fmt.Sprintf("%d", fileIndex))
	params.Set("documentId", did.String())
	params.Set("serviceId", service.ID)
	params.Set("transferTxId", orderTxID)
	params.Set("consumerAddress", wallet)
	params.Set("nonce", nonce)

	return &domain.DownloadAuthorization{
		DID:           did,
		ServiceID:     service.ID,
		FileIndex:     fileIndex,
		OrderTxID:     orderTxID,
		Nonce:         nonce,
		ChallengeHash: challenge.Hex(),
		DownloadURL:   o.provider.DownloadEndpoint() + "?" + params.Encode(),
	}, nil
}
