package holdings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/ledger"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
)

// Scanner discovers the access tokens a wallet holds or has held by
// scanning recent transfer logs and probing the involved contracts. Nothing
// is persisted; every call rebuilds its result from ledger state, with only
// the immutable token-to-asset links cached between calls.
type Scanner struct {
	ledger         ledger.Client
	probeCache     *expirable.LRU[string, domain.AssetLink]
	lookbackBlocks uint64
	concurrency    int
}

// NewScanner creates a holdings scanner. The probe cache may be shared
// between scanners on the same chain since asset links never change.
func NewScanner(ledgerClient ledger.Client, probeCache *expirable.LRU[string, domain.AssetLink], lookbackBlocks uint64, concurrency int) *Scanner {
	return &Scanner{
		ledger:         ledgerClient,
		probeCache:     probeCache,
		lookbackBlocks: lookbackBlocks,
		concurrency:    concurrency,
	}
}

// Scan lists the access tokens involving the wallet within the lookback
// window. An empty window yields an empty list, not an error. Individual
// candidate probe failures are skipped so one broken contract cannot hide
// the rest of the holdings.
func (s *Scanner) Scan(ctx context.Context, wallet string) ([]domain.HoldingsRecord, error) {
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("%w: wallet address %q", domain.ErrInvalidInput, wallet)
	}
	walletAddr := common.HexToAddress(wallet)

	head, err := s.ledger.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	fromBlock := uint64(0)
	if head > s.lookbackBlocks {
		fromBlock = head - s.lookbackBlocks
	}

	logs, err := s.ledger.TransferLogsByWallet(ctx, walletAddr, fromBlock, head)
	if err != nil {
		return nil, err
	}

	// Group decoded transfers by token contract, deduplicating candidates
	transfersByToken := make(map[common.Address][]domain.TransferEvent)
	for _, entry := range logs {
		from, to, value, ok := ledger.ParseTransferLog(entry)
		if !ok {
			continue
		}
		transfersByToken[entry.Address] = append(transfersByToken[entry.Address], domain.TransferEvent{
			TokenAddress: entry.Address.Hex(),
			From:         from.Hex(),
			To:           to.Hex(),
			Value:        value.String(),
			BlockNumber:  entry.BlockNumber,
			TxHash:       entry.TxHash.Hex(),
		})
	}

	if len(transfersByToken) == 0 {
		return []domain.HoldingsRecord{}, nil
	}

	var mu sync.Mutex
	records := make([]domain.HoldingsRecord, 0, len(transfersByToken))

	pool := pond.NewPool(s.concurrency)
	group := pool.NewGroup()

	for token, transfers := range transfersByToken {
		group.Submit(func() {
			record, err := s.buildRecord(ctx, walletAddr, token, transfers)
			if err != nil {
				logger.WarnCtx(ctx, "skipping candidate token",
					zap.String("token", token.Hex()),
					zap.Error(err))
				return
			}
			if record == nil {
				return
			}
			mu.Lock()
			records = append(records, *record)
			mu.Unlock()
		})
	}

	group.Wait()
	pool.StopAndWait()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Link.DatatokenAddress < records[j].Link.DatatokenAddress
	})

	return records, nil
}

// buildRecord probes one candidate contract and assembles its holdings
// record, or returns nil when the contract is not an access token.
func (s *Scanner) buildRecord(ctx context.Context, wallet, token common.Address, transfers []domain.TransferEvent) (*domain.HoldingsRecord, error) {
	link, err := s.probeToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, nil
	}

	// The list probe can resolve the candidate to a different datatoken.
	// Balance and decimals come from the resolved contract, and the
	// candidate's transfers only apply when the resolution was direct.
	resolved := common.HexToAddress(link.DatatokenAddress)
	if resolved != token {
		transfers = []domain.TransferEvent{}
	}

	balance, err := s.ledger.BalanceOf(ctx, resolved, wallet)
	if err != nil {
		return nil, err
	}
	decimals, err := s.ledger.Decimals(ctx, resolved)
	if err != nil {
		return nil, err
	}

	if balance.Sign() == 0 && len(transfers) == 0 {
		return nil, nil
	}

	state := domain.AccessStateSpent
	if balance.Sign() > 0 {
		state = domain.AccessStateAvailable
	}

	return &domain.HoldingsRecord{
		Link:        *link,
		DID:         domain.NewDID(link.NFTAddress, s.ledger.ChainID()),
		Balance:     balance.String(),
		Decimals:    decimals,
		AccessState: state,
		Transfers:   transfers,
	}, nil
}

// probeToken checks whether the candidate is an access token and returns
// its asset link, or nil when the candidate is not one. Results are cached
// since the token-to-asset mapping never changes after deployment.
func (s *Scanner) probeToken(ctx context.Context, token common.Address) (*domain.AssetLink, error) {
	cacheKey := strings.ToLower(token.Hex())
	if cached, ok := s.probeCache.Get(cacheKey); ok {
		return &cached, nil
	}

	code, err := s.ledger.CodeAt(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		// Externally owned account, not a contract
		return nil, nil
	}

	link := s.probeDatatoken(ctx, token)
	if link == nil {
		link = s.probeTokenList(ctx, token)
	}
	if link == nil {
		return nil, nil
	}

	s.probeCache.Add(cacheKey, *link)
	return link, nil
}

// probeDatatoken runs the direct probe. A contract qualifies when it
// reports a non-zero asset binding and readable name and symbol; a zero
// binding means the contract answers the call without being a datatoken.
func (s *Scanner) probeDatatoken(ctx context.Context, token common.Address) *domain.AssetLink {
	nftAddress, err := s.ledger.GetERC721Address(ctx, token)
	if err != nil || nftAddress == (common.Address{}) {
		return nil
	}
	name, err := s.ledger.TokenName(ctx, token)
	if err != nil {
		return nil
	}
	symbol, err := s.ledger.TokenSymbol(ctx, token)
	if err != nil {
		return nil
	}
	return &domain.AssetLink{
		DatatokenAddress: token.Hex(),
		NFTAddress:       nftAddress.Hex(),
		Name:             name,
		Symbol:           symbol,
	}
}

// probeTokenList handles candidates that are not datatokens themselves
// but expose the factory token list, such as the asset contract minted
// alongside the datatoken. The first listed member that passes the
// direct probe resolves the candidate.
func (s *Scanner) probeTokenList(ctx context.Context, token common.Address) *domain.AssetLink {
	members, err := s.ledger.GetTokensList(ctx, token)
	if err != nil {
		return nil
	}
	for _, member := range members {
		if link := s.probeDatatoken(ctx, member); link != nil {
			return link
		}
	}
	return nil
}
