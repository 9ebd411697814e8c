package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetIdentity ties together the two contracts created for a published
// asset. The DID is never stored, it is recomputed from the NFT address and
// chain id whenever needed.
type AssetIdentity struct {
	NFTAddress       string `json:"nftAddress"`
	DatatokenAddress string `json:"datatokenAddress"`
	ChainID          uint64 `json:"chainId"`
	DID              DID    `json:"did"`
}

// MetadataDraft holds the generated descriptive fields for an asset before
// anything exists on chain. Prompt-to-metadata generation happens outside
// this system; the draft arrives ready-made and is only validated here.
type MetadataDraft struct {
	NFTName         string   `json:"nftName"`
	NFTSymbol       string   `json:"nftSymbol"`
	DatatokenName   string   `json:"datatokenName"`
	DatatokenSymbol string   `json:"datatokenSymbol"`
	Description     string   `json:"description"`
	Author          string   `json:"author"`
	License         string   `json:"license"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	PreviewImageURL string   `json:"previewImageUrl"`
	AssetURL        string   `json:"assetUrl"`
	Created         string   `json:"created"`
}

// DDO is the descriptor document resolved by the external metadata index.
type DDO struct {
	Context    []string     `json:"@context"`
	ID         DID          `json:"id"`
	Version    string       `json:"version"`
	ChainID    uint64       `json:"chainId"`
	NFTAddress string       `json:"nftAddress"`
	Metadata   DDOMetadata  `json:"metadata"`
	Services   []DDOService `json:"services"`
}

// DDOMetadata is the descriptive section of a DDO.
type DDOMetadata struct {
	Type             string   `json:"type"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Author           string   `json:"author"`
	License          string   `json:"license"`
	Created          string   `json:"created"`
	Updated          string   `json:"updated"`
	Tags             []string `json:"tags,omitempty"`
	Links            []string `json:"links,omitempty"`
	DatatokenAddress string   `json:"datatokenAddress"`
	State            uint8    `json:"state"`
}

// DDOService describes one service attached to an asset. Files holds the
// provider-encrypted files object, or is empty before encryption.
type DDOService struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Description      string `json:"description,omitempty"`
	Files            string `json:"files"`
	DatatokenAddress string `json:"datatokenAddress"`
	ServiceEndpoint  string `json:"serviceEndpoint"`
	Timeout          uint64 `json:"timeout"`
}

// AccessService returns the first access-type service of the DDO, or nil.
func (d *DDO) AccessService() *DDOService {
	for i := range d.Services {
		if d.Services[i].Type == ServiceTypeAccess {
			return &d.Services[i]
		}
	}
	return nil
}

// UnsignedTransaction is the payload handed back for external wallet
// signing. GasLimit is hex-encoded with a single 0x prefix.
type UnsignedTransaction struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	GasLimit string `json:"gasLimit"`
}

// ConsumeStep labels one transaction of a prepared consumption batch.
type ConsumeStep string

const (
	ConsumeStepMint       ConsumeStep = "mint"
	ConsumeStepDispense   ConsumeStep = "dispense"
	ConsumeStepStartOrder ConsumeStep = "startOrder"
)

// ConsumeTransaction pairs an unsigned transaction with the step it
// performs, so the caller can show progress while signing the batch in order.
type ConsumeTransaction struct {
	Step    ConsumeStep         `json:"step"`
	Message string              `json:"message"`
	Data    UnsignedTransaction `json:"data"`
}

// TransferEvent is a decoded ERC20 Transfer log involving the scanned
// wallet.
type TransferEvent struct {
	TokenAddress string `json:"tokenAddress"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	BlockNumber  uint64 `json:"blockNumber"`
	TxHash       string `json:"txHash"`
}

// AccessState reports whether a discovered access token is still spendable.
type AccessState string

const (
	AccessStateAvailable AccessState = "Available"
	AccessStateSpent     AccessState = "Spent"
)

// AssetLink is the result of probing a candidate contract: the datatoken
// address together with the asset NFT it unlocks. Cached between discovery
// calls since the mapping never changes once minted.
type AssetLink struct {
	DatatokenAddress string `json:"datatokenAddress"`
	NFTAddress       string `json:"nftAddress"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
}

// HoldingsRecord is the per-query aggregate for one access token held (now
// or historically) by a wallet. Never persisted; rebuilt on every discovery
// call from ledger state.
type HoldingsRecord struct {
	Link        AssetLink       `json:"link"`
	DID         DID             `json:"did"`
	Balance     string          `json:"balance"`
	Decimals    uint8           `json:"decimals"`
	AccessState AccessState     `json:"accessState"`
	Transfers   []TransferEvent `json:"transfers"`
}

// ProviderFee is the short-lived signed fee quote required by startOrder.
// Fetched fresh from the content provider per request, never cached.
type ProviderFee struct {
	ProviderFeeAddress common.Address
	ProviderFeeToken   common.Address
	ProviderFeeAmount  *big.Int
	V                  uint8
	R                  [32]byte
	S                  [32]byte
	ValidUntil         *big.Int
	ProviderData       []byte
}

// ConsumeMarketFee is the market-side fee tuple of startOrder. The gateway
// always passes a zero fee.
type ConsumeMarketFee struct {
	ConsumeMarketFeeAddress common.Address
	ConsumeMarketFeeToken   common.Address
	ConsumeMarketFeeAmount  *big.Int
}

// ZeroConsumeMarketFee returns the zero-valued market fee tuple.
func ZeroConsumeMarketFee() ConsumeMarketFee {
	return ConsumeMarketFee{
		ConsumeMarketFeeAddress: common.Address{},
		ConsumeMarketFeeToken:   common.Address{},
		ConsumeMarketFeeAmount:  big.NewInt(0),
	}
}

// Order is a confirmed on-chain consumption order reported by the external
// index.
type Order struct {
	TxHash           string `json:"tx"`
	DatatokenAddress string `json:"datatokenAddress"`
	ServiceIndex     uint64 `json:"serviceIndex"`
	CreatedTimestamp int64  `json:"createdTimestamp"`
}

// DownloadAuthorization is the request-scoped challenge assembled for a
// single download. The wallet signs the challenge hash externally; the
// provider enforces single use by nonce tracking.
type DownloadAuthorization struct {
	DID           DID    `json:"did"`
	ServiceID     string `json:"serviceId"`
	FileIndex     int    `json:"fileIndex"`
	OrderTxID     string `json:"transferTxId"`
	Nonce         string `json:"nonce"`
	ChallengeHash string `json:"challengeHash"`
	DownloadURL   string `json:"downloadUrl"`
}
