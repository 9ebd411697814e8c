package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"

	"github.com/nereus-labs/datanft-gateway/internal/aquarius"
	"github.com/nereus-labs/datanft-gateway/internal/consume"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/holdings"
	"github.com/nereus-labs/datanft-gateway/internal/publish"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetNFTAccess lists the access tokens a wallet holds or has held
	// GET /api/nft-access/:address/:chainId
	GetNFTAccess(c *gin.Context)

	// GetUserAssets lists the published assets owned by a wallet
	// GET /api/user-assets/:address/:chainId
	GetUserAssets(c *gin.Context)

	// CreateAndPublishNFT builds the unsigned asset creation transaction
	// POST /api/create-and-publish-nft
	CreateAndPublishNFT(c *gin.Context)

	// ExtractAddresses recovers the deployed addresses from a receipt
	// POST /api/extract-addresses
	ExtractAddresses(c *gin.Context)

	// EncryptMetadata encrypts and validates the descriptor and builds
	// the unsigned metadata attachment transaction
	// POST /api/encrypt-metadata
	EncryptMetadata(c *gin.Context)

	// ConsumeAsset builds the unsigned transactions still needed for access
	// POST /api/consume-asset
	ConsumeAsset(c *gin.Context)

	// GetDownloadURL issues a single-use download challenge
	// POST /api/get-download-url
	GetDownloadURL(c *gin.Context)

	// PrepareNFTDelete builds the unsigned revocation transaction
	// POST /api/prepare-nft-delete
	PrepareNFTDelete(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	publisher *publish.Orchestrator
	consumer  *consume.Orchestrator
	scanner   *holdings.Scanner
	aquarius  aquarius.Client
	chainID   uint64
}

// NewHandler creates a new REST API handler
func NewHandler(publisher *publish.Orchestrator, consumer *consume.Orchestrator, scanner *holdings.Scanner, aquariusClient aquarius.Client, chainID uint64) Handler {
	return &handler{
		publisher: publisher,
		consumer:  consumer,
		scanner:   scanner,
		aquarius:  aquariusClient,
		chainID:   chainID,
	}
}

// receiptLog is the caller-supplied form of one receipt log entry
type receiptLog struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber string   `json:"blockNumber,omitempty"`
	TxHash      string   `json:"transactionHash,omitempty"`
}

// chainPathParams validates the :address/:chainId pair shared by the GET
// routes. The served chain is fixed per deployment; a mismatched chain id
// is a caller error, not a routing hint.
func (h *handler) chainPathParams(c *gin.Context) (string, bool) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		respondBadRequest(c, "Invalid wallet address", address)
		return "", false
	}

	chainID, err := strconv.ParseUint(c.Param("chainId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid chain id", c.Param("chainId"))
		return "", false
	}
	if chainID != h.chainID {
		respondBadRequest(c, "Unsupported chain id", strconv.FormatUint(chainID, 10))
		return "", false
	}

	return address, true
}

// GetNFTAccess lists the access tokens a wallet holds or has held
func (h *handler) GetNFTAccess(c *gin.Context) {
	address, ok := h.chainPathParams(c)
	if !ok {
		return
	}

	records, err := h.scanner.Scan(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":  address,
		"chainId":  h.chainID,
		"holdings": records,
	})
}

// GetUserAssets lists the published assets owned by a wallet
func (h *handler) GetUserAssets(c *gin.Context) {
	address, ok := h.chainPathParams(c)
	if !ok {
		return
	}

	assets, err := h.aquarius.QueryByOwner(c.Request.Context(), address, h.chainID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
		"chainId": h.chainID,
		"assets":  assets,
	})
}

// CreateAndPublishNFT builds the unsigned asset creation transaction
func (h *handler) CreateAndPublishNFT(c *gin.Context) {
	var req struct {
		Owner    string               `json:"owner" binding:"required"`
		Metadata domain.MetadataDraft `json:"metadata" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	tx, err := h.publisher.PrepareCreate(c.Request.Context(), req.Owner, req.Metadata)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// ExtractAddresses recovers the deployed addresses from a receipt
func (h *handler) ExtractAddresses(c *gin.Context) {
	var req struct {
		Logs []receiptLog `json:"logs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	logs := make([]types.Log, 0, len(req.Logs))
	for _, entry := range req.Logs {
		converted := types.Log{
			Address: common.HexToAddress(entry.Address),
			Data:    common.FromHex(entry.Data),
		}
		for _, topic := range entry.Topics {
			converted.Topics = append(converted.Topics, common.HexToHash(topic))
		}
		if entry.TxHash != "" {
			converted.TxHash = common.HexToHash(entry.TxHash)
		}
		logs = append(logs, converted)
	}

	identity, err := h.publisher.ExtractAddresses(logs)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, identity)
}

// EncryptMetadata encrypts and validates the descriptor and builds the
// unsigned metadata attachment transaction
func (h *handler) EncryptMetadata(c *gin.Context) {
	var req struct {
		Publisher        string               `json:"publisher" binding:"required"`
		NFTAddress       string               `json:"nftAddress" binding:"required"`
		DatatokenAddress string               `json:"datatokenAddress" binding:"required"`
		Metadata         domain.MetadataDraft `json:"metadata" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if !common.IsHexAddress(req.NFTAddress) || !common.IsHexAddress(req.DatatokenAddress) {
		respondBadRequest(c, "Invalid contract address")
		return
	}

	identity := domain.AssetIdentity{
		NFTAddress:       common.HexToAddress(req.NFTAddress).Hex(),
		DatatokenAddress: common.HexToAddress(req.DatatokenAddress).Hex(),
		ChainID:          h.chainID,
	}
	identity.DID = domain.NewDID(identity.NFTAddress, h.chainID)

	meta, err := h.publisher.EncryptMetadata(c.Request.Context(), identity, req.Metadata)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	tx, err := h.publisher.PrepareSetMetadata(c.Request.Context(), identity, req.Publisher, *meta)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"did":          meta.DID,
		"metadataHash": meta.MetadataHash,
		"transaction":  tx,
	})
}

// ConsumeAsset builds the unsigned transactions still needed for access
func (h *handler) ConsumeAsset(c *gin.Context) {
	var req struct {
		NFTAddress string `json:"nftAddress" binding:"required"`
		Wallet     string `json:"wallet" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.consumer.PrepareConsume(c.Request.Context(), req.NFTAddress, req.Wallet)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDownloadURL issues a single-use download challenge
func (h *handler) GetDownloadURL(c *gin.Context) {
	var req struct {
		NFTAddress string `json:"nftAddress" binding:"required"`
		Wallet     string `json:"wallet" binding:"required"`
		OrderTxID  string `json:"orderTxId" binding:"required"`
		FileIndex  *int   `json:"fileIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	fileIndex := 0
	if req.FileIndex != nil {
		fileIndex = *req.FileIndex
	}

	auth, err := h.consumer.IssueDownloadAuthorization(c.Request.Context(), req.NFTAddress, req.Wallet, req.OrderTxID, fileIndex)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, auth)
}

// PrepareNFTDelete builds the unsigned revocation transaction
func (h *handler) PrepareNFTDelete(c *gin.Context) {
	var req struct {
		NFTAddress string `json:"nftAddress" binding:"required"`
		Publisher  string `json:"publisher" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	tx, err := h.publisher.PrepareRevoke(c.Request.Context(), req.NFTAddress, req.Publisher)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"chainId": json.Number(strconv.FormatUint(h.chainID, 10)),
	})
}
