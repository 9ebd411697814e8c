package publish

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/nereus-labs/datanft-gateway/internal/aquarius"
	"github.com/nereus-labs/datanft-gateway/internal/ddo"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/provider"
	"github.com/nereus-labs/datanft-gateway/internal/txbuilder"
)

// Orchestrator drives the publication flow: creation transaction, address
// recovery from the confirmed receipt, and metadata attachment. Every step
// is stateless; the caller carries all intermediate results between calls.
type Orchestrator struct {
	codec       *ddo.Codec
	provider    provider.Client
	aquarius    aquarius.Client
	builder     *txbuilder.Builder
	chainID     uint64
	providerURL string
}

// NewOrchestrator creates a publication orchestrator
func NewOrchestrator(codec *ddo.Codec, providerClient provider.Client, aquariusClient aquarius.Client, builder *txbuilder.Builder, chainID uint64, providerURL string) *Orchestrator {
	return &Orchestrator{
		codec:       codec,
		provider:    providerClient,
		aquarius:    aquariusClient,
		builder:     builder,
		chainID:     chainID,
		providerURL: providerURL,
	}
}

// PrepareCreate validates the draft and builds the unsigned factory
// transaction that deploys the asset NFT, access token and dispenser.
func (o *Orchestrator) PrepareCreate(ctx context.Context, owner string, draft domain.MetadataDraft) (*domain.UnsignedTransaction, error) {
	if !common.IsHexAddress(owner) {
		return nil, domain.NewStageError(domain.StageDraft,
			fmt.Errorf("%w: owner address %q", domain.ErrInvalidInput, owner))
	}
	if err := o.codec.ValidateDraft(draft); err != nil {
		return nil, domain.NewStageError(domain.StageDraft, err)
	}

	tx, err := o.builder.CreateAssetPair(ctx, common.HexToAddress(owner), draft)
	if err != nil {
		return nil, domain.NewStageError(domain.StageCreateTxBuilt, err)
	}

	logger.InfoCtx(ctx, "prepared asset creation transaction",
		zap.String("owner", owner),
		zap.String("nftName", draft.NFTName))

	return tx, nil
}

// ExtractAddresses recovers the deployed contract addresses from the logs
// of the confirmed creation transaction and derives the asset DID.
func (o *Orchestrator) ExtractAddresses(logs []types.Log) (*domain.AssetIdentity, error) {
	identity, err := txbuilder.ExtractAssetIdentity(logs, o.chainID)
	if err != nil {
		return nil, domain.NewStageError(domain.StageCreated, err)
	}

	logger.Info("recovered asset addresses from receipt",
		zap.String("nftAddress", identity.NFTAddress),
		zap.String("datatokenAddress", identity.DatatokenAddress),
		zap.String("did", identity.DID.String()))

	return identity, nil
}

// EncryptMetadata assembles the descriptor, encrypts the files object and
// the full document through the provider, validates with the metadata
// index, and returns the encrypted document with its plaintext hash. A
// validation rejection halts the flow before any transaction is built.
func (o *Orchestrator) EncryptMetadata(ctx context.Context, identity domain.AssetIdentity, draft domain.MetadataDraft) (*EncryptedMetadata, error) {
	doc, err := o.codec.Build(identity, draft)
	if err != nil {
		return nil, domain.NewStageError(domain.StageMetadataReady, err)
	}

	files := o.codec.FilesObject(identity, draft.AssetURL)
	encryptedFiles, err := o.provider.Encrypt(ctx, files, o.chainID)
	if err != nil {
		return nil, domain.NewStageError(domain.StageMetadataEncrypted, err)
	}
	doc.Services[0].Files = encryptedFiles

	result, err := o.aquarius.Validate(ctx, doc)
	if err != nil {
		return nil, domain.NewStageError(domain.StageMetadataEncrypted, err)
	}
	if !result.Valid {
		return nil, domain.NewStageError(domain.StageMetadataEncrypted,
			fmt.Errorf("%w: %s", domain.ErrDDOValidationFailed, string(result.Errors)))
	}

	hash, err := o.codec.MetadataHash(doc)
	if err != nil {
		return nil, domain.NewStageError(domain.StageMetadataEncrypted, err)
	}

	encryptedDoc, err := o.provider.Encrypt(ctx, doc, o.chainID)
	if err != nil {
		return nil, domain.NewStageError(domain.StageMetadataEncrypted, err)
	}

	logger.InfoCtx(ctx, "encrypted and validated descriptor",
		zap.String("did", doc.ID.String()),
		zap.String("metadataHash", hash))

	return &EncryptedMetadata{
		DID:          doc.ID,
		EncryptedDDO: encryptedDoc,
		MetadataHash: hash,
	}, nil
}

// PrepareSetMetadata builds the unsigned metadata attachment transaction
// against the asset NFT.
func (o *Orchestrator) PrepareSetMetadata(ctx context.Context, identity domain.AssetIdentity, publisher string, meta EncryptedMetadata) (*domain.UnsignedTransaction, error) {
	if !common.IsHexAddress(publisher) {
		return nil, domain.NewStageError(domain.StageMetadataTxBuilt,
			fmt.Errorf("%w: publisher address %q", domain.ErrInvalidInput, publisher))
	}
	if !common.IsHexAddress(identity.NFTAddress) {
		return nil, domain.NewStageError(domain.StageMetadataTxBuilt,
			fmt.Errorf("%w: nft address %q", domain.ErrInvalidInput, identity.NFTAddress))
	}

	tx, err := o.builder.SetMetadata(ctx,
		common.HexToAddress(identity.NFTAddress),
		common.HexToAddress(publisher),
		domain.MetadataStateActive,
		o.providerURL,
		meta.EncryptedDDO,
		meta.MetadataHash,
	)
	if err != nil {
		return nil, domain.NewStageError(domain.StageMetadataTxBuilt, err)
	}

	return tx, nil
}

// PrepareRevoke resolves the published descriptor, marks it revoked,
// re-encrypts it and builds the unsigned metadata update transaction. The
// asset stays resolvable but is flagged unusable.
func (o *Orchestrator) PrepareRevoke(ctx context.Context, nftAddress, publisher string) (*domain.UnsignedTransaction, error) {
	if !common.IsHexAddress(nftAddress) {
		return nil, fmt.Errorf("%w: nft address %q", domain.ErrInvalidInput, nftAddress)
	}
	if !common.IsHexAddress(publisher) {
		return nil, fmt.Errorf("%w: publisher address %q", domain.ErrInvalidInput, publisher)
	}

	did := domain.NewDID(nftAddress, o.chainID)
	doc, err := o.aquarius.Resolve(ctx, did)
	if err != nil {
		return nil, err
	}

	o.codec.Revoke(doc)

	hash, err := o.codec.MetadataHash(doc)
	if err != nil {
		return nil, err
	}

	encryptedDoc, err := o.provider.Encrypt(ctx, doc, o.chainID)
	if err != nil {
		return nil, err
	}

	tx, err := o.builder.SetMetadata(ctx,
		common.HexToAddress(nftAddress),
		common.HexToAddress(publisher),
		domain.MetadataStateRevoked,
		o.providerURL,
		encryptedDoc,
		hash,
	)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "prepared revocation transaction",
		zap.String("did", did.String()),
		zap.String("nftAddress", nftAddress))

	return tx, nil
}

// EncryptedMetadata carries the provider-encrypted descriptor and the hash
// of its plaintext form, ready for the metadata transaction.
type EncryptedMetadata struct {
	DID          domain.DID `json:"did"`
	EncryptedDDO string     `json:"encryptedDdo"`
	MetadataHash string     `json:"metadataHash"`
}
