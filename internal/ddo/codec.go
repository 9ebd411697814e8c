package ddo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"

	"github.com/nereus-labs/datanft-gateway/internal/adapter"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
)

// ddoContext is the JSON-LD context stamped on every descriptor
var ddoContext = []string{"https://w3id.org/did/v1", "https://w3id.org/ocean/metadata"}

// FilesObject is the plaintext files description encrypted into the access
// service before publication.
type FilesObject struct {
	DatatokenAddress string      `json:"datatokenAddress"`
	NFTAddress       string      `json:"nftAddress"`
	Files            []FileEntry `json:"files"`
}

// FileEntry points at one retrievable file of the asset.
type FileEntry struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Method string `json:"method"`
}

// Codec builds, hashes and mutates descriptor documents. It is pure: all
// chain and provider interaction stays with the orchestrators.
type Codec struct {
	chainID     uint64
	providerURL string
	clock       adapter.Clock
}

// NewCodec creates a descriptor codec for one chain deployment
func NewCodec(chainID uint64, providerURL string, clock adapter.Clock) *Codec {
	return &Codec{
		chainID:     chainID,
		providerURL: providerURL,
		clock:       clock,
	}
}

// ValidateDraft checks the required descriptive fields are present. This is
// the Draft to MetadataReady transition; generation itself happens outside.
func (c *Codec) ValidateDraft(draft domain.MetadataDraft) error {
	switch {
	case draft.NFTName == "":
		return fmt.Errorf("%w: nftName is required", domain.ErrInvalidInput)
	case draft.NFTSymbol == "":
		return fmt.Errorf("%w: nftSymbol is required", domain.ErrInvalidInput)
	case draft.DatatokenName == "":
		return fmt.Errorf("%w: datatokenName is required", domain.ErrInvalidInput)
	case draft.DatatokenSymbol == "":
		return fmt.Errorf("%w: datatokenSymbol is required", domain.ErrInvalidInput)
	case draft.Description == "":
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	return nil
}

// Build assembles the descriptor for a created asset pair. The identity must
// carry the real on-chain addresses; the DID is recomputed, never trusted
// from input.
func (c *Codec) Build(identity domain.AssetIdentity, draft domain.MetadataDraft) (*domain.DDO, error) {
	if err := c.ValidateDraft(draft); err != nil {
		return nil, err
	}
	if identity.NFTAddress == "" || identity.DatatokenAddress == "" {
		return nil, fmt.Errorf("%w: asset addresses are required", domain.ErrInvalidInput)
	}

	now := c.clock.Now().UTC().Format(time.RFC3339)
	created := draft.Created
	if created == "" {
		created = now
	}

	author := draft.Author
	if author == "" {
		author = "Unknown Author"
	}
	license := draft.License
	if license == "" {
		license = "No license"
	}

	var links []string
	if draft.PreviewImageURL != "" {
		links = append(links, draft.PreviewImageURL)
	}

	did := domain.NewDID(identity.NFTAddress, c.chainID)

	return &domain.DDO{
		Context:    ddoContext,
		ID:         did,
		Version:    domain.DDOVersion,
		ChainID:    c.chainID,
		NFTAddress: identity.NFTAddress,
		Metadata: domain.DDOMetadata{
			Type:             "dataset",
			Name:             draft.NFTName,
			Description:      draft.Description,
			Author:           author,
			License:          license,
			Created:          created,
			Updated:          now,
			Tags:             draft.Tags,
			Links:            links,
			DatatokenAddress: identity.DatatokenAddress,
			State:            domain.MetadataStateActive,
		},
		Services: []domain.DDOService{
			{
				ID:               domain.DownloadServiceID,
				Type:             domain.ServiceTypeAccess,
				Description:      "Download Service",
				Files:            "",
				DatatokenAddress: identity.DatatokenAddress,
				ServiceEndpoint:  c.providerURL,
				Timeout:          0,
			},
		},
	}, nil
}

// FilesObject assembles the plaintext files description for encryption
func (c *Codec) FilesObject(identity domain.AssetIdentity, assetURL string) FilesObject {
	return FilesObject{
		DatatokenAddress: identity.DatatokenAddress,
		NFTAddress:       identity.NFTAddress,
		Files: []FileEntry{
			{
				Type:   "url",
				URL:    assetURL,
				Method: "GET",
			},
		},
	}
}

// Revoke marks a resolved descriptor as revoked. Only the state and the
// updated timestamp change; everything else is carried over so the
// re-published document stays continuous with the original.
func (c *Codec) Revoke(doc *domain.DDO) {
	doc.Metadata.State = domain.MetadataStateRevoked
	doc.Metadata.Updated = c.clock.Now().UTC().Format(time.RFC3339)
}

// MetadataHash computes the 0x-prefixed sha256 of the canonical JSON form
// of the descriptor. Canonicalization keeps the hash stable across field
// ordering, which plain marshaling would not guarantee.
func (c *Codec) MetadataHash(doc *domain.DDO) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ddo: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize ddo: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return "0x" + hex.EncodeToString(sum[:]), nil
}
