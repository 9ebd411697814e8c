package ddo_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereus-labs/datanft-gateway/internal/ddo"
	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/mocks"
)

const (
	testChainID     = uint64(11155111)
	testProviderURL = "https://provider.example.com"
	testNFTAddress  = "0x1234567890AbcdEF1234567890aBcdef12345678"
	testTokenAddr   = "0x0000000000000000000000000000000000000Abc"
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

func newTestCodec(t *testing.T) *ddo.Codec {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)).AnyTimes()

	return ddo.NewCodec(testChainID, testProviderURL, clock)
}

func validDraft() domain.MetadataDraft {
	return domain.MetadataDraft{
		NFTName:         "Climate Dataset",
		NFTSymbol:       "CLIM",
		DatatokenName:   "Climate Access Token",
		DatatokenSymbol: "CLIMAT",
		Description:     "Hourly temperature readings",
		Author:          "Acme Research",
		License:         "CC-BY-4.0",
		Tags:            []string{"climate", "temperature"},
		AssetURL:        "https://data.example.com/readings.csv",
	}
}

func testIdentity() domain.AssetIdentity {
	return domain.AssetIdentity{
		NFTAddress:       testNFTAddress,
		DatatokenAddress: testTokenAddr,
		ChainID:          testChainID,
	}
}

func TestValidateDraft_MissingFields(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name   string
		mutate func(*domain.MetadataDraft)
	}{
		{"missing nft name", func(d *domain.MetadataDraft) { d.NFTName = "" }},
		{"missing nft symbol", func(d *domain.MetadataDraft) { d.NFTSymbol = "" }},
		{"missing datatoken name", func(d *domain.MetadataDraft) { d.DatatokenName = "" }},
		{"missing datatoken symbol", func(d *domain.MetadataDraft) { d.DatatokenSymbol = "" }},
		{"missing description", func(d *domain.MetadataDraft) { d.Description = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)

			err := codec.ValidateDraft(draft)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestValidateDraft_Valid(t *testing.T) {
	codec := newTestCodec(t)

	assert.NoError(t, codec.ValidateDraft(validDraft()))
}

func TestBuild_Document(t *testing.T) {
	codec := newTestCodec(t)

	doc, err := codec.Build(testIdentity(), validDraft())
	require.NoError(t, err)

	assert.Equal(t, domain.NewDID(testNFTAddress, testChainID), doc.ID)
	assert.Equal(t, domain.DDOVersion, doc.Version)
	assert.Equal(t, testChainID, doc.ChainID)
	assert.Equal(t, testNFTAddress, doc.NFTAddress)
	assert.Equal(t, domain.MetadataStateActive, doc.Metadata.State)
	assert.Equal(t, "2026-03-15T12:00:00Z", doc.Metadata.Updated)

	require.Len(t, doc.Services, 1)
	service := doc.Services[0]
	assert.Equal(t, domain.DownloadServiceID, service.ID)
	assert.Equal(t, domain.ServiceTypeAccess, service.Type)
	assert.Equal(t, testTokenAddr, service.DatatokenAddress)
	assert.Equal(t, testProviderURL, service.ServiceEndpoint)
	assert.Equal(t, uint64(0), service.Timeout)
}

func TestBuild_DefaultsAuthorAndLicense(t *testing.T) {
	codec := newTestCodec(t)

	draft := validDraft()
	draft.Author = ""
	draft.License = ""

	doc, err := codec.Build(testIdentity(), draft)
	require.NoError(t, err)

	assert.Equal(t, "Unknown Author", doc.Metadata.Author)
	assert.Equal(t, "No license", doc.Metadata.License)
}

func TestBuild_MissingAddresses(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Build(domain.AssetIdentity{}, validDraft())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRevoke_FlipsStateOnly(t *testing.T) {
	codec := newTestCodec(t)

	doc, err := codec.Build(testIdentity(), validDraft())
	require.NoError(t, err)
	originalName := doc.Metadata.Name

	codec.Revoke(doc)

	assert.Equal(t, domain.MetadataStateRevoked, doc.Metadata.State)
	assert.Equal(t, originalName, doc.Metadata.Name)
	assert.Equal(t, domain.NewDID(testNFTAddress, testChainID), doc.ID)
}

func TestMetadataHash_StableAndPrefixed(t *testing.T) {
	codec := newTestCodec(t)

	doc, err := codec.Build(testIdentity(), validDraft())
	require.NoError(t, err)

	hash1, err := codec.MetadataHash(doc)
	require.NoError(t, err)
	hash2, err := codec.MetadataHash(doc)
	require.NoError(t, err)

	assert.Equal(t, hash1, hash2)
	assert.True(t, strings.HasPrefix(hash1, "0x"))
	assert.Len(t, hash1, 2+64)
}

func TestMetadataHash_ChangesWithContent(t *testing.T) {
	codec := newTestCodec(t)

	doc, err := codec.Build(testIdentity(), validDraft())
	require.NoError(t, err)

	hashActive, err := codec.MetadataHash(doc)
	require.NoError(t, err)

	codec.Revoke(doc)
	hashRevoked, err := codec.MetadataHash(doc)
	require.NoError(t, err)

	assert.NotEqual(t, hashActive, hashRevoked)
}

func TestFilesObject(t *testing.T) {
	codec := newTestCodec(t)

	files := codec.FilesObject(testIdentity(), "https://data.example.com/readings.csv")

	assert.Equal(t, testTokenAddr, files.DatatokenAddress)
	assert.Equal(t, testNFTAddress, files.NFTAddress)
	require.Len(t, files.Files, 1)
	assert.Equal(t, "url", files.Files[0].Type)
	assert.Equal(t, "GET", files.Files[0].Method)
}
