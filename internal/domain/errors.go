package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a required field or address is
	// missing or malformed. Fails fast, no side effect.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransactionWouldFail is returned when gas estimation reverts.
	// The payload must not be handed out for signing.
	ErrTransactionWouldFail = errors.New("transaction would fail")

	// ErrExternalService is returned when the index, provider or RPC is
	// unreachable or errors. The upstream body is attached by wrapping.
	ErrExternalService = errors.New("external service failure")

	// ErrDDOValidationFailed is returned when the metadata index rejects
	// a descriptor. Publication halts before any metadata transaction.
	ErrDDOValidationFailed = errors.New("ddo validation failed")

	// ErrAssetNotFound is returned when no descriptor resolves for a DID.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrNoAccessService is returned when a resolved descriptor carries
	// no access-type service.
	ErrNoAccessService = errors.New("no access service")
)

// Stage identifies where in a multi-step flow a failure occurred, so the
// caller can resume from that exact stage without redoing signed steps.
type Stage string

const (
	StageDraft             Stage = "Draft"
	StageMetadataReady     Stage = "MetadataReady"
	StageCreateTxBuilt     Stage = "CreateTxBuilt"
	StageCreated           Stage = "Created"
	StageMetadataEncrypted Stage = "MetadataEncrypted"
	StageMetadataTxBuilt   Stage = "MetadataTxBuilt"
	StagePublished         Stage = "Published"
)

// StageError wraps a failure with the publication or consumption stage at
// which it occurred.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with its failing stage.
func NewStageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
