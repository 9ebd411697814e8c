package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// DDOVersion is the descriptor document version written on publication
	DDOVersion = "4.1.0"

	// DownloadServiceID is the service id of the single access service
	// attached to every published asset
	DownloadServiceID = "downloadService"

	// ServiceTypeAccess marks a service that grants download access
	ServiceTypeAccess = "access"
)

// Metadata state values carried in the DDO and in setMetaData transactions.
// Transitions are one-directional: an asset leaves StateActive and never
// returns.
const (
	MetadataStateActive  uint8 = 0
	MetadataStateRevoked uint8 = 3
)
