package scan

// Magic values identifying the kind of each ZIP record, as read little-endian from the first bytes of the record.
const (
	// PK is the 2-byte prefix shared by every signature, used to pre-filter candidate offsets during scans.
	PK uint16 = 0x4B50

	LocalFileHeaderSignature       uint32 = 0x04034B50
	CentralDirectorySignature      uint32 = 0x02014B50
	EndOfCentralDirectorySignature uint32 = 0x06054B50
	DataDescriptorSignature        uint32 = 0x08074B50
)

// Sizes of the fixed part of each record.
const (
	LocalFileHeaderLen        = 30
	CentralDirectoryHeaderLen = 46
	EndOfCentralDirectoryLen  = 22

	// MaxCommentLength is the largest archive comment the EOCD can declare.
	MaxCommentLength = 65535
)

// FlagDataDescriptor is the general purpose bit flag indicating that CRC-32 and sizes of the local file header are
// zero and are instead stored in a data descriptor following the payload.
const FlagDataDescriptor uint16 = 1 << 3
