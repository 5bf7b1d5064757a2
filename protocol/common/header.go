package common

// Header represents the common header structure for all message types
type Header struct {
	HeaderLength uint16
	TotalLength  int32
	MsgTypeID    int
}

// MessageType constants
const (
	CatalogPublishedType = 1
)

// Common header sizes
const (
	HeaderLengthSize = 2
	TotalLengthSize  = 4
	MsgTypeIDSize    = 1
)

// HeaderSize is the length of the common header prefix of every message
const HeaderSize = HeaderLengthSize + TotalLengthSize + MsgTypeIDSize
