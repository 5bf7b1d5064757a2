package signals

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/altsource-combiner/protocol/common"
)

// CatalogPublished announces that one catalog file (combined or chunk) was written
type CatalogPublished struct {
	Header     common.Header
	FileIndex  int // 0 for the combined catalog, n for chunk_n.json
	TotalFiles int
	EntryCount int
	FileName   string
	Identifier string
}

// NewCatalogPublished creates a new CatalogPublished signal
func NewCatalogPublished(fileIndex, totalFiles, entryCount int, fileName, identifier string) *CatalogPublished {
	return &CatalogPublished{
		Header: common.Header{
			HeaderLength: 0,
			TotalLength:  0,
			MsgTypeID:    common.CatalogPublishedType,
		},
		FileIndex:  fileIndex,
		TotalFiles: totalFiles,
		EntryCount: entryCount,
		FileName:   fileName,
		Identifier: identifier,
	}
}

// SerializeCatalogPublished serializes a CatalogPublished to bytes
func SerializeCatalogPublished(msg *CatalogPublished) ([]byte, error) {
	if msg.FileIndex < 0 || msg.FileIndex > math.MaxUint16 {
		return nil, fmt.Errorf("file_index out of range: %d", msg.FileIndex)
	}
	if msg.TotalFiles < 0 || msg.TotalFiles > math.MaxUint16 {
		return nil, fmt.Errorf("total_files out of range: %d", msg.TotalFiles)
	}
	if msg.EntryCount < 0 || int64(msg.EntryCount) > math.MaxUint32 {
		return nil, fmt.Errorf("entry_count out of range: %d", msg.EntryCount)
	}
	if len(msg.FileName) > math.MaxUint16 {
		return nil, fmt.Errorf("file_name too long: %d bytes, max %d", len(msg.FileName), math.MaxUint16)
	}
	if len(msg.Identifier) > math.MaxUint16 {
		return nil, fmt.Errorf("identifier too long: %d bytes, max %d", len(msg.Identifier), math.MaxUint16)
	}

	headerLength := common.HeaderSize + FileIndexSize + TotalFilesSize + EntryCountSize
	totalLength := headerLength + StringLengthSize + len(msg.FileName) + StringLengthSize + len(msg.Identifier)

	buf := make([]byte, totalLength)
	offset := 0

	// Header
	binary.BigEndian.PutUint16(buf[offset:], uint16(headerLength))
	offset += common.HeaderLengthSize

	binary.BigEndian.PutUint32(buf[offset:], uint32(totalLength))
	offset += common.TotalLengthSize

	buf[offset] = byte(msg.Header.MsgTypeID)
	offset += common.MsgTypeIDSize

	binary.BigEndian.PutUint16(buf[offset:], uint16(msg.FileIndex))
	offset += FileIndexSize

	binary.BigEndian.PutUint16(buf[offset:], uint16(msg.TotalFiles))
	offset += TotalFilesSize

	binary.BigEndian.PutUint32(buf[offset:], uint32(msg.EntryCount))
	offset += EntryCountSize

	offset = putString(buf, offset, msg.FileName)
	putString(buf, offset, msg.Identifier)

	return buf, nil
}

// DeserializeCatalogPublished deserializes bytes to a CatalogPublished
func DeserializeCatalogPublished(data []byte) (*CatalogPublished, error) {
	minLength := common.HeaderSize + FileIndexSize + TotalFilesSize + EntryCountSize + 2*StringLengthSize
	if len(data) < minLength {
		return nil, fmt.Errorf("data too short for CatalogPublished: %d bytes", len(data))
	}

	offset := 0

	headerLength := binary.BigEndian.Uint16(data[offset:])
	offset += common.HeaderLengthSize

	totalLength := binary.BigEndian.Uint32(data[offset:])
	offset += common.TotalLengthSize

	msgTypeID := int(data[offset])
	offset += common.MsgTypeIDSize

	if msgTypeID != common.CatalogPublishedType {
		return nil, fmt.Errorf("invalid message type for CatalogPublished: %d", msgTypeID)
	}
	if int(totalLength) != len(data) {
		return nil, fmt.Errorf("total length mismatch: header says %d, got %d bytes", totalLength, len(data))
	}

	fileIndex := int(binary.BigEndian.Uint16(data[offset:]))
	offset += FileIndexSize

	totalFiles := int(binary.BigEndian.Uint16(data[offset:]))
	offset += TotalFilesSize

	entryCount := int(binary.BigEndian.Uint32(data[offset:]))
	offset += EntryCountSize

	fileName, offset, err := readString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read file_name: %w", err)
	}
	identifier, _, err := readString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read identifier: %w", err)
	}

	return &CatalogPublished{
		Header: common.Header{
			HeaderLength: headerLength,
			TotalLength:  int32(totalLength),
			MsgTypeID:    msgTypeID,
		},
		FileIndex:  fileIndex,
		TotalFiles: totalFiles,
		EntryCount: entryCount,
		FileName:   fileName,
		Identifier: identifier,
	}, nil
}

func putString(buf []byte, offset int, s string) int {
	binary.BigEndian.PutUint16(buf[offset:], uint16(len(s)))
	offset += StringLengthSize
	copy(buf[offset:], s)
	return offset + len(s)
}

func readString(data []byte, offset int) (string, int, error) {
	if offset+StringLengthSize > len(data) {
		return "", offset, fmt.Errorf("missing length prefix at offset %d", offset)
	}
	n := int(binary.BigEndian.Uint16(data[offset:]))
	offset += StringLengthSize
	if offset+n > len(data) {
		return "", offset, fmt.Errorf("string of %d bytes overruns message at offset %d", n, offset)
	}
	return string(data[offset : offset+n]), offset + n, nil
}
