package signals

// Size constants used across signal types
const (
	FileIndexSize    = 2
	TotalFilesSize   = 2
	EntryCountSize   = 4
	StringLengthSize = 2
)
