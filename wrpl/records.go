package wrpl

// RecordKind discriminates the decoded variants of a Record.
type RecordKind byte

const (
	// RecordUnknown carries a raw byte span for tags without a handler,
	// for payloads a handler rejected, and for the truncated tail.
	RecordUnknown RecordKind = iota
	RecordChat
	RecordSessionMarker
)

// Record is one tagged, variable-length unit of the decompressed body.
// Offset and Size describe the full span the record owns, size prefix
// included; spans of consecutive records are contiguous and cover the
// whole body.
type Record struct {
	Kind      RecordKind
	Tag       PacketType
	Offset    int    // byte offset of the record's size prefix within the body
	Size      int    // total bytes owned, size prefix and packet header included
	Time      uint32 // milliseconds since replay start
	Chat      *ChatMessage
	Marker    *SessionMarker
	Raw       []byte // payload bytes (after the packet header)
	Truncated bool
}

// ChatMessage is a decoded chat record payload.
type ChatMessage struct {
	Time        uint32
	Sender      string
	Message     string
	ChannelType byte
	IsEnemy     byte
}

// SessionMarker is a start/end/next-segment meta record.
type SessionMarker struct {
	Marker PacketType
}

// Diagnostic is a non-fatal note about a recovered anomaly.
type Diagnostic struct {
	Stage   string
	Offset  int // byte offset the note refers to, -1 when not applicable
	Message string
}

const (
	StageHeader     = "header"
	StageOffsetScan = "offset-scan"
	StageDecompress = "decompress"
	StageRecords    = "records"
)
