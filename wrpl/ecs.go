package wrpl

import (
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"wrpl-decode/danet"
)

// Second-stage decoding of ECS network records (entity creation
// messages). Like MPI, these stay Unknown in the record stream; this
// recovers entity ids and payload blocks from the raw span.

// ECS control bytes, from the Dagor network layer.
const (
	ecsEntityCreation           = 0x24
	ecsEntityCreationCompressed = 0x25
)

var ErrNotECSRecord = errors.New("record does not carry an ECS payload")

// ECSMessage is one entity creation message: the entity id and its
// still-opaque component block.
type ECSMessage struct {
	EID  uint64
	Data []byte
}

// ParsedECS is the recognized content of one ECS record.
type ParsedECS struct {
	Control        byte
	WasCompressed  bool
	DecompressSize int
	Messages       []*ECSMessage
}

// ParseECS inspects an Unknown record with the ECS tag. Control bytes
// other than entity creation return (nil, nil).
func ParseECS(rec *Record) (*ParsedECS, error) {
	if rec.Tag != PacketTypeECS {
		return nil, ErrNotECSRecord
	}
	if len(rec.Raw) == 0 {
		return nil, nil
	}
	parsed := &ParsedECS{Control: rec.Raw[0]}
	payload := rec.Raw[1:]

	if parsed.Control == ecsEntityCreationCompressed {
		decomp := make([]byte, len(payload)*8)
		n, err := lz4.UncompressBlock(payload, decomp)
		if err != nil {
			return parsed, fmt.Errorf("decompressing ecs block: %w", err)
		}
		parsed.WasCompressed = true
		parsed.DecompressSize = n
		parsed.Control = ecsEntityCreation
		payload = decomp[:n]
	}
	if parsed.Control != ecsEntityCreation {
		return nil, nil
	}

	r := danet.NewBitReader(payload)
	count, err := r.ReadByte()
	if err != nil {
		return parsed, err
	}
	for i := 0; i < int(count)+1; i++ {
		msg, err := parseECSConstructMessage(r)
		if err != nil {
			return parsed, fmt.Errorf("reading ecs construct message: %w", err)
		}
		parsed.Messages = append(parsed.Messages, msg)
	}
	return parsed, nil
}

func parseECSConstructMessage(r *danet.BitReader) (*ECSMessage, error) {
	ret := &ECSMessage{}
	var err error
	ret.EID, err = r.ReadCompressed()
	if err != nil {
		return ret, fmt.Errorf("reading eid: %w", err)
	}
	blockSize, err := r.ReadCompressed()
	if err != nil {
		return ret, fmt.Errorf("reading block size: %w", err)
	}
	block := make([]byte, blockSize)
	if _, err := io.ReadFull(r, block); err != nil {
		return ret, fmt.Errorf("reading block (size %d): %w", blockSize, err)
	}
	ret.Data = block
	return ret, nil
}
