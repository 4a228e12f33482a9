package wrpl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrHeaderTooShort = errors.New("replay header too short")
	ErrBadMagic       = errors.New("wrong replay magic")
)

// DefaultMagic is the identifier at the start of every known .wrpl file.
var DefaultMagic = [4]byte{0xe5, 0xac, 0x00, 0x10}

// HeaderSize is the fixed byte length of the replay header.
const HeaderSize = 1224

// rawHeader is the on-disk header layout, little-endian, offsets fixed.
// The padding runs are format invariants: their widths must not change.
type rawHeader struct {
	Magic            [4]byte
	Version          uint32
	Level            [128]byte
	LevelSettings    [260]byte
	BattleType       [128]byte
	Environment      [128]byte
	Visibility       [32]byte
	RezOffset        uint32
	Difficulty       byte
	Pad0             [35]byte
	SessionType      uint32
	Pad1             [4]byte
	SessionID        uint64
	Pad2             [4]byte
	MsetSize         uint32
	Pad3             [32]byte
	LocName          [128]byte
	StartTime        uint32
	TimeLimit        uint32
	ScoreLimit       uint32
	Pad4             [48]byte
	BattleClass      [128]byte
	BattleKillStreak [128]byte
}

// Difficulty is the 1-byte difficulty field split by bit position.
// Unrecognized codes are preserved verbatim.
type Difficulty struct {
	UnknownNibble uint8 // bits 4-7
	Value         uint8 // bits 0-3
}

func difficultyFromByte(b byte) Difficulty {
	return Difficulty{
		UnknownNibble: (b >> 4) & 0x0F,
		Value:         b & 0x0F,
	}
}

// ReplayHeader is the decoded fixed header of one replay file.
// Constructed once per input, immutable afterwards.
type ReplayHeader struct {
	Magic            [4]byte
	Version          uint32
	Level            string
	LevelSettings    string
	BattleType       string
	Environment      string
	Visibility       string
	RezOffset        uint32
	Difficulty       Difficulty
	SessionType      uint32
	SessionID        uint64
	MsetSize         uint32
	LocName          string
	StartTime        uint32
	TimeLimit        uint32
	ScoreLimit       uint32
	BattleClass      string
	BattleKillStreak string
}

// ParseHeader decodes the fixed header from the start of data. Text fields
// are cut at the first NUL; non-ASCII bytes inside them do not fail the
// decode, they are passed through raw and reported as a diagnostic.
func ParseHeader(data []byte, cfg Config) (*ReplayHeader, []Diagnostic, error) {
	if len(data) < HeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, want %d", ErrHeaderTooShort, len(data), HeaderSize)
	}
	raw := rawHeader{}
	err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding header: %w", err)
	}
	if !bytes.Equal(raw.Magic[:], cfg.Magic[:]) {
		return nil, nil, fmt.Errorf("%w (got % 02x)", ErrBadMagic, raw.Magic)
	}

	h := &ReplayHeader{
		Magic:       raw.Magic,
		Version:     raw.Version,
		RezOffset:   raw.RezOffset,
		Difficulty:  difficultyFromByte(raw.Difficulty),
		SessionType: raw.SessionType,
		SessionID:   raw.SessionID,
		MsetSize:    raw.MsetSize,
		StartTime:   raw.StartTime,
		TimeLimit:   raw.TimeLimit,
		ScoreLimit:  raw.ScoreLimit,
	}

	var diags []Diagnostic
	text := func(name string, b []byte) string {
		s := cutNul(b)
		if !isASCII(s) {
			diags = append(diags, Diagnostic{
				Stage:   StageHeader,
				Message: fmt.Sprintf("non-ascii bytes in header field %s", name),
			})
		}
		return s
	}
	h.Level = text("level", raw.Level[:])
	h.LevelSettings = text("level_settings", raw.LevelSettings[:])
	h.BattleType = text("battle_type", raw.BattleType[:])
	h.Environment = text("environment", raw.Environment[:])
	h.Visibility = text("visibility", raw.Visibility[:])
	h.LocName = text("loc_name", raw.LocName[:])
	h.BattleClass = text("battle_class", raw.BattleClass[:])
	h.BattleKillStreak = text("battle_kill_streak", raw.BattleKillStreak[:])

	return h, diags, nil
}

func cutNul(b []byte) string {
	s, _, _ := bytes.Cut(b, []byte{0})
	return string(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}
