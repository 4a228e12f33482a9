package wrpl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func putString(dst []byte, s string) {
	copy(dst, s)
}

// buildRawHeader assembles a header buffer the way the game writes it.
func buildRawHeader(t *testing.T, mutate func(*rawHeader)) []byte {
	t.Helper()
	raw := rawHeader{
		Magic:   DefaultMagic,
		Version: 101286,
	}
	putString(raw.Level[:], "levels/avg_egypt_sinai.bin")
	putString(raw.LevelSettings[:], "gamedata/missions/cta/tanks/sinai_sands/sinai_02_conq1.blk")
	putString(raw.BattleType[:], "sinai_02_Conq1")
	putString(raw.Environment[:], "noon")
	putString(raw.Visibility[:], "thin_clouds")
	putString(raw.LocName[:], "missions/_Conq1;sinai_02/name")
	putString(raw.BattleClass[:], "air_ground_Conq")
	raw.RezOffset = 3662909
	raw.Difficulty = 0xA5
	raw.SessionType = 0
	raw.SessionID = 335055458235795646
	raw.MsetSize = 8062
	raw.StartTime = 1746008224
	raw.TimeLimit = 25
	raw.ScoreLimit = 16000
	if mutate != nil {
		mutate(&raw)
	}
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, &raw); err != nil {
		t.Fatalf("encoding header: %v", err)
	}
	return buf.Bytes()
}

func TestRawHeaderSize(t *testing.T) {
	data := buildRawHeader(t, nil)
	if len(data) != HeaderSize {
		t.Fatalf("raw header layout is %d bytes, want %d", len(data), HeaderSize)
	}
}

func TestParseHeaderRoundTrip(t *testing.T) {
	data := buildRawHeader(t, nil)
	h, diags, err := ParseHeader(data, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if h.Magic != DefaultMagic {
		t.Errorf("magic = % 02x", h.Magic)
	}
	if h.Version != 101286 {
		t.Errorf("version = %d", h.Version)
	}
	if h.Level != "levels/avg_egypt_sinai.bin" {
		t.Errorf("level = %q", h.Level)
	}
	if h.LevelSettings != "gamedata/missions/cta/tanks/sinai_sands/sinai_02_conq1.blk" {
		t.Errorf("level_settings = %q", h.LevelSettings)
	}
	if h.BattleType != "sinai_02_Conq1" {
		t.Errorf("battle_type = %q", h.BattleType)
	}
	if h.Environment != "noon" {
		t.Errorf("environment = %q", h.Environment)
	}
	if h.Visibility != "thin_clouds" {
		t.Errorf("visibility = %q", h.Visibility)
	}
	if h.RezOffset != 3662909 {
		t.Errorf("rez_offset = %d", h.RezOffset)
	}
	if h.SessionID != 335055458235795646 {
		t.Errorf("session_id = %d", h.SessionID)
	}
	if h.MsetSize != 8062 {
		t.Errorf("mset_size = %d", h.MsetSize)
	}
	if h.LocName != "missions/_Conq1;sinai_02/name" {
		t.Errorf("loc_name = %q", h.LocName)
	}
	if h.StartTime != 1746008224 || h.TimeLimit != 25 || h.ScoreLimit != 16000 {
		t.Errorf("times = %d/%d/%d", h.StartTime, h.TimeLimit, h.ScoreLimit)
	}
	if h.BattleClass != "air_ground_Conq" {
		t.Errorf("battle_class = %q", h.BattleClass)
	}
	if h.BattleKillStreak != "" {
		t.Errorf("battle_kill_streak = %q", h.BattleKillStreak)
	}
}

func TestParseHeaderDifficultyNibbles(t *testing.T) {
	data := buildRawHeader(t, func(raw *rawHeader) { raw.Difficulty = 0xA5 })
	h, _, err := ParseHeader(data, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Difficulty.UnknownNibble != 0x0A {
		t.Errorf("unknown nibble = %#x, want 0xa", h.Difficulty.UnknownNibble)
	}
	if h.Difficulty.Value != 0x05 {
		t.Errorf("difficulty value = %#x, want 0x5", h.Difficulty.Value)
	}
}

func TestParseHeaderSimpleScenario(t *testing.T) {
	data := buildRawHeader(t, func(raw *rawHeader) {
		raw.Version = 101
		raw.Level = [128]byte{}
		putString(raw.Level[:], "levels/test")
	})
	h, diags, err := ParseHeader(data, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Version != 101 || h.Level != "levels/test" {
		t.Errorf("got version %d level %q", h.Version, h.Level)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestParseHeaderTooShort(t *testing.T) {
	full := buildRawHeader(t, nil)
	for _, n := range []int{0, 1, 4, 128, HeaderSize - 1} {
		_, _, err := ParseHeader(full[:n], DefaultConfig())
		if !errors.Is(err, ErrHeaderTooShort) {
			t.Errorf("len %d: err = %v, want ErrHeaderTooShort", n, err)
		}
	}
}

func TestParseHeaderBadMagic(t *testing.T) {
	data := buildRawHeader(t, func(raw *rawHeader) { raw.Magic = [4]byte{0xde, 0xad, 0xbe, 0xef} })
	_, _, err := ParseHeader(data, DefaultConfig())
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestParseHeaderNonASCIIPassesThrough(t *testing.T) {
	data := buildRawHeader(t, func(raw *rawHeader) {
		raw.Level = [128]byte{}
		copy(raw.Level[:], []byte{'l', 'e', 0xC3, 0xA9, 'v'})
	})
	h, diags, err := ParseHeader(data, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Level != string([]byte{'l', 'e', 0xC3, 0xA9, 'v'}) {
		t.Errorf("level bytes mangled: %q", h.Level)
	}
	if len(diags) != 1 || diags[0].Stage != StageHeader {
		t.Errorf("want one header diagnostic, got %v", diags)
	}
}
