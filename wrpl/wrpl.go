package wrpl

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Config carries the knobs every component is pure over. Zero values
// are replaced by DefaultConfig's.
type Config struct {
	Magic         [4]byte // expected header magic
	MaxScanWindow int     // bytes searched past the header for a body candidate
	MaxCandidates int     // bounded retry over scanner candidates
}

// DefaultConfig returns the limits used for real replay files.
func DefaultConfig() Config {
	return Config{
		Magic:         DefaultMagic,
		MaxScanWindow: 1 << 20,
		MaxCandidates: 8,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.Magic == ([4]byte{}) {
		cfg.Magic = def.Magic
	}
	if cfg.MaxScanWindow == 0 {
		cfg.MaxScanWindow = def.MaxScanWindow
	}
	if cfg.MaxCandidates == 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	return cfg
}

// DecodeResult is the sole output of one decode: the header, every
// record of the body in order, and the non-fatal anomalies recovered
// along the way. Produced once, immutable.
type DecodeResult struct {
	Header      *ReplayHeader
	Records     []*Record
	Diagnostics []Diagnostic
}

// Chat returns the decoded chat messages in stream order.
func (res *DecodeResult) Chat() []*ChatMessage {
	var ret []*ChatMessage
	for _, rec := range res.Records {
		if rec.Kind == RecordChat {
			ret = append(ret, rec.Chat)
		}
	}
	return ret
}

// UnknownCounts tallies unknown records per tag.
func (res *DecodeResult) UnknownCounts() map[PacketType]int {
	ret := map[PacketType]int{}
	for _, rec := range res.Records {
		if rec.Kind == RecordUnknown {
			ret[rec.Tag]++
		}
	}
	return ret
}

// Decode runs the whole pipeline over one replay file's contents:
// header, body offset scan, decompression, record walk. A bad header is
// the only fatal failure; a body that cannot be located or opened still
// yields the header plus a diagnostic, and per-record failures surface
// as Unknown records.
func Decode(data []byte, cfg Config) (*DecodeResult, error) {
	cfg = cfg.withDefaults()

	header, diags, err := ParseHeader(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	res := &DecodeResult{Header: header, Diagnostics: diags}

	body, bdiags, err := DecodeBody(data, header, cfg)
	res.Diagnostics = append(res.Diagnostics, bdiags...)
	if err != nil {
		log.Warn().Err(err).Msg("replay body not decoded")
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Stage:   StageDecompress,
			Offset:  -1,
			Message: fmt.Sprintf("body not decoded: %v", err),
		})
		return res, nil
	}

	parser := NewRecordParser(body, header.Version)
	for {
		rec, ok := parser.Next()
		if !ok {
			break
		}
		res.Records = append(res.Records, rec)
	}
	res.Diagnostics = append(res.Diagnostics, parser.Diagnostics()...)

	if unknown := res.UnknownCounts(); len(unknown) > 0 {
		total := 0
		for _, n := range unknown {
			total += n
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Stage:   StageRecords,
			Offset:  -1,
			Message: fmt.Sprintf("%d unknown records across %d tags", total, len(unknown)),
		})
	}
	return res, nil
}
