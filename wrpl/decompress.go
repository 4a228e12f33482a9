package wrpl

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotACompressedStream = errors.New("no zlib stream at offset")
	ErrNoValidBodyFound     = errors.New("no candidate offset decompressed to a body")
)

// DecodedBody is the decompressed event stream of one replay. Truncated
// is set when decompression stopped early; Data then holds everything
// decoded up to the failure point.
type DecodedBody struct {
	Data             []byte
	Truncated        bool
	CompressedOffset int // offset of the stream within the original file
}

// DecompressBody inflates the zlib stream starting at offset. A decode
// error mid-stream degrades to a truncated body instead of discarding
// partial progress; only a stream that cannot be opened at all fails,
// with ErrNotACompressedStream. When one stream ends cleanly and the
// bytes right behind it carry another zlib signature, decompression
// continues into the next stream.
func DecompressBody(data []byte, offset int) (*DecodedBody, []Diagnostic, error) {
	if offset < 0 || offset >= len(data) {
		return nil, nil, fmt.Errorf("%w: offset %#x out of range", ErrNotACompressedStream, offset)
	}
	body := &DecodedBody{CompressedOffset: offset}
	var diags []Diagnostic

	cr := bytes.NewReader(data[offset:])
	out := &bytes.Buffer{}
	for stream := 0; ; stream++ {
		zr, err := zlib.NewReader(cr)
		if err != nil {
			if stream == 0 {
				return nil, nil, fmt.Errorf("%w: %v", ErrNotACompressedStream, err)
			}
			break
		}
		_, err = io.Copy(out, zr)
		zr.Close()
		if err != nil {
			if stream == 0 && out.Len() == 0 {
				return nil, nil, fmt.Errorf("%w: %v", ErrNotACompressedStream, err)
			}
			consumed := int(cr.Size()) - cr.Len()
			body.Truncated = true
			diags = append(diags, Diagnostic{
				Stage:   StageDecompress,
				Offset:  offset + consumed,
				Message: fmt.Sprintf("zlib stream %d truncated after %d decompressed bytes: %v", stream, out.Len(), err),
			})
			log.Debug().Int("stream", stream).Int("decompressed", out.Len()).Err(err).Msg("body decompression truncated")
			break
		}
		// bytes.Reader implements io.ByteReader, so flate consumes the
		// stream exactly and cr now sits right behind it.
		rest := int(cr.Size()) - cr.Len()
		if !signatureAt(data[offset:], rest) {
			if cr.Len() > 0 {
				diags = append(diags, Diagnostic{
					Stage:   StageDecompress,
					Offset:  offset + rest,
					Message: fmt.Sprintf("%d trailing bytes after compressed body", cr.Len()),
				})
			}
			break
		}
	}
	body.Data = out.Bytes()
	return body, diags, nil
}

// DecodeBody locates and decompresses the event body, retrying over the
// offset scanner's candidates. The retry is bounded by
// Config.MaxCandidates; if no candidate opens as a zlib stream the
// result is ErrNoValidBodyFound, and ErrNoCandidateFound when the scan
// window holds no candidates at all.
func DecodeBody(data []byte, h *ReplayHeader, cfg Config) (*DecodedBody, []Diagnostic, error) {
	scanner := NewOffsetScanner(data, h, cfg)
	var diags []Diagnostic
	tried := 0
	for tried < cfg.MaxCandidates {
		off, ok := scanner.Next()
		if !ok {
			break
		}
		tried++
		body, ddiags, err := DecompressBody(data, off)
		if err != nil {
			log.Debug().Int("offset", off).Err(err).Msg("body candidate rejected")
			diags = append(diags, Diagnostic{
				Stage:   StageOffsetScan,
				Offset:  off,
				Message: fmt.Sprintf("candidate rejected: %v", err),
			})
			continue
		}
		if tried > 1 {
			diags = append(diags, Diagnostic{
				Stage:   StageOffsetScan,
				Offset:  off,
				Message: fmt.Sprintf("body found on candidate %d of the scan", tried),
			})
		}
		return body, append(diags, ddiags...), nil
	}
	if tried == 0 {
		return nil, diags, ErrNoCandidateFound
	}
	return nil, diags, fmt.Errorf("%w: tried %d candidates", ErrNoValidBodyFound, tried)
}
