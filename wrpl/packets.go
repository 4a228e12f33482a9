/*
	wrpl: War Thunder replay parsing library (golang)
	Copyright (C) 2025 flexcoral

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package wrpl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// minRecordHeaderLen is one size prefix byte, the type byte and a full
// timestamp. A tail shorter than this cannot start a record.
const minRecordHeaderLen = 6

// recordHandler decodes one payload into rec. A returned error is never
// fatal: the parser downgrades the record to RecordUnknown and moves on.
type recordHandler func(p *RecordParser, rec *Record, payload []byte) error

// RecordParser walks a decompressed body as a lazy sequence of records.
// It is finite and not restartable; Next consumes the buffer position.
// A corrupt or not-yet-understood record never stops the walk: the
// affected span degrades to an Unknown record and parsing continues at
// the next size boundary.
type RecordParser struct {
	body     *DecodedBody
	version  uint32
	r        *bytes.Reader
	time     uint32
	handlers map[PacketType]recordHandler
	diags    []Diagnostic
	done     bool
}

// NewRecordParser prepares a walk over body. version selects
// format-variant behavior in the record handlers (chat framing).
func NewRecordParser(body *DecodedBody, version uint32) *RecordParser {
	return &RecordParser{
		body:    body,
		version: version,
		r:       bytes.NewReader(body.Data),
		handlers: map[PacketType]recordHandler{
			PacketTypeChat:        parseRecordChat,
			PacketTypeEndMarker:   parseRecordMarker,
			PacketTypeStartMarker: parseRecordMarker,
			PacketTypeNextSegment: parseRecordMarker,
		},
	}
}

func (p *RecordParser) pos() int {
	return int(p.r.Size()) - p.r.Len()
}

// Diagnostics returns the anomalies recovered so far.
func (p *RecordParser) Diagnostics() []Diagnostic {
	return p.diags
}

func (p *RecordParser) diag(off int, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Stage:   StageRecords,
		Offset:  off,
		Message: fmt.Sprintf(format, args...),
	})
}

// tail wraps everything from start to the end of the buffer into a final
// truncated Unknown record and ends the walk.
func (p *RecordParser) tail(start int, reason string) *Record {
	p.done = true
	raw := p.body.Data[start:]
	p.r.Seek(0, io.SeekEnd)
	p.diag(start, "truncated tail (%d bytes): %s", len(raw), reason)
	return &Record{
		Kind:      RecordUnknown,
		Offset:    start,
		Size:      len(raw),
		Time:      p.time,
		Raw:       raw,
		Truncated: true,
	}
}

// Next returns the next record, or false when the body is exhausted.
func (p *RecordParser) Next() (*Record, bool) {
	if p.done || p.r.Len() == 0 {
		p.done = true
		return nil, false
	}
	start := p.pos()
	if p.r.Len() < minRecordHeaderLen {
		return p.tail(start, "fewer bytes than a minimal record header"), true
	}

	size, _, err := readVariableLengthSize(p.r)
	if err != nil {
		return p.tail(start, fmt.Sprintf("bad size prefix: %v", err)), true
	}
	if size == 0 {
		// the prefix byte still has to be owned by some record
		return &Record{Kind: RecordUnknown, Offset: start, Size: p.pos() - start, Time: p.time}, true
	}
	if int(size) > p.r.Len() {
		return p.tail(start, fmt.Sprintf("declared packet size %d exceeds remaining %d bytes", size, p.r.Len())), true
	}

	packet := make([]byte, size)
	io.ReadFull(p.r, packet)

	tag, payload := p.readPacketHeader(start, packet)
	rec := &Record{
		Kind:   RecordUnknown,
		Tag:    tag,
		Offset: start,
		Size:   p.pos() - start,
		Time:   p.time,
		Raw:    payload,
	}
	handler, ok := p.handlers[tag]
	if !ok {
		return rec, true
	}
	if err := handler(p, rec, payload); err != nil {
		log.Debug().Int("offset", start).Stringer("tag", tag).Err(err).Msg("record handler failed, keeping raw span")
		p.diag(start, "%v record at %#x kept raw: %v", tag, start, err)
		rec.Kind = RecordUnknown
		rec.Chat = nil
		rec.Marker = nil
	}
	return rec, true
}

// readPacketHeader splits one packet into tag and payload. Bit 0x10 of
// the first byte means the timestamp did not change; otherwise 4 bytes
// of little-endian milliseconds follow the type byte.
func (p *RecordParser) readPacketHeader(start int, packet []byte) (PacketType, []byte) {
	first := packet[0]
	if first&0x10 != 0 {
		return PacketType(first ^ 0x10), packet[1:]
	}
	if len(packet) < 5 {
		p.diag(start, "packet too short for a timestamp, keeping previous one")
		return PacketType(first), packet[1:]
	}
	p.time = binary.LittleEndian.Uint32(packet[1:5])
	return PacketType(first), packet[5:]
}

func parseRecordMarker(p *RecordParser, rec *Record, payload []byte) error {
	rec.Kind = RecordSessionMarker
	rec.Marker = &SessionMarker{Marker: rec.Tag}
	return nil
}

// WriteRecords re-encodes records into the packet stream format read by
// RecordParser, deduplicating timestamps the way the game client does.
func WriteRecords(w io.Writer, records []*Record) error {
	currentTime := int64(-1)
	for _, rec := range records {
		tag := byte(rec.Tag)
		size := uint32(len(rec.Raw)) + 1
		withTimestamp := currentTime != int64(rec.Time)
		if withTimestamp {
			size += 4
		} else {
			tag |= 0x10
		}
		if err := writeVariableLengthSize(w, size); err != nil {
			return err
		}
		if _, err := w.Write([]byte{tag}); err != nil {
			return err
		}
		if withTimestamp {
			if err := binary.Write(w, binary.LittleEndian, rec.Time); err != nil {
				return err
			}
		}
		if _, err := w.Write(rec.Raw); err != nil {
			return err
		}
		currentTime = int64(rec.Time)
	}
	return nil
}
