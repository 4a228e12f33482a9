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
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Second-stage decoding of MPI records. The stream parser leaves MPI
// spans as Unknown records; these decoders recover what has been
// reverse-engineered so far from the raw bytes and leave the rest
// alone. Framing here is observed, not documented, so everything is
// keyed on payload signatures.

var ErrNotMPIRecord = errors.New("record does not carry an MPI payload")

// ParsedMPI is the recognized content of one MPI record; exactly one of
// the pointer fields is set, all nil means the signature is not yet
// understood.
type ParsedMPI struct {
	Name  string
	Kill  *KillEvent
	Award *AwardEvent
	Blob  []byte // decompressed slot-message blob
}

// KillEvent is a kill screen message (has the killer's vehicle name).
type KillEvent struct {
	Time          uint32
	DamageType    byte
	KillerID      byte
	KillerVehicle string
}

// AwardEvent is an in-battle award notification.
type AwardEvent struct {
	Time      uint32
	AwardType byte
	Player    byte
	AwardName string
}

// ParseMPI inspects an Unknown record with the MPI tag. Records whose
// signature is not recognized return (nil, nil).
func ParseMPI(rec *Record) (*ParsedMPI, error) {
	if rec.Tag != PacketTypeMPI {
		return nil, ErrNotMPIRecord
	}
	if len(rec.Raw) < 4 {
		return nil, nil
	}
	r := bytes.NewReader(rec.Raw)

	signature := [4]byte{}
	if _, err := io.ReadFull(r, signature[:]); err != nil {
		return nil, err
	}

	switch {
	case bytes.Equal(signature[:], []byte{0x02, 0x58, 0x58, 0xf0}):
		return parseMPIKill(rec, r)
	case bytes.Equal(signature[:], []byte{0x02, 0x58, 0x78, 0xf0}):
		return parseMPIAward(rec, r)
	case bytes.Equal(signature[:], []byte{0x02, 0x58, 0xaa, 0xff}):
		fallthrough
	case bytes.Equal(signature[:], []byte{0x02, 0x58, 0x2d, 0xf0}): // zstd blobs (header 28b52ffd)
		return parseMPIBlob(rec, r)
	default:
		return nil, nil
	}
}

func parseMPIKill(rec *Record, r *bytes.Reader) (*ParsedMPI, error) {
	kill := &KillEvent{Time: rec.Time}
	control, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	kill.DamageType = control & 0xF0
	if _, err := ReadToHexStr(r, 3); err != nil { // always 00 fe 3f
		return nil, err
	}
	kill.KillerID, err = r.ReadByte()
	if err != nil {
		return nil, err
	}
	if _, err := ReadToHexStr(r, 3); err != nil { // always 00 00 00
		return nil, err
	}
	kill.KillerVehicle, err = PacketReadLenString(r)
	if err != nil {
		return nil, err
	}
	return &ParsedMPI{Name: "kill", Kill: kill}, nil
}

func parseMPIAward(rec *Record, r *bytes.Reader) (*ParsedMPI, error) {
	award := &AwardEvent{Time: rec.Time}
	var err error
	award.AwardType, err = r.ReadByte()
	if err != nil {
		return nil, err
	}
	if _, err := ReadToHexStr(r, 2); err != nil { // always 00 3e
		return nil, err
	}
	award.Player, err = r.ReadByte()
	if err != nil {
		return nil, err
	}
	if _, err := ReadToHexStr(r, 3); err != nil { // always 00 00 00
		return nil, err
	}
	award.AwardName, err = PacketReadLenString(r)
	if err != nil {
		return nil, err
	}
	return &ParsedMPI{Name: "award", Award: award}, nil
}

func parseMPIBlob(rec *Record, r *bytes.Reader) (*ParsedMPI, error) {
	compressed, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if compressed == 0 {
		rem, _ := io.ReadAll(r)
		return &ParsedMPI{Name: "slotMessage", Blob: rem}, nil
	}
	if _, err := ReadToHexStr(r, 1); err != nil {
		return nil, err
	}
	control, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if _, err := ReadToHexStr(r, 2); err != nil {
		return nil, err
	}
	if control&0xF0 > 0 {
		if _, err := ReadToHexStr(r, 1); err != nil {
			return nil, err
		}
	}
	dc, err := zstd.NewReader(r) // 28b52ffd
	if err != nil {
		return nil, fmt.Errorf("opening zstd blob: %w", err)
	}
	defer dc.Close()
	blob, err := io.ReadAll(dc)
	if err != nil {
		return nil, fmt.Errorf("decompressing zstd blob: %w", err)
	}
	return &ParsedMPI{Name: "slotMessage", Blob: blob}, nil
}
