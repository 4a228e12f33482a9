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
	"encoding/hex"
	"fmt"
	"io"
)

// readVariableLengthSize decodes the 1 to 5 byte size prefix in front of
// every packet. The number of leading clear bits in the first byte picks
// the width; a first byte of the form 11xxxxxx is invalid.
func readVariableLengthSize(r io.Reader) (uint32, int, error) {
	var b [1]byte
	n, err := r.Read(b[:])
	if err != nil {
		return 0, 0, err
	}
	if n != 1 {
		return 0, 0, fmt.Errorf("unexpected read count when reading first byte of size prefix: %d", n)
	}
	first := b[0]
	read := 1
	var payload int64

	if (first & 0x80) != 0 {
		if (first & 0x40) != 0 {
			return 0, read, fmt.Errorf("invalid first size prefix byte encountered: 0x%02x", first)
		}
		// 10xxxxxx -> 1 byte total
		payload = int64(first & 0x7F)
	} else {
		switch {
		case (first & 0x40) != 0:
			// 01xxxxxx -> 2 bytes total
			var b1 [1]byte
			if _, err := io.ReadFull(r, b1[:]); err != nil {
				return 0, read, fmt.Errorf("reading 2nd byte of 2-byte size prefix: %w", err)
			}
			read += 1
			payload = (int64(first)<<8 | int64(b1[0])) ^ 0x4000
		case (first & 0x20) != 0:
			// 001xxxxx -> 3 bytes total
			var b12 [2]byte
			if _, err := io.ReadFull(r, b12[:]); err != nil {
				return 0, read, fmt.Errorf("reading bytes 2-3 of 3-byte size prefix: %w", err)
			}
			read += 2
			payload = (int64(first)<<16 | int64(b12[0])<<8 | int64(b12[1])) ^ 0x200000
		case (first & 0x10) != 0:
			// 0001xxxx -> 4 bytes total
			var b123 [3]byte
			if _, err := io.ReadFull(r, b123[:]); err != nil {
				return 0, read, fmt.Errorf("reading bytes 2-4 of 4-byte size prefix: %w", err)
			}
			read += 3
			payload = (int64(first)<<24 | int64(b123[0])<<16 | int64(b123[1])<<8 | int64(b123[2])) ^ 0x10000000
		default:
			// 0000xxxx -> 5 bytes total (little-endian u32)
			var b1234 [4]byte
			if _, err := io.ReadFull(r, b1234[:]); err != nil {
				return 0, read, fmt.Errorf("reading bytes 2-5 of 5-byte size prefix: %w", err)
			}
			read += 4
			payload = int64(binary.LittleEndian.Uint32(b1234[:]))
		}
	}

	if payload > int64(^uint32(0)) {
		return 0, read, fmt.Errorf("payload size %d cannot fit into uint32 (prefix starts with 0x%02x)", payload, first)
	}
	return uint32(payload), read, nil
}

// writeVariableLengthSize encodes v in the shortest prefix form
// readVariableLengthSize accepts.
func writeVariableLengthSize(w io.Writer, v uint32) error {
	var buf []byte
	switch {
	case v < 1<<6:
		buf = []byte{byte(v) | 0x80}
	case v < 1<<14:
		e := v | 0x4000
		buf = []byte{byte(e >> 8), byte(e)}
	case v < 1<<21:
		e := v | 0x200000
		buf = []byte{byte(e >> 16), byte(e >> 8), byte(e)}
	case v < 1<<28:
		e := v | 0x10000000
		buf = []byte{byte(e >> 24), byte(e >> 16), byte(e >> 8), byte(e)}
	default:
		buf = []byte{0, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(buf[1:], v)
	}
	_, err := w.Write(buf)
	return err
}

// PacketReadLenString reads a 1-byte length followed by that many bytes.
func PacketReadLenString(r *bytes.Reader) (string, error) {
	l, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	buf := make([]byte, l)
	_, err = io.ReadFull(r, buf)
	return string(buf), err
}

// ReadToHexStr reads n bytes and returns them hex encoded.
func ReadToHexStr(r *bytes.Reader, n int) (string, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	return hex.EncodeToString(buf), err
}
