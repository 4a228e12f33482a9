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
)

var ErrMalformedChat = errors.New("malformed chat payload")

// chatSubtypeMinVersion gates the chat framing variant: replays from
// this version on open the payload with a subtype/flag byte before the
// sender string, older ones start with the sender directly. 101286 is
// the earliest version the subtype byte was confirmed in.
const chatSubtypeMinVersion = 100000

// parseRecordChat decodes a chat payload: optional subtype byte
// (version dependent), length-prefixed sender and message, then
// optional channel type and enemy flag. Failure here is local; the
// record parser converts it into an Unknown record.
func parseRecordChat(p *RecordParser, rec *Record, payload []byte) error {
	r := bytes.NewReader(payload)
	if p.version >= chatSubtypeMinVersion {
		if _, err := r.ReadByte(); err != nil {
			return fmt.Errorf("%w: missing subtype byte", ErrMalformedChat)
		}
	}
	sender, err := PacketReadLenString(r)
	if err != nil {
		return fmt.Errorf("%w: sender: %v", ErrMalformedChat, err)
	}
	msg, err := PacketReadLenString(r)
	if err != nil {
		return fmt.Errorf("%w: message: %v", ErrMalformedChat, err)
	}
	chat := &ChatMessage{
		Time:    rec.Time,
		Sender:  sender,
		Message: msg,
	}
	// trailing flags are absent in some short payloads
	if b, err := r.ReadByte(); err == nil {
		chat.ChannelType = b
	}
	if b, err := r.ReadByte(); err == nil {
		chat.IsEnemy = b
	}
	rec.Kind = RecordChat
	rec.Chat = chat
	return nil
}
