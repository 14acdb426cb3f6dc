package relay

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Payload formats.
const (
	// PayloadByte sends the single command code byte.
	PayloadByte = "byte"
	// PayloadText sends the action name.
	PayloadText = "text"
	// PayloadMsgpack sends a msgpack-encoded Message.
	PayloadMsgpack = "msgpack"
)

// Message is the structured command sent with PayloadMsgpack.
type Message struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
	Code   byte   `msgpack:"code"`
	Time   int64  `msgpack:"ts"`
}

// Encode builds the wire payload for action.
func Encode(format, action string) ([]byte, error) {
	code, ok := Code(action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, action)
	}
	switch format {
	case "", PayloadByte:
		return []byte{code}, nil
	case PayloadText:
		return []byte(normalize(action)), nil
	case PayloadMsgpack:
		return msgpack.Marshal(Message{
			ID:     uuid.NewString(),
			Action: normalize(action),
			Code:   code,
			Time:   time.Now().UnixMilli(),
		})
	}
	return nil, fmt.Errorf("relay: unknown payload format %q", format)
}

// decode parses a payload produced by Encode.
func decode(format string, data []byte) (Message, error) {
	switch format {
	case "", PayloadByte:
		if len(data) != 1 {
			return Message{}, fmt.Errorf("relay: byte payload has %d bytes", len(data))
		}
		for name, code := range Codes {
			if code == data[0] {
				return Message{Action: name, Code: code}, nil
			}
		}
		return Message{}, fmt.Errorf("%w: code 0x%02x", ErrUnknownCommand, data[0])
	case PayloadText:
		code, ok := Code(string(data))
		if !ok {
			return Message{}, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
		}
		return Message{Action: normalize(string(data)), Code: code}, nil
	case PayloadMsgpack:
		var m Message
		if err := msgpack.Unmarshal(data, &m); err != nil {
			return Message{}, fmt.Errorf("relay: decode msgpack: %w", err)
		}
		return m, nil
	}
	return Message{}, fmt.Errorf("relay: unknown payload format %q", format)
}
