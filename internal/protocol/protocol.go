package protocol

import (
	"encoding/json"
	"errors"

	"drawparty/internal/models"
)

// Frames are positional JSON arrays: [eventKind, ...values]. The event kind
// is always the first element; everything after it is event-specific.

var (
	ErrEmptyFrame = errors.New("empty frame")
	ErrBadEvent   = errors.New("event kind is not a string")
)

// Encode builds a wire frame from an event kind and its values.
func Encode(event models.Event, values ...any) ([]byte, error) {
	frame := make([]any, 0, len(values)+1)
	frame = append(frame, event)
	frame = append(frame, values...)
	return json.Marshal(frame)
}

// MustEncode is Encode for server-built frames, whose values are always
// marshalable. It panics on the impossible case instead of returning it.
func MustEncode(event models.Event, values ...any) []byte {
	data, err := Encode(event, values...)
	if err != nil {
		panic("protocol: encode server frame: " + err.Error())
	}
	return data
}

// Decode splits a wire frame into its event kind and raw values. The values
// are left undecoded so the caller can interpret them per event kind.
func Decode(data []byte) (models.Event, []json.RawMessage, error) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", nil, err
	}
	if len(frame) == 0 {
		return "", nil, ErrEmptyFrame
	}
	var event string
	if err := json.Unmarshal(frame[0], &event); err != nil {
		return "", nil, ErrBadEvent
	}
	return models.Event(event), frame[1:], nil
}
