// Package wire converts room snapshots to and from the payloads carried on
// state topics.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/couplobby/internal/model"
)

// Codec encodes room snapshots for one topic family
type Codec interface {
	Encode(snapshot model.RoomSnapshot) ([]byte, error)
	Decode(payload []byte) (model.RoomSnapshot, error)
	Name() string
}

// marshalCompact renders v without HTML escaping or a trailing newline,
// so names such as "<b>" or "Tom & Jerry" go out as typed.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func encodingFailure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrEncodingFailure, fmt.Sprintf(format, args...))
}
