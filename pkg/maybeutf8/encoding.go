package maybeutf8

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
)

// rawJSON is the JSON form of a Bytes value.
type rawJSON struct {
	Bytes []byte `json:"bytes"`
}

// LogValue implements slog.LogValuer. Text logs as a plain string; Bytes
// logs as a group holding the lossy text and the hex-encoded octets.
func (b *Buffer) LogValue() slog.Value {
	return logValue(b)
}

// LogValue implements slog.LogValuer.
func (v View) LogValue() slog.Value {
	return logValue(v)
}

func logValue(o Octets) slog.Value {
	if s, ok := o.UTF8(); ok {
		return slog.StringValue(s)
	}
	return slog.GroupValue(
		slog.String("lossy", lossy(o.Bytes())),
		slog.String("hex", hex.EncodeToString(o.Bytes())),
	)
}

// MarshalJSON encodes Text as a JSON string and Bytes as
// {"bytes":"<base64>"}, so no octet is lost.
func (b *Buffer) MarshalJSON() ([]byte, error) {
	return marshalJSON(b)
}

// MarshalJSON implements json.Marshaler like (*Buffer).MarshalJSON.
func (v View) MarshalJSON() ([]byte, error) {
	return marshalJSON(v)
}

func marshalJSON(o Octets) ([]byte, error) {
	if s, ok := o.UTF8(); ok {
		return json.Marshal(s)
	}
	return json.Marshal(rawJSON{Bytes: o.Bytes()})
}

// UnmarshalJSON accepts either form written by MarshalJSON.
func (b *Buffer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = FromString(s)
		return nil
	}

	var raw rawJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("maybeutf8: expected string or {\"bytes\":...}: %w", err)
	}
	*b = FromBytes(raw.Bytes)
	return nil
}
