package network

import (
	json "github.com/goccy/go-json"
)

// Codec serializes request bodies and deserializes response bodies.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// ApplicationJSON is the media type produced by JSONCodec.
const ApplicationJSON = "application/json"

// JSONCodec is the default Codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) ContentType() string                { return ApplicationJSON }
