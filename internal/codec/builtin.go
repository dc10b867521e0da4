package codec

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Built-in codec names.
const (
	JSON = "json"
	YAML = "yaml"
	UUID = "uuid"
)

// Builtin returns a registry holding the json, yaml and uuid codecs.
func Builtin() *Registry {
	return NewRegistry(
		Register[JSONCodec](JSON),
		Register[YAMLCodec](YAML),
		Register[*UUIDCodec](UUID),
	)
}

// JSONCodec stores values as JSON documents.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, dst any) error { return json.Unmarshal(data, dst) }

// YAMLCodec stores values as YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Encode(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (YAMLCodec) Decode(data []byte, dst any) error { return yaml.Unmarshal(data, dst) }

// UUIDCodec stores UUIDs in their 16-byte binary form. Encode accepts a
// uuid.UUID, a *uuid.UUID or a string; Decode fills a *uuid.UUID or a *string.
type UUIDCodec struct{}

func (*UUIDCodec) Encode(v any) ([]byte, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id.MarshalBinary()
	case *uuid.UUID:
		if id == nil {
			return nil, nil
		}

		return id.MarshalBinary()
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}

		return parsed.MarshalBinary()
	default:
		return nil, fmt.Errorf("uuid codec: unsupported value of type %T", v)
	}
}

func (*UUIDCodec) Decode(data []byte, dst any) error {
	id, err := uuid.FromBytes(data)
	if err != nil {
		return fmt.Errorf("uuid codec: %w", err)
	}

	switch d := dst.(type) {
	case *uuid.UUID:
		*d = id
	case *string:
		*d = id.String()
	default:
		return fmt.Errorf("uuid codec: unsupported destination of type %T", dst)
	}

	return nil
}
