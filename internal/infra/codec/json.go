package codec

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

const JSONName = "json"

// JSONDecoder decodes API response bodies with encoding/json semantics.
type JSONDecoder struct {
	api jsoniter.API
}

func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{api: jsoniter.ConfigCompatibleWithStandardLibrary}
}

func (d *JSONDecoder) Decode(data []byte, v any) error {
	if err := d.api.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
