package codec

import (
	"fmt"

	"github.com/ReadLaterSync/internal/domain"
)

// GetDecoder returns the response decoder registered under name.
func GetDecoder(name string) (domain.Decoder, error) {
	switch name {
	case JSONName, "":
		return NewJSONDecoder(), nil
	default:
		return nil, fmt.Errorf("decoder not found: %s", name)
	}
}
