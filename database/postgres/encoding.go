package pg

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/mr-tron/base58"
)

// EncodeType names the text encoding of a binary column value. Encoded values
// carry it as a prefix, e.g. "b58:3yZe7d".
type EncodeType string

const (
	Base64            EncodeType = "b64"
	Base58            EncodeType = "b58"
	Hex               EncodeType = "hex"
	DefaultEncodeType            = Base64
)

var (
	ErrInvalidFormat       = errors.New("invalid encoded value format")
	ErrUnsupportedEncoding = errors.New("unsupported encoding type")
)

type codec struct {
	encode func([]byte) string
	decode func(string) ([]byte, error)
}

var codecs = map[EncodeType]codec{
	Base64: {base64.StdEncoding.EncodeToString, base64.StdEncoding.DecodeString},
	Base58: {base58.Encode, base58.Decode},
	Hex:    {hex.EncodeToString, hex.DecodeString},
}

// Encode encodes value with the given type, DefaultEncodeType if none is
// given. A nil value encodes to the empty string.
func Encode(value []byte, encodeType ...EncodeType) string {
	if value == nil {
		return ""
	}

	encType := DefaultEncodeType
	if len(encodeType) > 0 {
		encType = encodeType[0]
	}

	c, ok := codecs[encType]
	if !ok {
		encType, c = DefaultEncodeType, codecs[DefaultEncodeType]
	}
	return string(encType) + ":" + c.encode(value)
}

// Decode reverses Encode, picking the codec from the value's prefix.
func Decode(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}

	encType, encoded, ok := strings.Cut(value, ":")
	if !ok {
		return nil, ErrInvalidFormat
	}

	c, ok := codecs[EncodeType(encType)]
	if !ok {
		return nil, ErrUnsupportedEncoding
	}
	return c.decode(encoded)
}
