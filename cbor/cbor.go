/*
Package cbor pins the one CBOR encoding the whole module uses: Core
Deterministic Encoding per RFC 8949. Blocks, snapshots and challenge
payloads all rely on the same logical value always producing the same
bytes, so nothing encodes through github.com/fxamacker/cbor/v2 directly.
*/
package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Version tags a persisted record so the layout can evolve across upgrades
// without guessing at the bytes.
type Version uint

var encMode cbor.EncMode

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(fmt.Errorf("build deterministic encode mode: %w", err))
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// GetEncoder returns a deterministic encoder writing to w.
func GetEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// MarshalVersioned prepends ver to the encoding of v. Persisted records are
// written this way so a later release can dispatch on the version before
// decoding the payload.
func MarshalVersioned(ver Version, v any) ([]byte, error) {
	if ver == 0 {
		return nil, errors.New("version is zero")
	}
	buf := &bytes.Buffer{}
	enc := GetEncoder(buf)
	if err := enc.Encode(ver); err != nil {
		return nil, fmt.Errorf("encode version: %w", err)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalVersioned reads the version tag, then decodes the payload into v.
func UnmarshalVersioned(data []byte, v any) (Version, error) {
	dec := cbor.NewDecoder(bytes.NewReader(data))
	var ver Version
	if err := dec.Decode(&ver); err != nil {
		return 0, fmt.Errorf("decode version: %w", err)
	}
	return ver, dec.Decode(v)
}
