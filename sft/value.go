package sft

import (
	"errors"
	"fmt"

	"github.com/ldclabs/ic-sft/cbor"
)

// ValueKind enumerates the shapes a metadata value can take.
type ValueKind uint8

const (
	ValueInvalid ValueKind = iota
	ValueBlob
	ValueText
	ValueNat
	ValueInt
	ValueArray
	ValueMap
)

// Value is a metadata value: a closed union over blobs, text, unsigned
// and signed integers, arrays and maps. The zero Value is invalid.
type Value struct {
	kind  ValueKind
	blob  []byte
	text  string
	nat   uint64
	i     int64
	array []Value
	m     Map
}

// Map holds named metadata values. Encoding is deterministic (sorted keys).
type Map map[string]Value

func BlobValue(b []byte) Value  { return Value{kind: ValueBlob, blob: b} }
func TextValue(s string) Value  { return Value{kind: ValueText, text: s} }
func NatValue(n uint64) Value   { return Value{kind: ValueNat, nat: n} }
func IntValue(i int64) Value    { return Value{kind: ValueInt, i: i} }
func ArrayValue(a []Value) Value { return Value{kind: ValueArray, array: a} }
func MapValue(m Map) Value      { return Value{kind: ValueMap, m: m} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsBlob() ([]byte, bool)   { return v.blob, v.kind == ValueBlob }
func (v Value) AsText() (string, bool)   { return v.text, v.kind == ValueText }
func (v Value) AsNat() (uint64, bool)    { return v.nat, v.kind == ValueNat }
func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == ValueInt }
func (v Value) AsArray() ([]Value, bool) { return v.array, v.kind == ValueArray }
func (v Value) AsMap() (Map, bool)       { return v.m, v.kind == ValueMap }

func (v Value) MarshalCBOR() ([]byte, error) {
	switch v.kind {
	case ValueBlob:
		return cbor.Marshal(v.blob)
	case ValueText:
		return cbor.Marshal(v.text)
	case ValueNat:
		return cbor.Marshal(v.nat)
	case ValueInt:
		return cbor.Marshal(v.i)
	case ValueArray:
		return cbor.Marshal(v.array)
	case ValueMap:
		return cbor.Marshal(map[string]Value(v.m))
	default:
		return nil, errors.New("invalid metadata value")
	}
}

func (v *Value) UnmarshalCBOR(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty metadata value")
	}
	switch major := data[0] >> 5; major {
	case 0: // unsigned integer
		v.kind = ValueNat
		return cbor.Unmarshal(data, &v.nat)
	case 1: // negative integer
		v.kind = ValueInt
		return cbor.Unmarshal(data, &v.i)
	case 2: // byte string
		v.kind = ValueBlob
		return cbor.Unmarshal(data, &v.blob)
	case 3: // text string
		v.kind = ValueText
		return cbor.Unmarshal(data, &v.text)
	case 4: // array
		v.kind = ValueArray
		return cbor.Unmarshal(data, &v.array)
	case 5: // map
		v.kind = ValueMap
		m := make(map[string]Value)
		if err := cbor.Unmarshal(data, &m); err != nil {
			return err
		}
		v.m = m
		return nil
	default:
		return fmt.Errorf("unsupported metadata value, major type %d", major)
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueBlob:
		return fmt.Sprintf("blob(%X)", v.blob)
	case ValueText:
		return fmt.Sprintf("%q", v.text)
	case ValueNat:
		return fmt.Sprintf("%d", v.nat)
	case ValueInt:
		return fmt.Sprintf("%+d", v.i)
	case ValueArray:
		return fmt.Sprintf("array(%d)", len(v.array))
	case ValueMap:
		return fmt.Sprintf("map(%d)", len(v.m))
	default:
		return "invalid"
	}
}

// Clone returns a copy of the map. Values are immutable once built, so a
// shallow copy of the entries is enough. A nil map clones to nil.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
