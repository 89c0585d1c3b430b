// Package protocol encodes and decodes the subset of the iTerm2 API
// protobuf messages used by itermlink.
//
// The messages are written by hand on top of protowire rather than
// generated, so only the fields this module reads or writes are modeled.
// Unknown fields are skipped on decode.
package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is a single decoded key/value pair from a protobuf message.
type field struct {
	num   protowire.Number
	typ   protowire.Type
	value uint64
	bytes []byte
}

func (f field) String() string   { return string(f.bytes) }
func (f field) Bool() bool       { return f.value != 0 }
func (f field) Int32() int32     { return int32(f.value) }
func (f field) Int64() int64     { return int64(f.value) }
func (f field) Float32() float32 { return math.Float32frombits(uint32(f.value)) }
func (f field) Float64() float64 { return math.Float64frombits(f.value) }

// walk calls fn for every field in b, in wire order.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("protocol: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("protocol: field %d: %w", num, protowire.ParseError(n))
			}
			f.value = v
			b = b[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return fmt.Errorf("protocol: field %d: %w", num, protowire.ParseError(n))
			}
			f.value = uint64(v)
			b = b[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("protocol: field %d: %w", num, protowire.ParseError(n))
			}
			f.value = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("protocol: field %d: %w", num, protowire.ParseError(n))
			}
			f.bytes = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("protocol: field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendOptString skips empty strings, which proto2 treats as unset here.
func appendOptString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	return appendString(b, num, s)
}

func appendStrings(b []byte, num protowire.Number, ss []string) []byte {
	for _, s := range ss {
		b = appendString(b, num, s)
	}
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendOptInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	return appendVarint(b, num, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendOptBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendBool(b, num, v)
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// appendMessage writes an embedded message, including an empty one.
// Empty submessages still select a oneof branch on the receiving side.
func appendMessage(b []byte, num protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

// marshaler is implemented by every message in this package.
type marshaler interface {
	marshal() []byte
}

type unmarshaler interface {
	unmarshal(b []byte) error
}

func appendSub(b []byte, num protowire.Number, m marshaler) []byte {
	return appendMessage(b, num, m.marshal())
}

// decodeSub allocates a T, decodes b into it and returns it.
func decodeSub[T any, P interface {
	*T
	unmarshaler
}](b []byte) (*T, error) {
	v := P(new(T))
	if err := v.unmarshal(b); err != nil {
		return nil, err
	}
	return (*T)(v), nil
}
