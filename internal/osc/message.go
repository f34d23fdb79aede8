// Package osc encodes and decodes OSC 1.0 packets: messages made of an address
// and typed arguments, and bundles that group messages (and other bundles)
// into one datagram.
package osc

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// Packet is either a Message or a Bundle.
type Packet interface {
	packet()
}

// Message is an address plus an ordered list of arguments.
//
// Supported argument types: int32 (i), float32 (f), string (s), []byte (b),
// bool (T/F), int64 (h), float64 (d), Timetag (t) and nil (N).
type Message struct {
	Address   string
	Arguments []interface{}
}

// NewMessage builds a message. The argument slice is copied.
func NewMessage(address string, args ...interface{}) Message {
	m := Message{Address: address}
	if len(args) > 0 {
		m.Arguments = append([]interface{}(nil), args...)
	}
	return m
}

func (Message) packet() {}

// Equal reports whether m and o carry the same address and arguments.
// Floats are compared bit for bit, so a NaN equals the same NaN.
func (m Message) Equal(o Message) bool {
	if m.Address != o.Address || len(m.Arguments) != len(o.Arguments) {
		return false
	}
	for i := range m.Arguments {
		if !argEqual(m.Arguments[i], o.Arguments[i]) {
			return false
		}
	}
	return true
}

func argEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case float32:
		bv, ok := b.(float32)
		return ok && math.Float32bits(av) == math.Float32bits(bv)
	case float64:
		bv, ok := b.(float64)
		return ok && math.Float64bits(av) == math.Float64bits(bv)
	}
	if _, ok := b.([]byte); ok {
		return false
	}
	return a == b
}

func (m Message) String() string {
	var sb strings.Builder
	sb.WriteString(m.Address)
	for _, a := range m.Arguments {
		sb.WriteByte(' ')
		switch v := a.(type) {
		case string:
			fmt.Fprintf(&sb, "%q", v)
		case []byte:
			fmt.Fprintf(&sb, "<blob %d>", len(v))
		default:
			fmt.Fprintf(&sb, "%v", v)
		}
	}
	return sb.String()
}

// Timetag is an NTP-format timestamp. The value 1 means "immediately".
type Timetag uint64

// Immediately is the timetag for bundles that should be processed on receipt.
const Immediately Timetag = 1

// Bundle groups packets sent in one frame. Elements keep their order.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// NewBundle builds an immediate bundle from the given elements.
func NewBundle(elements ...Packet) Bundle {
	return Bundle{Timetag: Immediately, Elements: elements}
}

func (Bundle) packet() {}
