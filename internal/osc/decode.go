package osc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Decode errors. Every error returned by Decode wraps exactly one of these.
var (
	ErrTruncated      = errors.New("truncated packet")
	ErrBadTypeTag     = errors.New("bad type tag")
	ErrLengthMismatch = errors.New("length mismatch")
	ErrBadAddress     = errors.New("bad address")
	ErrNestingTooDeep = errors.New("bundle nesting too deep")
)

// MaxBundleDepth bounds how deeply bundles may nest inside one datagram.
const MaxBundleDepth = 16

// Decode parses a datagram and returns the messages it carries, in order.
// Bundles are flattened depth-first, so a bundle [[m1, m2], m3] yields m1, m2, m3.
func Decode(b []byte) ([]Message, error) {
	p, err := DecodePacket(b)
	if err != nil {
		return nil, err
	}
	return Flatten(p), nil
}

// DecodePacket parses a datagram and keeps its bundle structure.
func DecodePacket(b []byte) (Packet, error) {
	return decodePacket(b, 0, 0)
}

// Flatten expands a packet into its messages in order.
func Flatten(p Packet) []Message {
	var out []Message
	var walk func(Packet)
	walk = func(p Packet) {
		switch v := p.(type) {
		case Message:
			out = append(out, v)
		case Bundle:
			for _, el := range v.Elements {
				walk(el)
			}
		}
	}
	walk(p)
	return out
}

// decodePacket parses b, which starts at offset base of the datagram.
func decodePacket(b []byte, base, depth int) (Packet, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty packet at offset %d", ErrTruncated, base)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: packet size %d at offset %d is not a multiple of 4", ErrLengthMismatch, len(b), base)
	}
	if b[0] == '#' {
		return decodeBundle(b, base, depth)
	}
	return decodeMessage(b, base)
}

func decodeBundle(b []byte, base, depth int) (Packet, error) {
	if depth >= MaxBundleDepth {
		return nil, fmt.Errorf("%w: depth %d at offset %d", ErrNestingTooDeep, depth, base)
	}
	r := reader{buf: b, base: base}
	tag, err := r.string()
	if err != nil {
		return nil, err
	}
	if tag != bundleTag {
		return nil, fmt.Errorf("%w: %q at offset %d", ErrBadAddress, tag, base)
	}
	tt, err := r.uint64()
	if err != nil {
		return nil, err
	}

	bundle := Bundle{Timetag: Timetag(tt)}
	for r.remaining() > 0 {
		size, err := r.int32()
		if err != nil {
			return nil, err
		}
		if size <= 0 || int(size) > r.remaining() {
			return nil, fmt.Errorf("%w: element size %d with %d bytes left at offset %d",
				ErrLengthMismatch, size, r.remaining(), r.offset())
		}
		start := r.pos
		r.pos += int(size)
		el, err := decodePacket(b[start:r.pos], base+start, depth+1)
		if err != nil {
			return nil, err
		}
		bundle.Elements = append(bundle.Elements, el)
	}
	return bundle, nil
}

func decodeMessage(b []byte, base int) (Packet, error) {
	r := reader{buf: b, base: base}
	addr, err := r.string()
	if err != nil {
		return nil, err
	}
	if len(addr) == 0 || addr[0] != '/' {
		return nil, fmt.Errorf("%w: %q at offset %d", ErrBadAddress, addr, base)
	}

	msg := Message{Address: addr}
	tagOffset := r.offset()
	tags, err := r.string()
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 || tags[0] != ',' {
		return nil, fmt.Errorf("%w: type tag string %q at offset %d", ErrBadTypeTag, tags, tagOffset)
	}

	for i := 1; i < len(tags); i++ {
		arg, err := r.argument(tags[i])
		if err != nil {
			return nil, err
		}
		msg.Arguments = append(msg.Arguments, arg)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after %s", ErrLengthMismatch, r.remaining(), addr)
	}
	return msg, nil
}

// reader walks a byte slice without ever indexing past its end.
type reader struct {
	buf  []byte
	pos  int
	base int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) offset() int { return r.base + r.pos }

func (r *reader) need(n int) error {
	if n < 0 || r.remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.offset(), r.remaining())
	}
	return nil
}

func (r *reader) string() (string, error) {
	rest := r.buf[r.pos:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrTruncated, r.offset())
	}
	total := end + 1 + padLen(end+1)
	if err := r.need(total); err != nil {
		return "", err
	}
	s := string(rest[:end])
	r.pos += total
	return s, nil
}

func (r *reader) int32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *reader) uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *reader) blob() ([]byte, error) {
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative blob size %d at offset %d", ErrLengthMismatch, n, r.offset())
	}
	total := int(n) + padLen(int(n))
	if err := r.need(total); err != nil {
		return nil, fmt.Errorf("%w: blob of %d bytes at offset %d", ErrLengthMismatch, n, r.offset())
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:])
	r.pos += total
	return out, nil
}

func (r *reader) argument(tag byte) (interface{}, error) {
	switch tag {
	case 'i':
		return r.int32()
	case 'f':
		v, err := r.int32()
		return math.Float32frombits(uint32(v)), err
	case 's':
		return r.string()
	case 'b':
		return r.blob()
	case 'T':
		return true, nil
	case 'F':
		return false, nil
	case 'N':
		return nil, nil
	case 'h':
		v, err := r.uint64()
		return int64(v), err
	case 'd':
		v, err := r.uint64()
		return math.Float64frombits(v), err
	case 't':
		v, err := r.uint64()
		return Timetag(v), err
	}
	return nil, fmt.Errorf("%w: %q at offset %d", ErrBadTypeTag, tag, r.offset())
}
