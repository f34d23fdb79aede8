package osc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnsupportedArgument is returned when a message carries a Go value with no OSC type tag.
var ErrUnsupportedArgument = errors.New("unsupported argument type")

const bundleTag = "#bundle"

// Encode serialises a message.
func Encode(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMessage(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeBundle serialises a bundle, nested bundles included.
func EncodeBundle(b Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeBundle(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePacket serialises a Message or a Bundle.
func EncodePacket(p Packet) ([]byte, error) {
	switch v := p.(type) {
	case Message:
		return Encode(v)
	case Bundle:
		return EncodeBundle(v)
	}
	return nil, fmt.Errorf("%w: packet %T", ErrUnsupportedArgument, p)
}

func writeBundle(buf *bytes.Buffer, b Bundle) error {
	writeString(buf, bundleTag)
	var tt [8]byte
	binary.BigEndian.PutUint64(tt[:], uint64(b.Timetag))
	buf.Write(tt[:])

	for i, el := range b.Elements {
		var elem bytes.Buffer
		var err error
		switch v := el.(type) {
		case Message:
			err = writeMessage(&elem, v)
		case Bundle:
			err = writeBundle(&elem, v)
		default:
			err = fmt.Errorf("%w: bundle element %d is %T", ErrUnsupportedArgument, i, el)
		}
		if err != nil {
			return err
		}
		writeInt32(buf, int32(elem.Len()))
		buf.Write(elem.Bytes())
	}
	return nil
}

func writeMessage(buf *bytes.Buffer, m Message) error {
	if m.Address == "" || m.Address[0] != '/' || strings.IndexByte(m.Address, 0) >= 0 {
		return fmt.Errorf("%w: %q", ErrBadAddress, m.Address)
	}
	tags := make([]byte, 1, len(m.Arguments)+1)
	tags[0] = ','
	var payload bytes.Buffer

	for i, arg := range m.Arguments {
		switch v := arg.(type) {
		case int32:
			tags = append(tags, 'i')
			writeInt32(&payload, v)
		case float32:
			tags = append(tags, 'f')
			writeInt32(&payload, int32(math.Float32bits(v)))
		case string:
			if strings.IndexByte(v, 0) >= 0 {
				return fmt.Errorf("%w: argument %d of %s is a string with a NUL byte", ErrUnsupportedArgument, i, m.Address)
			}
			tags = append(tags, 's')
			writeString(&payload, v)
		case []byte:
			tags = append(tags, 'b')
			writeBlob(&payload, v)
		case bool:
			if v {
				tags = append(tags, 'T')
			} else {
				tags = append(tags, 'F')
			}
		case int64:
			tags = append(tags, 'h')
			writeInt64(&payload, uint64(v))
		case float64:
			tags = append(tags, 'd')
			writeInt64(&payload, math.Float64bits(v))
		case Timetag:
			tags = append(tags, 't')
			writeInt64(&payload, uint64(v))
		case nil:
			tags = append(tags, 'N')
		default:
			return fmt.Errorf("%w: argument %d of %s is %T", ErrUnsupportedArgument, i, m.Address, arg)
		}
	}

	writeString(buf, m.Address)
	writeString(buf, string(tags))
	buf.Write(payload.Bytes())
	return nil
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func writeInt64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

// writeString writes s, a NUL terminator, and padding up to a 4-byte boundary.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.Write(make([]byte, padLen(len(s)+1)+1))
}

func writeBlob(buf *bytes.Buffer, b []byte) {
	writeInt32(buf, int32(len(b)))
	buf.Write(b)
	buf.Write(make([]byte, padLen(len(b))))
}

// padLen is the number of zero bytes needed to align n to 4.
func padLen(n int) int {
	return (4 - n%4) % 4
}
