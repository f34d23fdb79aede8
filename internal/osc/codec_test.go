package osc

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	goosc "github.com/hypebeast/go-osc/osc"
)

func sampleMessages() []Message {
	return []Message{
		NewMessage("/project/name/get"),
		NewMessage("/track/volume/set", int32(0), float32(1.0)),
		NewMessage("/project/add_track", int32(-1), "drums", int32(4096), true, int32(2)),
		NewMessage("/track/scan/response", "success", []byte{1, 2, 3, 4, 5}, false, nil),
		NewMessage("/note", int32(1), int32(60), int32(100), int32(250)),
		NewMessage("/wide", int64(-1<<40), 3.25, Timetag(42), []byte{}),
		NewMessage("/s", "abc", "abcd", "", "abcdefgh"),
		NewMessage("/f", float32(math.Inf(1)), float32(-0.5)),
		NewMessage("/nan", float32(math.NaN()), math.NaN()),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, m := range sampleMessages() {
		b, err := Encode(m)
		if err != nil {
			t.Fatalf("Encode(%s): %v", m, err)
		}
		if len(b)%4 != 0 {
			t.Errorf("Encode(%s) produced %d bytes, not 4-aligned", m, len(b))
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode(Encode(%s)): %v", m, err)
		}
		if len(got) != 1 || !got[0].Equal(m) {
			t.Errorf("round trip mismatch: sent %s, got %v", m, got)
		}
	}
}

func TestNestedBundleOrder(t *testing.T) {
	m1 := NewMessage("/m1", int32(1))
	m2 := NewMessage("/m2", "two")
	m3 := NewMessage("/m3", float32(3))

	cases := []struct {
		name   string
		bundle Bundle
		want   []Message
	}{
		{"inner first", NewBundle(NewBundle(m1, m2), m3), []Message{m1, m2, m3}},
		{"inner last", NewBundle(m3, NewBundle(m1, m2)), []Message{m3, m1, m2}},
		{"deep", NewBundle(NewBundle(NewBundle(m1), m2), NewBundle(), m3), []Message{m1, m2, m3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := EncodeBundle(tc.bundle)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Decode(b)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d messages, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if !got[i].Equal(tc.want[i]) {
					t.Errorf("message %d: got %s, want %s", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestDecodeKeepsTimetag(t *testing.T) {
	b, err := EncodeBundle(Bundle{Timetag: 0xdeadbeef, Elements: []Packet{NewMessage("/x")}})
	if err != nil {
		t.Fatal(err)
	}
	p, err := DecodePacket(b)
	if err != nil {
		t.Fatal(err)
	}
	if bundle, ok := p.(Bundle); !ok || bundle.Timetag != 0xdeadbeef {
		t.Errorf("got %#v", p)
	}
}

func TestDecodeMessagePrefixesFail(t *testing.T) {
	for _, m := range sampleMessages() {
		full, err := Encode(m)
		if err != nil {
			t.Fatal(err)
		}
		for n := 0; n < len(full); n++ {
			if _, err := Decode(full[:n]); err == nil {
				t.Errorf("%s: prefix of %d/%d bytes decoded without error", m.Address, n, len(full))
			}
		}
	}
}

func TestDecodeBundlePrefixesNeverOverrun(t *testing.T) {
	full, err := EncodeBundle(NewBundle(sampleMessages()[2], NewBundle(sampleMessages()[3])))
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < len(full); n++ {
		// A cut on an element boundary is itself a valid, shorter bundle.
		msgs, err := Decode(full[:n])
		if err == nil && len(msgs) >= 2 {
			t.Errorf("prefix of %d/%d bytes yielded %d messages", n, len(full), len(msgs))
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	valid, _ := Encode(NewMessage("/a", int32(1)))

	badTag := append([]byte(nil), valid...)
	badTag[4] = 'x' // ",i" -> "xi"

	unknownTag, _ := Encode(NewMessage("/a", int32(1)))
	unknownTag[5] = 'Q'

	hugeBlob := []byte("/b\x00\x00,b\x00\x00")
	hugeBlob = binary.BigEndian.AppendUint32(hugeBlob, 1<<30)

	negBlob := []byte("/b\x00\x00,b\x00\x00")
	negBlob = binary.BigEndian.AppendUint32(negBlob, 0xffffffff)

	bundleOverrun := []byte("#bundle\x00")
	bundleOverrun = binary.BigEndian.AppendUint64(bundleOverrun, 1)
	bundleOverrun = binary.BigEndian.AppendUint32(bundleOverrun, 64)
	bundleOverrun = append(bundleOverrun, valid...)

	cases := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"unaligned", []byte("/ab"), ErrLengthMismatch},
		{"no terminator", []byte("/abc"), ErrTruncated},
		{"missing slash", []byte("ab\x00\x00,\x00\x00\x00"), ErrBadAddress},
		{"tag without comma", badTag, ErrBadTypeTag},
		{"unknown tag", unknownTag, ErrBadTypeTag},
		{"missing int payload", []byte("/a\x00\x00,i\x00\x00"), ErrTruncated},
		{"blob larger than packet", hugeBlob, ErrLengthMismatch},
		{"negative blob", negBlob, ErrLengthMismatch},
		{"trailing bytes", append(append([]byte(nil), valid...), 0, 0, 0, 0), ErrLengthMismatch},
		{"bundle element overrun", bundleOverrun, ErrLengthMismatch},
		{"bad bundle tag", []byte("#bungle\x00\x00\x00\x00\x00\x00\x00\x00\x01"), ErrBadAddress},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.in)
			if !errors.Is(err, tc.want) {
				t.Errorf("Decode error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDecodeNestingLimit(t *testing.T) {
	var p Packet = NewMessage("/deep")
	for i := 0; i < MaxBundleDepth+1; i++ {
		p = NewBundle(p)
	}
	b, err := EncodePacket(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(b); !errors.Is(err, ErrNestingTooDeep) {
		t.Errorf("got %v, want ErrNestingTooDeep", err)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := Encode(NewMessage("/x", struct{}{}))
	if !errors.Is(err, ErrUnsupportedArgument) {
		t.Errorf("got %v", err)
	}
	if _, err := Encode(NewMessage("/a", "x\x00y")); !errors.Is(err, ErrUnsupportedArgument) {
		t.Errorf("string with NUL: got %v", err)
	}
}

func TestEncodeRejectsUndecodableAddress(t *testing.T) {
	for _, addr := range []string{"", "no/slash", "/a\x00b"} {
		if _, err := Encode(NewMessage(addr, int32(1))); !errors.Is(err, ErrBadAddress) {
			t.Errorf("Encode(%q): got %v, want ErrBadAddress", addr, err)
		}
		b := NewBundle(NewMessage("/ok"), NewMessage(addr))
		if _, err := EncodeBundle(b); !errors.Is(err, ErrBadAddress) {
			t.Errorf("EncodeBundle with %q: got %v, want ErrBadAddress", addr, err)
		}
	}
}

func TestInteropWithGoOSC(t *testing.T) {
	t.Run("go-osc to reabridge", func(t *testing.T) {
		gm := goosc.NewMessage("/track/volume/set", int32(2), float32(0.5), "x", true, []byte{9, 8, 7})
		b, err := gm.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatal(err)
		}
		want := NewMessage("/track/volume/set", int32(2), float32(0.5), "x", true, []byte{9, 8, 7})
		if len(got) != 1 || !got[0].Equal(want) {
			t.Errorf("got %v, want %s", got, want)
		}
	})

	t.Run("reabridge to go-osc", func(t *testing.T) {
		b, err := Encode(NewMessage("/note/response", "success", int32(1), int32(60), float32(0.25)))
		if err != nil {
			t.Fatal(err)
		}
		p, err := goosc.ParsePacket(string(b))
		if err != nil {
			t.Fatal(err)
		}
		gm, ok := p.(*goosc.Message)
		if !ok {
			t.Fatalf("parsed %T", p)
		}
		if gm.Address != "/note/response" || len(gm.Arguments) != 4 {
			t.Fatalf("got %s %v", gm.Address, gm.Arguments)
		}
		if gm.Arguments[0] != "success" || gm.Arguments[2] != int32(60) || gm.Arguments[3] != float32(0.25) {
			t.Errorf("arguments %v", gm.Arguments)
		}
	})
}

func TestEqualComparesFloatBits(t *testing.T) {
	nan := NewMessage("/a", float32(math.NaN()))
	if !nan.Equal(nan) {
		t.Error("NaN message not equal to itself")
	}
	if NewMessage("/a", float32(1)).Equal(NewMessage("/a", float64(1))) {
		t.Error("float32 equal to float64")
	}
	if NewMessage("/a", []byte{1}).Equal(NewMessage("/a", "x")) {
		t.Error("blob equal to string")
	}
	if !NewMessage("/a", []byte{1}, "x", int32(2)).Equal(NewMessage("/a", []byte{1}, "x", int32(2))) {
		t.Error("identical messages differ")
	}
}
