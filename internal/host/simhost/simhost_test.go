package simhost

import (
	"testing"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

func TestInsertTrackAtIndex(t *testing.T) {
	h := New()
	a := h.AddTrack(Track{Name: "a"})
	b := h.AddTrack(Track{Name: "b"})

	insert := h.GetFunc(host.InsertTrackAtIndex).(func(int, bool))
	insert(1, false)
	insert(-1, false)

	if h.Len() != 4 {
		t.Fatalf("len = %d", h.Len())
	}
	getTrack := h.GetFunc(host.GetTrack).(func(contracts.Project, int) contracts.Track)
	if getTrack(0, 0) != a || getTrack(0, 2) != b {
		t.Error("existing tracks moved to the wrong positions")
	}
	mid, _ := h.Snapshot(1)
	if mid.Volume != 1 || mid.Handle == 0 || mid.Handle == a || mid.Handle == b {
		t.Errorf("inserted track = %+v", mid)
	}
	if getTrack(0, 4) != 0 {
		t.Error("out of range GetTrack should return the zero handle")
	}
}

func TestSendDestinationIsHandle(t *testing.T) {
	h := New()
	bus := h.AddTrack(Track{Name: "bus"})
	src := h.AddTrack(Track{Name: "src", Sends: []Send{{Dest: bus, Volume: 0.25, Mute: true}}})

	info := h.GetFunc(host.GetTrackSendInfoValue).(func(contracts.Track, int, int, string) float64)
	if got := contracts.Track(info(src, host.SendCategorySend, 0, host.ParamDestTrack)); got != bus {
		t.Errorf("dest = %#x, want %#x", got, bus)
	}
	if info(src, host.SendCategorySend, 0, host.ParamMute) != 1 {
		t.Error("mute not reported")
	}
	if info(src, 1, 0, host.ParamVolume) != 0 {
		t.Error("receives category should be empty")
	}
}

func TestWithoutHidesCapability(t *testing.T) {
	h := New(Without(host.StuffMIDIMessage))
	if h.GetFunc(host.StuffMIDIMessage) != nil {
		t.Error("disabled capability still resolved")
	}
	if h.GetFunc("Unknown") != nil {
		t.Error("unknown capability resolved")
	}
}

func TestStuffMIDIMessageRecordsAndForwards(t *testing.T) {
	var forwarded []midi.Message
	h := New(WithMIDISink(func(m midi.Message) { forwarded = append(forwarded, m) }))
	stuff := h.GetFunc(host.StuffMIDIMessage).(func(int, []byte))

	stuff(0, midi.NoteOn(2, 60, 90))
	stuff(0, midi.NoteOff(2, 60))
	stuff(0, midi.ControlChange(0, 7, 100))

	if len(forwarded) != 3 || len(h.MIDI()) != 3 {
		t.Fatalf("forwarded %d, recorded %d", len(forwarded), len(h.MIDI()))
	}
	want := []NoteEvent{
		{On: true, Channel: 2, Key: 60, Velocity: 90},
		{Channel: 2, Key: 60},
	}
	got := h.Notes()
	if len(got) != len(want) {
		t.Fatalf("notes = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("note %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
