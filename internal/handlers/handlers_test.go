package handlers

import (
	"context"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/host/simhost"
	"github.com/leandrodaf/reabridge/internal/logger"
	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/internal/router"
	"github.com/leandrodaf/reabridge/internal/scheduler"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var client = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}

type captured struct {
	mu   sync.Mutex
	msgs []osc.Message
}

func (c *captured) Reply(_ net.Addr, msg osc.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *captured) all() []osc.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]osc.Message(nil), c.msgs...)
}

type fixture struct {
	sim     *simhost.Host
	replies *captured
	logs    *observer.ObservedLogs
	router  *router.Router
}

func newFixture(t *testing.T, sim *simhost.Host, opts ...Option) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewZapLoggerWithCore(core)
	caps := host.Resolve(sim, l)
	notes := scheduler.New(func(m midi.Message) { caps.SendMIDI(m) }, l)
	t.Cleanup(notes.Close)

	replies := &captured{}
	svc := New(caps, notes, replies, l, opts...)
	return &fixture{
		sim:     sim,
		replies: replies,
		logs:    logs,
		router:  router.New(l, svc.Routes(), router.DefaultQuietRoutes...),
	}
}

func (f *fixture) send(address string, args ...interface{}) {
	f.router.Dispatch(context.Background(), osc.NewMessage(address, args...), client)
}

// only returns the single reply sent so far.
func (f *fixture) only(t *testing.T) osc.Message {
	t.Helper()
	msgs := f.replies.all()
	if len(msgs) != 1 {
		t.Fatalf("got %d replies %v, want 1", len(msgs), msgs)
	}
	return msgs[0]
}

func expect(t *testing.T, got osc.Message, address string, args ...interface{}) {
	t.Helper()
	want := osc.NewMessage(address, args...)
	if !got.Equal(want) {
		t.Errorf("reply = %s\nwant    %s", got, want)
	}
}

func TestAddTrackWithoutArgumentsAppends(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{Name: "one"})
	sim.AddTrack(simhost.Track{Name: "two"})
	f := newFixture(t, sim)

	f.send("/project/add_track")

	expect(t, f.only(t), "/project/add_track/response", int32(2))
	if sim.Len() != 3 {
		t.Fatalf("tracks = %d", sim.Len())
	}
	added, _ := sim.Snapshot(2)
	if added.RecMode != 2 || added.RecArm != 0 || added.RecInput != 0 || added.Name != "" {
		t.Errorf("added track = %+v", added)
	}
}

func TestAddTrackConfigured(t *testing.T) {
	sim := simhost.New()
	first := sim.AddTrack(simhost.Track{Name: "existing"})
	f := newFixture(t, sim)

	f.send("/project/add_track", int32(0), "lead", int32(4096), true, int32(1))

	expect(t, f.only(t), "/project/add_track/response", int32(0))
	added, _ := sim.Snapshot(0)
	if added.Name != "lead" || added.RecInput != 4096 || added.RecArm != 1 || added.RecMode != 1 {
		t.Errorf("added track = %+v", added)
	}
	if moved, _ := sim.Snapshot(1); moved.Handle != first {
		t.Error("existing track should shift to index 1")
	}
}

func TestAddTrackPositionPastEndAppends(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{})
	f := newFixture(t, sim)

	f.send("/project/add_track", int32(99))
	expect(t, f.only(t), "/project/add_track/response", int32(1))
}

func TestAddTrackWithoutInsertCapability(t *testing.T) {
	f := newFixture(t, simhost.New(simhost.Without(host.InsertTrackAtIndex)))

	f.send("/project/add_track")
	expect(t, f.only(t), "/project/add_track/response", "error", "InsertTrackAtIndex unavailable")
}

func TestGetTrackVolume(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{Name: "drums", Volume: 1.0})
	f := newFixture(t, sim)

	f.send("/track/volume/get", int32(0))
	expect(t, f.only(t), "/track/volume/get/response", int32(0), float32(1.0))
}

func TestSetTrackVolumeAndPan(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{})
	f := newFixture(t, sim)

	f.send("/track/volume/set", int32(0), float32(0.5))
	f.send("/track/pan/set", int32(0), float64(-0.25))
	f.send("/track/pan/get", int32(0))

	msgs := f.replies.all()
	if len(msgs) != 3 {
		t.Fatalf("replies = %v", msgs)
	}
	expect(t, msgs[0], "/track/volume/set/response", int32(0), float32(0.5), "success")
	expect(t, msgs[1], "/track/pan/set/response", int32(0), float32(-0.25), "success")
	expect(t, msgs[2], "/track/pan/get/response", int32(0), float32(-0.25))

	tr, _ := sim.Snapshot(0)
	if tr.Volume != 0.5 || tr.Pan != -0.25 {
		t.Errorf("track = %+v", tr)
	}
}

func TestTrackName(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{Name: "bass"})
	f := newFixture(t, sim)

	f.send("/track/name/set", int32(0), "sub")
	f.send("/track/name/get", int32(0))

	msgs := f.replies.all()
	if len(msgs) != 2 {
		t.Fatalf("replies = %v", msgs)
	}
	expect(t, msgs[0], "/track/name/set/response", int32(0), "sub", "success")
	expect(t, msgs[1], "/track/name/get/response", int32(0), "sub")
}

func TestTrackCommandsMissingArgumentsNoOp(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{})
	f := newFixture(t, sim)

	f.send("/track/volume/get")
	f.send("/track/volume/set", int32(0))
	f.send("/track/name/get", "zero")
	f.send("/track/name/get", int32(7))

	if msgs := f.replies.all(); len(msgs) != 0 {
		t.Errorf("replies = %v", msgs)
	}
	if f.logs.FilterMessage("missing or mistyped argument").Len() != 3 {
		t.Errorf("argument warnings = %d", f.logs.FilterMessage("missing or mistyped argument").Len())
	}
	if f.logs.FilterMessage("track not found").Len() != 1 {
		t.Error("unknown track not logged")
	}
}

func TestIntegerArgumentsAcceptInt64(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{Name: "a"})
	f := newFixture(t, sim)

	f.send("/track/name/get", int64(0))
	expect(t, f.only(t), "/track/name/get/response", int32(0), "a")
}

func TestPlayNoteDefaults(t *testing.T) {
	sim := simhost.New()
	f := newFixture(t, sim)

	f.send("/note")

	expect(t, f.only(t), "/note/response", "success", int32(1), int32(60), int32(100), int32(1000))
	notes := sim.Notes()
	if len(notes) == 0 || notes[0] != (simhost.NoteEvent{On: true, Channel: 0, Key: 60, Velocity: 100}) {
		t.Errorf("notes = %+v", notes)
	}
}

func TestPlayNoteReleasesAfterDuration(t *testing.T) {
	sim := simhost.New()
	f := newFixture(t, sim)

	f.send("/note", int32(10), int32(64), int32(90), int32(20))

	deadline := time.Now().Add(2 * time.Second)
	for len(sim.Notes()) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	notes := sim.Notes()
	want := []simhost.NoteEvent{
		{On: true, Channel: 9, Key: 64, Velocity: 90},
		{Channel: 9, Key: 64},
	}
	if len(notes) != 2 || notes[0] != want[0] || notes[1] != want[1] {
		t.Errorf("notes = %+v, want %+v", notes, want)
	}
}

func TestPlayNoteClampsHugeDuration(t *testing.T) {
	sim := simhost.New()
	f := newFixture(t, sim)

	f.send("/note", int32(1), int32(60), int32(100), int64(math.MaxInt64/1000))

	expect(t, f.only(t), "/note/response", "success", int32(1), int32(60), int32(100), int32(math.MaxInt32))
	time.Sleep(20 * time.Millisecond)
	if notes := sim.Notes(); len(notes) != 1 || !notes[0].On {
		t.Errorf("note released early: %+v", notes)
	}
}

func TestPlayNoteInvalidChannel(t *testing.T) {
	sim := simhost.New()
	f := newFixture(t, sim)

	f.send("/note", int32(17), int32(60), int32(100), int32(500))

	expect(t, f.only(t), "/note/response", "error", "Invalid MIDI channel 17")
	if len(sim.MIDI()) != 0 {
		t.Errorf("emitted % X", sim.MIDI())
	}
}

func TestPlayNoteWithoutMIDICapability(t *testing.T) {
	f := newFixture(t, simhost.New(simhost.Without(host.StuffMIDIMessage)))

	f.send("/note", int32(1), int32(60))
	expect(t, f.only(t), "/note/response", "error", "StuffMIDIMessage unavailable")
}

func TestStopAllNotes(t *testing.T) {
	sim := simhost.New()
	f := newFixture(t, sim)

	f.send("/note", int32(3), int32(60), int32(100), int32(60000))
	f.send("/note", int32(3), int32(67), int32(100), int32(60000))
	f.send("/note/stop_all", int32(3))

	msgs := f.replies.all()
	if len(msgs) != 3 {
		t.Fatalf("replies = %v", msgs)
	}
	expect(t, msgs[2], "/note/stop_all/response", "success", int32(3), int32(2))

	offs := 0
	for _, n := range sim.Notes() {
		if !n.On {
			offs++
		}
	}
	if offs != 2 {
		t.Errorf("note-offs = %d", offs)
	}

	f.send("/note/stop_all", int32(0))
	if got := f.replies.all()[3]; got.Arguments[0] != "error" {
		t.Errorf("invalid channel reply = %s", got)
	}
}

func TestProjectName(t *testing.T) {
	f := newFixture(t, simhost.New(simhost.WithProjectName("set1.rpp")))

	f.send("/project/name/get")
	expect(t, f.only(t), "/project/name/response", "set1.rpp")
	if f.logs.FilterMessage("osc received").Len() != 0 {
		t.Error("polling route was logged")
	}
}

func TestSetProjectName(t *testing.T) {
	f := newFixture(t, simhost.New())
	f.send("/project/name/set", "renamed")
	expect(t, f.only(t), "/project/name/set/response", "success", "renamed")

	f = newFixture(t, simhost.New(simhost.Without(host.MainOnCommand)))
	f.send("/project/name/set", "renamed")
	expect(t, f.only(t), "/project/name/set/response", "error", "Main_OnCommand unavailable")
}

func TestUnknownAddressGetsNoReply(t *testing.T) {
	f := newFixture(t, simhost.New())

	f.send("/track/explode", int32(1))

	if msgs := f.replies.all(); len(msgs) != 0 {
		t.Errorf("replies = %v", msgs)
	}
	entries := f.logs.FilterMessage("unknown route").All()
	if len(entries) != 1 || entries[0].ContextMap()["address"] != "/track/explode" {
		t.Errorf("unknown route logs = %v", entries)
	}
}
