// Package simhost is an in-memory stand-in for the DAW. It keeps a project
// with tracks, FX and sends, and hands out the same capability funcs a real
// host would, so the bridge can run and be tested without one.
package simhost

import (
	"sync"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

const (
	currentProject contracts.Project = 1
	firstTrackID   contracts.Track   = 0x1000
	trackIDStep    contracts.Track   = 0x10
)

// FXParam is one parameter of an FX slot.
type FXParam struct {
	Name      string
	Value     float64
	Min       float64
	Max       float64
	Formatted string
}

// FX is one effect slot on a track.
type FX struct {
	Name    string
	Enabled bool
	Preset  string
	Params  []FXParam
}

// Send routes a track's output into another track.
type Send struct {
	Dest   contracts.Track
	Volume float64
	Pan    float64
	Mute   bool
}

// Track is the state of one track. Handle is assigned by the host.
type Track struct {
	Handle     contracts.Track
	Name       string
	Volume     float64
	Pan        float64
	Mute       bool
	Solo       int
	RecArm     int
	RecInput   int
	RecMode    int
	RecMonitor int
	Color      int
	FX         []FX
	Sends      []Send
}

// Command is one Main_OnCommand invocation.
type Command struct {
	ID   int
	Flag int
}

// Host is a simulated project. All methods are safe for concurrent use.
type Host struct {
	mu       sync.Mutex
	name     string
	tracks   []*Track
	nextID   contracts.Track
	disabled map[string]bool
	midi     []midi.Message
	commands []Command
	console  []string
	sink     func(midi.Message)
}

// Option configures a Host.
type Option func(*Host)

// WithProjectName sets the project name reported by GetProjectName.
func WithProjectName(name string) Option {
	return func(h *Host) {
		h.name = name
	}
}

// Without removes capabilities from the resolver, to simulate an older host.
func Without(names ...string) Option {
	return func(h *Host) {
		for _, n := range names {
			h.disabled[n] = true
		}
	}
}

// WithMIDISink forwards every stuffed MIDI message to fn, after it is recorded.
func WithMIDISink(fn func(midi.Message)) Option {
	return func(h *Host) {
		h.sink = fn
	}
}

// New creates an empty project.
func New(opts ...Option) *Host {
	h := &Host{
		name:     "untitled.rpp",
		nextID:   firstTrackID,
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddTrack appends a track and returns its handle. A zero Volume is stored as 1.0.
func (h *Host) AddTrack(t Track) contracts.Track {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t.Volume == 0 {
		t.Volume = 1
	}
	t.Handle = h.allocate()
	tr := t
	h.tracks = append(h.tracks, &tr)
	return tr.Handle
}

// Snapshot returns a copy of the track at idx.
func (h *Host) Snapshot(idx int) (Track, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < 0 || idx >= len(h.tracks) {
		return Track{}, false
	}
	t := *h.tracks[idx]
	t.FX = append([]FX(nil), t.FX...)
	t.Sends = append([]Send(nil), t.Sends...)
	return t, true
}

// Len returns the number of tracks.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tracks)
}

// MIDI returns every message passed to StuffMIDIMessage, oldest first.
func (h *Host) MIDI() []midi.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]midi.Message(nil), h.midi...)
}

// NoteEvent is a decoded note message from the MIDI log. Channel is 0-based.
type NoteEvent struct {
	On       bool
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// Notes decodes the MIDI log into note events, skipping anything else.
func (h *Host) Notes() []NoteEvent {
	var out []NoteEvent
	for _, msg := range h.MIDI() {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			out = append(out, NoteEvent{On: true, Channel: ch, Key: key, Velocity: vel})
		case msg.GetNoteEnd(&ch, &key):
			out = append(out, NoteEvent{Channel: ch, Key: key})
		}
	}
	return out
}

// Commands returns every Main_OnCommand invocation.
func (h *Host) Commands() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Command(nil), h.commands...)
}

// Console returns the lines written with ShowConsoleMsg.
func (h *Host) Console() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.console...)
}

// GetFunc implements contracts.Resolver.
func (h *Host) GetFunc(name string) interface{} {
	if h.disabled[name] {
		return nil
	}
	switch name {
	case host.ShowConsoleMsg:
		return h.showConsoleMsg
	case host.EnumProjects:
		return h.enumProjects
	case host.GetProjectName:
		return h.getProjectName
	case host.MainOnCommand:
		return h.mainOnCommand
	case host.CountTracks:
		return h.countTracks
	case host.GetTrack:
		return h.getTrack
	case host.InsertTrackAtIndex:
		return h.insertTrackAtIndex
	case host.GetTrackName:
		return h.getTrackName
	case host.GetSetMediaTrackInfoString:
		return h.getSetMediaTrackInfoString
	case host.GetMediaTrackInfoValue:
		return h.getMediaTrackInfoValue
	case host.SetMediaTrackInfoValue:
		return h.setMediaTrackInfoValue
	case host.GetTrackColor:
		return h.getTrackColor
	case host.TrackFXGetCount:
		return h.fxCount
	case host.TrackFXGetFXName:
		return h.fxName
	case host.TrackFXGetEnabled:
		return h.fxEnabled
	case host.TrackFXGetPreset:
		return h.fxPreset
	case host.TrackFXGetNumParams:
		return h.fxNumParams
	case host.TrackFXGetParamName:
		return h.fxParamName
	case host.TrackFXGetParam:
		return h.fxParam
	case host.TrackFXGetFormattedParamValue:
		return h.fxFormattedParam
	case host.GetTrackNumSends:
		return h.numSends
	case host.GetTrackSendInfoValue:
		return h.sendInfoValue
	case host.StuffMIDIMessage:
		return h.stuffMIDIMessage
	}
	return nil
}

func (h *Host) allocate() contracts.Track {
	id := h.nextID
	h.nextID += trackIDStep
	return id
}

// find must be called with h.mu held.
func (h *Host) find(tr contracts.Track) *Track {
	for _, t := range h.tracks {
		if t.Handle == tr {
			return t
		}
	}
	return nil
}

func (h *Host) showConsoleMsg(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.console = append(h.console, msg)
}

func (h *Host) enumProjects(idx int) contracts.Project {
	if idx == -1 || idx == 0 {
		return currentProject
	}
	return 0
}

func (h *Host) getProjectName(proj contracts.Project) string {
	if proj != currentProject && proj != 0 {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.name
}

func (h *Host) mainOnCommand(command, flag int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, Command{ID: command, Flag: flag})
}

func (h *Host) countTracks(contracts.Project) int {
	return h.Len()
}

func (h *Host) getTrack(_ contracts.Project, idx int) contracts.Track {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < 0 || idx >= len(h.tracks) {
		return 0
	}
	return h.tracks[idx].Handle
}

func (h *Host) insertTrackAtIndex(idx int, _ bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < 0 || idx > len(h.tracks) {
		idx = len(h.tracks)
	}
	t := &Track{Handle: h.allocate(), Volume: 1}
	h.tracks = append(h.tracks, nil)
	copy(h.tracks[idx+1:], h.tracks[idx:])
	h.tracks[idx] = t
}

func (h *Host) getTrackName(tr contracts.Track) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.find(tr)
	if t == nil {
		return "", false
	}
	return t.Name, true
}

func (h *Host) getSetMediaTrackInfoString(tr contracts.Track, param, value string, set bool) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.find(tr)
	if t == nil || param != host.ParamName {
		return "", false
	}
	if set {
		t.Name = value
	}
	return t.Name, true
}

func (h *Host) getMediaTrackInfoValue(tr contracts.Track, param string) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.find(tr)
	if t == nil {
		return 0
	}
	switch param {
	case host.ParamVolume:
		return t.Volume
	case host.ParamPan:
		return t.Pan
	case host.ParamMute:
		return boolValue(t.Mute)
	case host.ParamSolo:
		return float64(t.Solo)
	case host.ParamRecArm:
		return float64(t.RecArm)
	case host.ParamRecInput:
		return float64(t.RecInput)
	case host.ParamRecMode:
		return float64(t.RecMode)
	case host.ParamRecMonitor:
		return float64(t.RecMonitor)
	}
	return 0
}

func (h *Host) setMediaTrackInfoValue(tr contracts.Track, param string, v float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.find(tr)
	if t == nil {
		return false
	}
	switch param {
	case host.ParamVolume:
		t.Volume = v
	case host.ParamPan:
		t.Pan = v
	case host.ParamMute:
		t.Mute = v != 0
	case host.ParamSolo:
		t.Solo = int(v)
	case host.ParamRecArm:
		t.RecArm = int(v)
	case host.ParamRecInput:
		t.RecInput = int(v)
	case host.ParamRecMode:
		t.RecMode = int(v)
	case host.ParamRecMonitor:
		t.RecMonitor = int(v)
	default:
		return false
	}
	return true
}

func (h *Host) getTrackColor(tr contracts.Track) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t := h.find(tr); t != nil {
		return t.Color
	}
	return 0
}

// fx must be called with h.mu held.
func (h *Host) fx(tr contracts.Track, idx int) *FX {
	t := h.find(tr)
	if t == nil || idx < 0 || idx >= len(t.FX) {
		return nil
	}
	return &t.FX[idx]
}

// param must be called with h.mu held.
func (h *Host) param(tr contracts.Track, fx, idx int) *FXParam {
	f := h.fx(tr, fx)
	if f == nil || idx < 0 || idx >= len(f.Params) {
		return nil
	}
	return &f.Params[idx]
}

func (h *Host) fxCount(tr contracts.Track) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t := h.find(tr); t != nil {
		return len(t.FX)
	}
	return 0
}

func (h *Host) fxName(tr contracts.Track, fx int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f := h.fx(tr, fx); f != nil {
		return f.Name, true
	}
	return "", false
}

func (h *Host) fxEnabled(tr contracts.Track, fx int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.fx(tr, fx)
	return f != nil && f.Enabled
}

func (h *Host) fxPreset(tr contracts.Track, fx int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f := h.fx(tr, fx); f != nil && f.Preset != "" {
		return f.Preset, true
	}
	return "", false
}

func (h *Host) fxNumParams(tr contracts.Track, fx int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f := h.fx(tr, fx); f != nil {
		return len(f.Params)
	}
	return 0
}

func (h *Host) fxParamName(tr contracts.Track, fx, idx int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p := h.param(tr, fx, idx); p != nil {
		return p.Name, true
	}
	return "", false
}

func (h *Host) fxParam(tr contracts.Track, fx, idx int) (value, min, max float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p := h.param(tr, fx, idx); p != nil {
		return p.Value, p.Min, p.Max
	}
	return 0, 0, 0
}

func (h *Host) fxFormattedParam(tr contracts.Track, fx, idx int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p := h.param(tr, fx, idx); p != nil {
		return p.Formatted, true
	}
	return "", false
}

func (h *Host) numSends(tr contracts.Track, category int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.find(tr)
	if t == nil || category != host.SendCategorySend {
		return 0
	}
	return len(t.Sends)
}

// sendInfoValue returns P_DESTTRACK as the destination handle converted to a
// float, the way the host packs pointers into this accessor.
func (h *Host) sendInfoValue(tr contracts.Track, category, idx int, param string) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.find(tr)
	if t == nil || category != host.SendCategorySend || idx < 0 || idx >= len(t.Sends) {
		return 0
	}
	s := t.Sends[idx]
	switch param {
	case host.ParamDestTrack:
		return float64(s.Dest)
	case host.ParamVolume:
		return s.Volume
	case host.ParamPan:
		return s.Pan
	case host.ParamMute:
		return boolValue(s.Mute)
	}
	return 0
}

func (h *Host) stuffMIDIMessage(_ int, msg []byte) {
	m := append(midi.Message(nil), msg...)
	h.mu.Lock()
	h.midi = append(h.midi, m)
	sink := h.sink
	h.mu.Unlock()
	if sink != nil {
		sink(m)
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
