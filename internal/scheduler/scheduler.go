// Package scheduler tracks sounding MIDI voices and schedules their note-offs.
//
// A voice is keyed by (channel, pitch). Playing a key that is already sounding
// cuts the old voice off first. Every Play spawns one goroutine that sleeps for
// the note duration and then releases the voice, unless a later Play on the
// same key replaced it in the meantime; the replaced goroutine finds a
// different stamp in the table and does nothing.
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/reabridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

var (
	// ErrInvalidChannel is returned for channels outside 1..16.
	ErrInvalidChannel = errors.New("invalid MIDI channel")
	// ErrClosed is returned by Play after Close.
	ErrClosed = errors.New("scheduler closed")
)

// Sender delivers one MIDI message to the host. It is called with the
// scheduler lock held and must not call back into the scheduler.
type Sender func(msg midi.Message)

// VoiceKey identifies a voice. Channel is 1-based, as received on the wire.
type VoiceKey struct {
	Channel uint8
	Pitch   uint8
}

func (k VoiceKey) String() string {
	return fmt.Sprintf("ch%d/%d", k.Channel, k.Pitch)
}

// stamp identifies one issuance of a voice. seq makes two Play calls within
// the same clock tick distinguishable.
type stamp struct {
	issued time.Time
	seq    uint64
}

type activeVoice struct {
	key      VoiceKey
	velocity uint8
	stamp    stamp
	duration time.Duration
}

// Scheduler owns the voice table.
type Scheduler struct {
	mu     sync.Mutex
	voices map[VoiceKey]activeVoice
	seq    uint64
	closed bool

	send   Sender
	logger contracts.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now and time.After. Tests use it to fire note-offs by hand.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
		if after != nil {
			s.after = after
		}
	}
}

// New creates a scheduler that emits through send.
func New(send Sender, logger contracts.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		voices: make(map[VoiceKey]activeVoice),
		send:   send,
		logger: logger,
		now:    time.Now,
		after:  time.After,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Play starts a note on a 1-based channel and schedules its note-off after duration.
// Pitch and velocity are clamped to 0..127.
func (s *Scheduler) Play(channel, pitch, velocity int, duration time.Duration) (VoiceKey, error) {
	if channel < 1 || channel > 16 {
		return VoiceKey{}, fmt.Errorf("%w %d, must be 1-16", ErrInvalidChannel, channel)
	}
	if duration < 0 {
		duration = 0
	}
	key := VoiceKey{Channel: uint8(channel), Pitch: clamp7(pitch)}
	vel := clamp7(velocity)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return key, ErrClosed
	}

	if prev, ok := s.voices[key]; ok {
		s.logger.Debug("cutting off sounding voice", s.logger.Field().String("voice", prev.key.String()))
		s.noteOff(prev.key)
		delete(s.voices, key)
	}

	s.noteOn(key, vel)
	s.seq++
	st := stamp{issued: s.now(), seq: s.seq}
	s.voices[key] = activeVoice{key: key, velocity: vel, stamp: st, duration: duration}

	timer := s.after(duration)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-timer:
			s.expire(key, st)
		case <-s.done:
		}
	}()

	return key, nil
}

// expire releases key if it still holds the voice issued with st.
func (s *Scheduler) expire(key VoiceKey, st stamp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	current, ok := s.voices[key]
	if !ok || current.stamp != st {
		s.logger.Debug("stale note-off skipped", s.logger.Field().String("voice", key.String()))
		return
	}
	s.noteOff(key)
	delete(s.voices, key)
}

// StopAll silences every voice on a 1-based channel and returns how many were stopped.
func (s *Scheduler) StopAll(channel int) (int, error) {
	if channel < 1 || channel > 16 {
		return 0, fmt.Errorf("%w %d, must be 1-16", ErrInvalidChannel, channel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.voices {
		if int(key.Channel) != channel {
			continue
		}
		s.noteOff(key)
		delete(s.voices, key)
		n++
	}
	return n, nil
}

// Active returns the number of sounding voices.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

// Sounding reports whether key currently holds a voice.
func (s *Scheduler) Sounding(key VoiceKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.voices[key]
	return ok
}

// Close releases every sounding voice, wakes all pending note-off goroutines
// and waits for them. Nothing is sent after Close returns.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for key := range s.voices {
		s.noteOff(key)
		delete(s.voices, key)
	}
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) noteOn(key VoiceKey, velocity uint8) {
	msg := midi.NoteOn(key.Channel-1, key.Pitch, velocity)
	s.logger.Debug("note on", s.logger.Field().String("voice", key.String()), s.logger.Field().Uint8("velocity", velocity))
	s.send(msg)
}

func (s *Scheduler) noteOff(key VoiceKey) {
	msg := midi.NoteOff(key.Channel-1, key.Pitch)
	s.logger.Debug("note off", s.logger.Field().String("voice", key.String()))
	s.send(msg)
}

func clamp7(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	}
	return uint8(v)
}
