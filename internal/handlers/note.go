package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/internal/scheduler"
)

// Defaults for /note.
const (
	defaultChannel    = 1
	defaultPitch      = 60
	defaultVelocity   = 100
	defaultDurationMS = 1000

	// maxDurationMS keeps the duration within the int32 reply field and far
	// below the time.Duration overflow.
	maxDurationMS = math.MaxInt32
)

// playNote starts a note and lets the scheduler release it after duration_ms.
// Arguments, all optional: channel (1-16), pitch, velocity, duration_ms.
func (s *Service) playNote(_ context.Context, msg osc.Message, sender net.Addr) {
	const address = "/note/response"
	channel := intOr(msg, 0, defaultChannel)
	pitch := intOr(msg, 1, defaultPitch)
	velocity := intOr(msg, 2, defaultVelocity)
	durationMS := intOr(msg, 3, defaultDurationMS)

	if channel < 1 || channel > 16 {
		s.replyError(sender, address, fmt.Sprintf("Invalid MIDI channel %d", channel))
		return
	}
	if s.caps.StuffMIDIMessage == nil {
		s.replyError(sender, address, unavailable(host.StuffMIDIMessage))
		return
	}
	if durationMS < 0 {
		durationMS = 0
	}
	if durationMS > maxDurationMS {
		durationMS = maxDurationMS
	}

	key, err := s.notes.Play(channel, pitch, velocity, time.Duration(durationMS)*time.Millisecond)
	if err != nil {
		s.replyError(sender, address, noteError(err))
		return
	}
	s.logger.Info("note",
		s.logger.Field().Int("channel", channel),
		s.logger.Field().Uint8("pitch", key.Pitch),
		s.logger.Field().Int("velocity", velocity),
		s.logger.Field().Int("durationMs", durationMS))
	s.reply(sender, address, statusSuccess, int32(channel), int32(key.Pitch), int32(clampVelocity(velocity)), int32(durationMS))
}

// stopAllNotes silences every sounding voice on one channel.
func (s *Service) stopAllNotes(_ context.Context, msg osc.Message, sender net.Addr) {
	const address = "/note/stop_all/response"
	channel, ok := intArg(msg, 0)
	if !ok {
		s.missingArg(msg, "channel")
		s.replyError(sender, address, "missing channel")
		return
	}
	n, err := s.notes.StopAll(channel)
	if err != nil {
		s.replyError(sender, address, noteError(err))
		return
	}
	s.logger.Info("notes stopped", s.logger.Field().Int("channel", channel), s.logger.Field().Int("count", n))
	s.reply(sender, address, statusSuccess, int32(channel), int32(n))
}

func noteError(err error) string {
	if errors.Is(err, scheduler.ErrClosed) {
		return "note scheduler stopped"
	}
	return err.Error()
}

func clampVelocity(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	}
	return v
}
