package handlers

import (
	"context"
	"net"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/osc"
)

// Defaults for /project/add_track.
const (
	defaultTrackPosition = -1
	defaultTrackInput    = -1
	defaultRecordMode    = 2
)

func (s *Service) getProjectName(_ context.Context, _ osc.Message, sender net.Addr) {
	name, ok := s.caps.ProjectName()
	if !ok {
		s.logger.Debug("project name unavailable")
		return
	}
	s.reply(sender, "/project/name/response", name)
}

// setProjectName acknowledges a rename. Renaming means saving the project
// under a new file, which the host only offers through Main_OnCommand.
func (s *Service) setProjectName(_ context.Context, msg osc.Message, sender net.Addr) {
	const address = "/project/name/set/response"
	name, ok := stringArg(msg, 0)
	if !ok {
		s.missingArg(msg, "name")
		return
	}
	if s.caps.MainOnCommand == nil {
		s.replyError(sender, address, unavailable(host.MainOnCommand))
		return
	}
	s.logger.Info("project rename requested", s.logger.Field().String("name", name))
	s.reply(sender, address, statusSuccess, name)
}

// addTrack inserts a track and configures it. Arguments, all optional:
// position (-1 appends), name, record input (-1 leaves it unset), armed, record mode.
func (s *Service) addTrack(_ context.Context, msg osc.Message, sender net.Addr) {
	const address = "/project/add_track/response"
	position := intOr(msg, 0, defaultTrackPosition)
	name := stringOr(msg, 1, "")
	input := intOr(msg, 2, defaultTrackInput)
	armed := boolOr(msg, 3, false)
	mode := intOr(msg, 4, defaultRecordMode)

	for _, need := range []string{host.InsertTrackAtIndex, host.CountTracks, host.GetTrack} {
		if !s.caps.Has(need) {
			s.replyError(sender, address, unavailable(need))
			return
		}
	}

	count, _ := s.caps.TrackCount()
	at := position
	if at < 0 || at > count {
		at = count
	}
	s.caps.InsertTrackAtIndex(at, false)

	tr, ok := s.caps.Track(at)
	if !ok {
		s.replyError(sender, address, "inserted track not found")
		return
	}
	if name != "" && !s.caps.SetTrackName(tr, name) {
		s.logger.Warn("could not name new track", s.logger.Field().Int("index", at))
	}
	if input >= 0 {
		s.caps.SetTrackValue(tr, host.ParamRecInput, float64(input))
	}
	s.caps.SetTrackValue(tr, host.ParamRecArm, boolFloat(armed))
	s.caps.SetTrackValue(tr, host.ParamRecMode, float64(mode))

	s.logger.Info("track added",
		s.logger.Field().Int("index", at),
		s.logger.Field().String("name", name),
		s.logger.Field().Int("input", input),
		s.logger.Field().Bool("armed", armed),
		s.logger.Field().Int("recordMode", mode))
	s.reply(sender, address, int32(at))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
