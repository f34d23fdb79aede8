package handlers

import (
	"context"
	"net"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// track resolves the index in argument 0. Failures are logged and the
// command is dropped, matching the best-effort contract of the track routes.
func (s *Service) track(msg osc.Message) (int, contracts.Track, bool) {
	idx, ok := intArg(msg, 0)
	if !ok {
		s.missingArg(msg, "index")
		return 0, 0, false
	}
	tr, ok := s.caps.Track(idx)
	if !ok {
		s.logger.Warn("track not found",
			s.logger.Field().String("address", msg.Address),
			s.logger.Field().Int("index", idx))
		return idx, 0, false
	}
	return idx, tr, true
}

func (s *Service) getTrackName(_ context.Context, msg osc.Message, sender net.Addr) {
	idx, tr, ok := s.track(msg)
	if !ok {
		return
	}
	name, ok := s.caps.TrackName(tr)
	if !ok {
		s.logger.Warn("could not read track name", s.logger.Field().Int("index", idx))
		return
	}
	s.reply(sender, "/track/name/get/response", int32(idx), name)
}

func (s *Service) setTrackName(_ context.Context, msg osc.Message, sender net.Addr) {
	name, ok := stringArg(msg, 1)
	if !ok {
		s.missingArg(msg, "name")
		return
	}
	idx, tr, ok := s.track(msg)
	if !ok {
		return
	}
	if s.caps.GetSetMediaTrackInfoString == nil {
		s.replyError(sender, "/track/name/set/response", unavailable(host.GetSetMediaTrackInfoString))
		return
	}
	if !s.caps.SetTrackName(tr, name) {
		s.replyError(sender, "/track/name/set/response", "host rejected "+host.ParamName)
		return
	}
	s.reply(sender, "/track/name/set/response", int32(idx), name, statusSuccess)
}

func (s *Service) getTrackVolume(_ context.Context, msg osc.Message, sender net.Addr) {
	s.getTrackValue(msg, sender, host.ParamVolume, "/track/volume/get/response")
}

func (s *Service) setTrackVolume(_ context.Context, msg osc.Message, sender net.Addr) {
	s.setTrackValue(msg, sender, host.ParamVolume, "/track/volume/set/response")
}

func (s *Service) getTrackPan(_ context.Context, msg osc.Message, sender net.Addr) {
	s.getTrackValue(msg, sender, host.ParamPan, "/track/pan/get/response")
}

func (s *Service) setTrackPan(_ context.Context, msg osc.Message, sender net.Addr) {
	s.setTrackValue(msg, sender, host.ParamPan, "/track/pan/set/response")
}

func (s *Service) getTrackValue(msg osc.Message, sender net.Addr, param, address string) {
	idx, tr, ok := s.track(msg)
	if !ok {
		return
	}
	v, ok := s.caps.TrackValue(tr, param)
	if !ok {
		s.replyError(sender, address, unavailable(host.GetMediaTrackInfoValue))
		return
	}
	s.reply(sender, address, int32(idx), float32(v))
}

func (s *Service) setTrackValue(msg osc.Message, sender net.Addr, param, address string) {
	v, ok := floatArg(msg, 1)
	if !ok {
		s.missingArg(msg, "value")
		return
	}
	idx, tr, ok := s.track(msg)
	if !ok {
		return
	}
	if s.caps.SetMediaTrackInfoValue == nil {
		s.replyError(sender, address, unavailable(host.SetMediaTrackInfoValue))
		return
	}
	if !s.caps.SetTrackValue(tr, param, v) {
		s.replyError(sender, address, "host rejected "+param)
		return
	}
	s.reply(sender, address, int32(idx), float32(v), statusSuccess)
}
