package handlers

import (
	"context"
	"fmt"
	"net"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// Addresses of the sub-messages packed into the scan reply blobs.
const (
	ScanFXAddress    = "/track/scan/fx"
	ScanSendsAddress = "/track/scan/sends"
)

// scanTrack replies with everything known about one track. A capability the
// host lacks contributes "", 0 or false; the reply is sent regardless.
func (s *Service) scanTrack(_ context.Context, msg osc.Message, sender net.Addr) {
	const address = "/track/scan/response"
	idx := intOr(msg, 0, -1)
	if idx < 0 {
		s.replyError(sender, address, "Invalid track index")
		return
	}
	if s.caps.GetTrack == nil {
		s.replyError(sender, address, unavailable(host.GetTrack))
		return
	}
	tr, ok := s.caps.Track(idx)
	if !ok {
		s.replyError(sender, address, "Track not found")
		return
	}
	s.logger.Debug("scanning track", s.logger.Field().Int("index", idx))

	c := s.caps
	name, _ := c.TrackName(tr)
	value := func(param string) float64 {
		v, _ := c.TrackValue(tr, param)
		return v
	}
	color := 0
	if c.GetTrackColor != nil {
		color = c.GetTrackColor(tr)
	}

	s.reply(sender, address,
		statusSuccess,
		int32(idx),
		name,
		float32(value(host.ParamVolume)),
		float32(value(host.ParamPan)),
		value(host.ParamMute) > 0,
		value(host.ParamSolo) > 0,
		value(host.ParamRecArm) > 0,
		int32(value(host.ParamRecInput)),
		int32(value(host.ParamRecMode)),
		int32(value(host.ParamRecMonitor)),
		int32(color),
		s.encodeBlob(ScanFXAddress, s.scanFX(tr)),
		s.encodeBlob(ScanSendsAddress, s.scanSends(tr)),
	)
}

// scanFX lists [count, then per FX: name, bypassed, preset, param_count, then
// per listed param: name, value, min, max, formatted].
func (s *Service) scanFX(tr contracts.Track) []interface{} {
	c := s.caps
	count := 0
	if c.TrackFXGetCount != nil {
		count = c.TrackFXGetCount(tr)
	}
	args := []interface{}{int32(count)}

	for fx := 0; fx < count; fx++ {
		name := ""
		if c.TrackFXGetFXName != nil {
			if n, ok := c.TrackFXGetFXName(tr, fx); ok {
				name = n
			} else {
				name = "Unknown"
			}
		}
		bypassed := false
		if c.TrackFXGetEnabled != nil {
			bypassed = !c.TrackFXGetEnabled(tr, fx)
		}
		preset := ""
		if c.TrackFXGetPreset != nil {
			preset, _ = c.TrackFXGetPreset(tr, fx)
		}
		params := 0
		if c.TrackFXGetNumParams != nil {
			params = c.TrackFXGetNumParams(tr, fx)
		}
		args = append(args, name, bypassed, preset, int32(params))

		for p := 0; p < params && p < s.fxParamLimit; p++ {
			args = append(args, s.scanParam(tr, fx, p)...)
		}
	}
	return args
}

func (s *Service) scanParam(tr contracts.Track, fx, p int) []interface{} {
	c := s.caps
	name := ""
	if c.TrackFXGetParamName != nil {
		if n, ok := c.TrackFXGetParamName(tr, fx, p); ok {
			name = n
		} else {
			name = fmt.Sprintf("Param %d", p)
		}
	}
	var value, lo, hi float64
	if c.TrackFXGetParam != nil {
		value, lo, hi = c.TrackFXGetParam(tr, fx, p)
	}
	formatted := ""
	if c.TrackFXGetFormattedParamValue != nil {
		formatted, _ = c.TrackFXGetFormattedParamValue(tr, fx, p)
	}
	return []interface{}{name, float32(value), float32(lo), float32(hi), formatted}
}

// scanSends lists [count, then per send: dest_name, dest_index, volume, pan, mute].
func (s *Service) scanSends(tr contracts.Track) []interface{} {
	c := s.caps
	count := 0
	if c.GetTrackNumSends != nil {
		count = c.GetTrackNumSends(tr, host.SendCategorySend)
	}
	args := []interface{}{int32(count)}

	for i := 0; i < count; i++ {
		info := func(param string) float64 {
			if c.GetTrackSendInfoValue == nil {
				return 0
			}
			return c.GetTrackSendInfoValue(tr, host.SendCategorySend, i, param)
		}

		// The host packs the destination handle into a float.
		dest := contracts.Track(uintptr(info(host.ParamDestTrack)))
		if dest != 0 {
			name, ok := c.TrackName(dest)
			if !ok {
				name = "Unknown"
			}
			args = append(args, name, int32(c.TrackIndex(dest)))
		} else {
			args = append(args, "None", int32(-1))
		}
		args = append(args,
			float32(info(host.ParamVolume)),
			float32(info(host.ParamPan)),
			info(host.ParamMute) > 0)
	}
	return args
}

func (s *Service) encodeBlob(address string, args []interface{}) []byte {
	b, err := osc.Encode(osc.NewMessage(address, args...))
	if err != nil {
		s.logger.Error("could not encode scan section",
			s.logger.Field().String("section", address),
			s.logger.Field().Error("error", err))
		return []byte{}
	}
	return b
}
