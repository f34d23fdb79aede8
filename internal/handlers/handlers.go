// Package handlers implements the OSC command set on top of the host
// capabilities and the note scheduler.
package handlers

import (
	"net"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/internal/router"
	"github.com/leandrodaf/reabridge/internal/scheduler"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Replier delivers a reply to the client that sent a command.
type Replier interface {
	Reply(sender net.Addr, msg osc.Message)
}

// Service holds what every handler needs. It is built once at load.
type Service struct {
	caps         *host.Capabilities
	notes        *scheduler.Scheduler
	replier      Replier
	logger       contracts.Logger
	fxParamLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithFXParamLimit caps the parameters listed per FX in a track scan.
func WithFXParamLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.fxParamLimit = n
		}
	}
}

// New creates a Service.
func New(caps *host.Capabilities, notes *scheduler.Scheduler, replier Replier, logger contracts.Logger, opts ...Option) *Service {
	s := &Service{
		caps:         caps,
		notes:        notes,
		replier:      replier,
		logger:       logger,
		fxParamLimit: contracts.DefaultFXParamLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the address table served by s.
func (s *Service) Routes() map[string]router.Handler {
	return map[string]router.Handler{
		"/project/name/get":  s.getProjectName,
		"/project/name/set":  s.setProjectName,
		"/project/add_track": s.addTrack,
		"/track/name/get":    s.getTrackName,
		"/track/name/set":    s.setTrackName,
		"/track/volume/get":  s.getTrackVolume,
		"/track/volume/set":  s.setTrackVolume,
		"/track/pan/get":     s.getTrackPan,
		"/track/pan/set":     s.setTrackPan,
		"/track/scan":        s.scanTrack,
		"/note":              s.playNote,
		"/note/stop_all":     s.stopAllNotes,
	}
}

func (s *Service) reply(sender net.Addr, address string, args ...interface{}) {
	s.replier.Reply(sender, osc.NewMessage(address, args...))
}

func (s *Service) replyError(sender net.Addr, address, reason string) {
	s.logger.Warn("command failed",
		s.logger.Field().String("address", address),
		s.logger.Field().String("reason", reason))
	s.reply(sender, address, statusError, reason)
}

func (s *Service) missingArg(msg osc.Message, name string) {
	s.logger.Warn("missing or mistyped argument",
		s.logger.Field().String("address", msg.Address),
		s.logger.Field().String("argument", name))
}

func unavailable(capability string) string {
	return capability + " unavailable"
}
