// Package bridge wires the OSC listener, command handlers and note scheduler
// to a host and manages their lifetime.
package bridge

import (
	"context"
	"net"
	"sync"

	"github.com/leandrodaf/reabridge/internal/emitter"
	"github.com/leandrodaf/reabridge/internal/handlers"
	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/listener"
	"github.com/leandrodaf/reabridge/internal/logger"
	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/internal/router"
	"github.com/leandrodaf/reabridge/internal/scheduler"
	"github.com/leandrodaf/reabridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap/zapcore"
)

// teeLogger is implemented by loggers that can mirror entries to another core.
type teeLogger interface {
	Tee(core zapcore.Core)
}

// syncLogger is implemented by loggers that buffer output.
type syncLogger interface {
	Sync() error
}

// Bridge is one loaded instance. It owns every goroutine it starts.
type Bridge struct {
	logger   contracts.Logger     // Logger shared by all components.
	caps     *host.Capabilities   // Host functions resolved at load, read-only afterwards.
	notes    *scheduler.Scheduler // Sounding voices and their pending note-offs.
	listener *listener.Listener   // Receive loop.
	router   *router.Router       // Address table.
	ctx      context.Context      // Cancelled by Stop; the router dispatches nothing afterwards.
	cancel   context.CancelFunc   // Cancels ctx.
	stopOnce sync.Once            // Ensures Stop() is executed only once.
}

// OnLoad resolves the host capabilities, binds the receive socket and starts
// serving. It fails only when the socket cannot be bound.
//
// resolver contracts.Resolver: Looks up host functions by name; nil behaves as an empty host.
// opts ...contracts.Option: A variadic list of option functions to customize the bridge.
func OnLoad(resolver contracts.Resolver, opts ...contracts.Option) (*Bridge, error) {
	options := applyDefaultOptions(opts...)
	log := options.Logger

	caps := host.Resolve(resolver, log)
	if !options.NoHostConsole && caps.ShowConsoleMsg != nil {
		if t, ok := log.(teeLogger); ok {
			t.Tee(logger.NewHostConsoleCore(caps.ShowConsoleMsg, zapcore.DebugLevel))
		}
	}
	if missing := caps.Missing(); len(missing) > 0 {
		log.Warn("host capabilities missing", log.Field().Any("capabilities", missing))
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		logger: log,
		caps:   caps,
		ctx:    ctx,
		cancel: cancel,
	}
	b.notes = scheduler.New(b.sendMIDI, log)

	l, err := listener.Listen(options.ListenAddr, b.handle, log, listener.WithReadTimeout(options.ReadTimeout))
	if err != nil {
		cancel()
		b.notes.Close()
		log.Error("bridge failed to load", log.Field().Error("error", err))
		return nil, err
	}
	b.listener = l

	replies := emitter.New(l.Conn(), options.ReplyPort, log)
	svc := handlers.New(caps, b.notes, replies, log, handlers.WithFXParamLimit(options.FXParamLimit))
	b.router = router.New(log, svc.Routes(), options.QuietRoutes...)

	l.Start()
	log.Info("bridge loaded",
		log.Field().String("listen", l.Addr().String()),
		log.Field().Int("replyPort", options.ReplyPort),
		log.Field().Int("routes", len(b.router.Addresses())))
	return b, nil
}

// Addr returns the address the listener is bound to.
func (b *Bridge) Addr() net.Addr {
	return b.listener.Addr()
}

// MissingCapabilities lists the host functions that were not resolved.
func (b *Bridge) MissingCapabilities() []string {
	return b.caps.Missing()
}

// Stop is the unload hook. It stops the receive loop, releases every sounding
// note and waits for all note-off goroutines. Safe to call more than once.
func (b *Bridge) Stop() error {
	var err error
	b.stopOnce.Do(func() {
		b.logger.Info("unloading bridge")
		b.cancel()
		err = b.listener.Stop()
		b.notes.Close()
		b.logger.Info("bridge unloaded")
		if s, ok := b.logger.(syncLogger); ok {
			_ = s.Sync()
		}
	})
	return err
}

func (b *Bridge) handle(msg osc.Message, sender net.Addr) {
	b.router.Dispatch(b.ctx, msg, sender)
}

// sendMIDI runs under the scheduler lock.
func (b *Bridge) sendMIDI(msg midi.Message) {
	if !b.caps.SendMIDI(msg) {
		b.logger.Debug("MIDI message dropped, no StuffMIDIMessage", b.logger.Field().String("msg", msg.String()))
	}
}

var _ contracts.Bridge = (*Bridge)(nil)
