// Package router maps OSC addresses to handlers.
package router

import (
	"context"
	"net"
	"sort"

	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// Handler serves one address. It owns any reply; the router never sends one.
type Handler func(ctx context.Context, msg osc.Message, sender net.Addr)

// DefaultQuietRoutes are polled often enough that logging each receipt floods the console.
var DefaultQuietRoutes = []string{"/project/name/get"}

// Router is an immutable address table built once at load.
type Router struct {
	routes map[string]Handler
	quiet  map[string]bool
	logger contracts.Logger
}

// New copies routes into a router. Addresses in quiet are dispatched without
// a receipt log line.
func New(logger contracts.Logger, routes map[string]Handler, quiet ...string) *Router {
	r := &Router{
		routes: make(map[string]Handler, len(routes)),
		quiet:  make(map[string]bool, len(quiet)),
		logger: logger,
	}
	for addr, h := range routes {
		r.routes[addr] = h
	}
	for _, addr := range quiet {
		r.quiet[addr] = true
	}
	return r
}

// Addresses returns the routed addresses, sorted.
func (r *Router) Addresses() []string {
	out := make([]string, 0, len(r.routes))
	for addr := range r.routes {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs the handler for msg.Address and reports whether it ran.
// Unknown addresses are logged and dropped without a reply. Once ctx is done
// nothing is dispatched, so a bridge being unloaded stops touching the host
// even for the rest of a bundle. A panicking handler is recovered and logged.
func (r *Router) Dispatch(ctx context.Context, msg osc.Message, sender net.Addr) bool {
	if err := ctx.Err(); err != nil {
		r.logger.Debug("dropped after shutdown",
			r.logger.Field().String("address", msg.Address),
			r.logger.Field().Error("error", err))
		return false
	}
	h, ok := r.routes[msg.Address]
	if !ok {
		r.logger.Info("unknown route",
			r.logger.Field().String("address", msg.Address),
			r.logger.Field().String("from", addrString(sender)))
		return false
	}
	if !r.quiet[msg.Address] {
		r.logger.Info("osc received",
			r.logger.Field().String("address", msg.Address),
			r.logger.Field().String("from", addrString(sender)),
			r.logger.Field().Int("args", len(msg.Arguments)))
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("handler panicked",
				r.logger.Field().String("address", msg.Address),
				r.logger.Field().Any("panic", p))
		}
	}()
	h(ctx, msg, sender)
	return true
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
