package handlers

import "github.com/leandrodaf/reabridge/internal/osc"

// Arguments are positional. Integers arrive as int32 from most clients and as
// int64 from some; floats as float32, float64 or a bare int32.

func intArg(msg osc.Message, i int) (int, bool) {
	if i >= len(msg.Arguments) {
		return 0, false
	}
	switch v := msg.Arguments[i].(type) {
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}

func floatArg(msg osc.Message, i int) (float64, bool) {
	if i >= len(msg.Arguments) {
		return 0, false
	}
	switch v := msg.Arguments[i].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func stringArg(msg osc.Message, i int) (string, bool) {
	if i >= len(msg.Arguments) {
		return "", false
	}
	s, ok := msg.Arguments[i].(string)
	return s, ok
}

func boolArg(msg osc.Message, i int) (bool, bool) {
	if i >= len(msg.Arguments) {
		return false, false
	}
	b, ok := msg.Arguments[i].(bool)
	return b, ok
}

func intOr(msg osc.Message, i, def int) int {
	if v, ok := intArg(msg, i); ok {
		return v
	}
	return def
}

func stringOr(msg osc.Message, i int, def string) string {
	if v, ok := stringArg(msg, i); ok {
		return v
	}
	return def
}

func boolOr(msg osc.Message, i int, def bool) bool {
	if v, ok := boolArg(msg, i); ok {
		return v
	}
	return def
}
