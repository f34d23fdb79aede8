package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leandrodaf/reabridge/internal/osc"
)

// parseArgs turns command-line words into OSC arguments. A word may carry an
// explicit type prefix (i:, f:, s:); otherwise integers, floats and true/false
// are recognised and anything else is a string.
func parseArgs(words []string) ([]interface{}, error) {
	args := make([]interface{}, 0, len(words))
	for _, w := range words {
		a, err := parseArg(w)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, nil
}

func parseArg(w string) (interface{}, error) {
	if len(w) > 2 && w[1] == ':' {
		v := w[2:]
		switch w[0] {
		case 'i':
			n, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("argument %q: %w", w, err)
			}
			return int32(n), nil
		case 'f':
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return nil, fmt.Errorf("argument %q: %w", w, err)
			}
			return float32(f), nil
		case 's':
			return v, nil
		}
	}
	if n, err := strconv.ParseInt(w, 10, 32); err == nil {
		return int32(n), nil
	}
	if f, err := strconv.ParseFloat(w, 32); err == nil && strings.ContainsAny(w, ".eE") {
		return float32(f), nil
	}
	switch w {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return w, nil
}

// printReply writes msg on one line. Blob arguments holding an encoded OSC
// message, as the track scan sends, are expanded on indented lines below.
func printReply(w io.Writer, msg osc.Message) {
	fmt.Fprintln(w, msg)
	for _, a := range msg.Arguments {
		b, ok := a.([]byte)
		if !ok {
			continue
		}
		inner, err := osc.Decode(b)
		if err != nil {
			continue
		}
		for _, m := range inner {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
}
