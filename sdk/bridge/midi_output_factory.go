package bridge

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/reabridge/internal/midi/mididarwin"
	"github.com/leandrodaf/reabridge/internal/midi/midiwindows"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no MIDI output backend.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// outputInitializers maps OS names to corresponding MIDI output initializers.
var outputInitializers = map[string]func(*contracts.MIDIOutputOptions) (contracts.MIDIOutput, error){
	"darwin":  mididarwin.NewMIDIOutput,  // macOS (CoreMIDI) output initializer.
	"windows": midiwindows.NewMIDIOutput, // Windows (winmm) output initializer.
}

// NewMIDIOutput opens the hardware MIDI output backend of the current OS.
// The standalone daemon uses it as the note sink in place of a host.
func NewMIDIOutput(opts ...contracts.MIDIOutputOption) (contracts.MIDIOutput, error) {
	options := applyDefaultOutputOptions(opts...)
	if initializer, exists := outputInitializers[runtime.GOOS]; exists {
		return initializer(&options)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
