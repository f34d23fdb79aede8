package contracts

// MIDICommand is the status nibble of a channel voice message.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
)

// MIDIOutput defines a hardware MIDI output used as the note sink when the
// bridge runs outside a host.
type MIDIOutput interface {
	Stop() error                        // Closes the selected device and releases resources.
	ListDevices() ([]DeviceInfo, error) // Lists all available MIDI output devices.
	SelectDevice(deviceID int) error    // Opens a device by its index in ListDevices.
	Send(msg []byte) error              // Sends one short MIDI message to the selected device.
}

// MIDIOutputOptions configures a hardware MIDI output.
type MIDIOutputOptions struct {
	Logger     Logger // Logger for device events.
	ClientName string // Name the output registers with the OS MIDI service.
}

// MIDIOutputOption is a function that modifies MIDIOutputOptions.
type MIDIOutputOption func(*MIDIOutputOptions)

// WithOutputLogger sets the logger for the MIDI output.
func WithOutputLogger(l Logger) MIDIOutputOption {
	return func(opts *MIDIOutputOptions) {
		opts.Logger = l
	}
}

// WithClientName sets the name the output registers under.
func WithClientName(name string) MIDIOutputOption {
	return func(opts *MIDIOutputOptions) {
		opts.ClientName = name
	}
}
