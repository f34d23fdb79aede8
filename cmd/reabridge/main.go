// Command reabridge runs the OSC bridge outside a DAW, against a simulated
// project. Notes can be forwarded to a hardware MIDI output.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/reabridge/internal/config"
	"github.com/leandrodaf/reabridge/internal/host/simhost"
	"github.com/leandrodaf/reabridge/internal/logger"
	"github.com/leandrodaf/reabridge/sdk/bridge"
	"github.com/leandrodaf/reabridge/sdk/contracts"
	flag "github.com/spf13/pflag"
	"gitlab.com/gomidi/midi/v2"
)

func main() {
	var (
		configPath  string
		listen      string
		replyPort   int
		logLevel    string
		logFile     string
		midiOut     int
		listOutputs bool
	)
	flag.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flag.StringVar(&listen, "listen", contracts.DefaultListenAddr, "address to receive OSC on")
	flag.IntVar(&replyPort, "reply-port", contracts.DefaultReplyPort, "port replies are sent to; 0 replies to the sender's port")
	flag.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&logFile, "log-file", "", "write logs to file instead of stderr")
	flag.IntVar(&midiOut, "midi-out", config.NoMIDIOutput, "forward notes to the hardware MIDI output at this index")
	flag.BoolVar(&listOutputs, "list-midi-outputs", false, "print the hardware MIDI outputs and exit")
	flag.Parse()

	log := logger.NewZapLogger()

	if listOutputs {
		if err := printOutputs(log); err != nil {
			log.Error("Failed to list MIDI outputs", log.Field().Error("error", err))
			os.Exit(1)
		}
		return
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Error("Failed to load config", log.Field().String("path", configPath), log.Field().Error("error", err))
			os.Exit(1)
		}
	}
	if flag.CommandLine.Changed("listen") {
		cfg.Listen = listen
	}
	if flag.CommandLine.Changed("reply-port") {
		cfg.ReplyPort = replyPort
	}
	if flag.CommandLine.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flag.CommandLine.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flag.CommandLine.Changed("midi-out") {
		cfg.MIDIOutput = midiOut
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid settings", log.Field().Error("error", err))
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("reabridge stopped with an error", log.Field().Error("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log contracts.Logger) error {
	hostOpts := []simhost.Option{simhost.WithProjectName(cfg.Project.Name)}
	if cfg.MIDIOutput != config.NoMIDIOutput {
		out, err := openOutput(cfg.MIDIOutput, log)
		if err != nil {
			return err
		}
		defer out.Stop()
		hostOpts = append(hostOpts, simhost.WithMIDISink(func(msg midi.Message) {
			if err := out.Send(msg); err != nil {
				log.Warn("MIDI output send failed", log.Field().String("msg", msg.String()), log.Field().Error("error", err))
			}
		}))
	}

	sim := simhost.New(hostOpts...)
	for _, t := range cfg.Project.Tracks {
		sim.AddTrack(simhost.Track{Name: t.Name, Volume: t.Volume, Pan: t.Pan})
	}

	opts := append(cfg.Options(), contracts.WithLogger(log), contracts.WithHostConsole(false))
	b, err := bridge.OnLoad(sim, opts...)
	if err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Info("Shutting down", log.Field().String("signal", sig.String()))
	return b.Stop()
}

func openOutput(idx int, log contracts.Logger) (contracts.MIDIOutput, error) {
	out, err := bridge.NewMIDIOutput(contracts.WithOutputLogger(log))
	if err != nil {
		return nil, err
	}
	if err := out.SelectDevice(idx); err != nil {
		out.Stop()
		return nil, fmt.Errorf("selecting MIDI output %d: %w", idx, err)
	}
	return out, nil
}

func printOutputs(log contracts.Logger) error {
	out, err := bridge.NewMIDIOutput(contracts.WithOutputLogger(log))
	if err != nil {
		return err
	}
	defer out.Stop()

	devices, err := out.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return errors.New("no MIDI outputs")
	}
	for i, d := range devices {
		fmt.Printf("%d\t%s\n", i, d)
	}
	return nil
}
