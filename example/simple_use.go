package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/reabridge/internal/logger"
	"github.com/leandrodaf/reabridge/sdk/bridge"
	"github.com/leandrodaf/reabridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// A host with one project, one track and a MIDI input that prints what it gets.
func main() {
	log := logger.NewZapLogger()

	const drums contracts.Track = 1
	volume := 1.0

	host := contracts.ResolverFunc(func(name string) interface{} {
		switch name {
		case "EnumProjects":
			return func(idx int) contracts.Project { return 1 }
		case "GetProjectName":
			return func(contracts.Project) string { return "demo.rpp" }
		case "CountTracks":
			return func(contracts.Project) int { return 1 }
		case "GetTrack":
			return func(_ contracts.Project, idx int) contracts.Track {
				if idx == 0 {
					return drums
				}
				return 0
			}
		case "GetTrackName":
			return func(contracts.Track) (string, bool) { return "drums", true }
		case "GetMediaTrackInfo_Value":
			return func(_ contracts.Track, param string) float64 {
				if param == "D_VOL" {
					return volume
				}
				return 0
			}
		case "SetMediaTrackInfo_Value":
			return func(_ contracts.Track, param string, v float64) bool {
				if param != "D_VOL" {
					return false
				}
				volume = v
				return true
			}
		case "StuffMIDIMessage":
			return func(_ int, msg []byte) { fmt.Println("MIDI:", midi.Message(msg)) }
		}
		return nil
	})

	b, err := bridge.OnLoad(host,
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.DebugLevel),
	)
	if err != nil {
		log.Error("Failed to load bridge", log.Field().Error("error", err))
		return
	}
	defer b.Stop()

	fmt.Println("Listening on", b.Addr(), "missing:", b.MissingCapabilities())
	fmt.Println("Try: reabridge-ctl /track/volume/set 0 f:0.5")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	<-sigs
}
