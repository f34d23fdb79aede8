// Command reabridge-ctl sends one OSC command to a running bridge and prints
// the replies that arrive on the reply port.
//
//	reabridge-ctl /track/volume/set 0 f:0.5
//	reabridge-ctl --wait 0 /note 1 64 100 500
package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/sdk/contracts"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		host      string
		port      int
		replyPort int
		wait      time.Duration
	)
	flag.StringVar(&host, "host", "127.0.0.1", "bridge host")
	flag.IntVarP(&port, "port", "p", 9877, "bridge OSC port")
	flag.IntVar(&replyPort, "reply-port", contracts.DefaultReplyPort, "local port the bridge replies to")
	flag.DurationVarP(&wait, "wait", "w", time.Second, "how long to wait for replies; 0 sends without listening")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <address> [args...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(host, port, replyPort, wait, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "reabridge-ctl:", err)
		os.Exit(1)
	}
}

func run(host string, port, replyPort int, wait time.Duration, words []string) error {
	if len(words) == 0 || !strings.HasPrefix(words[0], "/") {
		flag.Usage()
		return errors.New("an OSC address is required")
	}
	args, err := parseArgs(words[1:])
	if err != nil {
		return err
	}

	var conn net.PacketConn
	if wait > 0 {
		if conn, err = net.ListenPacket("udp", fmt.Sprintf(":%d", replyPort)); err != nil {
			return fmt.Errorf("listening for replies: %w", err)
		}
		defer conn.Close()
	}

	client := goosc.NewClient(host, port)
	if err := client.Send(goosc.NewMessage(words[0], args...)); err != nil {
		return fmt.Errorf("sending %s: %w", words[0], err)
	}
	if conn == nil {
		return nil
	}
	return receive(conn, wait)
}

// receive prints replies until wait passes with nothing new.
func receive(conn net.PacketConn, wait time.Duration) error {
	buf := make([]byte, 65535)
	got := 0
	for {
		if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
			return err
		}
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if got == 0 {
					return errors.New("no reply")
				}
				return nil
			}
			return err
		}
		msgs, err := osc.Decode(buf[:n])
		if err != nil {
			fmt.Fprintln(os.Stderr, "reabridge-ctl: malformed reply:", err)
			continue
		}
		for _, m := range msgs {
			printReply(os.Stdout, m)
			got++
		}
	}
}
