// Controller simulator: answers the elevator wire protocol on a serial
// device. Use this for local testing when you don't have the controller board.
//
// With -virtual a socat pair is created and the simulator serves one end;
// point LiftLink at the other (-port /tmp/ttyLIFT1).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	serial "go.bug.st/serial"

	"LiftLink/internal/device"
	"LiftLink/internal/util"
)

func main() {
	dev := flag.String("dev", "/tmp/ttyLIFT0", "serial device the simulator serves")
	baud := flag.Int("baud", device.DefaultBaudRate, "baud rate")
	floors := flag.Int("floors", device.DefaultSimFloors, "number of floors, ground included")
	step := flag.Duration("step", device.DefaultSimStep, "delay between floor reports")
	virtual := flag.Bool("virtual", false, "create a socat pair <dev> <-> /tmp/ttyLIFT1")
	level := flag.String("log-level", "debug", "log level")
	flag.Parse()

	if err := util.SetupLogger(*level); err != nil {
		log.Fatal().Err(err).Msg("[sim] logger")
	}

	if err := run(*dev, *baud, *floors, *step, *virtual); err != nil {
		log.Error().Err(err).Msg("[sim] stopped with error")
		os.Exit(1)
	}
}

// run owns every resource so deferred cleanup (socat pair, serial port)
// happens before main exits.
func run(dev string, baud, floors int, step time.Duration, virtual bool) error {
	if virtual {
		socat := util.NewSocatManager()
		defer socat.Cleanup()
		if err := socat.CreatePair(dev, "/tmp/ttyLIFT1"); err != nil {
			return fmt.Errorf("virtual serial pair: %w", err)
		}
	}

	port, err := device.OpenSerial(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open serial %s: %w", dev, err)
	}
	sd := device.NewSerialDevice(port, dev, time.Second)
	defer func() {
		if cerr := sd.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("[sim] close serial")
		}
	}()

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		<-sig
		close(stop)
	}()

	return device.NewSimulator(floors, step).Run(sd, stop)
}
