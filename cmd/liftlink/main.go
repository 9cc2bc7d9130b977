// Package main is the entry point of LiftLink.
// It loads the configuration, constructs the System (controller link, read
// loop, trigger, dashboard, MQTT bridge) and runs it until interrupted.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"LiftLink/internal/core"
	"LiftLink/internal/model"
	"LiftLink/internal/shell"
	"LiftLink/internal/util"
)

func main() {
	cfgPath := flag.String("c", "configs/config.yml", "path to configuration file")
	port := flag.String("port", "", "serial port, overrides serial.port")
	level := flag.String("log-level", "", "log level, overrides log_level")
	sim := flag.Bool("sim", false, "use the in-memory controller simulator")
	interactive := flag.Bool("shell", false, "start the operator console")
	flag.Parse()

	if err := util.SetupLogger(""); err != nil {
		log.Fatal().Err(err).Msg("[main] logger")
	}

	cfg, err := model.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("[main] failed to load config")
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	if *port != "" {
		cfg.Serial.Port = *port
	}
	if *sim {
		cfg.Serial.Simulate = true
	}
	if err := util.SetupLogger(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("[main] logger")
	}
	log.Info().Str("config", *cfgPath).Msg("[main] starting LiftLink")

	sys, err := core.NewSystemFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[main] failed to create system")
	}
	if err := sys.StartAll(); err != nil {
		log.Fatal().Err(err).Msg("[main] failed to start system")
	}

	if *interactive {
		if err := shell.New(sys).Run(flag.Args()...); err != nil {
			log.Error().Err(err).Msg("[main] console")
		}
	} else {
		// wait for Ctrl+C or SIGTERM
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
	}

	log.Info().Msg("[main] shutting down")
	sys.StopAll()
	log.Info().Msg("[main] stopped cleanly")
}
