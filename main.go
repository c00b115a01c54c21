package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"smscsim/sqlog"
)

var (
	appName        = "SMSCSim"
	version        = "1.0.0"
	build          = "" // git build number
	configFileName = "config.yaml"
	debug          = false
)

func init() {
	fmt.Fprintf(os.Stderr, "### %s %s", appName, version)
	if build != "" {
		fmt.Fprintf(os.Stderr, " [#%s]", build)
	}
	fmt.Fprintln(os.Stderr)

	flag.StringVar(&configFileName, "config", configFileName, "configuration `fileName`")
	flag.BoolVar(&debug, "debug", debug, "log at debug level regardless of configuration")
}

func main() {
	flag.Parse()
	for { // load and restart loop, SIGUSR1 reloads the configuration
		logrus.Infof("Loading %q...", configFileName)
		config, err := LoadConfig(configFileName)
		if err != nil {
			logrus.WithError(err).Fatal("Error loading config")
		}
		setupLogging(config)

		var audit *sqlog.DB
		if dsn := config.Snapshot().AuditDSN; dsn != "" {
			audit, err = sqlog.Connect(dsn)
			if err != nil {
				logrus.WithError(err).Fatal("Error connecting audit log")
			}
		}

		ledger := NewLedger(config.Snapshot().MaxStoredMessages)
		smsc := NewSMSC(ledger, audit, logrus.WithField("component", "smsc"))
		server := NewServer(smsc, ledger, config, logrus.WithField("component", "http"))
		errc := server.Start()

		sig := monitorSignals(errc, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
		server.Stop()
		if audit != nil {
			audit.Close()
		}
		if sig != syscall.SIGUSR1 {
			logrus.Info("[THE END]")
			return
		}
		logrus.Info("Reload signal...")
	}
}

func setupLogging(config *Config) {
	cfg := config.Snapshot()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	if cfg.LogFile != "" {
		logrus.AddHook(lfshook.NewHook(lfshook.PathMap{
			logrus.DebugLevel: cfg.LogFile,
			logrus.InfoLevel:  cfg.LogFile,
			logrus.WarnLevel:  cfg.LogFile,
			logrus.ErrorLevel: cfg.LogFile,
		}, &logrus.TextFormatter{}))
	}
}

// monitorSignals waits for one of the given signals or a server failure.
func monitorSignals(errc <-chan error, signals ...os.Signal) os.Signal {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, signals...)
	defer signal.Stop(signalChan)
	select {
	case sig := <-signalChan:
		return sig
	case err := <-errc:
		logrus.WithError(err).Error("Server failed")
		return os.Interrupt
	}
}
