package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/caarlos0/env/v6"
	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/comms"
	"github.com/CodedInternet/gobraille/content"
	"github.com/CodedInternet/gobraille/logger"
	"github.com/CodedInternet/gobraille/onboard"
	"github.com/CodedInternet/gobraille/onboard/hardware"
	"github.com/CodedInternet/gobraille/onboard/serial"
	"github.com/CodedInternet/gobraille/onboard/store"
)

type EnvConfig struct {
	JWT_ISSUER string `env:"JWT_ISSUER" envDefault:"DEV"`
	JWT_SECRET string `env:"JWT_SECRET"`
	DEBUG      bool   `env:"DEBUG" envDefault:"false"`
	JSON_LOGS  bool   `env:"JSON_LOGS" envDefault:"false"`
	SRCDIR     string `env:"SRCDIR" envDefault:"."`
	CONFIG     string `env:"CONFIG" envDefault:"braille.yaml"`
	DATA_DIR   string `env:"DATA_DIR" envDefault:"./tmp"`
	LISTEN     string `env:"LISTEN" envDefault:"0.0.0.0:8080"`

	DB        *storm.DB
	Journal   *store.Journal
	Device    *onboard.Device
	Router    *comms.Router
	Conductor *comms.Conductor
	Simulated bool
}

var (
	ENV *EnvConfig
)

func init() {
	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		panic(err)
	}
}

func main() {
	simulated := flag.Bool("sim", false, "Run against a simulated braille controller")
	port := flag.String("port", ENV.LISTEN, "Specify the ip:port to listen on")
	interactive := flag.Bool("shell", false, "Start the development shell on stdin")
	flag.Parse()

	if err := logger.Initialize(ENV.JSON_LOGS, ENV.DEBUG); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(ENV.DATA_DIR, 0755); err != nil {
		log.Fatalw("unable to create data directory", "dir", ENV.DATA_DIR, "error", err)
	}

	db, err := openDb(filepath.Join(ENV.DATA_DIR, "device.db"))
	if err != nil {
		log.Fatalw("unable to open database", "error", err)
	}
	defer db.Close()
	ENV.DB = db

	ENV.Journal, err = store.NewJournal(db)
	if err != nil {
		log.Fatalw("unable to open render journal", "error", err)
	}

	configFile := ENV.CONFIG
	if !filepath.IsAbs(configFile) {
		configFile = filepath.Join(ENV.SRCDIR, configFile)
	}
	config, err := onboard.LoadConfig(configFile)
	if err != nil {
		log.Fatalw("unable to load config", "file", configFile, "error", err)
	}

	st, err := store.Open(config.Device.StateDir)
	if err != nil {
		log.Fatalw("unable to open state directory", "dir", config.Device.StateDir, "error", err)
	}
	defer st.Close()

	//---
	// Connect the boards
	//---
	ENV.Simulated = *simulated
	var link hardware.Link
	var input *serial.InputLink
	if ENV.Simulated {
		log.Infow("running with a simulated braille controller")
		link = onboard.NewSimulatedLink()
	} else {
		links := config.Device.Discovery().Run()
		defer links.Close()

		// a nil *Port inside the interface would not read as missing
		if links.Braille != nil {
			link = links.Braille
		} else {
			log.Warnw("no braille controller found, renders will not move the display")
		}
		if links.Input != nil {
			input = serial.NewInputLink(links.Input)
		} else {
			log.Warnw("no input device found, only remote signals will be handled")
		}
	}

	ENV.Device, err = onboard.NewDevice(config, link, st, ENV.Journal)
	if err != nil {
		log.Fatalw("unable to initialise device", "error", err)
	}

	//---
	// Navigation
	//---
	modes, releaser := buildModes(config, ENV.Device, log)

	ENV.Router = comms.NewRouter(comms.NewStack(config.Navigation.History), modes, releaser)
	ENV.Router.ChangeCooldown = config.Navigation.ChangeCooldown
	ENV.Router.ConfirmDebounce = config.Navigation.ConfirmDebounce
	defer ENV.Router.Close()

	ENV.Conductor = comms.NewConductor(ENV.Device, ENV.Router)

	if input != nil {
		go comms.Pump(ctx, input, ENV.Router)
	}

	if *interactive {
		go newShell(ENV.Device, ENV.Router).Run()
	}

	//---
	// Serve the API
	//---
	server := &http.Server{
		Addr:              *port,
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()

	log.Infow("listening", "address", *port, "simulated", ENV.Simulated)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalw("server failed", "error", err)
	}
	log.Infow("shutting down")
}

func buildModes(config onboard.DeviceConfig, device *onboard.Device, log *zap.SugaredLogger) (*comms.Modes, comms.Releaser) {
	modes := comms.NewModes()
	modes.Renderer = device
	modes.Stories = content.NewLibrary(config.Content.Stories)
	modes.LessonStage = config.Content.LessonStage

	lessons, err := content.LoadLessons(config.Content.Lessons)
	if err != nil {
		log.Warnw("unable to load lessons", "file", config.Content.Lessons, "error", err)
	} else {
		modes.Lessons = lessons
	}

	releaser, err := comms.ConfigureModes(modes, config.Collaborators)
	if err != nil {
		log.Fatalw("unable to configure collaborators", "error", err)
	}
	return modes, releaser
}

func openDb(dbFile string) (db *storm.DB, err error) {
	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&Operator{}); err != nil {
		db.Close()
		return nil, err
	}

	return
}
