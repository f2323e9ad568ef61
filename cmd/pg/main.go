package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/penguingram/messenger/internal/app"
	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/capture"
	"github.com/penguingram/messenger/internal/client"
	"github.com/penguingram/messenger/internal/notify"
	"github.com/penguingram/messenger/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const startTimeout = 15 * time.Second

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	headless := flag.Bool("headless", false, "run without the terminal UI; control it with pgctl")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		fatal(err)
	}
	name, err := app.ResolveProfile(*profileFlag, cfg)
	if err != nil {
		fatal(err)
	}

	if *headless {
		fx.New(app.Module(app.Params{Profile: name, Mode: "headless", Config: cfg})).Run()
		return
	}

	deps := tui.Deps{Profile: name, GlobalChannelID: cfg.GlobalChannelID}
	var (
		c        *client.Client
		recorder *capture.Recorder
		attacher *capture.Attacher
		caller   *capture.Caller
		notifier *notify.Notifier
		b        *bus.Bus
		logger   *zap.Logger
	)
	fxApp := fx.New(
		app.Module(app.Params{Profile: name, Mode: "tui", Config: cfg}),
		fx.NopLogger,
		fx.Populate(&c, &recorder, &attacher, &caller, &notifier, &b, &logger),
	)
	if err := fxApp.Err(); err != nil {
		fatal(err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fatal(err)
	}

	deps.Client, deps.Recorder, deps.Attacher, deps.Caller = c, recorder, attacher, caller
	deps.Notifier, deps.Bus, deps.Logger = notifier, b, logger
	runErr := tui.NewApp(deps).Run()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), startTimeout)
	defer stopCancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	if runErr != nil {
		fatal(runErr)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
