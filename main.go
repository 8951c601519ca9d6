package main

import (
	"context"
	"factbot/app/client/factiverse"
	"factbot/app/client/telegram"
	"factbot/app/client/whatsapp"
	"factbot/app/config"
	"factbot/app/server"
	"factbot/app/service/dispatch"
	"factbot/app/service/engine"
	"factbot/app/service/feedback"
	"factbot/app/service/history"
	"factbot/app/service/ocr"
	"factbot/app/service/queue"
	"factbot/app/service/routing"
	"factbot/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, factiverse.NewClient)
	do.Provide(di, whatsapp.NewClient)
	do.Provide(di, telegram.NewClient)
	do.Provide(di, history.New)
	do.Provide(di, routing.New)
	do.Provide(di, feedback.New)
	do.Provide(di, ocr.New)
	do.Provide(di, queue.New)
	do.Provide(di, dispatch.New)
	do.Provide(di, engine.New)
	do.Provide(di, server.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*engine.Service](di).Run(appCtx)

	go func() {
		if err := do.MustInvoke[*server.Server](di).Run(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-appCtx.Done()
}
