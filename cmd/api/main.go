package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/skolio/kabinet/pkg/auth"
	"github.com/skolio/kabinet/pkg/boards"
	"github.com/skolio/kabinet/pkg/catalog"
	"github.com/skolio/kabinet/pkg/config"
	"github.com/skolio/kabinet/pkg/database"
	"github.com/skolio/kabinet/pkg/importer"
	"github.com/skolio/kabinet/pkg/legacyapi"
	"github.com/skolio/kabinet/pkg/menustore"
	"github.com/skolio/kabinet/pkg/objectstore"
	"github.com/skolio/kabinet/pkg/pagestore"
	"github.com/skolio/kabinet/pkg/rehost"
	"github.com/skolio/kabinet/pkg/server"
	"github.com/skolio/kabinet/pkg/transform"
	"github.com/skolio/kabinet/pkg/version"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting kabinet", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	// The asset catalog is best-effort; a missing table just disables
	// indexing for this process.
	capability := catalog.Probe(ctx, db)
	log.Info("asset catalog probed", logger.Data{"available": capability.Available})

	renderer, err := rehost.NewPDFRenderer()
	if err != nil {
		log.Warn("pdfium unavailable, thumbnails disabled", logger.Data{"error": err.Error()})
		renderer = nil
	}

	legacyClient := legacyapi.New(cfg)
	pageClient := pagestore.New(cfg)
	menuClient := menustore.New(cfg)
	storageClient := objectstore.New(cfg)
	boardClient := boards.New(cfg)
	tokens := auth.NewTokenProvider(cfg, os.Getenv("ACCESS_TOKEN"), os.Getenv("REFRESH_TOKEN"))

	var rendererIface rehost.Renderer
	if renderer != nil {
		rendererIface = renderer
	}
	rehostService := rehost.NewService(cfg, legacyClient, storageClient, rendererIface)
	collector := catalog.NewCollector()
	transformer := transform.New(rehostService, pageClient, collector)

	importService := importer.NewService(cfg, legacyClient, transformer, menuClient, boardClient, tokens, collector, catalog.NewConsumer(db), capability)

	srv, err := server.New(cfg, importService)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		actualPort := listener.Addr().(*net.TCPAddr).Port
		log.Info("server started", logger.Data{"port": actualPort})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	if renderer != nil {
		if err := renderer.Close(); err != nil {
			log.Err(err).Error("pdfium close error")
		}
	}

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
