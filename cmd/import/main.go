package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robinjoseph08/golib/logger"
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
	"github.com/skolio/kabinet/pkg/transform"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	app := &cli.App{
		Name:        "import",
		Usage:       "run a one-shot legacy content import",
		Description: "Fetches legacy books, transforms their content into pages, and merges the results into the category menu.",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:     "books",
				Usage:    "legacy book IDs to import",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "category",
				Usage:    "target menu category",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "download-files",
				Usage: "rehost assets onto our storage",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "overwrite pages that already exist",
			},
			&cli.StringSliceFlag{
				Name:  "select",
				Usage: "item keys to import (e.g. knowledge:12, document:7); empty selects everything",
			},
			&cli.StringFlag{
				Name:  "destination",
				Usage: "menu item ID to splice imported content under (defaults to the menu root)",
			},
		},
		Action: func(c *cli.Context) error {
			return runImport(c, cfg, log)
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func runImport(c *cli.Context, cfg *config.Config, log logger.Logger) error {
	ctx := context.Background()

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	capability := catalog.Probe(ctx, db)

	renderer, err := rehost.NewPDFRenderer()
	if err != nil {
		log.Warn("pdfium unavailable, thumbnails disabled", logger.Data{"error": err.Error()})
		renderer = nil
	} else {
		defer renderer.Close()
	}

	legacyClient := legacyapi.New(cfg)
	storageClient := objectstore.New(cfg)
	tokens := auth.NewTokenProvider(cfg, os.Getenv("ACCESS_TOKEN"), os.Getenv("REFRESH_TOKEN"))

	var rendererIface rehost.Renderer
	if renderer != nil {
		rendererIface = renderer
	}
	rehostService := rehost.NewService(cfg, legacyClient, storageClient, rendererIface)
	collector := catalog.NewCollector()
	transformer := transform.New(rehostService, pagestore.New(cfg), collector)

	svc := importer.NewService(cfg, legacyClient, transformer, menustore.New(cfg), boards.New(cfg), tokens, collector, catalog.NewConsumer(db), capability)

	selected := map[string]bool{}
	for _, key := range c.StringSlice("select") {
		selected[key] = true
	}

	report, err := svc.Start(ctx, importer.RunOptions{
		BookIDs:       c.IntSlice("books"),
		Category:      c.String("category"),
		DownloadFiles: c.Bool("download-files"),
		Overwrite:     c.Bool("overwrite"),
		Selected:      selected,
		DestinationID: c.String("destination"),
	})
	if err != nil {
		return err
	}
	log.Info("import started", logger.Data{"run_id": report.ID, "books": c.IntSlice("books")})

	for report.FinishedAt == nil {
		time.Sleep(250 * time.Millisecond)
		report = svc.Current()
	}

	for _, item := range report.Items {
		line := fmt.Sprintf("%-9s %s (%s)", item.Status, item.Label, item.Key)
		if item.Note != "" {
			line += " - " + item.Note
		}
		if item.Error != "" {
			line += " - " + item.Error
		}
		fmt.Println(line)
	}
	fmt.Printf("Imported %d items, %d failed, %d board links rewritten\n", report.Succeeded, report.Failed, report.RewrittenLinks)
	if report.MenuMergeError != "" {
		fmt.Printf("Menu merge failed: %s\n", report.MenuMergeError)
	}

	if report.Failed > 0 || report.MenuMergeError != "" {
		return cli.Exit("import finished with errors", 1)
	}
	return nil
}
