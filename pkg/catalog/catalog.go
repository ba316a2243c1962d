// Package catalog records rehosted assets in the shared asset catalog so the
// editor can reuse them outside the import pipeline. The catalog is strictly
// best-effort: deployments without the table are tolerated, and no catalog
// failure ever surfaces to the pipeline's result.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/skolio/kabinet/pkg/models"
	"github.com/uptrace/bun"
)

// Capability is the result of probing for the catalog table. It is threaded
// through the import run explicitly instead of cached in a package variable
// so repeated runs never race on a stale flag.
type Capability struct {
	Available bool
}

// Probe checks whether the catalog table exists in this deployment.
func Probe(ctx context.Context, db *bun.DB) Capability {
	if db == nil {
		return Capability{}
	}
	_, err := db.NewSelect().
		Model((*models.CatalogAsset)(nil)).
		Limit(1).
		Exists(ctx)
	return Capability{Available: err == nil}
}

// Collector is the transformer-side outbox. Discovered assets are appended
// during transformation and drained once by the consumer; collection itself
// never fails.
type Collector struct {
	mu     sync.Mutex
	assets []models.CatalogAsset
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(asset models.CatalogAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets = append(c.assets, asset)
}

// Drain returns the collected assets and resets the collector.
func (c *Collector) Drain() []models.CatalogAsset {
	c.mu.Lock()
	defer c.mu.Unlock()
	assets := c.assets
	c.assets = nil
	return assets
}

type Consumer struct {
	db *bun.DB
}

func NewConsumer(db *bun.DB) *Consumer {
	return &Consumer{db: db}
}

// Record inserts the drained assets. Errors are logged and swallowed; the
// catalog is a side channel, observed only through logs.
func (c *Consumer) Record(ctx context.Context, capability Capability, assets []models.CatalogAsset) {
	log := logger.FromContext(ctx)

	if !capability.Available {
		if len(assets) > 0 {
			log.Info("asset catalog unavailable, skipping indexing", logger.Data{"assets": len(assets)})
		}
		return
	}
	if len(assets) == 0 {
		return
	}

	now := time.Now()
	for i := range assets {
		if assets[i].CreatedAt.IsZero() {
			assets[i].CreatedAt = now
		}
	}

	_, err := c.db.NewInsert().
		Model(&assets).
		Exec(ctx)
	if err != nil {
		log.Err(errors.WithStack(err)).Warn("asset catalog insert failed", logger.Data{"assets": len(assets)})
		return
	}

	log.Info("assets indexed", logger.Data{"assets": len(assets)})
}
