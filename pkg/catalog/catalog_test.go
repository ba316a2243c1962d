package catalog

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/skolio/kabinet/pkg/migrations"
	"github.com/skolio/kabinet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createCatalogTable(t *testing.T, db *bun.DB) {
	t.Helper()
	_, err := migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("nil database", func(t *testing.T) {
		assert.False(t, Probe(ctx, nil).Available)
	})

	t.Run("table missing", func(t *testing.T) {
		db := newTestDB(t)
		assert.False(t, Probe(ctx, db).Available)
	})

	t.Run("table present", func(t *testing.T) {
		db := newTestDB(t)
		createCatalogTable(t, db)
		assert.True(t, Probe(ctx, db).Available)
	})
}

func TestCollector(t *testing.T) {
	t.Run("drain returns and resets", func(t *testing.T) {
		c := NewCollector()
		c.Add(models.CatalogAsset{Kind: models.AssetKindImage, URL: "https://assets.example.com/a.png"})
		c.Add(models.CatalogAsset{Kind: models.AssetKindAudio, URL: "https://assets.example.com/b.mp3"})

		assets := c.Drain()
		require.Len(t, assets, 2)
		assert.Empty(t, c.Drain())
	})

	t.Run("concurrent adds are safe", func(t *testing.T) {
		c := NewCollector()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Add(models.CatalogAsset{Kind: models.AssetKindImage})
			}()
		}
		wg.Wait()

		assert.Len(t, c.Drain(), 50)
	})
}

func TestConsumerRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts when available", func(t *testing.T) {
		db := newTestDB(t)
		createCatalogTable(t, db)
		consumer := NewConsumer(db)

		consumer.Record(ctx, Capability{Available: true}, []models.CatalogAsset{
			{Kind: models.AssetKindImage, Name: "obrázek", URL: "https://assets.example.com/a.png", Category: "fyzika"},
		})

		count, err := db.NewSelect().Model((*models.CatalogAsset)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		stored := &models.CatalogAsset{}
		require.NoError(t, db.NewSelect().Model(stored).Limit(1).Scan(ctx))
		assert.Equal(t, "obrázek", stored.Name)
		assert.False(t, stored.CreatedAt.IsZero())
	})

	t.Run("skips when unavailable", func(t *testing.T) {
		consumer := NewConsumer(nil)

		// Must not panic on a nil db; the capability gate returns first.
		consumer.Record(ctx, Capability{}, []models.CatalogAsset{
			{Kind: models.AssetKindImage, URL: "https://assets.example.com/a.png"},
		})
	})

	t.Run("insert failure is swallowed", func(t *testing.T) {
		db := newTestDB(t)
		// No table created, so the insert fails; Record must not panic or
		// return anything.
		consumer := NewConsumer(db)

		consumer.Record(ctx, Capability{Available: true}, []models.CatalogAsset{
			{Kind: models.AssetKindImage, URL: "https://assets.example.com/a.png"},
		})
	})

	t.Run("no assets is a no-op", func(t *testing.T) {
		consumer := NewConsumer(nil)
		consumer.Record(ctx, Capability{Available: true}, nil)
	})
}
