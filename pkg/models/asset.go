package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AssetKindImage     = "image"
	AssetKindAnimation = "animation"
	AssetKindAudio     = "audio"
	AssetKindDocument  = "document"
)

// CatalogAsset is one rehosted asset recorded in the shared asset catalog so
// editors can reuse it outside the import pipeline. The catalog table may not
// exist on every deployment; callers probe for it first.
type CatalogAsset struct {
	bun.BaseModel `bun:"table:catalog_assets,alias:ca"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Kind      string    `bun:",nullzero" json:"kind"`
	Name      string    `bun:",nullzero" json:"name"`
	URL       string    `bun:",nullzero" json:"url"`
	SourceURL string    `bun:",nullzero" json:"source_url"`
	Category  string    `bun:",nullzero" json:"category"`
	LegacyID  *int      `json:"legacy_id,omitempty"`
}
