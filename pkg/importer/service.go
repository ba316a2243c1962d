// Package importer orchestrates the legacy-content migration: fetch,
// transform, persist, and menu merge, with per-item status tracking.
package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/skolio/kabinet/pkg/boards"
	"github.com/skolio/kabinet/pkg/catalog"
	"github.com/skolio/kabinet/pkg/config"
	"github.com/skolio/kabinet/pkg/errcodes"
	"github.com/skolio/kabinet/pkg/models"
	"github.com/skolio/kabinet/pkg/transform"
)

const (
	StateIdle       = "idle"
	StateConfirming = "confirming"
	StateRunning    = "running"
)

const (
	ItemStatusPending   = "pending"
	ItemStatusImporting = "importing"
	ItemStatusSuccess   = "success"
	ItemStatusError     = "error"
)

// RunOptions is the programmatic surface of one import run.
type RunOptions struct {
	BookIDs       []int
	Category      string
	DownloadFiles bool
	Overwrite     bool
	// Selected holds item keys (see KnowledgeKey/DocumentKey); an empty set
	// selects everything.
	Selected      map[string]bool
	DestinationID string
}

func KnowledgeKey(id int) string { return fmt.Sprintf("knowledge:%d", id) }
func DocumentKey(id int) string  { return fmt.Sprintf("document:%d", id) }

// ItemReport tracks one selected item through the run.
type ItemReport struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RunReport is the user-visible state of the current (or last) run. No
// partial failure ever silently discards completed work: every item keeps
// its final status and the summary counts both sides.
type RunReport struct {
	ID             string        `json:"id"`
	Category       string        `json:"category"`
	State          string        `json:"state"`
	Items          []*ItemReport `json:"items"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	RewrittenLinks int           `json:"rewritten_links"`
	MenuMergeError string        `json:"menu_merge_error,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     *time.Time    `json:"finished_at,omitempty"`
}

type LegacyFetcher interface {
	FetchBook(ctx context.Context, id int) (*models.LegacyBook, error)
}

type ContentTransformer interface {
	TransformKnowledge(ctx context.Context, k *models.LegacyKnowledge, chapter *models.LegacyChapter, book *models.LegacyBook, opts transform.Options) (*transform.KnowledgeResult, error)
	TransformTextBlock(ctx context.Context, block *models.LegacyContentBlock, chapter *models.LegacyChapter, book *models.LegacyBook, opts transform.Options) (*transform.TextResult, error)
	TransformDocument(ctx context.Context, doc *models.LegacyContentBlockDocument, block *models.LegacyContentBlock, chapter *models.LegacyChapter, book *models.LegacyBook, opts transform.Options, linkedTextSlug string) (*transform.DocumentResult, error)
}

type MenuStore interface {
	FetchMenu(ctx context.Context, token, category string) ([]*models.MenuItem, error)
	ReplaceMenu(ctx context.Context, token, category string, menu []*models.MenuItem) error
}

type BoardImporter interface {
	ImportBoard(ctx context.Context, token, uuid string) (*boards.Board, error)
}

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type AssetConsumer interface {
	Record(ctx context.Context, capability catalog.Capability, assets []models.CatalogAsset)
}

type Service struct {
	legacy      LegacyFetcher
	transformer ContentTransformer
	menus       MenuStore
	boards      BoardImporter
	tokens      TokenSource
	collector   *catalog.Collector
	consumer    AssetConsumer
	capability  catalog.Capability
	throttle    time.Duration
	log         logger.Logger

	mu     sync.Mutex
	state  string
	report *RunReport
	// onFinish is a test hook signaled when a run's goroutine completes.
	onFinish func()
}

func NewService(cfg *config.Config, legacy LegacyFetcher, transformer ContentTransformer, menus MenuStore, boardImporter BoardImporter, tokens TokenSource, collector *catalog.Collector, consumer AssetConsumer, capability catalog.Capability) *Service {
	return &Service{
		legacy:      legacy,
		transformer: transformer,
		menus:       menus,
		boards:      boardImporter,
		tokens:      tokens,
		collector:   collector,
		consumer:    consumer,
		capability:  capability,
		throttle:    cfg.ImportThrottle,
		log:         logger.New(),
		state:       StateIdle,
	}
}

// Start begins an import run on its own goroutine. It fails with a conflict
// while another run is in flight, and fails closed without a resolvable
// access token before any content call is made. There is no cancellation
// once a run begins; re-running is idempotent thanks to deterministic slugs.
func (svc *Service) Start(ctx context.Context, opts RunOptions) (*RunReport, error) {
	svc.mu.Lock()
	if svc.state != StateIdle {
		svc.mu.Unlock()
		return nil, errcodes.Conflict("Import run")
	}
	svc.state = StateConfirming
	svc.mu.Unlock()

	// Auth failures are fatal to the whole run; the token source retries a
	// session refresh once internally before giving up.
	token, err := svc.tokens.Token(ctx)
	if err != nil {
		svc.setState(StateIdle)
		return nil, err
	}

	report := &RunReport{
		ID:        uuid.NewString(),
		Category:  opts.Category,
		State:     StateRunning,
		StartedAt: time.Now(),
	}

	svc.mu.Lock()
	svc.state = StateRunning
	svc.report = report
	svc.mu.Unlock()

	// The run detaches from the request context: a closed admin connection
	// must not abort a half-applied migration.
	runCtx := svc.log.Data(logger.Data{"run_id": report.ID, "category": opts.Category}).WithContext(context.Background())

	go svc.run(runCtx, token, opts)

	return svc.snapshot(), nil
}

// Current returns a snapshot of the current (or last finished) run.
func (svc *Service) Current() *RunReport {
	return svc.snapshot()
}

// PreviewBook fetches a legacy book so the operator can select items before
// confirming a run.
func (svc *Service) PreviewBook(ctx context.Context, id int) (*models.LegacyBook, error) {
	book, err := svc.legacy.FetchBook(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return book, nil
}

func (svc *Service) setState(state string) {
	svc.mu.Lock()
	svc.state = state
	if svc.report != nil {
		svc.report.State = state
	}
	svc.mu.Unlock()
}

func (svc *Service) snapshot() *RunReport {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.report == nil {
		return &RunReport{State: svc.state}
	}

	copied := *svc.report
	copied.State = svc.state
	copied.Items = make([]*ItemReport, len(svc.report.Items))
	for i, item := range svc.report.Items {
		c := *item
		copied.Items[i] = &c
	}
	if svc.report.FinishedAt != nil {
		t := *svc.report.FinishedAt
		copied.FinishedAt = &t
	}
	return &copied
}
