// Package transform maps legacy entities to target page documents. Each
// legacy knowledge item becomes one lesson page (plus an optional worksheet
// page), and each content-block document becomes a worksheet page with an
// extended-worksheet cross-link bundle.
package transform

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/skolio/kabinet/pkg/models"
	"github.com/skolio/kabinet/pkg/slugify"
)

// Options carries the caller's choices through one transformation.
type Options struct {
	Token         string
	Category      string
	DownloadFiles bool
	Overwrite     bool
}

// Rehoster moves external assets into platform storage, degrading to "keep
// the original URL" on failure.
type Rehoster interface {
	Rehost(ctx context.Context, token, sourceURL, destFolder string) (string, bool)
	RehostPDFThumbnail(ctx context.Context, token, pdfURL, destFolder string) (string, bool)
}

// PageStore persists target pages with upsert-on-conflict semantics.
type PageStore interface {
	UpsertPage(ctx context.Context, token string, page *models.Page, overwrite bool) error
}

// AssetSink receives every rehosted animation/image for the shared asset
// catalog. Collection is fire-and-forget; the sink never fails.
type AssetSink interface {
	Add(asset models.CatalogAsset)
}

type Transformer struct {
	rehoster Rehoster
	pages    PageStore
	assets   AssetSink
}

func New(rehoster Rehoster, pages PageStore, assets AssetSink) *Transformer {
	return &Transformer{
		rehoster: rehoster,
		pages:    pages,
		assets:   assets,
	}
}

// KnowledgeResult describes the pages created for one knowledge item.
type KnowledgeResult struct {
	Slug           string
	Title          string
	CoverImageURL  string
	WorksheetSlug  string
	WorksheetTitle string
}

// TransformKnowledge builds and persists the lesson page for one knowledge
// item. When the item carries a worksheet PDF a second, independent worksheet
// page is synthesized; its failure never fails the lesson.
func (t *Transformer) TransformKnowledge(ctx context.Context, k *models.LegacyKnowledge, chapter *models.LegacyChapter, book *models.LegacyBook, opts Options) (*KnowledgeResult, error) {
	log := logger.FromContext(ctx)
	slug := slugify.Make(k.Name)
	folder := slugify.Make(book.Name)

	content := t.buildKnowledgeHTML(ctx, k, folder, opts)

	coverURL := k.ImageURL
	if opts.DownloadFiles && k.ImageURL != "" {
		if rehosted, ok := t.rehoster.Rehost(ctx, opts.Token, k.ImageURL, folder); ok {
			coverURL = rehosted
			t.recordAsset(models.AssetKindImage, k.Name, rehosted, k.ImageURL, opts.Category, k.ID)
		}
	}

	page := &models.Page{
		Slug:         slug,
		Title:        k.Name,
		Content:      content,
		DocumentType: models.DocumentTypeLesson,
		Category:     opts.Category,
		LegacyIDs:    []int{k.ID},
		LegacyMetadata: map[string]string{
			"book":      book.Name,
			"bookId":    strconv.Itoa(book.ID),
			"chapter":   chapter.Name,
			"chapterId": strconv.Itoa(chapter.ID),
			"subject":   book.Subject.Name,
		},
	}

	if err := t.pages.UpsertPage(ctx, opts.Token, page, opts.Overwrite); err != nil {
		return nil, err
	}

	result := &KnowledgeResult{
		Slug:          slug,
		Title:         k.Name,
		CoverImageURL: coverURL,
	}

	// The worksheet page is an independent sub-creation.
	if k.PDFURL != "" {
		wsSlug, err := t.createKnowledgeWorksheet(ctx, k, book, folder, opts)
		if err != nil {
			log.Err(err).Warn("worksheet page creation failed", logger.Data{"knowledge_id": k.ID, "slug": slug})
		} else {
			result.WorksheetSlug = wsSlug
			result.WorksheetTitle = worksheetTitle(k.Name)
		}
	}

	return result, nil
}

func worksheetTitle(name string) string {
	return fmt.Sprintf("%s – pracovní list", name)
}

func (t *Transformer) createKnowledgeWorksheet(ctx context.Context, k *models.LegacyKnowledge, book *models.LegacyBook, folder string, opts Options) (string, error) {
	pdfURL := t.maybeRehost(ctx, k.PDFURL, folder, opts)
	solutionURL := t.maybeRehost(ctx, k.SolutionURL, folder, opts)

	slug := slugify.Make(worksheetTitle(k.Name))

	page := &models.Page{
		Slug:         slug,
		Title:        worksheetTitle(k.Name),
		Content:      buildWorksheetViewerHTML("", pdfURL, solutionURL),
		DocumentType: models.DocumentTypeWorksheet,
		Category:     opts.Category,
		LegacyIDs:    []int{k.ID},
		LegacyMetadata: map[string]string{
			"book":   book.Name,
			"bookId": strconv.Itoa(book.ID),
		},
		WorksheetData: &models.WorksheetData{
			SolutionURL: solutionURL,
		},
	}

	if err := t.pages.UpsertPage(ctx, opts.Token, page, opts.Overwrite); err != nil {
		return "", errors.WithMessage(err, "worksheet upsert failed")
	}

	return slug, nil
}

// maybeRehost rehosts when downloads are enabled, keeping the original URL on
// any failure or when downloading is disabled.
func (t *Transformer) maybeRehost(ctx context.Context, sourceURL, folder string, opts Options) string {
	if sourceURL == "" || !opts.DownloadFiles {
		return sourceURL
	}
	if rehosted, ok := t.rehoster.Rehost(ctx, opts.Token, sourceURL, folder); ok {
		return rehosted
	}
	return sourceURL
}

func (t *Transformer) recordAsset(kind, name, url, sourceURL, category string, legacyID int) {
	if t.assets == nil || url == "" {
		return
	}
	id := legacyID
	t.assets.Add(models.CatalogAsset{
		Kind:      kind,
		Name:      name,
		URL:       url,
		SourceURL: sourceURL,
		Category:  category,
		LegacyID:  &id,
	})
}
