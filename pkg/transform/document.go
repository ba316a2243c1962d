package transform

import (
	"context"
	"strconv"

	"github.com/skolio/kabinet/pkg/htmlutil"
	"github.com/skolio/kabinet/pkg/models"
	"github.com/skolio/kabinet/pkg/slugify"
)

// minMeaningfulTextLen is the shortest stripped rich-text body considered
// worth embedding ahead of the PDF viewer.
const minMeaningfulTextLen = 40

// TextResult describes the educational-text page created for a content block.
type TextResult struct {
	Slug  string
	Title string
}

// TextSlug derives the deterministic slug of a block's educational-text page.
// The orchestrator relies on this to reconstruct the cross-link target when
// the page already exists from a previous run.
func TextSlug(blockName string) string {
	return "ucebni-text-" + slugify.Make(blockName)
}

// TransformTextBlock builds the educational-text page for one content block.
// The orchestrator imports each distinct block once, before its dependent
// worksheet documents, so those can cross-link the text page.
func (t *Transformer) TransformTextBlock(ctx context.Context, block *models.LegacyContentBlock, chapter *models.LegacyChapter, book *models.LegacyBook, opts Options) (*TextResult, error) {
	folder := slugify.Make(book.Name)
	slug := TextSlug(block.Name)

	page := &models.Page{
		Slug:         slug,
		Title:        block.Name,
		Content:      t.rehostInlineImages(ctx, block.Description, folder, opts),
		DocumentType: models.DocumentTypeText,
		Category:     opts.Category,
		LegacyIDs:    []int{block.ID},
		LegacyMetadata: map[string]string{
			"book":      book.Name,
			"bookId":    strconv.Itoa(book.ID),
			"chapter":   chapter.Name,
			"chapterId": strconv.Itoa(chapter.ID),
		},
	}

	if err := t.pages.UpsertPage(ctx, opts.Token, page, opts.Overwrite); err != nil {
		return nil, err
	}

	return &TextResult{Slug: slug, Title: block.Name}, nil
}

// DocumentResult describes the worksheet page created for one content-block
// document, plus its extended-worksheet cross-link bundle.
type DocumentResult struct {
	Slug          string
	Title         string
	LegacyID      int
	CoverImageURL string
	Extended      *models.ExtendedWorksheet
}

// TransformDocument builds and persists the worksheet page for one
// content-block document, then assembles the extended-worksheet record from
// every sub-resource category. linkedTextSlug, when non-empty, is the slug of
// the block's already-imported educational-text page.
func (t *Transformer) TransformDocument(ctx context.Context, doc *models.LegacyContentBlockDocument, block *models.LegacyContentBlock, chapter *models.LegacyChapter, book *models.LegacyBook, opts Options, linkedTextSlug string) (*DocumentResult, error) {
	folder := slugify.Make(book.Name)
	slug := slugify.Make(doc.Name)

	pdfURL := t.maybeRehost(ctx, doc.DocumentURL, folder, opts)
	solutionURL := t.maybeRehost(ctx, doc.SolutionURL, folder, opts)
	methodologyURL := t.maybeRehost(ctx, doc.MethodologyURL, folder, opts)

	// The block body is embedded only when it carries meaningful text.
	body := ""
	if htmlutil.TextLength(doc.Description) >= minMeaningfulTextLen {
		body = t.rehostInlineImages(ctx, doc.Description, folder, opts)
	}

	extended := t.buildExtendedWorksheet(doc, solutionURL, methodologyURL, linkedTextSlug)

	page := &models.Page{
		Slug:         slug,
		Title:        doc.Name,
		Content:      buildWorksheetViewerHTML(body, pdfURL, solutionURL),
		DocumentType: models.DocumentTypeWorksheet,
		Category:     opts.Category,
		LegacyIDs:    []int{doc.ID},
		LegacyMetadata: map[string]string{
			"book":      book.Name,
			"bookId":    strconv.Itoa(book.ID),
			"chapter":   chapter.Name,
			"chapterId": strconv.Itoa(chapter.ID),
			"block":     block.Name,
			"blockId":   strconv.Itoa(block.ID),
		},
		WorksheetData: &models.WorksheetData{
			SolutionURL:    extended.SolutionURL,
			TextbookSlug:   extended.TextbookSlug,
			MethodologyURL: extended.MethodologyURL,
			Exercises:      extended.Exercises,
			Tests:          extended.Tests,
			Exams:          extended.Exams,
			Bonuses:        extended.Bonuses,
			Interactive:    extended.Interactive,
		},
	}

	if err := t.pages.UpsertPage(ctx, opts.Token, page, opts.Overwrite); err != nil {
		return nil, err
	}

	coverURL := doc.PreviewURL
	if opts.DownloadFiles {
		if doc.PreviewURL != "" {
			if rehosted, ok := t.rehoster.Rehost(ctx, opts.Token, doc.PreviewURL, folder); ok {
				coverURL = rehosted
				t.recordAsset(models.AssetKindImage, doc.Name, rehosted, doc.PreviewURL, opts.Category, doc.ID)
			}
		} else if doc.DocumentURL != "" {
			// No preview from the source; render one from the PDF.
			if thumb, ok := t.rehoster.RehostPDFThumbnail(ctx, opts.Token, doc.DocumentURL, folder); ok {
				coverURL = thumb
				t.recordAsset(models.AssetKindImage, doc.Name, thumb, doc.DocumentURL, opts.Category, doc.ID)
			}
		}
	}

	return &DocumentResult{
		Slug:          slug,
		Title:         doc.Name,
		LegacyID:      doc.ID,
		CoverImageURL: coverURL,
		Extended:      extended,
	}, nil
}

func (t *Transformer) buildExtendedWorksheet(doc *models.LegacyContentBlockDocument, solutionURL, methodologyURL, linkedTextSlug string) *models.ExtendedWorksheet {
	extended := &models.ExtendedWorksheet{
		SolutionURL:    solutionURL,
		TextbookSlug:   linkedTextSlug,
		MethodologyURL: methodologyURL,
	}

	for _, sub := range models.SubResourcesOf(doc) {
		u := sub.ResolveURL()
		if u == "" {
			continue
		}
		link := models.ResourceLink{Name: sub.Name, URL: u, Level: sub.Level}

		switch sub.Kind {
		case models.SubResourcePractice:
			extended.Exercises = append(extended.Exercises, link)
		case models.SubResourceTest:
			extended.Tests = append(extended.Tests, link)
		case models.SubResourceExam:
			extended.Exams = append(extended.Exams, link)
		case models.SubResourceInteractive:
			extended.Interactive = append(extended.Interactive, link)
		case models.SubResourceBonus:
			extended.Bonuses = append(extended.Bonuses, link)
		}
	}

	return extended
}
