package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/skolio/kabinet/pkg/boards"
	"github.com/skolio/kabinet/pkg/errcodes"
	"github.com/skolio/kabinet/pkg/menutree"
	"github.com/skolio/kabinet/pkg/models"
	"github.com/skolio/kabinet/pkg/transform"
)

// run executes the whole pipeline sequentially. Items are processed one at a
// time with a fixed delay between network calls; the only concurrency is the
// asset-catalog drain at the end, which never gates the run's outcome.
func (svc *Service) run(ctx context.Context, token string, opts RunOptions) {
	log := logger.FromContext(ctx)

	defer func() {
		now := time.Now()
		svc.mu.Lock()
		svc.state = StateIdle
		if svc.report != nil {
			svc.report.State = StateIdle
			svc.report.FinishedAt = &now
		}
		done := svc.onFinish
		svc.mu.Unlock()
		if done != nil {
			done()
		}
	}()

	transformOpts := transform.Options{
		Token:         token,
		Category:      opts.Category,
		DownloadFiles: opts.DownloadFiles,
		Overwrite:     opts.Overwrite,
	}

	books := svc.fetchBooks(ctx, opts)
	svc.enqueueItems(books, opts)

	var subtrees []*models.MenuItem

	// All knowledge items are processed book-by-book before any
	// content-block documents, so lesson folders precede workbook entries in
	// the synthesized menu.
	for _, book := range books {
		subtrees = append(subtrees, svc.importKnowledgeBook(ctx, book, opts, transformOpts)...)
	}
	for _, book := range books {
		subtrees = append(subtrees, svc.importContentBlockBook(ctx, book, opts, transformOpts)...)
	}

	// Speculative board re-import: matching external links become internal
	// board references; failures leave the original URL untouched.
	rewritten := menutree.RewriteBoardLinks(subtrees, func(url string) (string, bool) {
		id, ok := boards.ImportableBoardUUID(url)
		if !ok {
			return "", false
		}
		svc.pause()
		board, err := svc.boards.ImportBoard(ctx, token, id)
		if err != nil {
			log.Err(err).Warn("board import failed", logger.Data{"board": id})
			return "", false
		}
		if board == nil {
			return "", false
		}
		return boards.InternalRef(board.ID), true
	})

	svc.mu.Lock()
	svc.report.RewrittenLinks = rewritten
	svc.mu.Unlock()

	svc.mergeMenu(ctx, token, opts, subtrees)

	// Drain the asset outbox off the critical path; results are observed
	// only through logs.
	if svc.collector != nil && svc.consumer != nil {
		assets := svc.collector.Drain()
		go svc.consumer.Record(ctx, svc.capability, assets)
	}

	snapshot := svc.snapshot()
	log.Info("import run finished", logger.Data{
		"succeeded":       snapshot.Succeeded,
		"failed":          snapshot.Failed,
		"rewritten_links": snapshot.RewrittenLinks,
		"menu_merge_ok":   snapshot.MenuMergeError == "",
	})
}

// fetchBooks reads every requested book graph. A fetch failure skips the
// book and the run continues with the rest.
func (svc *Service) fetchBooks(ctx context.Context, opts RunOptions) []*models.LegacyBook {
	log := logger.FromContext(ctx)

	var books []*models.LegacyBook
	for _, id := range opts.BookIDs {
		svc.pause()
		book, err := svc.legacy.FetchBook(ctx, id)
		if err != nil {
			log.Err(err).Warn("legacy book fetch failed, skipping", logger.Data{"book_id": id})
			continue
		}
		books = append(books, book)
	}
	return books
}

func (svc *Service) importKnowledgeBook(ctx context.Context, book *models.LegacyBook, opts RunOptions, transformOpts transform.Options) []*models.MenuItem {
	var lessons []menutree.LessonEntry

	for ci := range book.Chapters {
		chapter := &book.Chapters[ci]
		for ki := range chapter.Knowledge {
			k := &chapter.Knowledge[ki]
			if !selected(opts, KnowledgeKey(k.ID)) {
				continue
			}

			item := svc.startItem(KnowledgeKey(k.ID), k.Name)
			svc.pause()

			result, err := svc.transformer.TransformKnowledge(ctx, k, chapter, book, transformOpts)
			if err != nil {
				svc.finishItem(ctx, item, err)
				continue
			}

			svc.finishItem(ctx, item, nil)
			lessons = append(lessons, menutree.LessonEntry{
				Slug:           result.Slug,
				Title:          result.Title,
				WorksheetSlug:  result.WorksheetSlug,
				WorksheetTitle: result.WorksheetTitle,
			})
		}
	}

	return menutree.GroupLessons(book.Name, lessons)
}

func (svc *Service) importContentBlockBook(ctx context.Context, book *models.LegacyBook, opts RunOptions, transformOpts transform.Options) []*models.MenuItem {
	log := logger.FromContext(ctx)

	var docs []menutree.DocEntry
	var chapterEntries []menutree.ChapterEntry
	textSlugs := map[int]string{}
	textTitles := map[int]string{}
	hasBlocks := false

	for ci := range book.Chapters {
		chapter := &book.Chapters[ci]

		var blockEntries []menutree.BlockEntry
		for bi := range chapter.ContentBlocks {
			block := &chapter.ContentBlocks[bi]
			hasBlocks = true

			selectedDocs := selectedDocuments(block, opts)
			if len(selectedDocs) == 0 {
				// A block with no selected document contributes nothing: its
				// educational text exists only as a cross-link dependency of
				// the selected worksheets.
				continue
			}

			// Each distinct block's educational text is imported once,
			// before its dependent documents, so worksheets can cross-link
			// a page that exists.
			if _, done := textSlugs[block.ID]; !done && block.Description != "" {
				svc.pause()
				text, err := svc.transformer.TransformTextBlock(ctx, block, chapter, book, transformOpts)
				switch {
				case err == nil:
					textSlugs[block.ID] = text.Slug
					textTitles[block.ID] = text.Title
				case errors.Is(err, errcodes.Conflict("Page")):
					// Already migrated on a previous run; the slug is
					// deterministic, so the cross-link still works.
					textSlugs[block.ID] = transform.TextSlug(block.Name)
					textTitles[block.ID] = block.Name
				default:
					log.Err(err).Warn("educational text import failed", logger.Data{"block_id": block.ID})
					textSlugs[block.ID] = ""
				}
			}

			blockEntry := menutree.BlockEntry{
				Name:      block.Name,
				TextSlug:  textSlugs[block.ID],
				TextTitle: textTitles[block.ID],
			}

			for _, doc := range selectedDocs {
				item := svc.startItem(DocumentKey(doc.ID), doc.Name)
				svc.pause()

				result, err := svc.transformer.TransformDocument(ctx, doc, block, chapter, book, transformOpts, textSlugs[block.ID])
				if err != nil {
					svc.finishItem(ctx, item, err)
					continue
				}

				svc.finishItem(ctx, item, nil)
				entry := menutree.DocEntry{
					Slug:     result.Slug,
					Title:    result.Title,
					LegacyID: result.LegacyID,
					Extended: result.Extended,
				}
				docs = append(docs, entry)
				blockEntry.Documents = append(blockEntry.Documents, entry)
			}

			if blockEntry.TextSlug != "" || len(blockEntry.Documents) > 0 {
				blockEntries = append(blockEntries, blockEntry)
			}
		}

		if len(blockEntries) > 0 {
			chapterEntries = append(chapterEntries, menutree.ChapterEntry{
				Name:   chapter.Name,
				Blocks: blockEntries,
			})
		}
	}

	var subtrees []*models.MenuItem

	// The workbook (linear reading order) and the catalog folder (drill-down
	// view) are both emitted for the same book; they serve different
	// consumption modes.
	if workbook := menutree.BuildWorkbook(book.Name, docs); workbook != nil {
		subtrees = append(subtrees, workbook)
	} else if len(docs) == 1 {
		// A lone worksheet goes in directly; no workbook wrapper.
		subtrees = append(subtrees, worksheetLeaf(docs[0]))
	}
	if hasBlocks {
		if folder := menutree.BuildCatalogFolder(book.Name, chapterEntries); folder != nil {
			subtrees = append(subtrees, folder)
		}
	}

	return subtrees
}

func (svc *Service) mergeMenu(ctx context.Context, token string, opts RunOptions, subtrees []*models.MenuItem) {
	log := logger.FromContext(ctx)

	if len(subtrees) == 0 {
		return
	}

	// The destination tree is fetched fresh here rather than reused from any
	// earlier read, to shrink the lost-update window. Concurrent operators
	// migrating into the same category can still race; last writer wins.
	tree, err := svc.menus.FetchMenu(ctx, token, opts.Category)
	if err != nil {
		svc.recordMenuError(err)
		return
	}

	merged := menutree.Splice(tree, subtrees, opts.DestinationID)

	if err := svc.menus.ReplaceMenu(ctx, token, opts.Category, merged); err != nil {
		// Already-created pages stay valid; re-running the import is
		// idempotent, so no rollback is attempted.
		svc.recordMenuError(err)
		return
	}

	log.Info("menu merged", logger.Data{"category": opts.Category, "subtrees": len(subtrees)})
}

func (svc *Service) recordMenuError(err error) {
	svc.mu.Lock()
	svc.report.MenuMergeError = err.Error()
	svc.mu.Unlock()
}

// enqueueItems registers every item the run will process as pending, in
// processing order, so a mid-run status read shows what is still ahead.
func (svc *Service) enqueueItems(books []*models.LegacyBook, opts RunOptions) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for _, book := range books {
		for ci := range book.Chapters {
			chapter := &book.Chapters[ci]
			for ki := range chapter.Knowledge {
				k := &chapter.Knowledge[ki]
				if selected(opts, KnowledgeKey(k.ID)) {
					svc.report.Items = append(svc.report.Items, &ItemReport{Key: KnowledgeKey(k.ID), Label: k.Name, Status: ItemStatusPending})
				}
			}
		}
	}
	for _, book := range books {
		for ci := range book.Chapters {
			chapter := &book.Chapters[ci]
			for bi := range chapter.ContentBlocks {
				for _, doc := range selectedDocuments(&chapter.ContentBlocks[bi], opts) {
					svc.report.Items = append(svc.report.Items, &ItemReport{Key: DocumentKey(doc.ID), Label: doc.Name, Status: ItemStatusPending})
				}
			}
		}
	}
}

func (svc *Service) startItem(key, label string) *ItemReport {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for _, item := range svc.report.Items {
		if item.Key == key {
			item.Status = ItemStatusImporting
			return item
		}
	}

	item := &ItemReport{Key: key, Label: label, Status: ItemStatusImporting}
	svc.report.Items = append(svc.report.Items, item)
	return item
}

// finishItem records an item's outcome. A page conflict means the item was
// already migrated by an earlier run and counts as success-with-note.
func (svc *Service) finishItem(ctx context.Context, item *ItemReport, err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	switch {
	case err == nil:
		item.Status = ItemStatusSuccess
		svc.report.Succeeded++
	case errors.Is(err, errcodes.Conflict("Page")):
		item.Status = ItemStatusSuccess
		item.Note = "already exists"
		svc.report.Succeeded++
	default:
		item.Status = ItemStatusError
		item.Error = err.Error()
		svc.report.Failed++
		logger.FromContext(ctx).Err(err).Warn("item import failed", logger.Data{"item": item.Key})
	}
}

// pause is the fixed inter-item throttle; there is no adaptive backoff.
func (svc *Service) pause() {
	if svc.throttle > 0 {
		time.Sleep(svc.throttle)
	}
}

func selected(opts RunOptions, key string) bool {
	if len(opts.Selected) == 0 {
		return true
	}
	return opts.Selected[key]
}

func selectedDocuments(block *models.LegacyContentBlock, opts RunOptions) []*models.LegacyContentBlockDocument {
	var docs []*models.LegacyContentBlockDocument
	for di := range block.Documents {
		doc := &block.Documents[di]
		if selected(opts, DocumentKey(doc.ID)) {
			docs = append(docs, doc)
		}
	}
	return docs
}

func worksheetLeaf(doc menutree.DocEntry) *models.MenuItem {
	slug := doc.Slug
	return &models.MenuItem{
		ID:                uuid.NewString(),
		Label:             doc.Title,
		Slug:              &slug,
		Type:              models.MenuTypeWorksheet,
		ExtendedWorksheet: doc.Extended,
	}
}
