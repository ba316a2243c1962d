// Package menutree synthesizes menu subtrees from transformed import results
// and merges them into a category's menu. All tree operations are pure: they
// return new trees and leave their inputs untouched, keeping the menu store's
// read-modify-write cycle explicit and testable.
package menutree

import (
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/skolio/kabinet/pkg/models"
)

// pageNumberRE extracts the page number from worksheet labels like
// "str. 12 Teplota".
var pageNumberRE = regexp.MustCompile(`(?i)\bstr\.?\s*(\d+)`)

// PageNumberFromLabel parses the `str. N` pattern out of a worksheet label.
func PageNumberFromLabel(label string) (int, bool) {
	m := pageNumberRE.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func newItem(label, itemType string) *models.MenuItem {
	return &models.MenuItem{
		ID:    uuid.NewString(),
		Label: label,
		Type:  itemType,
	}
}

func newPageItem(label, itemType, slug string) *models.MenuItem {
	item := newItem(label, itemType)
	item.Slug = &slug
	return item
}

func newLinkItem(label, itemType, url string) *models.MenuItem {
	item := newItem(label, itemType)
	item.URL = url
	return item
}

// LessonEntry is one knowledge-derived lesson (and its auto-created
// worksheet, when present) ready for menu placement.
type LessonEntry struct {
	Slug           string
	Title          string
	WorksheetSlug  string
	WorksheetTitle string
}

// GroupLessons collects a book's lessons (plus their worksheets) into menu
// items. Two or more combined items are wrapped in a single folder named
// after the book; a lone item is returned bare for direct insertion.
func GroupLessons(bookName string, lessons []LessonEntry) []*models.MenuItem {
	var items []*models.MenuItem
	for _, lesson := range lessons {
		items = append(items, newPageItem(lesson.Title, models.MenuTypeLesson, lesson.Slug))
		if lesson.WorksheetSlug != "" {
			items = append(items, newPageItem(lesson.WorksheetTitle, models.MenuTypeWorksheet, lesson.WorksheetSlug))
		}
	}

	if len(items) < 2 {
		return items
	}

	folder := newItem(bookName, models.MenuTypeFolder)
	folder.Children = items
	return []*models.MenuItem{folder}
}

// DocEntry is one content-block worksheet document ready for menu placement.
type DocEntry struct {
	Slug     string
	Title    string
	LegacyID int
	Extended *models.ExtendedWorksheet
}

// BuildWorkbook synthesizes the ordered "read the book" workbook from a
// book's worksheet documents. Books with fewer than two documents get no
// workbook. Page numbers come from the `str. N` label pattern when present,
// else from the 1-based input position; pages end up sorted ascending.
func BuildWorkbook(bookName string, docs []DocEntry) *models.MenuItem {
	if len(docs) < 2 {
		return nil
	}

	workbook := newItem(bookName, models.MenuTypeWorkbook)
	for i, doc := range docs {
		number, ok := PageNumberFromLabel(doc.Title)
		if !ok {
			number = i + 1
		}
		workbook.WorkbookPages = append(workbook.WorkbookPages, models.WorkbookPage{
			PageNumber:    number,
			WorksheetID:   doc.LegacyID,
			WorksheetSlug: doc.Slug,
		})
	}
	workbook.SortWorkbookPages()
	return workbook
}

// BlockEntry mirrors one legacy content block inside the catalog folder.
type BlockEntry struct {
	Name      string
	TextSlug  string
	TextTitle string
	Documents []DocEntry
}

// ChapterEntry mirrors one legacy chapter inside the catalog folder.
type ChapterEntry struct {
	Name   string
	Blocks []BlockEntry
}

// BuildCatalogFolder builds the drill-down catalog view mirroring the
// chapter→content-block hierarchy: the educational-text page, the worksheet,
// and every sub-resource each become a leaf. A single-chapter book is
// flattened by one level. It is built alongside the workbook, not instead of
// it; the two serve different consumption modes.
func BuildCatalogFolder(bookName string, chapters []ChapterEntry) *models.MenuItem {
	if len(chapters) == 0 {
		return nil
	}

	folder := newItem(bookName, models.MenuTypeFolder)

	if len(chapters) == 1 {
		folder.Children = buildBlockItems(chapters[0].Blocks)
		return folder
	}

	for _, chapter := range chapters {
		chapterFolder := newItem(chapter.Name, models.MenuTypeFolder)
		chapterFolder.Children = buildBlockItems(chapter.Blocks)
		folder.Children = append(folder.Children, chapterFolder)
	}
	return folder
}

func buildBlockItems(blocks []BlockEntry) []*models.MenuItem {
	var items []*models.MenuItem
	for _, block := range blocks {
		blockFolder := newItem(block.Name, models.MenuTypeGroup)

		if block.TextSlug != "" {
			blockFolder.Children = append(blockFolder.Children, newPageItem(block.TextTitle, models.MenuTypeText, block.TextSlug))
		}

		for _, doc := range block.Documents {
			ws := newPageItem(doc.Title, models.MenuTypeWorksheet, doc.Slug)
			ws.ExtendedWorksheet = doc.Extended
			blockFolder.Children = append(blockFolder.Children, ws)
			blockFolder.Children = append(blockFolder.Children, subResourceLeaves(doc.Extended)...)
		}

		items = append(items, blockFolder)
	}
	return items
}

func subResourceLeaves(extended *models.ExtendedWorksheet) []*models.MenuItem {
	if extended == nil {
		return nil
	}

	var leaves []*models.MenuItem
	if extended.MethodologyURL != "" {
		leaves = append(leaves, newLinkItem("Metodika", models.MenuTypeMethodology, extended.MethodologyURL))
	}
	for _, link := range extended.Exercises {
		leaves = append(leaves, newLinkItem(link.Name, models.MenuTypePractice, link.URL))
	}
	for _, link := range extended.Tests {
		leaves = append(leaves, newLinkItem(link.Name, models.MenuTypeTest, link.URL))
	}
	for _, link := range extended.Exams {
		leaves = append(leaves, newLinkItem(link.Name, models.MenuTypeExam, link.URL))
	}
	for _, link := range extended.Interactive {
		leaves = append(leaves, newLinkItem(link.Name, models.MenuTypeInteractive, link.URL))
	}
	for _, link := range extended.Bonuses {
		leaves = append(leaves, newLinkItem(link.Name, models.MenuTypeBonus, link.URL))
	}
	return leaves
}
