package menutree

import (
	"testing"

	"github.com/skolio/kabinet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageNumberFromLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected int
		ok       bool
	}{
		{
			name:     "standard pattern",
			label:    "str. 12 Teplota",
			expected: 12,
			ok:       true,
		},
		{
			name:     "no dot",
			label:    "str 7 Hustota",
			expected: 7,
			ok:       true,
		},
		{
			name:     "no space after dot",
			label:    "str.3 Měření",
			expected: 3,
			ok:       true,
		},
		{
			name:     "uppercase",
			label:    "Str. 21",
			expected: 21,
			ok:       true,
		},
		{
			name:  "no page number",
			label: "Teplota a teplo",
			ok:    false,
		},
		{
			name:  "str as part of a word",
			label: "strana 4",
			ok:    false,
		},
		{
			name:  "empty label",
			label: "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := PageNumberFromLabel(tt.label)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, n)
			}
		})
	}
}

func TestGroupLessons(t *testing.T) {
	t.Run("single lesson is returned bare", func(t *testing.T) {
		items := GroupLessons("Fyzika 6", []LessonEntry{
			{Slug: "teplota", Title: "Teplota"},
		})

		require.Len(t, items, 1)
		assert.Equal(t, models.MenuTypeLesson, items[0].Type)
		assert.Equal(t, "Teplota", items[0].Label)
		require.NotNil(t, items[0].Slug)
		assert.Equal(t, "teplota", *items[0].Slug)
		assert.Empty(t, items[0].Children)
	})

	t.Run("lesson with worksheet is wrapped in a folder", func(t *testing.T) {
		items := GroupLessons("Fyzika 6", []LessonEntry{
			{Slug: "teplota", Title: "Teplota", WorksheetSlug: "teplota-pracovni-list", WorksheetTitle: "Teplota – pracovní list"},
		})

		require.Len(t, items, 1)
		folder := items[0]
		assert.Equal(t, models.MenuTypeFolder, folder.Type)
		assert.Equal(t, "Fyzika 6", folder.Label)
		require.Len(t, folder.Children, 2)
		assert.Equal(t, models.MenuTypeLesson, folder.Children[0].Type)
		assert.Equal(t, models.MenuTypeWorksheet, folder.Children[1].Type)
		assert.Equal(t, "Teplota – pracovní list", folder.Children[1].Label)
	})

	t.Run("multiple lessons are wrapped in a folder", func(t *testing.T) {
		items := GroupLessons("Fyzika 6", []LessonEntry{
			{Slug: "teplota", Title: "Teplota"},
			{Slug: "hustota", Title: "Hustota"},
			{Slug: "mereni", Title: "Měření"},
		})

		require.Len(t, items, 1)
		assert.Equal(t, models.MenuTypeFolder, items[0].Type)
		require.Len(t, items[0].Children, 3)
	})

	t.Run("no lessons yields nothing", func(t *testing.T) {
		assert.Empty(t, GroupLessons("Fyzika 6", nil))
	})
}

func TestBuildWorkbook(t *testing.T) {
	t.Run("fewer than two documents yields no workbook", func(t *testing.T) {
		assert.Nil(t, BuildWorkbook("Fyzika 6", nil))
		assert.Nil(t, BuildWorkbook("Fyzika 6", []DocEntry{
			{Slug: "str-12-teplota", Title: "str. 12 Teplota", LegacyID: 1},
		}))
	})

	t.Run("pages sorted by extracted page number", func(t *testing.T) {
		workbook := BuildWorkbook("Fyzika 6", []DocEntry{
			{Slug: "str-12-teplota", Title: "str. 12 Teplota", LegacyID: 1},
			{Slug: "str-4-hustota", Title: "str. 4 Hustota", LegacyID: 2},
			{Slug: "str-8-mereni", Title: "str. 8 Měření", LegacyID: 3},
		})

		require.NotNil(t, workbook)
		assert.Equal(t, models.MenuTypeWorkbook, workbook.Type)
		assert.Equal(t, "Fyzika 6", workbook.Label)
		require.Len(t, workbook.WorkbookPages, 3)
		assert.Equal(t, []int{4, 8, 12}, []int{
			workbook.WorkbookPages[0].PageNumber,
			workbook.WorkbookPages[1].PageNumber,
			workbook.WorkbookPages[2].PageNumber,
		})
		assert.Equal(t, "str-4-hustota", workbook.WorkbookPages[0].WorksheetSlug)
		assert.Equal(t, 2, workbook.WorkbookPages[0].WorksheetID)
	})

	t.Run("labels without page numbers fall back to input position", func(t *testing.T) {
		workbook := BuildWorkbook("Fyzika 6", []DocEntry{
			{Slug: "teplota", Title: "Teplota", LegacyID: 1},
			{Slug: "hustota", Title: "Hustota", LegacyID: 2},
		})

		require.NotNil(t, workbook)
		require.Len(t, workbook.WorkbookPages, 2)
		assert.Equal(t, 1, workbook.WorkbookPages[0].PageNumber)
		assert.Equal(t, 2, workbook.WorkbookPages[1].PageNumber)
		assert.Equal(t, "teplota", workbook.WorkbookPages[0].WorksheetSlug)
	})

	t.Run("pages reference worksheets by slug only", func(t *testing.T) {
		workbook := BuildWorkbook("Fyzika 6", []DocEntry{
			{Slug: "a", Title: "str. 2 A", LegacyID: 1},
			{Slug: "b", Title: "str. 1 B", LegacyID: 2},
		})

		require.NotNil(t, workbook)
		for _, page := range workbook.WorkbookPages {
			assert.NotEmpty(t, page.WorksheetSlug)
		}
	})
}

func TestBuildCatalogFolder(t *testing.T) {
	extended := &models.ExtendedWorksheet{
		MethodologyURL: "https://legacy.example.com/metodika.pdf",
		Exercises:      []models.ResourceLink{{Name: "Procvičování 1", URL: "https://legacy.example.com/p1"}},
		Tests:          []models.ResourceLink{{Name: "Test 1", URL: "https://legacy.example.com/t1"}},
	}

	t.Run("no chapters yields nothing", func(t *testing.T) {
		assert.Nil(t, BuildCatalogFolder("Fyzika 6", nil))
	})

	t.Run("single chapter is flattened", func(t *testing.T) {
		folder := BuildCatalogFolder("Fyzika 6", []ChapterEntry{
			{
				Name: "Teplota",
				Blocks: []BlockEntry{
					{
						Name:      "Teplota a teplo",
						TextSlug:  "ucebni-text-teplota-a-teplo",
						TextTitle: "Teplota a teplo",
						Documents: []DocEntry{
							{Slug: "str-12-teplota", Title: "str. 12 Teplota", LegacyID: 1, Extended: extended},
						},
					},
				},
			},
		})

		require.NotNil(t, folder)
		assert.Equal(t, models.MenuTypeFolder, folder.Type)
		assert.Equal(t, "Fyzika 6", folder.Label)

		// The chapter level is elided; children are the block groups directly.
		require.Len(t, folder.Children, 1)
		block := folder.Children[0]
		assert.Equal(t, models.MenuTypeGroup, block.Type)
		assert.Equal(t, "Teplota a teplo", block.Label)

		// Text leaf, worksheet leaf, then sub-resource leaves.
		require.Len(t, block.Children, 5)
		assert.Equal(t, models.MenuTypeText, block.Children[0].Type)
		assert.Equal(t, models.MenuTypeWorksheet, block.Children[1].Type)
		assert.Same(t, extended, block.Children[1].ExtendedWorksheet)
		assert.Equal(t, models.MenuTypeMethodology, block.Children[2].Type)
		assert.Equal(t, "Metodika", block.Children[2].Label)
		assert.Equal(t, models.MenuTypePractice, block.Children[3].Type)
		assert.Equal(t, models.MenuTypeTest, block.Children[4].Type)
	})

	t.Run("multiple chapters keep the chapter level", func(t *testing.T) {
		folder := BuildCatalogFolder("Fyzika 6", []ChapterEntry{
			{Name: "Teplota", Blocks: []BlockEntry{{Name: "Blok 1", TextSlug: "ucebni-text-blok-1", TextTitle: "Blok 1"}}},
			{Name: "Hustota", Blocks: []BlockEntry{{Name: "Blok 2", TextSlug: "ucebni-text-blok-2", TextTitle: "Blok 2"}}},
		})

		require.NotNil(t, folder)
		require.Len(t, folder.Children, 2)
		assert.Equal(t, "Teplota", folder.Children[0].Label)
		assert.Equal(t, models.MenuTypeFolder, folder.Children[0].Type)
		assert.Equal(t, "Hustota", folder.Children[1].Label)
	})

	t.Run("block without text has no text leaf", func(t *testing.T) {
		folder := BuildCatalogFolder("Fyzika 6", []ChapterEntry{
			{
				Name: "Teplota",
				Blocks: []BlockEntry{
					{Name: "Blok", Documents: []DocEntry{{Slug: "a", Title: "A", LegacyID: 1}}},
				},
			},
		})

		require.NotNil(t, folder)
		require.Len(t, folder.Children, 1)
		block := folder.Children[0]
		require.Len(t, block.Children, 1)
		assert.Equal(t, models.MenuTypeWorksheet, block.Children[0].Type)
	})
}
