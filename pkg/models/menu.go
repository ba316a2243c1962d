package models

import "sort"

const (
	MenuTypeFolder      = "folder"
	MenuTypeWorkbook    = "workbook"
	MenuTypeLesson      = "lesson"
	MenuTypeWorksheet   = "worksheet"
	MenuTypeText        = "ucebni-text"
	MenuTypeLink        = "link"
	MenuTypePractice    = "practice"
	MenuTypeTest        = "test"
	MenuTypeExam        = "exam"
	MenuTypeInteractive = "interactive"
	MenuTypeBonus       = "bonus"
	MenuTypeMethodology = "methodology"
	MenuTypeGroup       = "group"
)

// MenuItem is one node of a category's menu tree. IDs are ephemeral,
// generated at import time; menu trees are always replaced wholesale.
type MenuItem struct {
	ID                string             `json:"id"`
	Label             string             `json:"label"`
	Slug              *string            `json:"slug,omitempty"`
	Type              string             `json:"type"`
	URL               string             `json:"url,omitempty"`
	Children          []*MenuItem        `json:"children,omitempty"`
	WorkbookPages     []WorkbookPage     `json:"workbookPages,omitempty"`
	ExtendedWorksheet *ExtendedWorksheet `json:"extendedWorksheet,omitempty"`
}

// WorkbookPage references a worksheet Page by slug; it is never a copy.
type WorkbookPage struct {
	PageNumber    int    `json:"pageNumber"`
	WorksheetID   int    `json:"worksheetId,omitempty"`
	WorksheetSlug string `json:"worksheetSlug"`
}

// SortWorkbookPages restores the invariant that workbook pages are ordered
// ascending by page number. Call after any edit to WorkbookPages.
func (m *MenuItem) SortWorkbookPages() {
	sort.SliceStable(m.WorkbookPages, func(i, j int) bool {
		return m.WorkbookPages[i].PageNumber < m.WorkbookPages[j].PageNumber
	})
}

// ExtendedWorksheet bundles a worksheet's cross-linked sub-resources.
type ExtendedWorksheet struct {
	SolutionURL    string         `json:"solutionUrl,omitempty"`
	TextbookSlug   string         `json:"textbookSlug,omitempty"`
	MethodologyURL string         `json:"methodologyUrl,omitempty"`
	Exercises      []ResourceLink `json:"exercises,omitempty"`
	Tests          []ResourceLink `json:"tests,omitempty"`
	Exams          []ResourceLink `json:"exams,omitempty"`
	Bonuses        []ResourceLink `json:"bonuses,omitempty"`
	Interactive    []ResourceLink `json:"interactive,omitempty"`
}
