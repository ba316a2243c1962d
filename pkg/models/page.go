package models

const (
	DocumentTypeLesson    = "lesson"
	DocumentTypeWorksheet = "worksheet"
	DocumentTypeText      = "ucebni-text"
	DocumentTypeWorkbook  = "workbook"
)

// Page is the durable target page document. (Slug, Category) is the
// persistence key; the page store returns 409 when it is already taken.
type Page struct {
	Slug           string            `json:"slug"`
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	DocumentType   string            `json:"documentType"`
	Category       string            `json:"category"`
	LegacyIDs      []int             `json:"legacyIds,omitempty"`
	LegacyMetadata map[string]string `json:"legacyMetadata,omitempty"`
	WorksheetData  *WorksheetData    `json:"worksheetData,omitempty"`
}

// WorksheetData holds a worksheet page's resolved cross-links.
type WorksheetData struct {
	SolutionURL    string         `json:"solutionUrl,omitempty"`
	TextbookSlug   string         `json:"textbookSlug,omitempty"`
	MethodologyURL string         `json:"methodologyUrl,omitempty"`
	Exercises      []ResourceLink `json:"exercises,omitempty"`
	Tests          []ResourceLink `json:"tests,omitempty"`
	Exams          []ResourceLink `json:"exams,omitempty"`
	Bonuses        []ResourceLink `json:"bonuses,omitempty"`
	Interactive    []ResourceLink `json:"interactive,omitempty"`
}

// ResourceLink is one resolved cross-link entry.
type ResourceLink struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Level int    `json:"level,omitempty"`
}
