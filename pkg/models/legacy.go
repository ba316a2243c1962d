package models

// Legacy* types mirror the JSON shape of the legacy content service. They are
// fetched fresh per import run, transformed, and discarded; nothing here is
// ever persisted as-is.

type LegacyBook struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Authors     []string        `json:"authors"`
	Subject     LegacySubject   `json:"subject"`
	Chapters    []LegacyChapter `json:"chapters"`
}

type LegacySubject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LegacyChapter carries either knowledge items (lesson-style) or content
// blocks (worksheet-style). Some books mix both in one chapter.
type LegacyChapter struct {
	ID            int                  `json:"id"`
	Name          string               `json:"name"`
	Knowledge     []LegacyKnowledge    `json:"knowledge,omitempty"`
	ContentBlocks []LegacyContentBlock `json:"contentBlocks,omitempty"`
}

type LegacyKnowledge struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	// Rich-text fields, each independently optional HTML.
	Description           string `json:"description,omitempty"`
	Conclusion            string `json:"conclusion,omitempty"`
	Questions             string `json:"questions,omitempty"`
	Answers               string `json:"answers,omitempty"`
	MethodicalInspiration string `json:"methodicalInspiration,omitempty"`

	ImageURL  string           `json:"imageUrl,omitempty"`
	Animation *LegacyAnimation `json:"animation,omitempty"`

	PDFURL                   string `json:"pdfUrl,omitempty"`
	SolutionURL              string `json:"solutionUrl,omitempty"`
	MethodicalInspirationPDF string `json:"methodicalInspirationPdfUrl,omitempty"`

	IsDemo           bool `json:"isDemo"`
	IsRVP            bool `json:"isRvp"`
	Disabled         bool `json:"disabled"`
	CreatedByTeacher bool `json:"createdByTeacher"`
}

type LegacyAnimation struct {
	Items             []LegacyAnimationStep `json:"items,omitempty"`
	IntroAnimationURL string                `json:"introAnimationUrl,omitempty"`
	AudioURL          string                `json:"audioUrl,omitempty"`
}

type LegacyAnimationStep struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

type LegacyContentBlock struct {
	ID          int                          `json:"id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description,omitempty"`
	Documents   []LegacyContentBlockDocument `json:"documents,omitempty"`
}

type LegacyContentBlockDocument struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	DocumentURL    string `json:"documentUrl,omitempty"`
	PreviewURL     string `json:"previewUrl,omitempty"`
	SolutionURL    string `json:"solutionUrl,omitempty"`
	MethodologyURL string `json:"methodologyUrl,omitempty"`

	Practices             []LegacySubResource `json:"practices,omitempty"`
	Tests                 []LegacySubResource `json:"tests,omitempty"`
	ABCDTests             []LegacySubResource `json:"abcdTests,omitempty"`
	Minigames             []LegacySubResource `json:"minigames,omitempty"`
	BonusSheets           []LegacySubResource `json:"bonusSheets,omitempty"`
	InteractiveWorksheets []LegacySubResource `json:"interactiveWorksheets,omitempty"`
}

// LegacySubResource is the raw shape shared by every sub-resource list. The
// url, when present, takes priority over playableLink because it may carry an
// internal interactive-board identifier.
type LegacySubResource struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Level        int    `json:"level,omitempty"`
	URL          string `json:"url,omitempty"`
	PlayableLink string `json:"playableLink,omitempty"`
	DocumentURL  string `json:"documentUrl,omitempty"`
}
