package models

// SubResourceKind tags a normalized legacy sub-resource.
type SubResourceKind string

const (
	SubResourcePractice    SubResourceKind = "practice"
	SubResourceTest        SubResourceKind = "test"
	SubResourceExam        SubResourceKind = "exam"
	SubResourceInteractive SubResourceKind = "interactive"
	SubResourceBonus       SubResourceKind = "bonus"
)

// SubResource is the tagged form of the legacy sub-resource lists
// (practices, tests, abcdTests, minigames, bonusSheets, interactive
// worksheets), normalized so that URL resolution lives in one place instead
// of ad hoc field lookups at every call site.
type SubResource struct {
	Kind         SubResourceKind `json:"kind"`
	Name         string          `json:"name"`
	Level        int             `json:"level,omitempty"`
	URL          string          `json:"url,omitempty"`
	PlayableLink string          `json:"playableLink,omitempty"`
	DocumentURL  string          `json:"documentUrl,omitempty"`
}

// ResolveURL applies the fixed priority: explicit reference URL, then
// playable link, then the raw document URL.
func (r SubResource) ResolveURL() string {
	if r.URL != "" {
		return r.URL
	}
	if r.PlayableLink != "" {
		return r.PlayableLink
	}
	return r.DocumentURL
}

// NormalizeSubResources maps one raw legacy list to the tagged union.
func NormalizeSubResources(kind SubResourceKind, raw []LegacySubResource) []SubResource {
	if len(raw) == 0 {
		return nil
	}
	out := make([]SubResource, 0, len(raw))
	for _, r := range raw {
		out = append(out, SubResource{
			Kind:         kind,
			Name:         r.Name,
			Level:        r.Level,
			URL:          r.URL,
			PlayableLink: r.PlayableLink,
			DocumentURL:  r.DocumentURL,
		})
	}
	return out
}

// SubResourcesOf flattens every sub-resource list of a legacy document into
// the tagged union. ABCD tests are normalized as exams to keep them distinct
// from open-ended tests in the target menu.
func SubResourcesOf(doc *LegacyContentBlockDocument) []SubResource {
	var out []SubResource
	out = append(out, NormalizeSubResources(SubResourcePractice, doc.Practices)...)
	out = append(out, NormalizeSubResources(SubResourceTest, doc.Tests)...)
	out = append(out, NormalizeSubResources(SubResourceExam, doc.ABCDTests)...)
	out = append(out, NormalizeSubResources(SubResourceInteractive, doc.Minigames)...)
	out = append(out, NormalizeSubResources(SubResourceInteractive, doc.InteractiveWorksheets)...)
	out = append(out, NormalizeSubResources(SubResourceBonus, doc.BonusSheets)...)
	return out
}
