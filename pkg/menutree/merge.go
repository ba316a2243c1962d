package menutree

import "github.com/skolio/kabinet/pkg/models"

// Clone deep-copies a menu tree.
func Clone(tree []*models.MenuItem) []*models.MenuItem {
	if tree == nil {
		return nil
	}
	out := make([]*models.MenuItem, 0, len(tree))
	for _, item := range tree {
		out = append(out, cloneItem(item))
	}
	return out
}

func cloneItem(item *models.MenuItem) *models.MenuItem {
	cloned := *item

	if item.Slug != nil {
		slug := *item.Slug
		cloned.Slug = &slug
	}
	if item.WorkbookPages != nil {
		cloned.WorkbookPages = append([]models.WorkbookPage(nil), item.WorkbookPages...)
	}
	if item.ExtendedWorksheet != nil {
		extended := *item.ExtendedWorksheet
		extended.Exercises = append([]models.ResourceLink(nil), item.ExtendedWorksheet.Exercises...)
		extended.Tests = append([]models.ResourceLink(nil), item.ExtendedWorksheet.Tests...)
		extended.Exams = append([]models.ResourceLink(nil), item.ExtendedWorksheet.Exams...)
		extended.Bonuses = append([]models.ResourceLink(nil), item.ExtendedWorksheet.Bonuses...)
		extended.Interactive = append([]models.ResourceLink(nil), item.ExtendedWorksheet.Interactive...)
		cloned.ExtendedWorksheet = &extended
	}
	cloned.Children = Clone(item.Children)

	return &cloned
}

// Splice returns a new tree with the given items inserted under the
// destination item. A missing or empty destination falls back to the root.
// The input tree is never mutated; the caller writes the returned tree back
// wholesale.
func Splice(tree, items []*models.MenuItem, destID string) []*models.MenuItem {
	merged := Clone(tree)
	if len(items) == 0 {
		return merged
	}

	if destID != "" {
		if dest := Find(merged, destID); dest != nil {
			dest.Children = append(dest.Children, items...)
			return merged
		}
	}

	return append(merged, items...)
}

// Find locates an item by id anywhere in the tree.
func Find(tree []*models.MenuItem, id string) *models.MenuItem {
	for _, item := range tree {
		if item.ID == id {
			return item
		}
		if found := Find(item.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// importableLeafTypes are the sub-resource leaves whose external URLs may
// reference boards the platform can re-import.
var importableLeafTypes = map[string]bool{
	models.MenuTypePractice:    true,
	models.MenuTypeTest:        true,
	models.MenuTypeExam:        true,
	models.MenuTypeInteractive: true,
	models.MenuTypeBonus:       true,
}

// RewriteBoardLinks walks freshly synthesized subtrees and offers every
// importable leaf URL to rewrite. When rewrite reports success the URL is
// replaced in place; otherwise the external URL is left untouched. Returns
// the number of rewritten links.
func RewriteBoardLinks(items []*models.MenuItem, rewrite func(url string) (string, bool)) int {
	count := 0
	for _, item := range items {
		if importableLeafTypes[item.Type] && item.URL != "" {
			if newURL, ok := rewrite(item.URL); ok {
				item.URL = newURL
				count++
			}
		}
		count += RewriteBoardLinks(item.Children, rewrite)
	}
	return count
}
