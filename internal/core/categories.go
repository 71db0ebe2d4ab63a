package core

// CategoryIndex maps category ids to display names.
type CategoryIndex map[string]string

// CategoryNames indexes categories by id.
func CategoryNames(categories []Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		if c.ID == "" {
			continue
		}
		idx[c.ID] = c.Name
	}
	return idx
}

// Resolve returns the category name for id, or NoCategoryName when id is empty
// or does not match any indexed category.
func (idx CategoryIndex) Resolve(id string) string {
	if id == "" {
		return NoCategoryName
	}
	if name, ok := idx[id]; ok && name != "" {
		return name
	}
	return NoCategoryName
}

// ResolveCategoryName is a convenience wrapper over CategoryIndex.Resolve.
func ResolveCategoryName(idx CategoryIndex, id string) string {
	return idx.Resolve(id)
}
