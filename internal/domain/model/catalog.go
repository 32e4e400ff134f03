package model

// Category is a node of the backend's category tree.
type Category struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	DisplayOrder int        `json:"displayOrder"`
	ParentID     *int64     `json:"parentId"`
	Children     []Category `json:"children"`
}

// FindCategory searches the tree depth-first.
func FindCategory(tree []Category, id int64) (Category, bool) {
	for _, c := range tree {
		if c.ID == id {
			return c, true
		}
		if found, ok := FindCategory(c.Children, id); ok {
			return found, true
		}
	}
	return Category{}, false
}

// EffectiveCategory picks the filter a listing query should use:
// a selected sub-category wins over its parent.
func EffectiveCategory(parentID, childID *int64) *int64 {
	if childID != nil {
		return childID
	}
	return parentID
}

// Company is an organization users can belong to.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateCompanyRequest registers a new company during signup.
type CreateCompanyRequest struct {
	Name string `json:"name"`
}
