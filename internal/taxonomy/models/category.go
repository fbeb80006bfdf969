package models

import id "coursehub/pkg/domain"

// Category is a node of the two-level subject taxonomy. Primary categories
// have no parent; secondary categories point at their primary.
type Category struct {
	ID       id.CategoryID  `json:"id"`
	Name     string         `json:"name"`
	ParentID *id.CategoryID `json:"parent_id,omitempty"`
	Active   bool           `json:"active"`
}

func (c *Category) IsPrimary() bool {
	return c.ParentID == nil
}

// IsChildOf reports whether c is a secondary under parent.
func (c *Category) IsChildOf(parent id.CategoryID) bool {
	return c.ParentID != nil && *c.ParentID == parent
}
