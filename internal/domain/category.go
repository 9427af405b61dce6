package domain

import (
	"strings"
	"time"
)

// DeleteDisposition controls what happens to a deleted category's children.
type DeleteDisposition string

const (
	// DispositionMoveToParent reattaches children to the deleted node's parent.
	DispositionMoveToParent DeleteDisposition = "move_to_parent"
	// DispositionMoveToRoot promotes children to root level.
	DispositionMoveToRoot DeleteDisposition = "move_to_root"
	// DispositionDeleteAll removes the whole subtree.
	DispositionDeleteAll DeleteDisposition = "delete_all"
)

// ValidDeleteDisposition reports whether d is a known disposition.
func ValidDeleteDisposition(d string) bool {
	switch DeleteDisposition(d) {
	case DispositionMoveToParent, DispositionMoveToRoot, DispositionDeleteAll:
		return true
	}
	return false
}

// Category is a node in the product category tree. Path is the materialized
// path: the IDs of all ancestors from the root down, joined with "/". A root
// category has an empty Path and Level 0; Level always equals the number of
// path segments.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Path        string    `json:"path"`
	Level       int       `json:"level"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Children is populated only by tree assembly; it is not stored.
	Children []*Category `json:"children,omitempty"`
}

// ParentID returns the ID of the direct parent, or "" for a root category.
func (c *Category) ParentID() string {
	if c.Path == "" {
		return ""
	}
	if i := strings.LastIndexByte(c.Path, '/'); i >= 0 {
		return c.Path[i+1:]
	}
	return c.Path
}

// PathSegments returns the ancestor IDs from the root down. A root category
// has no segments.
func (c *Category) PathSegments() []string {
	if c.Path == "" {
		return nil
	}
	return strings.Split(c.Path, "/")
}

// SubtreePrefix returns the path every descendant of c starts with: c's own
// path extended with c's ID.
func (c *Category) SubtreePrefix() string {
	if c.Path == "" {
		return c.ID
	}
	return c.Path + "/" + c.ID
}

// IsDescendantOf reports whether c sits anywhere below other. A category is
// not a descendant of itself.
func (c *Category) IsDescendantOf(other *Category) bool {
	prefix := other.SubtreePrefix()
	return c.Path == prefix || strings.HasPrefix(c.Path, prefix+"/")
}

// ChildPath returns the path a direct child of parent must carry. A nil
// parent means root placement.
func ChildPath(parent *Category) string {
	if parent == nil {
		return ""
	}
	return parent.SubtreePrefix()
}

// PathLevel derives the level a node has at the given path.
func PathLevel(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, "/") + 1
}

// RewritePath maps a descendant's path from under oldPrefix to under
// newPrefix. The caller guarantees path starts with oldPrefix.
func RewritePath(path, oldPrefix, newPrefix string) string {
	rest := strings.TrimPrefix(path, oldPrefix)
	if newPrefix == "" {
		return strings.TrimPrefix(rest, "/")
	}
	return newPrefix + rest
}
