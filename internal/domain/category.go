// Package domain defines the core entities of the catalog: the denormalized
// category tree and the normalized business registry it mirrors.
package domain

import (
	"slices"
	"time"
)

// Category is the root of a taxonomy tree, stored as one document.
// The whole tree under a root - subcategories and their business items -
// lives inside this single record; structural edits are read-modify-write
// against the whole document.
type Category struct {
	// ID is a slug derived from Name at creation time. It never changes,
	// even across renames: business records reference it.
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	BlurHash string `json:"blur_hash,omitempty"`

	// Version supports optimistic concurrency on write-back. It increments
	// on every successful store write; a stale write-back is rejected.
	Version uint64 `json:"version"`

	Subcategories []Subcategory `json:"subcategories"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subcategory is a second-level node, owned exclusively by its root.
// Its ID is a slug unique within the root, not globally.
type Subcategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	BlurHash string `json:"blur_hash,omitempty"`
	Items    []Item `json:"items"`
}

// Item is a leaf node mirroring exactly one business. Its ID equals the
// business id; Name is a denormalized copy refreshed on every sync.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (c *Category) Touch() {
	c.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (c *Category) InitTimestamps() {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Subcategory returns a pointer to the subcategory with the given id,
// or nil if the root has no such child.
func (c *Category) Subcategory(subID string) *Subcategory {
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == subID {
			return &c.Subcategories[i]
		}
	}
	return nil
}

// AddSubcategory appends a subcategory to the root's ordered list.
// Returns false if a sibling with the same id already exists.
func (c *Category) AddSubcategory(sub Subcategory) bool {
	if c.Subcategory(sub.ID) != nil {
		return false
	}
	if sub.Items == nil {
		sub.Items = []Item{}
	}
	c.Subcategories = append(c.Subcategories, sub)
	return true
}

// RemoveSubcategory removes the subcategory with the given id, preserving
// the order of the remaining children. Returns false if absent.
func (c *Category) RemoveSubcategory(subID string) bool {
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == subID {
			c.Subcategories = slices.Delete(c.Subcategories, i, i+1)
			return true
		}
	}
	return false
}

// ReorderSubcategories replaces the ordering of the root's children to
// match order. Returns false unless order is an exact permutation of the
// current child ids (duplicates and missing ids both fail).
func (c *Category) ReorderSubcategories(order []string) bool {
	reordered, ok := reorder(c.Subcategories, order, func(s Subcategory) string { return s.ID })
	if !ok {
		return false
	}
	c.Subcategories = reordered
	return true
}

// Item returns a pointer to the leaf with the given id, or nil.
func (s *Subcategory) Item(itemID string) *Item {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// UpsertItem inserts the leaf at the end of the ordered list, or, if a
// leaf with that id already exists, refreshes its name and image in place
// without changing its position.
func (s *Subcategory) UpsertItem(item Item) {
	if existing := s.Item(item.ID); existing != nil {
		existing.Name = item.Name
		existing.ImageURL = item.ImageURL
		return
	}
	s.Items = append(s.Items, item)
}

// RemoveItem removes the leaf with the given id, preserving order of the
// rest. Returns false if absent; absence is not an error, removal must be
// idempotent because the sync engine calls it speculatively.
func (s *Subcategory) RemoveItem(itemID string) bool {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			s.Items = slices.Delete(s.Items, i, i+1)
			return true
		}
	}
	return false
}

// ReorderItems replaces the ordering of the subcategory's leaves to match
// order. Same exact-permutation contract as ReorderSubcategories.
func (s *Subcategory) ReorderItems(order []string) bool {
	reordered, ok := reorder(s.Items, order, func(i Item) string { return i.ID })
	if !ok {
		return false
	}
	s.Items = reordered
	return true
}

// reorder returns children rearranged to match order, or ok=false if order
// is not an exact permutation of the children's ids.
func reorder[T any](children []T, order []string, idOf func(T) string) ([]T, bool) {
	if len(order) != len(children) {
		return nil, false
	}

	byID := make(map[string]T, len(children))
	for _, child := range children {
		byID[idOf(child)] = child
	}

	result := make([]T, 0, len(children))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return nil, false
		}
		seen[id] = true

		child, ok := byID[id]
		if !ok {
			return nil, false
		}
		result = append(result, child)
	}

	return result, true
}
