package memory

import "github.com/google/uuid"

// Category is a tag grouping of memory items. Membership is a reference,
// not ownership: deleting an item purges it from every category, so no
// category holds a dangling ID.
type Category struct {
	// ID is the unique identifier of the category.
	ID string

	// Name is the category name.
	Name string

	// Description describes what the category groups.
	Description string

	// ParentID is the parent category ID, empty for a root category.
	ParentID string

	// itemIDs is the ordered membership set.
	itemIDs []string
}

// ItemIDs returns the member item IDs in insertion order.
func (c *Category) ItemIDs() []string {
	return append([]string(nil), c.itemIDs...)
}

func (c *Category) addItem(id string) {
	for _, existing := range c.itemIDs {
		if existing == id {
			return
		}
	}
	c.itemIDs = append(c.itemIDs, id)
}

func (c *Category) removeItem(id string) {
	for i, existing := range c.itemIDs {
		if existing == id {
			c.itemIDs = append(c.itemIDs[:i], c.itemIDs[i+1:]...)
			return
		}
	}
}

// CreateCategory creates a new category and returns its ID.
func (m *Manager) CreateCategory(name, description, parentID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.categories[id] = &Category{
		ID:          id,
		Name:        name,
		Description: description,
		ParentID:    parentID,
	}
	return id
}

// Category returns a copy of a category, or false if it does not exist.
func (m *Manager) Category(categoryID string) (Category, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category, ok := m.categories[categoryID]
	if !ok {
		return Category{}, false
	}
	out := *category
	out.itemIDs = append([]string(nil), category.itemIDs...)
	return out, true
}

// AddItemToCategory adds an item to a category. Adding an existing member
// again is a no-op.
//
// Returns false if either the item or the category does not exist.
func (m *Manager) AddItemToCategory(itemID, categoryID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.categories[categoryID]
	if !ok {
		return false
	}
	if _, inShort := m.shortTerm.items[itemID]; !inShort {
		if _, inLong := m.longTerm.items[itemID]; !inLong {
			return false
		}
	}

	category.addItem(itemID)
	return true
}

// ItemsByCategory returns the items referenced by a category. Each returned
// item is retrieved through the access-tracking path, so membership reads
// count as accesses.
func (m *Manager) ItemsByCategory(categoryID string) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.categories[categoryID]
	if !ok {
		return nil
	}

	items := make([]Item, 0, len(category.itemIDs))
	for _, id := range category.itemIDs {
		if item, ok := m.retrieveLocked(id); ok {
			items = append(items, item)
		}
	}
	return items
}
