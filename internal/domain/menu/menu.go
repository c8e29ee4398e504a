// Package menu is the café's fixed catalog.
package menu

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Category groups menu items on the order screen.
type Category string

const (
	CategoryCoffee   Category = "coffee"
	CategoryPastry   Category = "pastry"
	CategoryIceCream Category = "icecream"
	CategoryPizza    Category = "pizza"
	CategorySandwich Category = "sandwich"
	CategoryDessert  Category = "dessert"
)

var categoryTitles = map[Category]string{
	CategoryCoffee:   "Coffee",
	CategoryPastry:   "Pastries",
	CategoryIceCream: "Ice Cream",
	CategoryPizza:    "Pizza",
	CategorySandwich: "Sandwiches",
	CategoryDessert:  "Desserts",
}

// Title returns the section heading for the category.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// Item is a catalog entry a customer can add to the cart.
type Item struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Category Category
	Icon     string
}

// Catalog is an ordered, read-only list of menu items.
type Catalog struct {
	items []Item
	byID  map[int]int
}

// NewCatalog builds a catalog, rejecting duplicate ids and non-positive
// prices.
func NewCatalog(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[int]int, len(items)),
	}
	for _, it := range items {
		if _, dup := c.byID[it.ID]; dup {
			return nil, errors.Errorf("duplicate menu item id %d", it.ID)
		}
		if !it.Price.IsPositive() {
			return nil, errors.Errorf("menu item %d: price %s must be positive", it.ID, it.Price)
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// Items returns a copy of every item in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Find returns the item with the given id.
func (c *Catalog) Find(id int) (Item, error) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return c.items[i], nil
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []Category {
	var out []Category
	seen := map[Category]bool{}
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

// ByCategory returns the items of one category in catalog order.
func (c *Catalog) ByCategory(cat Category) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}
