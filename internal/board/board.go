// Package board builds the column layout shared by the kitchen and display
// boards.
package board

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/cafe-lumiere/internal/domain/order"
)

// Lane describes one board column.
type Lane struct {
	Status      order.Status
	Title       string
	Placeholder string
	// Actions attaches the applicable transition command to each card.
	Actions bool
}

// Card is one order as shown on a board.
type Card struct {
	Number       string
	CustomerName string
	Items        []order.Item
	Total        decimal.Decimal
	Status       order.Status
	CreatedAt    time.Time
	// Action is the command offered on the card; empty when none.
	Action order.Transition
}

// ActionLabel returns the button text for the card's command.
func (c Card) ActionLabel() string {
	if c.Action == "" {
		return ""
	}
	return c.Action.Label()
}

// Column is a lane with its cards.
type Column struct {
	Lane
	Cards []Card
}

// Empty reports whether the placeholder should be shown.
func (c Column) Empty() bool { return len(c.Cards) == 0 }

// NewCard builds a card from an order snapshot.
func NewCard(o order.Order, withAction bool) Card {
	c := Card{
		Number:       o.Number,
		CustomerName: o.CustomerName,
		Items:        o.Items,
		Total:        o.TotalPrice,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}
	if withAction {
		if t, ok := order.TransitionFrom(o.Status); ok {
			c.Action = t
		}
	}
	return c
}

// Columns groups orders into the given lanes. Orders whose status has no
// lane are left out; order within a lane follows the input.
func Columns(orders []order.Order, lanes []Lane) []Column {
	statuses := make([]order.Status, len(lanes))
	for i, l := range lanes {
		statuses[i] = l.Status
	}
	groups := order.Partition(orders, statuses...)

	cols := make([]Column, len(lanes))
	for i, l := range lanes {
		group := groups[l.Status]
		cards := make([]Card, len(group))
		for j, o := range group {
			cards[j] = NewCard(o, l.Actions)
		}
		cols[i] = Column{Lane: l, Cards: cards}
	}
	return cols
}

// Find returns the card with the given order number.
func Find(cols []Column, number string) (Card, bool) {
	for _, col := range cols {
		for _, c := range col.Cards {
			if c.Number == number {
				return c, true
			}
		}
	}
	return Card{}, false
}
