package menu

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Encode writes the item as served by GET /api/menu.
func (i Item) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(i.ID)
	e.FieldStart("name")
	e.Str(i.Name)
	e.FieldStart("price")
	e.Num(jx.Num(i.Price.StringFixed(2)))
	e.FieldStart("category")
	e.Str(string(i.Category))
	e.FieldStart("icon")
	e.Str(i.Icon)
	e.ObjEnd()
}

// Decode reads a menu item. Price may be a number or a numeric string.
func (i *Item) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			i.ID, err = d.Int()
		case "name":
			i.Name, err = d.Str()
		case "price":
			i.Price, err = decodePrice(d)
		case "category":
			var s string
			s, err = d.Str()
			i.Category = Category(s)
		case "icon":
			i.Icon, err = d.Str()
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, string(key))
		}
		return nil
	})
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch tt := d.Next(); tt {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = n.String()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	default:
		return decimal.Zero, errors.Errorf("unexpected %s for price", tt)
	}
	return decimal.NewFromString(raw)
}

// Encode writes the catalog as a JSON array.
func (c *Catalog) Encode(e *jx.Encoder) {
	e.ArrStart()
	for _, it := range c.items {
		it.Encode(e)
	}
	e.ArrEnd()
}

// MarshalJSON implements json.Marshaler.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	c.Encode(&e)
	return e.Bytes(), nil
}

// Decode reads a JSON array of menu items into a new catalog.
func Decode(d *jx.Decoder) (*Catalog, error) {
	var items []Item
	if err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := it.Decode(d); err != nil {
			return errors.Wrapf(err, "menu item %d", len(items))
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, err
	}
	return NewCatalog(items)
}
