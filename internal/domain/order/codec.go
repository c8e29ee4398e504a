package order

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Timestamp layouts accepted for created_at/updated_at. The order service
// emits zone-less ISO timestamps, which are read in local time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	http.TimeFormat,
}

// DecodeItems reads an order's items value. The order service delivers items
// either as a native JSON array or as a string holding a JSON-encoded array;
// both normalize to the same slice. null yields an empty slice. Any other
// shape is an error.
func DecodeItems(d *jx.Decoder) ([]Item, error) {
	switch tt := d.Next(); tt {
	case jx.Array:
		return decodeItemArray(d)
	case jx.Null:
		return []Item{}, d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return nil, errors.Wrap(err, "items string")
		}
		inner := jx.DecodeStr(s)
		switch it := inner.Next(); it {
		case jx.Array:
			return decodeItemArray(inner)
		case jx.Null:
			return []Item{}, inner.Null()
		default:
			return nil, errors.Errorf("items string holds %s, want array", it)
		}
	default:
		return nil, errors.Errorf("unexpected items type %s", tt)
	}
}

func decodeItemArray(d *jx.Decoder) ([]Item, error) {
	items := []Item{}
	if err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := it.Decode(d); err != nil {
			return errors.Wrapf(err, "item %d", len(items))
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, err
	}
	return items, nil
}

// Decode reads an item object. Fields other than name and quantity (the
// cart's id and price) are skipped.
func (i *Item) Decode(d *jx.Decoder) error {
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "name":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "name")
			}
			i.Name = v
		case "quantity":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			i.Quantity = v
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return err
	}
	if i.Quantity < 1 {
		return errors.Errorf("quantity %d of %q must be at least 1", i.Quantity, i.Name)
	}
	return nil
}

// Encode writes the item as {"name":...,"quantity":...}.
func (i Item) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(i.Name)
	e.FieldStart("quantity")
	e.Int(i.Quantity)
	e.ObjEnd()
}

// Decode reads an order snapshot. Unknown fields are ignored.
func (o *Order) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "order_number":
			o.Number, err = d.Str()
		case "customer_name":
			o.CustomerName, err = d.Str()
		case "items":
			o.Items, err = DecodeItems(d)
		case "total_price":
			o.TotalPrice, err = decodeDecimal(d)
		case "status":
			var s string
			if s, err = d.Str(); err == nil {
				o.Status, err = ParseStatus(s)
			}
		case "created_at":
			o.CreatedAt, err = decodeTime(d)
		case "updated_at":
			o.UpdatedAt, err = decodeTime(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, string(key))
		}
		return nil
	})
}

// Encode writes the normalized order: items always as an array and the total
// as a two-decimal number.
func (o Order) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("order_number")
	e.Str(o.Number)
	e.FieldStart("customer_name")
	e.Str(o.CustomerName)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		it.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("total_price")
	e.Num(jx.Num(o.TotalPrice.StringFixed(2)))
	e.FieldStart("status")
	e.Str(string(o.Status))
	if !o.CreatedAt.IsZero() {
		e.FieldStart("created_at")
		e.Str(o.CreatedAt.Format(time.RFC3339Nano))
	}
	if !o.UpdatedAt.IsZero() {
		e.FieldStart("updated_at")
		e.Str(o.UpdatedAt.Format(time.RFC3339Nano))
	}
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (o Order) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	o.Encode(&e)
	return e.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Order) UnmarshalJSON(data []byte) error {
	return o.Decode(jx.DecodeBytes(data))
}

// DecodeList reads a JSON array of order snapshots.
func DecodeList(d *jx.Decoder) ([]Order, error) {
	orders := []Order{}
	if err := d.Arr(func(d *jx.Decoder) error {
		var o Order
		if err := o.Decode(d); err != nil {
			return errors.Wrapf(err, "order %d", len(orders))
		}
		orders = append(orders, o)
		return nil
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

// EncodeList writes orders as a JSON array.
func EncodeList(e *jx.Encoder, orders []Order) {
	e.ArrStart()
	for _, o := range orders {
		o.Encode(e)
	}
	e.ArrEnd()
}

// Decode reads a submission body.
func (n *NewOrder) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "customer_name":
			n.CustomerName, err = d.Str()
		case "items":
			n.Items = []LineItem{}
			err = d.Arr(func(d *jx.Decoder) error {
				var li LineItem
				if err := li.Decode(d); err != nil {
					return err
				}
				n.Items = append(n.Items, li)
				return nil
			})
		case "total_price":
			n.TotalPrice, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, string(key))
		}
		return nil
	})
}

// Encode writes the submission body.
func (n NewOrder) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("customer_name")
	e.Str(n.CustomerName)
	e.FieldStart("items")
	e.ArrStart()
	for _, li := range n.Items {
		li.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("total_price")
	e.Num(jx.Num(n.TotalPrice.String()))
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (n NewOrder) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	n.Encode(&e)
	return e.Bytes(), nil
}

// Decode reads a submitted cart line.
func (l *LineItem) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			l.ID, err = d.Int()
		case "name":
			l.Name, err = d.Str()
		case "price":
			l.Price, err = decodeDecimal(d)
		case "quantity":
			l.Quantity, err = d.Int()
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, string(key))
		}
		return nil
	})
}

// Encode writes the cart line.
func (l LineItem) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(l.ID)
	e.FieldStart("name")
	e.Str(l.Name)
	e.FieldStart("price")
	e.Num(jx.Num(l.Price.String()))
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.ObjEnd()
}

// decodeDecimal accepts a JSON number, a numeric string, or null.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch tt := d.Next(); tt {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.Errorf("unexpected %s for decimal", tt)
	}
}

func decodeTime(d *jx.Decoder) (time.Time, error) {
	if d.Next() == jx.Null {
		return time.Time{}, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	return ParseTimestamp(s)
}

// ParseTimestamp parses the timestamp formats produced by the order service.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unsupported timestamp %q", s)
}
