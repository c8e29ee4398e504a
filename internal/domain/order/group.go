package order

// Groups partitions orders by status. Each group keeps the input order.
type Groups map[Status][]Order

// Partition splits orders into disjoint groups keyed by status. When statuses
// are given only those groups are built and orders in any other status are
// dropped; otherwise every lifecycle status gets a group. Orders with unknown
// statuses are always dropped.
func Partition(orders []Order, statuses ...Status) Groups {
	if len(statuses) == 0 {
		statuses = Statuses()
	}
	g := make(Groups, len(statuses))
	for _, s := range statuses {
		g[s] = []Order{}
	}
	for _, o := range orders {
		if _, ok := g[o.Status]; ok && o.Status.Valid() {
			g[o.Status] = append(g[o.Status], o)
		}
	}
	return g
}

// Count returns the number of orders in the group for s.
func (g Groups) Count(s Status) int { return len(g[s]) }

// Filter returns the orders whose status is one of statuses, in input order.
func Filter(orders []Order, statuses ...Status) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		for _, s := range statuses {
			if o.Status == s {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// KitchenStatuses are the statuses shown on the kitchen board.
func KitchenStatuses() []Status {
	return []Status{StatusOrdered, StatusPreparing, StatusReady}
}

// DisplayStatuses are the statuses shown on the customer display board.
func DisplayStatuses() []Status {
	return []Status{StatusPreparing, StatusReady}
}
