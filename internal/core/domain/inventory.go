package domain

// StockLevel is the persisted on-hand quantity of an item, used to seed and
// resynchronise the reservation cache.
type StockLevel struct {
	ItemID   int64
	Quantity int
	Version  int // optimistic locking
}

// StockTotals is the number of catalog items and their summed quantity.
type StockTotals struct {
	Items    int `json:"items_count"`
	Quantity int `json:"total_items"`
}
