package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventItemAdded       = "ItemAddedToCart"
	EventItemRemoved     = "ItemRemovedFromCart"
	EventQuantityUpdated = "CartItemQuantityUpdated"
	EventCartCleared     = "CartCleared"
)

// Change describes one mutation and the cart state right after it.
// Entries is a private copy, so observers may keep it.
type Change struct {
	Type      string          `json:"type"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  int             `json:"quantity"` // resulting quantity of ProductID, 0 when absent
	Entries   []Entry         `json:"entries"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	At        time.Time       `json:"at"`
}

// Observer is called synchronously after every mutation
type Observer func(Change)
