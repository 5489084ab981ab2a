package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a vendor's withdrawable balance. The balance must never
// go negative; payout execution is the only debit path.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	VendorID  uuid.UUID `json:"vendor_id"`
	Balance   int64     `json:"balance"` // In smallest currency unit (paise)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
