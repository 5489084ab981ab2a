package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the state of a platform account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Account represents a registered identity: a vendor or one of the
// approval officers.
type Account struct {
	ID           uuid.UUID     `json:"id"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"-"` // Never expose
	Role         AccountRole   `json:"role"`
	Status       AccountStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsActive returns true if the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// ApproverRoleFor maps an account role onto the state machine's role
// vocabulary. Vendors (and unknown roles) do not map.
func ApproverRoleFor(role AccountRole) (ApproverRole, bool) {
	switch role {
	case RoleSecurity:
		return ApproverSecurity, true
	case RoleFinance:
		return ApproverFinance, true
	case RoleAdmin:
		return ApproverAdmin, true
	}
	return "", false
}
