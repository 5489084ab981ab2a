package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PayoutStatus represents the lifecycle state of a payout request.
type PayoutStatus string

const (
	PayoutStatusPendingApproval  PayoutStatus = "PENDING_APPROVAL"
	PayoutStatusApprovedSecurity PayoutStatus = "APPROVED_SECURITY"
	PayoutStatusApprovedFinance  PayoutStatus = "APPROVED_FINANCE"
	PayoutStatusReadyForPayout   PayoutStatus = "READY_FOR_PAYOUT"
	PayoutStatusProcessing       PayoutStatus = "PROCESSING"
	PayoutStatusCompleted        PayoutStatus = "COMPLETED"
	PayoutStatusRejected         PayoutStatus = "REJECTED"
)

// statusRank defines the forward ordering of the non-rejected states.
// Status transitions must never decrease this rank except via rejection.
var statusRank = map[PayoutStatus]int{
	PayoutStatusPendingApproval:  0,
	PayoutStatusApprovedSecurity: 1,
	PayoutStatusApprovedFinance:  2,
	PayoutStatusReadyForPayout:   3,
	PayoutStatusProcessing:       4,
	PayoutStatusCompleted:        5,
}

// Rank returns the ordinal position of the status in the forward order,
// or -1 for REJECTED and unknown values.
func (s PayoutStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// ApproverRole is the closed role vocabulary of the approval state machine.
// It is distinct from the account role used for HTTP-level authorization;
// callers must map and validate before invoking the workflow.
type ApproverRole string

const (
	ApproverSecurity ApproverRole = "SECURITY"
	ApproverFinance  ApproverRole = "FINANCE"
	ApproverAdmin    ApproverRole = "ADMIN"
)

// ParseApproverRole validates a role literal (case-sensitive).
func ParseApproverRole(s string) (ApproverRole, bool) {
	switch ApproverRole(s) {
	case ApproverSecurity, ApproverFinance, ApproverAdmin:
		return ApproverRole(s), true
	}
	return "", false
}

// Approvals holds the three independent sign-off flags.
type Approvals struct {
	Security bool `json:"security"`
	Finance  bool `json:"finance"`
	Admin    bool `json:"admin"`
}

// All returns true when every approver role has signed off.
func (a Approvals) All() bool {
	return a.Security && a.Finance && a.Admin
}

// Payout represents one vendor withdrawal request moving through
// three-party approval toward execution.
type Payout struct {
	ID        uuid.UUID    `json:"id"`
	VendorID  uuid.UUID    `json:"vendor_id"`
	Amount    int64        `json:"amount"` // In smallest currency unit (paise)
	Status    PayoutStatus `json:"status"`
	Approvals Approvals    `json:"approvals"`
	AuditLog  []string     `json:"audit_log"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// IsTerminal returns true if the payout can no longer be mutated.
func (p *Payout) IsTerminal() bool {
	return p.Status == PayoutStatusCompleted || p.Status == PayoutStatusRejected
}

// Audit appends a human-readable event to the audit log, stamped with
// the given time. Entries are append-only; ordering carries meaning.
func (p *Payout) Audit(at time.Time, format string, args ...interface{}) string {
	entry := fmt.Sprintf("%s at %s", fmt.Sprintf(format, args...), at.UTC().Format(time.RFC3339))
	p.AuditLog = append(p.AuditLog, entry)
	return entry
}
