package domain

// AccountRole is the HTTP-level role attached to an authenticated account.
type AccountRole string

const (
	RoleVendor   AccountRole = "VENDOR"
	RoleSecurity AccountRole = "SECURITY"
	RoleFinance  AccountRole = "FINANCE"
	RoleAdmin    AccountRole = "ADMIN"
)

// Capability is a named permission checked per route.
type Capability string

const (
	CapPayoutInitiate Capability = "payout:initiate"
	CapPayoutApprove  Capability = "payout:approve"
	CapPayoutReject   Capability = "payout:reject"
	CapPayoutExecute  Capability = "payout:execute"
	CapPayoutRead     Capability = "payout:read"
	CapWalletRead     Capability = "wallet:read"
	CapWalletCredit   Capability = "wallet:credit"
	CapDashboardView  Capability = "dashboard:view"
)

// rolePermissions is the immutable role -> capability-set table,
// built once at process start.
var rolePermissions = map[AccountRole]map[Capability]bool{
	RoleVendor: {
		CapPayoutInitiate: true,
		CapPayoutRead:     true,
		CapWalletRead:     true,
		CapDashboardView:  true,
	},
	RoleSecurity: {
		CapPayoutApprove: true,
		CapPayoutReject:  true,
		CapPayoutRead:    true,
		CapDashboardView: true,
	},
	RoleFinance: {
		CapPayoutApprove: true,
		CapPayoutReject:  true,
		CapPayoutExecute: true,
		CapPayoutRead:    true,
		CapDashboardView: true,
	},
	RoleAdmin: {
		CapPayoutApprove: true,
		CapPayoutReject:  true,
		CapPayoutExecute: true,
		CapPayoutRead:    true,
		CapWalletRead:    true,
		CapWalletCredit:  true,
		CapDashboardView: true,
	},
}

// RoleHasCapability reports whether the role grants the capability.
// Unknown roles and unknown capabilities resolve to false, never an error;
// callers must treat unresolved input as "no access".
func RoleHasCapability(role AccountRole, cap Capability) bool {
	caps, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return caps[cap]
}
