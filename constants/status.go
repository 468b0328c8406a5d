package constants

// MemberStatus is the canonical plan-membership status written to records.
type MemberStatus string

// Stable values (store these exact strings in exported rows).
const (
	MemberStatusActive     MemberStatus = "ACTIVE"
	MemberStatusInactive   MemberStatus = "INACTIVE"
	MemberStatusTerminated MemberStatus = "TERMINATED"
)

// AddressStatusUnchanged is only ever set from explicit phrasing in the text
// ("address stays same", "same on file"), never inferred from whether an
// address was captured.
const AddressStatusUnchanged = "unchanged"
