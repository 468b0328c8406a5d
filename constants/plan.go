package constants

// Canonical health plan names. Free-form plan text that cannot be mapped to one
// of these is kept as captured.
const (
	PlanHMO         = "HMO"
	PlanPPO         = "PPO"
	PlanEPO         = "EPO"
	PlanMedicareAdv = "Medicare Adv"
	PlanCommercial  = "Commercial"
)
