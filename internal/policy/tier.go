package policy

import "github.com/sohaibislam45/BookFlix-sub002/internal/models"

const (
	TierGeneral = "GENERAL"
	TierPremium = "PREMIUM"
)

// Tier is the borrowing rule bundle derived from a member's subscription.
type Tier struct {
	Name               string
	LoanDays           int
	MaxConcurrentLoans int
	MaxRenewals        int
}

// Limits carries the config-tunable numbers behind each tier.
type Limits struct {
	GeneralLoanDays int
	PremiumLoanDays int
	GeneralMaxLoans int
	PremiumMaxLoans int
	MaxRenewals     int
}

// Resolve maps the current subscription facts to a tier. Pure and recomputed
// on every call so a plan change takes effect on the member's next action.
func Resolve(subType models.SubscriptionType, subStatus models.SubscriptionStatus, limits Limits) Tier {
	premium := (subType == models.SubscriptionMonthly || subType == models.SubscriptionYearly) &&
		subStatus == models.SubscriptionActive

	if premium {
		return Tier{
			Name:               TierPremium,
			LoanDays:           limits.PremiumLoanDays,
			MaxConcurrentLoans: limits.PremiumMaxLoans,
			MaxRenewals:        limits.MaxRenewals,
		}
	}
	return Tier{
		Name:               TierGeneral,
		LoanDays:           limits.GeneralLoanDays,
		MaxConcurrentLoans: limits.GeneralMaxLoans,
		MaxRenewals:        limits.MaxRenewals,
	}
}
