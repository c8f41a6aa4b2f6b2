package quota

import "time"

const (
	defaultPlan   = "Starter"
	defaultPeriod = 7 * 24 * time.Hour
)

// DefaultQuota returns the Starter plan cap for an action.
func DefaultQuota(action Action) Quota {
	switch action {
	case ActionOptimize:
		return Limited(20)
	case ActionGenerateLetter:
		return Limited(20)
	case ActionSendEmail:
		return Limited(10)
	default:
		return Limited(0)
	}
}

func defaultUsage(action Action) Usage {
	return Usage{
		Plan:     defaultPlan,
		Action:   action,
		Quota:    DefaultQuota(action),
		Used:     0,
		ResetsAt: time.Now().UTC().Add(defaultPeriod),
	}
}
