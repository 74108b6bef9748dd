package clock

import "time"

const (
	Day = 24 * time.Hour

	FreightWindow   = 24 * time.Hour
	TrialPeriod     = 7 * Day
	MonthlyPeriod   = 30 * Day
	AnnualPeriod    = 365 * Day
	LedgerRetention = 365 * Day
)

// FreightExpiration is the end of a freshly opened or reactivated freight window.
func FreightExpiration(now time.Time) time.Time {
	return now.Add(FreightWindow)
}

// TrialExpiration is the end of a trial started at now.
func TrialExpiration(now time.Time) time.Time {
	return now.Add(TrialPeriod)
}

// PaidExpiration is the end of a paid period started at now. Anything other
// than an annual plan is billed monthly.
func PaidExpiration(now time.Time, annual bool) time.Time {
	if annual {
		return now.Add(AnnualPeriod)
	}
	return now.Add(MonthlyPeriod)
}
