// ABOUTME: Resolves a stored next-meet date against a cadence and today's date
// ABOUTME: Advances stale recurring dates to the first occurrence on or after today
package nextmeet

// ResolveEffectiveNextMeet returns the date to show for a stored next-meet value and
// whether it had to be advanced past a stale stored date. The stored value is never
// modified; persisting the advanced date is up to the caller.
//
// An empty or unparseable stored value yields the zero Date. Without a recurring
// cadence the stored date is returned as-is, even when it is in the past.
func ResolveEffectiveNextMeet(stored string, cadence Cadence, now Date) (Date, bool) {
	base, ok := ParseDate(stored)
	if !ok {
		return Date{}, false
	}
	return Resolve(base, cadence, now)
}

// Resolve is ResolveEffectiveNextMeet for an already parsed base date.
func Resolve(base Date, cadence Cadence, now Date) (Date, bool) {
	if base.IsZero() {
		return Date{}, false
	}
	if !cadence.Recurring() || !base.Before(now) {
		return base, false
	}

	if period := cadence.periodDays(); period > 0 {
		diffDays := base.DaysUntil(now)
		// +1 steps past an exact multiple so the result is never the stale base itself.
		intervals := diffDays/period + 1
		return base.AddDays(intervals * period), true
	}

	period := cadence.periodMonths()
	monthsDiff := (now.Year-base.Year)*12 + int(now.Month) - int(base.Month)
	intervals := monthsDiff / period

	next := AddMonthsClamped(base, intervals*period)
	if next.Before(now) {
		// Recompute from the base so a clamped day (Feb 29) does not stick.
		next = AddMonthsClamped(base, (intervals+1)*period)
	}
	return next, true
}
