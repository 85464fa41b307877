package syncer

import "time"

// DateOnly truncates a timestamp to its calendar date. All freshness math
// happens on calendar dates: the Date header carries a time of day, the log
// does not.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Fresh reports whether a message dated msgDate is newer than the watermark
// under the lag tolerance: accept iff D > W + lag days, strictly. Notification
// emails arrive about lagDays after the action they describe, so the same lag
// shifts both the acceptance threshold here and the stored date in
// StoredDate; the watermark and the stored dates stay in one coordinate
// system across runs. The D == W + lag boundary is rejected on purpose as a
// one-tick margin for re-runs.
func Fresh(msgDate, watermark time.Time, lagDays int) bool {
	return DateOnly(msgDate).After(DateOnly(watermark).AddDate(0, 0, lagDays))
}

// StoredDate is the date written to the log for a message dated msgDate:
// the message date shifted back by the notification lag.
func StoredDate(msgDate time.Time, lagDays int) time.Time {
	return DateOnly(msgDate).AddDate(0, 0, -lagDays)
}
