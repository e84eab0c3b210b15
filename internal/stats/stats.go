// internal/stats/stats.go
package stats

import (
	"math"
	"strings"
	"time"

	"jobtrail/internal/models"
)

// Dashboard targets the rate metrics are measured against.
const (
	TargetSuccessRate   = 20.0
	TargetInterviewRate = 30.0
	TargetOfferRate     = 50.0
	TargetDailyApps     = 5.0
	TargetWeeklyApps    = 20.0
)

// Metric is one dashboard figure with the target it is compared to.
type Metric struct {
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
	Label  string  `json:"label"`
}

// StageDuration is the average dwell time in one lifecycle stage, computed
// over the applications that actually passed through it.
type StageDuration struct {
	Stage       models.Stage `json:"stage"`
	AverageDays int          `json:"averageDays"`
	Count       int          `json:"count"`
}

// StageDurations breaks down how long applications sit in each stage. An
// application contributes to a stage only when both the stage's entry date
// and some later date bounding it exist; applications that never left a
// stage do not drag the average toward zero. Stages nobody passed through
// are omitted entirely.
func StageDurations(apps []models.Application) []StageDuration {
	sums := make(map[models.Stage]float64, 4)
	counts := make(map[models.Stage]int, 4)

	contribute := func(stage models.Stage, start time.Time, end *time.Time) {
		if end == nil {
			return
		}
		sums[stage] += end.Sub(start).Hours() / 24
		counts[stage]++
	}

	for _, app := range apps {
		h := app.StatusHistory
		var finalDate *time.Time
		if app.FinalStatus != nil {
			d := app.FinalStatus.Date
			finalDate = &d
		}

		contribute(models.StageApplied, h.Applied, firstOf(h.Screen, finalDate))
		if h.Screen != nil {
			contribute(models.StageScreen, *h.Screen, firstOf(h.Interview, finalDate))
		}
		if h.Interview != nil {
			contribute(models.StageInterview, *h.Interview, firstOf(h.Offer, finalDate))
		}
		if h.Offer != nil {
			contribute(models.StageOffer, *h.Offer, finalDate)
		}
	}

	out := make([]StageDuration, 0, 4)
	for _, stage := range []models.Stage{models.StageApplied, models.StageScreen, models.StageInterview, models.StageOffer} {
		if counts[stage] == 0 {
			continue
		}
		out = append(out, StageDuration{
			Stage:       stage,
			AverageDays: int(math.Round(sums[stage] / float64(counts[stage]))),
			Count:       counts[stage],
		})
	}
	return out
}

// firstOf returns the first non-nil date, preferring the earlier argument.
func firstOf(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}

// SuccessRate is the share of all applications that ended in an accepted
// offer.
func SuccessRate(buckets models.JobBuckets) Metric {
	return rate(
		len(buckets.Bucket(models.StageAccepted)),
		buckets.TotalApplications(),
		TargetSuccessRate,
		"Success Rate",
	)
}

// InterviewRate is the share of all applications that reached an interview.
func InterviewRate(buckets models.JobBuckets) Metric {
	return rate(
		len(buckets.Bucket(models.StageInterview)),
		buckets.TotalApplications(),
		TargetInterviewRate,
		"Interview Rate",
	)
}

// OfferRate is the share of interviewed applications that produced an offer.
func OfferRate(buckets models.JobBuckets) Metric {
	return rate(
		len(buckets.Bucket(models.StageOffer)),
		len(buckets.Bucket(models.StageInterview)),
		TargetOfferRate,
		"Offer Rate",
	)
}

// DailyVelocity is the application rate per day since the user started
// applying. Half-up rounding means a slow week can legitimately report 0.
func DailyVelocity(apps []models.Application, now time.Time) Metric {
	return velocity(apps, now, 1, TargetDailyApps, "Applications per Day")
}

// WeeklyVelocity is the application rate per week since the user started
// applying.
func WeeklyVelocity(apps []models.Application, now time.Time) Metric {
	return velocity(apps, now, 7, TargetWeeklyApps, "Applications per Week")
}

func velocity(apps []models.Application, now time.Time, periodDays int, target float64, label string) Metric {
	m := Metric{Target: target, Label: label}
	if len(apps) == 0 {
		return m
	}

	earliest := apps[0].StatusHistory.Applied
	for _, app := range apps[1:] {
		if app.StatusHistory.Applied.Before(earliest) {
			earliest = app.StatusHistory.Applied
		}
	}

	days := int(math.Ceil(now.Sub(earliest).Hours() / 24))
	periods := int(math.Ceil(float64(days) / float64(periodDays)))
	if periods < 1 {
		periods = 1
	}

	m.Value = math.Round(float64(len(apps)) / float64(periods))
	return m
}

// CompanySuccessRate is the accepted-fraction among a user's applications to
// one company. Matching is case-insensitive; an empty subset reports 0.
func CompanySuccessRate(apps []models.Application, company string) Metric {
	matched, accepted := 0, 0
	for _, app := range apps {
		if !strings.EqualFold(app.Company, company) {
			continue
		}
		matched++
		if app.FinalStatus != nil && app.FinalStatus.Status == models.StageAccepted {
			accepted++
		}
	}
	return rate(accepted, matched, TargetSuccessRate, "Company Success Rate")
}

// PercentChange is the relative change between two period counts. Anything
// on top of an empty previous period counts as a full 100% rise.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current - previous) / previous * 100)
}

// MonthlyChange compares applications submitted this calendar month against
// the month before.
type MonthlyChange struct {
	Current  int     `json:"current"`
	Previous int     `json:"previous"`
	Change   float64 `json:"change"`
}

// MonthlyApplications counts submissions per calendar month, bucketed by the
// applied date, and reports the relative change between the two most recent
// months.
func MonthlyApplications(apps []models.Application, now time.Time) MonthlyChange {
	now = now.UTC()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	previousStart := currentStart.AddDate(0, -1, 0)

	var mc MonthlyChange
	for _, app := range apps {
		applied := app.StatusHistory.Applied
		switch {
		case !applied.Before(currentStart):
			mc.Current++
		case !applied.Before(previousStart):
			mc.Previous++
		}
	}
	mc.Change = PercentChange(float64(mc.Current), float64(mc.Previous))
	return mc
}

func rate(numerator, denominator int, target float64, label string) Metric {
	m := Metric{Target: target, Label: label}
	if denominator == 0 {
		return m
	}
	m.Value = math.Round(float64(numerator) / float64(denominator) * 100)
	return m
}
