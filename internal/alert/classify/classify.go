// Package classify holds the pure severity banding for every alert
// family. Nothing here touches a database or a clock; callers pass the
// already-fetched metrics in.
package classify

import (
	"sort"

	"github.com/copperline/crm/internal/alert/domain"
	taskdomain "github.com/copperline/crm/internal/task/domain"
)

type Result struct {
	Kind     string
	Severity domain.Severity
}

// Quota bands won revenue against the monthly target. A zero or negative
// target is treated as zero attainment rather than dividing by zero.
func Quota(actual, target int64, daysRemaining int) (Result, bool) {
	ratio := Ratio(actual, target)
	switch {
	case ratio >= 100:
		return Result{Kind: domain.KindQuotaGreen, Severity: domain.SeverityGreen}, true
	case ratio >= 80:
		return Result{Kind: domain.KindQuotaYellow, Severity: domain.SeverityYellow}, true
	case ratio < 50 && daysRemaining < 10:
		return Result{Kind: domain.KindQuotaRed, Severity: domain.SeverityRed}, true
	default:
		return Result{}, false
	}
}

// Activity bands the weekly activity count against the role's expected
// count. Middling performance produces no alert.
func Activity(actual, expected int) (Result, bool) {
	ratio := Ratio(int64(actual), int64(expected))
	switch {
	case ratio < 50:
		return Result{Kind: domain.KindActivityRed, Severity: domain.SeverityRed}, true
	case ratio > 150:
		return Result{Kind: domain.KindActivityGreen, Severity: domain.SeverityGreen}, true
	default:
		return Result{}, false
	}
}

// Tasks bands on the raw overdue count, not a ratio.
func Tasks(overdue int) (Result, bool) {
	switch {
	case overdue >= 3:
		return Result{Kind: domain.KindTaskRed, Severity: domain.SeverityRed}, true
	case overdue >= 1:
		return Result{Kind: domain.KindTaskYellow, Severity: domain.SeverityYellow}, true
	default:
		return Result{}, false
	}
}

// TypeBreakdown is the per-task-type slice of a marketing report.
type TypeBreakdown struct {
	Type      string  `json:"type"`
	Total     int     `json:"total"`
	Recorded  int     `json:"recorded"`
	Successes int     `json:"successes"`
	Ratio     float64 `json:"ratio"`
}

// MarketingReport carries the overall band plus the per-type breakdown.
type MarketingReport struct {
	Result
	SuccessRatio    float64         `json:"success_ratio"`
	TotalTasks      int             `json:"total_tasks"`
	Recorded        int             `json:"recorded"`
	Successes       int             `json:"successes"`
	ByType          []TypeBreakdown `json:"by_type"`
	BestPerforming  string          `json:"best_performing,omitempty"`
	WorstPerforming string          `json:"worst_performing,omitempty"`
}

// Marketing bands the success ratio over tasks with a recorded outcome.
// The GREEN threshold is looser on the monthly cadence. Worst-performing
// needs at least three recorded outcomes so low-sample noise is not
// flagged.
func Marketing(buckets []taskdomain.OutcomeBucket, cadence domain.Cadence) (MarketingReport, bool) {
	report := MarketingReport{}
	for _, b := range buckets {
		report.TotalTasks += b.Total
		report.Recorded += b.Recorded
		report.Successes += b.Successes
		if b.Total == 0 {
			continue
		}
		breakdown := TypeBreakdown{
			Type:      b.Type,
			Total:     b.Total,
			Recorded:  b.Recorded,
			Successes: b.Successes,
			Ratio:     Ratio(int64(b.Successes), int64(b.Recorded)),
		}
		report.ByType = append(report.ByType, breakdown)
	}
	sort.Slice(report.ByType, func(i, j int) bool {
		return report.ByType[i].Type < report.ByType[j].Type
	})

	if report.Recorded == 0 {
		return report, false
	}

	report.SuccessRatio = Ratio(int64(report.Successes), int64(report.Recorded))

	greenThreshold := 50.0
	if cadence == domain.CadenceMonthly {
		greenThreshold = 40.0
	}
	switch {
	case report.SuccessRatio < 15:
		report.Result = Result{Kind: domain.KindMarketingRed, Severity: domain.SeverityRed}
	case report.SuccessRatio >= greenThreshold:
		report.Result = Result{Kind: domain.KindMarketingGreen, Severity: domain.SeverityGreen}
	default:
		report.Result = Result{Kind: domain.KindMarketingYellow, Severity: domain.SeverityYellow}
	}

	report.BestPerforming = bestPerforming(report.ByType)
	report.WorstPerforming = worstPerforming(report.ByType)
	return report, true
}

func bestPerforming(byType []TypeBreakdown) string {
	best := ""
	bestRatio := -1.0
	for _, b := range byType {
		if b.Recorded < 1 {
			continue
		}
		if b.Ratio > bestRatio {
			best = b.Type
			bestRatio = b.Ratio
		}
	}
	return best
}

func worstPerforming(byType []TypeBreakdown) string {
	worst := ""
	worstRatio := 101.0
	for _, b := range byType {
		if b.Recorded < 3 || b.Ratio >= 30 {
			continue
		}
		if b.Ratio < worstRatio {
			worst = b.Type
			worstRatio = b.Ratio
		}
	}
	return worst
}

// Ratio returns actual/target as a percentage, with zero or negative
// targets treated as zero attainment.
func Ratio(actual, target int64) float64 {
	if target <= 0 {
		return 0
	}
	return float64(actual) / float64(target) * 100
}
