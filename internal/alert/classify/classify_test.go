package classify

import (
	"testing"

	"github.com/copperline/crm/internal/alert/domain"
	taskdomain "github.com/copperline/crm/internal/task/domain"
	"github.com/stretchr/testify/assert"
)

func TestQuota(t *testing.T) {
	tests := []struct {
		name          string
		actual        int64
		target        int64
		daysRemaining int
		wantKind      string
		wantAlert     bool
	}{
		{"exactly on target", 300000, 300000, 15, domain.KindQuotaGreen, true},
		{"over target", 320000, 300000, 5, domain.KindQuotaGreen, true},
		{"at eighty percent", 240000, 300000, 15, domain.KindQuotaYellow, true},
		{"just under hundred", 299999, 300000, 15, domain.KindQuotaYellow, true},
		{"just under eighty no alert", 239999, 300000, 15, "", false},
		{"under fifty early in month", 100000, 300000, 20, "", false},
		{"under fifty late in month", 100000, 300000, 9, domain.KindQuotaRed, true},
		{"under fifty ten days left", 100000, 300000, 10, "", false},
		{"just under fifty late", 149999, 300000, 5, domain.KindQuotaRed, true},
		{"exactly fifty late no red", 150000, 300000, 5, "", false},
		{"zero target early", 0, 0, 20, "", false},
		{"zero target late is red", 100000, 0, 5, domain.KindQuotaRed, true},
		{"negative target treated as zero", 100000, -1, 5, domain.KindQuotaRed, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := Quota(tc.actual, tc.target, tc.daysRemaining)
			assert.Equal(t, tc.wantAlert, ok)
			if tc.wantAlert {
				assert.Equal(t, tc.wantKind, result.Kind)
			}
		})
	}
}

func TestActivity(t *testing.T) {
	tests := []struct {
		name      string
		actual    int
		expected  int
		wantKind  string
		wantAlert bool
	}{
		{"half of expected no alert", 25, 50, "", false},
		{"just under half is red", 24, 50, domain.KindActivityRed, true},
		{"zero is red", 0, 50, domain.KindActivityRed, true},
		{"exactly one hundred fifty no alert", 75, 50, "", false},
		{"over one hundred fifty is green", 76, 50, domain.KindActivityGreen, true},
		{"middling no alert", 50, 50, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := Activity(tc.actual, tc.expected)
			assert.Equal(t, tc.wantAlert, ok)
			if tc.wantAlert {
				assert.Equal(t, tc.wantKind, result.Kind)
			}
		})
	}
}

func TestTasks(t *testing.T) {
	result, ok := Tasks(0)
	assert.False(t, ok)

	result, ok = Tasks(1)
	assert.True(t, ok)
	assert.Equal(t, domain.KindTaskYellow, result.Kind)
	assert.Equal(t, domain.SeverityYellow, result.Severity)

	result, ok = Tasks(2)
	assert.True(t, ok)
	assert.Equal(t, domain.KindTaskYellow, result.Kind)

	result, ok = Tasks(3)
	assert.True(t, ok)
	assert.Equal(t, domain.KindTaskRed, result.Kind)
	assert.Equal(t, domain.SeverityRed, result.Severity)
}

func TestMarketing(t *testing.T) {
	t.Run("no recorded outcomes means no alert", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeSocial, Total: 5, Recorded: 0, Successes: 0},
		}
		_, ok := Marketing(buckets, domain.CadenceWeekly)
		assert.False(t, ok)
	})

	t.Run("low ratio is red with breakdown", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeEmailCampaign, Total: 12, Recorded: 6, Successes: 1},
			{Type: taskdomain.TypeSocial, Total: 8, Recorded: 4, Successes: 0},
		}
		report, ok := Marketing(buckets, domain.CadenceWeekly)
		assert.True(t, ok)
		assert.Equal(t, domain.KindMarketingRed, report.Kind)
		assert.Equal(t, domain.SeverityRed, report.Severity)
		assert.Equal(t, 20, report.TotalTasks)
		assert.Equal(t, 10, report.Recorded)
		assert.Equal(t, 1, report.Successes)
		assert.InDelta(t, 10.0, report.SuccessRatio, 0.001)
		assert.Len(t, report.ByType, 2)
	})

	t.Run("weekly green threshold is fifty", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeWebinar, Total: 10, Recorded: 10, Successes: 5},
		}
		report, ok := Marketing(buckets, domain.CadenceWeekly)
		assert.True(t, ok)
		assert.Equal(t, domain.KindMarketingGreen, report.Kind)
	})

	t.Run("monthly green threshold is forty", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeWebinar, Total: 10, Recorded: 10, Successes: 4},
		}
		report, ok := Marketing(buckets, domain.CadenceMonthly)
		assert.True(t, ok)
		assert.Equal(t, domain.KindMarketingGreen, report.Kind)

		report, ok = Marketing(buckets, domain.CadenceWeekly)
		assert.True(t, ok)
		assert.Equal(t, domain.KindMarketingYellow, report.Kind)
	})

	t.Run("middling ratio is yellow", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeContent, Total: 10, Recorded: 10, Successes: 3},
		}
		report, ok := Marketing(buckets, domain.CadenceWeekly)
		assert.True(t, ok)
		assert.Equal(t, domain.KindMarketingYellow, report.Kind)
	})

	t.Run("best needs one recorded worst needs three", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeEmailCampaign, Total: 10, Recorded: 6, Successes: 1},
			{Type: taskdomain.TypeSocial, Total: 4, Recorded: 2, Successes: 0},
			{Type: taskdomain.TypeWebinar, Total: 6, Recorded: 4, Successes: 3},
		}
		report, ok := Marketing(buckets, domain.CadenceWeekly)
		assert.True(t, ok)
		assert.Equal(t, taskdomain.TypeWebinar, report.BestPerforming)
		// social has ratio 0 but only two recorded outcomes, so
		// email_campaign is the worst despite a higher ratio.
		assert.Equal(t, taskdomain.TypeEmailCampaign, report.WorstPerforming)
	})

	t.Run("worst ignores ratios at or above thirty", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeEvent, Total: 10, Recorded: 10, Successes: 3},
		}
		report, ok := Marketing(buckets, domain.CadenceWeekly)
		assert.True(t, ok)
		assert.Equal(t, "", report.WorstPerforming)
	})

	t.Run("breakdown skips empty types and sorts by name", func(t *testing.T) {
		buckets := []taskdomain.OutcomeBucket{
			{Type: taskdomain.TypeWebinar, Total: 3, Recorded: 3, Successes: 1},
			{Type: taskdomain.TypeContent, Total: 0, Recorded: 0, Successes: 0},
			{Type: taskdomain.TypeEmailCampaign, Total: 2, Recorded: 1, Successes: 1},
		}
		report, ok := Marketing(buckets, domain.CadenceWeekly)
		assert.True(t, ok)
		assert.Len(t, report.ByType, 2)
		assert.Equal(t, taskdomain.TypeEmailCampaign, report.ByType[0].Type)
		assert.Equal(t, taskdomain.TypeWebinar, report.ByType[1].Type)
	})
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(100, 0))
	assert.Equal(t, 0.0, Ratio(100, -5))
	assert.InDelta(t, 50.0, Ratio(1, 2), 0.001)
	assert.InDelta(t, 106.66, Ratio(3200, 3000), 0.01)
}
