package recipient

import (
	"testing"
	"time"

	"github.com/copperline/crm/internal/alert/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveCc(t *testing.T) {
	r := NewResolver(
		[]string{"hr@copperline.local"},
		[]string{"vp-sales@copperline.local", "coo@copperline.local"},
		14,
	)

	t.Run("red escalates to hr and leadership", func(t *testing.T) {
		cc := r.ResolveCc(domain.SeverityRed, "manager@copperline.local")
		assert.Equal(t, []string{"hr@copperline.local", "vp-sales@copperline.local", "coo@copperline.local"}, cc)
	})

	t.Run("yellow stays with the manager", func(t *testing.T) {
		cc := r.ResolveCc(domain.SeverityYellow, "manager@copperline.local")
		assert.Equal(t, []string{"manager@copperline.local"}, cc)
	})

	t.Run("yellow without a manager copies nobody", func(t *testing.T) {
		assert.Nil(t, r.ResolveCc(domain.SeverityYellow, ""))
	})

	t.Run("green copies hr", func(t *testing.T) {
		cc := r.ResolveCc(domain.SeverityGreen, "manager@copperline.local")
		assert.Equal(t, []string{"hr@copperline.local"}, cc)
	})

	t.Run("green returns a copy of the hr list", func(t *testing.T) {
		cc := r.ResolveCc(domain.SeverityGreen, "")
		cc[0] = "changed@copperline.local"
		assert.Equal(t, []string{"hr@copperline.local"}, r.ResolveCc(domain.SeverityGreen, ""))
	})
}

func TestApplyGracePeriod(t *testing.T) {
	r := NewResolver(nil, nil, 14)
	now := time.Date(2024, time.July, 15, 9, 0, 0, 0, time.UTC)

	hired := func(daysAgo int) *time.Time {
		ts := now.AddDate(0, 0, -daysAgo)
		return &ts
	}

	t.Run("nil hire date means no prefix", func(t *testing.T) {
		assert.Equal(t, "Quota update", r.ApplyGracePeriod("Quota update", nil, now))
	})

	t.Run("inside the window", func(t *testing.T) {
		assert.Equal(t, "[ONBOARDING] Quota update", r.ApplyGracePeriod("Quota update", hired(13), now))
	})

	t.Run("window closes at exactly fourteen days", func(t *testing.T) {
		assert.Equal(t, "Quota update", r.ApplyGracePeriod("Quota update", hired(14), now))
	})

	t.Run("past the window", func(t *testing.T) {
		assert.Equal(t, "Quota update", r.ApplyGracePeriod("Quota update", hired(15), now))
	})

	t.Run("zero grace days falls back to the default window", func(t *testing.T) {
		fallback := NewResolver(nil, nil, 0)
		assert.Equal(t, "[ONBOARDING] Quota update", fallback.ApplyGracePeriod("Quota update", hired(13), now))
		assert.Equal(t, "Quota update", fallback.ApplyGracePeriod("Quota update", hired(14), now))
	})
}
