package classify

import (
	"testing"
	"time"

	"github.com/copperline/crm/internal/alert/domain"
	"github.com/stretchr/testify/assert"
)

func closedAt(day int, hour int) time.Time {
	return time.Date(2024, time.July, day, hour, 0, 0, 0, time.UTC)
}

func TestStreak(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		won, length := Streak(nil)
		assert.False(t, won)
		assert.Equal(t, 0, length)
	})

	t.Run("single win", func(t *testing.T) {
		won, length := Streak([]domain.ClosedDeal{
			{Won: true, ClosedAt: closedAt(10, 9)},
		})
		assert.True(t, won)
		assert.Equal(t, 1, length)
	})

	t.Run("leading run counted regardless of input order", func(t *testing.T) {
		deals := []domain.ClosedDeal{
			{Won: false, ClosedAt: closedAt(5, 9)},
			{Won: true, ClosedAt: closedAt(12, 9)},
			{Won: true, ClosedAt: closedAt(8, 9)},
			{Won: true, ClosedAt: closedAt(15, 9)},
		}
		won, length := Streak(deals)
		assert.True(t, won)
		assert.Equal(t, 3, length)
	})

	t.Run("loss streak", func(t *testing.T) {
		deals := []domain.ClosedDeal{
			{Won: true, ClosedAt: closedAt(1, 9)},
			{Won: false, ClosedAt: closedAt(2, 9)},
			{Won: false, ClosedAt: closedAt(3, 9)},
		}
		won, length := Streak(deals)
		assert.False(t, won)
		assert.Equal(t, 2, length)
	})

	t.Run("same day tie broken by later timestamp", func(t *testing.T) {
		deals := []domain.ClosedDeal{
			{Won: false, ClosedAt: closedAt(20, 9)},
			{Won: true, ClosedAt: closedAt(20, 17)},
		}
		won, length := Streak(deals)
		assert.True(t, won)
		assert.Equal(t, 1, length)
	})
}
