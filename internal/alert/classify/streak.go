package classify

import (
	"sort"

	"github.com/copperline/crm/internal/alert/domain"
)

// Streak reports the current win or loss run over recently closed deals.
// Deals are ordered by close timestamp, most recent first, so two deals
// closed on the same calendar day are broken by whichever closed later.
// The streak is the length of the leading run sharing the most recent
// deal's result.
func Streak(deals []domain.ClosedDeal) (won bool, length int) {
	if len(deals) == 0 {
		return false, 0
	}

	sorted := make([]domain.ClosedDeal, len(deals))
	copy(sorted, deals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ClosedAt.After(sorted[j].ClosedAt)
	})

	won = sorted[0].Won
	for _, deal := range sorted {
		if deal.Won != won {
			break
		}
		length++
	}
	return won, length
}
