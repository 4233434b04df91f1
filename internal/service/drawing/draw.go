package drawing

import (
	"errors"
	"fmt"
	"sort"

	domain "referral-giveaway-bot/internal/domain/drawing"
	"referral-giveaway-bot/internal/utils/random"
)

var errInvalidTicketsTotal = errors.New("invalid total tickets")

// drawRandomInt is replaced in tests.
var drawRandomInt = random.Int

// weightedEntrant is one pool member with its cumulative ticket bound.
type weightedEntrant struct {
	Entrant       domain.Entrant
	CumulativeSum int
}

// Draw picks up to k distinct entrants, each round weighted by ticket count.
// A winner's entries leave the pool before the next round. When the pool
// empties early the partial result is returned without error.
func Draw(entrants []domain.Entrant, k int) ([]domain.Entrant, error) {
	pool := make([]domain.Entrant, 0, len(entrants))
	for _, e := range entrants {
		if e.Tickets > 0 {
			pool = append(pool, e)
		}
	}

	winners := make([]domain.Entrant, 0, k)
	for len(winners) < k && len(pool) > 0 {
		weighted, total := buildWeighted(pool)
		picked, err := drawRandomInt(total)
		if err != nil {
			return nil, fmt.Errorf("failed to pick random ticket: %w", err)
		}

		target := picked + 1
		idx := sort.Search(len(weighted), func(i int) bool {
			return weighted[i].CumulativeSum >= target
		})
		if idx >= len(weighted) {
			return nil, errInvalidTicketsTotal
		}

		winners = append(winners, weighted[idx].Entrant)
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return winners, nil
}

func buildWeighted(pool []domain.Entrant) ([]weightedEntrant, int) {
	weighted := make([]weightedEntrant, 0, len(pool))
	total := 0
	for _, e := range pool {
		total += e.Tickets
		weighted = append(weighted, weightedEntrant{Entrant: e, CumulativeSum: total})
	}
	return weighted, total
}
