// Package odds estimates the chance of completing simple made hands from the
// cards still unseen.
//
// The estimates use an independence approximation rather than exact
// combinatorics: the chance of drawing a wanted card once is its share of the
// unseen pool, and the chance of drawing it k times is that share raised to
// the k-th power. Downstream thresholds are tuned against these numbers, so
// they must not be replaced with hypergeometric probabilities.
package odds

import (
	"math"
	"slices"

	"github.com/lox/pokerbot/internal/deck"
)

// BoardSize is the number of community cards at showdown
const BoardSize = 5

// DrawsLeft returns how many community cards are still to come
func DrawsLeft(board []deck.Card) int {
	return BoardSize - len(board)
}

// Flush estimates the chance of making a five-card flush.
func Flush(hand, board []deck.Card, unseen *deck.Deck) float64 {
	_, suits := count(hand, board)
	for _, n := range suits {
		if n >= 5 {
			return 1.0
		}
	}

	total := unseen.Len()
	if total == 0 {
		return 0.0
	}

	best := 0.0
	for suit, n := range suits {
		p := power(float64(unseen.SuitCount(suit))/float64(total), 5-n)
		if p > best {
			best = p
		}
	}
	return best
}

// Three estimates the chance of making three of a kind over the remaining draws.
func Three(hand, board []deck.Card, unseen *deck.Deck) float64 {
	return ofAKind(3, hand, board, unseen)
}

// Quads estimates the chance of making four of a kind over the remaining draws.
func Quads(hand, board []deck.Card, unseen *deck.Deck) float64 {
	return ofAKind(4, hand, board, unseen)
}

// ofAKind sums the per-draw chance of completing each of the most frequent
// ranks (ties all count) and compounds it over the draws left.
func ofAKind(target int, hand, board []deck.Card, unseen *deck.Deck) float64 {
	ranks, _ := count(hand, board)

	maxCount := 0
	var leaders []deck.Rank
	for rank, n := range ranks {
		if n >= target {
			return 1.0
		}
		switch {
		case n > maxCount:
			maxCount = n
			leaders = append(leaders[:0], rank)
		case n == maxCount:
			leaders = append(leaders, rank)
		}
	}
	if maxCount == 0 {
		return 0.0
	}

	total := unseen.Len()
	if total == 0 {
		return 0.0
	}

	// Summed in rank order so ties give bit-identical results run to run.
	slices.Sort(leaders)

	need := max(0, target-maxCount)
	odd := 0.0
	for _, rank := range leaders {
		odd += power(float64(unseen.RankCount(rank))/float64(total), need)
	}

	draws := max(1, DrawsLeft(board))
	return 1.0 - math.Pow(1.0-odd, float64(draws))
}

// power multiplies p by itself n times.
func power(p float64, n int) float64 {
	out := 1.0
	for range n {
		out *= p
	}
	return out
}
