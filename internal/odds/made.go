package odds

import "github.com/lox/pokerbot/internal/deck"

// HasTripsOrFlush reports whether hand+board already holds three of a rank
// or five of a suit.
func HasTripsOrFlush(hand, board []deck.Card) bool {
	ranks, suits := count(hand, board)
	for _, n := range ranks {
		if n >= 3 {
			return true
		}
	}
	for _, n := range suits {
		if n >= 5 {
			return true
		}
	}
	return false
}

// HasPairOrBetter reports whether any rank appears at least twice in hand+board.
func HasPairOrBetter(hand, board []deck.Card) bool {
	ranks, _ := count(hand, board)
	for _, n := range ranks {
		if n >= 2 {
			return true
		}
	}
	return false
}

func count(hand, board []deck.Card) (map[deck.Rank]int, map[deck.Suit]int) {
	ranks := make(map[deck.Rank]int, len(hand)+len(board))
	suits := make(map[deck.Suit]int, 4)
	for _, cards := range [][]deck.Card{hand, board} {
		for _, c := range cards {
			ranks[c.Rank]++
			suits[c.Suit]++
		}
	}
	return ranks, suits
}
