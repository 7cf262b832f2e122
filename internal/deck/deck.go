package deck

import rand "math/rand/v2"

// Deck is an ordered collection of cards
type Deck struct {
	cards []Card
}

// NewDeck creates a new standard 52-card deck in suit-major order
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// Unseen returns a fresh deck with every hand and board card removed once.
func Unseen(hand, board []Card) *Deck {
	d := NewDeck()
	for _, c := range hand {
		d.Remove(c)
	}
	for _, c := range board {
		d.Remove(c)
	}
	return d
}

// Remove deletes the first card equal to c. Removing an absent card is a no-op.
func (d *Deck) Remove(c Card) {
	for i, x := range d.cards {
		if x == c {
			d.cards = append(d.cards[:i], d.cards[i+1:]...)
			return
		}
	}
}

// Cards returns the remaining cards. The slice must not be modified.
func (d *Deck) Cards() []Card {
	return d.cards
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// SuitCount returns how many remaining cards have the given suit
func (d *Deck) SuitCount(s Suit) int {
	n := 0
	for _, c := range d.cards {
		if c.Suit == s {
			n++
		}
	}
	return n
}

// RankCount returns how many remaining cards have the given rank
func (d *Deck) RankCount(r Rank) int {
	n := 0
	for _, c := range d.cards {
		if c.Rank == r {
			n++
		}
	}
	return n
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns up to n cards from the top of the deck
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	out := make([]Card, n)
	copy(out, d.cards[:n])
	d.cards = d.cards[n:]
	return out
}
