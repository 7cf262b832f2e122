package deck

import (
	"testing"

	"github.com/lox/pokerbot/internal/randutil"
)

func TestNewDeckHas52DistinctCards(t *testing.T) {
	d := NewDeck()
	if d.Len() != 52 {
		t.Fatalf("expected 52 cards, got %d", d.Len())
	}

	seen := make(map[Card]bool)
	for _, c := range d.Cards() {
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}

	for _, s := range Suits {
		if n := d.SuitCount(s); n != 13 {
			t.Errorf("suit %s: expected 13 cards, got %d", s, n)
		}
	}
	for r := Two; r <= Ace; r++ {
		if n := d.RankCount(r); n != 4 {
			t.Errorf("rank %s: expected 4 cards, got %d", r, n)
		}
	}
}

func TestRemove(t *testing.T) {
	d := NewDeck()
	d.Remove(NewCard(Hearts, Ace))
	if d.Len() != 51 {
		t.Fatalf("expected 51 cards after remove, got %d", d.Len())
	}
	if d.RankCount(Ace) != 3 {
		t.Errorf("expected 3 aces left, got %d", d.RankCount(Ace))
	}

	// Second removal of the same card is a no-op
	d.Remove(NewCard(Hearts, Ace))
	if d.Len() != 51 {
		t.Errorf("expected removing an absent card to be a no-op, got %d cards", d.Len())
	}

	// Invalid cards are never present
	d.Remove(NewCard(Hearts, 0))
	if d.Len() != 51 {
		t.Errorf("expected removing an invalid card to be a no-op, got %d cards", d.Len())
	}
}

func TestUnseen(t *testing.T) {
	hand := MustParseCards("AhKh")
	board := MustParseCards("2h5h9c7d7s")

	unseen := Unseen(hand, board)
	if unseen.Len() != 45 {
		t.Fatalf("expected 45 unseen cards, got %d", unseen.Len())
	}
	for _, c := range append(hand, board...) {
		for _, u := range unseen.Cards() {
			if u == c {
				t.Errorf("visible card %s still in unseen pool", c)
			}
		}
	}
	if n := unseen.SuitCount(Hearts); n != 9 {
		t.Errorf("expected 9 unseen hearts, got %d", n)
	}
}

func TestUnseenToleratesDuplicates(t *testing.T) {
	hand := MustParseCards("AhAh")
	unseen := Unseen(hand, nil)
	if unseen.Len() != 51 {
		t.Errorf("expected duplicate hand card to be removed once, got %d cards", unseen.Len())
	}
}

func TestShuffleAndDeal(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(randutil.New(7))
	b.Shuffle(randutil.New(7))

	handA := a.Deal(7)
	handB := b.Deal(7)
	if !cardsEqual(handA, handB) {
		t.Errorf("same seed should deal the same cards: %v vs %v", handA, handB)
	}
	if a.Len() != 45 {
		t.Errorf("expected 45 cards after dealing 7, got %d", a.Len())
	}

	rest := a.Deal(100)
	if len(rest) != 45 || a.Len() != 0 {
		t.Errorf("expected to deal the remaining 45 cards, got %d (left %d)", len(rest), a.Len())
	}
}
