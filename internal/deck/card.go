package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit represents a card suit by its wire letter
type Suit byte

const (
	Hearts   Suit = 'H'
	Diamonds Suit = 'D'
	Clubs    Suit = 'C'
	Spades   Suit = 'S'
)

// Suits lists the four suits in deck construction order
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the single-letter form of the suit
func (s Suit) String() string {
	return string(rune(s))
}

// ParseSuit maps a wire token to a suit. Only the first character is
// significant, so both "H" and "Hearts" decode to Hearts. An empty token
// decodes to Hearts; unknown letters are kept as-is.
func ParseSuit(s string) Suit {
	if s == "" {
		return Hearts
	}
	return Suit(strings.ToUpper(s[:1])[0])
}

// Rank represents a card rank, 2 through 14 (ace high)
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the single-character form of the rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return strconv.Itoa(int(r))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// ParseRank maps a rank token to a Rank. Single-character tokens 2-9, T, J,
// Q, K and A are recognised; anything else is read as a decimal integer.
// Unparsable input yields 0 rather than an error.
func ParseRank(s string) Rank {
	if len(s) == 1 {
		c := s[0]
		switch {
		case c >= '2' && c <= '9':
			return Rank(c - '0')
		case c == 'T':
			return Ten
		case c == 'J':
			return Jack
		case c == 'Q':
			return Queen
		case c == 'K':
			return King
		case c == 'A':
			return Ace
		}
	}
	return Rank(leadingInt(s))
}

// leadingInt parses the optionally signed decimal prefix of s after leading
// whitespace, so "14.0" and "7x" read as 14 and 7. It returns 0 when there
// are no digits.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Card is an immutable (suit, rank) pair
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the short form of a card, e.g. "AH"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ParseCard parses a two-character card such as "Ah" or "TD".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q: want 2 characters", s)
	}
	rank := ParseRank(strings.ToUpper(s[:1]))
	if rank < Two || rank > Ace {
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}
	suit := ParseSuit(s[1:])
	switch suit {
	case Hearts, Diamonds, Clubs, Spades:
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}
	return NewCard(suit, rank), nil
}

// ParseCards parses a run of two-character cards, optionally separated by
// whitespace, e.g. "AhKd" or "Ah Kd 2c".
func ParseCards(s string) ([]Card, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string %q: odd length", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
