package deck

import "testing"

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "royal flush",
			input: "AsKsQsJsTs",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Spades, Rank: King},
				{Suit: Spades, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Ten},
			},
		},
		{
			name:  "mixed suits with spaces",
			input: "Ah Kd Qc",
			expected: []Card{
				{Suit: Hearts, Rank: Ace},
				{Suit: Diamonds, Rank: King},
				{Suit: Clubs, Rank: Queen},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqD",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
			},
		},
		{name: "invalid rank", input: "XsKs", wantErr: true},
		{name: "invalid suit", input: "AsKx", wantErr: true},
		{name: "odd length", input: "AsK", wantErr: true},
		{name: "empty string", input: "", expected: []Card{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !cardsEqual(got, tt.expected) {
				t.Errorf("ParseCards() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustParseCardsPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCards() should panic on invalid input")
		}
	}()
	MustParseCards("invalid")
}

func TestParseRank(t *testing.T) {
	tests := map[string]Rank{
		"2":    Two,
		"9":    Nine,
		"T":    Ten,
		"J":    Jack,
		"Q":    Queen,
		"K":    King,
		"A":    Ace,
		"10":   Ten,
		"14":   Ace,
		" 7 ":  Seven,
		"14.0": Ace,
		"7x":   Seven,
		"+9":   Nine,
		"-":    0,
		"Ace":  0,
		"":     0,
		"x":    0,
	}
	for in, want := range tests {
		if got := ParseRank(in); got != want {
			t.Errorf("ParseRank(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseSuit(t *testing.T) {
	tests := map[string]Suit{
		"H":        Hearts,
		"Hearts":   Hearts,
		"d":        Diamonds,
		"Clubs":    Clubs,
		"S":        Spades,
		"":         Hearts,
		"Diamonds": Diamonds,
	}
	for in, want := range tests {
		if got := ParseSuit(in); got != want {
			t.Errorf("ParseSuit(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCardString(t *testing.T) {
	if got := NewCard(Hearts, Ace).String(); got != "AH" {
		t.Errorf("String() = %q, want AH", got)
	}
	if got := NewCard(Clubs, Ten).String(); got != "TC" {
		t.Errorf("String() = %q, want TC", got)
	}
	if got := NewCard(Spades, 0).String(); got != "?S" {
		t.Errorf("String() = %q, want ?S", got)
	}
}

func cardsEqual(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
