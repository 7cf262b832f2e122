package strategy

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/lox/pokerbot/internal/deck"
)

// GameState is the table snapshot the orchestrator sends with every request.
// Missing or mistyped scalar fields decode to their zero value so that a
// sloppy orchestrator never stalls a match.
type GameState struct {
	Hand          []deck.Card
	Board         []deck.Card
	Pot           int
	CurrBet       int
	PlayerCurrBet int
	CanCheck      bool
	BigBlind      int
	SmallBlind    int
	Players       map[string]Player
}

// Player is the per-seat entry of the players map. Only chips are read.
type Player struct {
	Chips int
}

// Stack returns the chip count for the named player, or 0 if absent.
func (s GameState) Stack(name string) int {
	return s.Players[name].Chips
}

// Owed returns the amount still needed to call the current bet.
func (s GameState) Owed() int {
	return s.CurrBet - s.PlayerCurrBet
}

// ParseState decodes a raw JSON state object.
func ParseState(raw []byte) (GameState, error) {
	var s GameState
	if err := json.Unmarshal(raw, &s); err != nil {
		return GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	return s, nil
}

type wireState struct {
	Hand          []wireCard            `json:"hand"`
	Board         []wireCard            `json:"board"`
	Pot           lenientInt            `json:"pot"`
	CurrBet       lenientInt            `json:"curr_bet"`
	PlayerCurrBet lenientInt            `json:"player_curr_bet"`
	CanCheck      lenientBool           `json:"can_check"`
	BigBlind      lenientInt            `json:"big_blind"`
	SmallBlind    lenientInt            `json:"small_blind"`
	Players       map[string]wirePlayer `json:"players"`
}

type wirePlayer struct {
	Chips lenientInt `json:"chips"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *GameState) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*s = GameState{
		Hand:          toCards(w.Hand),
		Board:         toCards(w.Board),
		Pot:           int(w.Pot),
		CurrBet:       int(w.CurrBet),
		PlayerCurrBet: int(w.PlayerCurrBet),
		CanCheck:      bool(w.CanCheck),
		BigBlind:      int(w.BigBlind),
		SmallBlind:    int(w.SmallBlind),
		Players:       make(map[string]Player, len(w.Players)),
	}
	for name, p := range w.Players {
		s.Players[name] = Player{Chips: int(p.Chips)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler using the wire field names.
func (s GameState) MarshalJSON() ([]byte, error) {
	type card struct {
		Suit string `json:"suit"`
		Rank int    `json:"rank"`
	}
	type player struct {
		Chips int `json:"chips"`
	}
	toWire := func(cs []deck.Card) []card {
		out := make([]card, len(cs))
		for i, c := range cs {
			out[i] = card{Suit: c.Suit.String(), Rank: int(c.Rank)}
		}
		return out
	}
	players := make(map[string]player, len(s.Players))
	for name, p := range s.Players {
		players[name] = player{Chips: p.Chips}
	}
	return json.Marshal(struct {
		Hand          []card            `json:"hand"`
		Board         []card            `json:"board"`
		Pot           int               `json:"pot"`
		CurrBet       int               `json:"curr_bet"`
		PlayerCurrBet int               `json:"player_curr_bet"`
		CanCheck      bool              `json:"can_check"`
		BigBlind      int               `json:"big_blind"`
		SmallBlind    int               `json:"small_blind"`
		Players       map[string]player `json:"players"`
	}{
		Hand:          toWire(s.Hand),
		Board:         toWire(s.Board),
		Pot:           s.Pot,
		CurrBet:       s.CurrBet,
		PlayerCurrBet: s.PlayerCurrBet,
		CanCheck:      s.CanCheck,
		BigBlind:      s.BigBlind,
		SmallBlind:    s.SmallBlind,
		Players:       players,
	})
}

// wireCard accepts {"suit": "H"|"Hearts", "rank": 14|"A"|"14"} as well as
// the short string form "Ah".
type wireCard deck.Card

func (c *wireCard) UnmarshalJSON(data []byte) error {
	var short string
	if err := json.Unmarshal(data, &short); err == nil {
		card, err := deck.ParseCard(short)
		if err != nil {
			return err
		}
		*c = wireCard(card)
		return nil
	}

	var obj struct {
		Suit *string         `json:"suit"`
		Rank json.RawMessage `json:"rank"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode card: %w", err)
	}

	suit := deck.Hearts
	if obj.Suit != nil {
		suit = deck.ParseSuit(*obj.Suit)
	}
	rank := deck.Two
	if len(obj.Rank) > 0 {
		rank = parseRankValue(obj.Rank)
	}
	*c = wireCard(deck.NewCard(suit, rank))
	return nil
}

func parseRankValue(raw json.RawMessage) deck.Rank {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch r := v.(type) {
	case float64:
		return deck.Rank(int(r))
	case string:
		return deck.ParseRank(r)
	default:
		return 0
	}
}

func toCards(ws []wireCard) []deck.Card {
	out := make([]deck.Card, len(ws))
	for i, w := range ws {
		out[i] = deck.Card(w)
	}
	return out
}

// lenientInt decodes numbers (truncating fractions) and numeric strings;
// anything else decodes to 0.
type lenientInt int

func (n *lenientInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = 0
	switch x := v.(type) {
	case float64:
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			*n = lenientInt(int(x))
		}
	case string:
		if i, err := strconv.Atoi(x); err == nil {
			*n = lenientInt(i)
		}
	}
	return nil
}

// lenientBool decodes JSON booleans; anything else decodes to false.
type lenientBool bool

func (b *lenientBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	x, _ := v.(bool)
	*b = lenientBool(x)
	return nil
}
