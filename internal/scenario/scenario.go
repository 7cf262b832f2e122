// Package scenario loads hand-written decision scenarios from TOML and
// replays them through a decision engine.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/pokerbot/internal/deck"
	"github.com/lox/pokerbot/internal/odds"
	"github.com/lox/pokerbot/internal/strategy"
)

// DefaultBot is the player name scenarios are evaluated for when the file
// does not set one.
const DefaultBot = "Simple"

// File is a set of scenarios for one bot.
type File struct {
	Bot       string     `toml:"bot,omitempty"`
	Scenarios []Scenario `toml:"scenario"`
}

// Scenario is one spot and the action expected for it. Cards use the short
// form, e.g. "AhKd".
type Scenario struct {
	Name          string `toml:"name"`
	Hand          string `toml:"hand"`
	Board         string `toml:"board,omitempty"`
	Pot           int    `toml:"pot"`
	CurrBet       int    `toml:"curr_bet"`
	PlayerCurrBet int    `toml:"player_curr_bet"`
	Stack         int    `toml:"stack"`
	BigBlind      int    `toml:"big_blind"`
	SmallBlind    int    `toml:"small_blind"`
	CanCheck      bool   `toml:"can_check"`

	ExpectMove   string `toml:"expect_move"`
	ExpectAmount int    `toml:"expect_amount,omitempty"`
	ExpectRule   string `toml:"expect_rule,omitempty"`
}

// Result is the outcome of replaying one scenario.
type Result struct {
	Scenario Scenario
	Decision strategy.Decision
	Err      error
	Mismatch []string
}

// Passed reports whether the decision matched every expectation.
func (r Result) Passed() bool {
	return r.Err == nil && len(r.Mismatch) == 0
}

// Load reads a scenario file. Unknown keys are rejected so that typos in
// expectations do not pass silently.
func Load(path string) (*File, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Decode parses scenarios from r.
func Decode(r io.Reader) (*File, error) {
	var file File
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if file.Bot == "" {
		file.Bot = DefaultBot
	}
	if len(file.Scenarios) == 0 {
		return nil, errors.New("no scenarios defined")
	}
	for i, s := range file.Scenarios {
		if s.Name == "" {
			file.Scenarios[i].Name = fmt.Sprintf("scenario %d", i+1)
		}
		if _, err := s.expectedMove(); err != nil {
			return nil, fmt.Errorf("%s: %w", file.Scenarios[i].Name, err)
		}
	}
	return &file, nil
}

// Encode writes f as TOML.
func Encode(w io.Writer, f *File) error {
	return toml.NewEncoder(w).Encode(f)
}

// State builds the game state the scenario describes for the named bot.
func (s Scenario) State(bot string) (strategy.GameState, error) {
	hand, err := deck.ParseCards(s.Hand)
	if err != nil {
		return strategy.GameState{}, fmt.Errorf("hand: %w", err)
	}
	board, err := deck.ParseCards(s.Board)
	if err != nil {
		return strategy.GameState{}, fmt.Errorf("board: %w", err)
	}
	if len(board) > odds.BoardSize {
		return strategy.GameState{}, fmt.Errorf("board has %d cards", len(board))
	}
	return strategy.GameState{
		Hand:          hand,
		Board:         board,
		Pot:           s.Pot,
		CurrBet:       s.CurrBet,
		PlayerCurrBet: s.PlayerCurrBet,
		CanCheck:      s.CanCheck,
		BigBlind:      s.BigBlind,
		SmallBlind:    s.SmallBlind,
		Players:       map[string]strategy.Player{bot: {Chips: s.Stack}},
	}, nil
}

func (s Scenario) expectedMove() (strategy.Move, error) {
	m := strategy.Move(strings.ToLower(strings.TrimSpace(s.ExpectMove)))
	switch m {
	case strategy.Fold, strategy.Check, strategy.Call, strategy.Raise:
		return m, nil
	default:
		return "", fmt.Errorf("invalid expect_move %q", s.ExpectMove)
	}
}

// Decider is the part of the engine scenarios exercise.
type Decider interface {
	Decide(strategy.GameState) strategy.Decision
}

// Run replays every scenario in f through d.
func Run(d Decider, f *File) []Result {
	results := make([]Result, 0, len(f.Scenarios))
	for _, s := range f.Scenarios {
		results = append(results, run(d, f.Bot, s))
	}
	return results
}

func run(d Decider, bot string, s Scenario) Result {
	r := Result{Scenario: s}

	state, err := s.State(bot)
	if err != nil {
		r.Err = err
		return r
	}
	r.Decision = d.Decide(state)

	got := r.Decision.Action
	want, _ := s.expectedMove()
	if got.Move != want {
		r.Mismatch = append(r.Mismatch, fmt.Sprintf("move: got %s, want %s", got.Move, want))
	}
	if want == strategy.Raise && s.ExpectAmount != 0 && got.Amount != s.ExpectAmount {
		r.Mismatch = append(r.Mismatch, fmt.Sprintf("amount: got %d, want %d", got.Amount, s.ExpectAmount))
	}
	if s.ExpectRule != "" && r.Decision.Rule != s.ExpectRule {
		r.Mismatch = append(r.Mismatch, fmt.Sprintf("rule: got %s, want %s", r.Decision.Rule, s.ExpectRule))
	}
	return r
}

// FromDecision records a decision as a scenario expecting the same outcome.
func FromDecision(name, bot string, state strategy.GameState, d strategy.Decision) Scenario {
	return Scenario{
		Name:          name,
		Hand:          cards(state.Hand),
		Board:         cards(state.Board),
		Pot:           state.Pot,
		CurrBet:       state.CurrBet,
		PlayerCurrBet: state.PlayerCurrBet,
		Stack:         state.Stack(bot),
		BigBlind:      state.BigBlind,
		SmallBlind:    state.SmallBlind,
		CanCheck:      state.CanCheck,
		ExpectMove:    string(d.Action.Move),
		ExpectAmount:  d.Action.Amount,
		ExpectRule:    d.Rule,
	}
}

func cards(cs []deck.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
