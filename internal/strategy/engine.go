// Package strategy turns a table snapshot into a single betting action.
//
// Decide runs a fixed rule cascade: made hands first, then stack
// protection, then draw odds, then a cheap-call fallback. The first rule
// that produces an action wins. There is no randomness and no state kept
// between calls.
package strategy

import (
	"github.com/rs/zerolog"

	"github.com/lox/pokerbot/internal/deck"
	"github.com/lox/pokerbot/internal/odds"
)

// Rule names reported with each decision
const (
	RuleMadeStrong     = "made-trips-or-flush"
	RuleMadePair       = "made-pair"
	RuleRiverCheck     = "river-check"
	RuleRiverCheapCall = "river-cheap-call"
	RuleShortStack     = "short-stack"
	RuleWeakDraw       = "weak-draw"
	RuleStrongDraw     = "strong-draw"
	RuleFallback       = "fallback"
)

// Inputs are the numbers the cascade was evaluated against.
type Inputs struct {
	PotOdds   float64 `json:"pot_odds"`
	Flush     float64 `json:"flush_odds"`
	Three     float64 `json:"three_odds"`
	Quads     float64 `json:"quad_odds"`
	DrawsLeft int     `json:"draws_left"`
	Stack     int     `json:"player_stack"`
	Owed      int     `json:"owed"`
}

// Decision is an action together with the rule that produced it.
type Decision struct {
	Action Action `json:"action"`
	Rule   string `json:"rule"`
	Inputs Inputs `json:"inputs"`
}

// Engine decides actions on behalf of one named seat.
type Engine struct {
	name   string
	logger zerolog.Logger
}

// New creates an engine that reads its stack from players[name].
func New(name string, logger zerolog.Logger) *Engine {
	return &Engine{
		name:   name,
		logger: logger.With().Str("component", "strategy").Str("bot", name).Logger(),
	}
}

// Name returns the seat name the engine plays as
func (e *Engine) Name() string {
	return e.name
}

// Decide returns the action for the given state. Identical states always
// produce identical decisions.
func (e *Engine) Decide(s GameState) Decision {
	unseen := deck.Unseen(s.Hand, s.Board)
	in := Inputs{
		PotOdds:   PotOdds(s),
		Flush:     odds.Flush(s.Hand, s.Board, unseen),
		Three:     odds.Three(s.Hand, s.Board, unseen),
		Quads:     odds.Quads(s.Hand, s.Board, unseen),
		DrawsLeft: odds.DrawsLeft(s.Board),
		Stack:     s.Stack(e.name),
		Owed:      s.Owed(),
	}

	action, rule := cascade(s, in)
	d := Decision{Action: action, Rule: rule, Inputs: in}

	e.logger.Debug().
		Str("hand", cardString(s.Hand)).
		Str("board", cardString(s.Board)).
		Float64("pot_odds", in.PotOdds).
		Float64("flush_odds", in.Flush).
		Float64("three_odds", in.Three).
		Float64("quad_odds", in.Quads).
		Int("draws_left", in.DrawsLeft).
		Int("stack", in.Stack).
		Int("owed", in.Owed).
		Str("rule", rule).
		Stringer("action", action).
		Msg("Decided action")

	return d
}

// EndHand receives the final state of a hand. The simple strategy keeps no
// opponent history, so nothing is recorded.
func (e *Engine) EndHand(s GameState) {
	e.logger.Debug().
		Str("board", cardString(s.Board)).
		Int("pot", s.Pot).
		Int("stack", s.Stack(e.name)).
		Msg("Hand ended")
}

// PotOdds returns the share of the resulting pot that calling would cost.
// It is reported with every decision but no rule consults it.
func PotOdds(s GameState) float64 {
	if s.Pot <= 0 {
		return 1.0
	}
	denom := s.Pot + s.CurrBet - s.PlayerCurrBet
	if denom <= 0 {
		return 1.0
	}
	return float64(s.CurrBet) / float64(denom)
}

func cascade(s GameState, in Inputs) (Action, string) {
	stack := in.Stack

	if in.DrawsLeft <= 2 {
		switch {
		case odds.HasTripsOrFlush(s.Hand, s.Board):
			if s.CurrBet < stack/2 {
				return RaiseAction(stack / 2), RuleMadeStrong
			}
			return CallAction(), RuleMadeStrong

		case odds.HasPairOrBetter(s.Hand, s.Board):
			if s.CurrBet/2 < stack/2 {
				return RaiseAction(s.CurrBet / 2), RuleMadePair
			}
			return CallAction(), RuleMadePair

		case in.DrawsLeft == 0:
			if in.Owed == 0 {
				return CheckAction(), RuleRiverCheck
			}
			if in.Owed <= max(1, stack/20) {
				return CallAction(), RuleRiverCheapCall
			}
		}
	}

	if stack < 2*s.BigBlind {
		return CallAction(), RuleShortStack
	}

	if in.Flush <= 0.5 && in.Three <= 0.4 && in.DrawsLeft <= 1 {
		if in.Owed == 0 {
			return CallAction(), RuleWeakDraw
		}
		return FoldAction(), RuleWeakDraw
	}

	if in.Flush >= 0.5 || in.Three >= 0.6 || in.Quads >= 0.2 {
		if stack/10 > s.CurrBet {
			return RaiseAction(stack / 10), RuleStrongDraw
		}
		if stack > in.Owed {
			return CallAction(), RuleStrongDraw
		}
	}

	if in.Owed <= max(1, stack/10) || in.DrawsLeft >= 2 {
		return CallAction(), RuleFallback
	}
	return FoldAction(), RuleFallback
}

func cardString(cards []deck.Card) string {
	b := make([]byte, 0, len(cards)*3)
	for i, c := range cards {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, c.String()...)
	}
	return string(b)
}
