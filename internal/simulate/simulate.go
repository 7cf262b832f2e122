// Package simulate deals random spots and tallies how the decision engine
// responds to them.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lox/pokerbot/internal/deck"
	"github.com/lox/pokerbot/internal/randutil"
	"github.com/lox/pokerbot/internal/strategy"
)

// Streets in dealing order, named by board size.
var Streets = []string{"preflop", "flop", "turn", "river"}

var boardSizes = []int{0, 3, 4, 5}

// Decider is the engine under simulation. It must be safe for concurrent
// use.
type Decider interface {
	Decide(strategy.GameState) strategy.Decision
}

// Config controls a simulation run.
type Config struct {
	Hands    int
	Seed     int64
	Workers  int
	Bot      string
	BigBlind int
}

// Report summarises a run.
type Report struct {
	Seed           int64                     `json:"seed"`
	Hands          int                       `json:"hands"`
	Moves          map[strategy.Move]int     `json:"moves"`
	Rules          map[string]int            `json:"rules"`
	Streets        map[string]map[string]int `json:"streets"`
	Raises         RaiseStats                `json:"raises"`
	RaiseFrequency float64                   `json:"raise_frequency"`
}

// RaiseStats describes the raise amounts chosen, in chips.
type RaiseStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	CI95   float64 `json:"ci95"`
}

type outcome struct {
	street int
	action strategy.Action
	rule   string
}

// Spot deals the i-th random spot of a run. Spots depend only on seed and
// i, so a run is reproducible regardless of worker count.
func Spot(seed int64, i int, bot string, bigBlind int) (strategy.GameState, int) {
	rng := randutil.Stream(seed, i)

	d := deck.NewDeck()
	d.Shuffle(rng)

	street := rng.IntN(len(boardSizes))
	hand := d.Deal(2)
	board := d.Deal(boardSizes[street])

	currBet := 0
	if rng.IntN(3) > 0 {
		currBet = bigBlind * rng.IntN(12)
	}
	playerCurrBet := 0
	if currBet > 0 && rng.IntN(2) == 0 {
		playerCurrBet = rng.IntN(currBet + 1)
	}

	return strategy.GameState{
		Hand:          hand,
		Board:         board,
		Pot:           bigBlind * (1 + rng.IntN(40)),
		CurrBet:       currBet,
		PlayerCurrBet: playerCurrBet,
		CanCheck:      currBet == playerCurrBet,
		BigBlind:      bigBlind,
		SmallBlind:    bigBlind / 2,
		Players: map[string]strategy.Player{
			bot:        {Chips: bigBlind * rng.IntN(300)},
			"Opponent": {Chips: bigBlind * 100},
		},
	}, street
}

// Run deals cfg.Hands spots across cfg.Workers goroutines and returns the
// tallied report.
func Run(ctx context.Context, d Decider, cfg Config, logger zerolog.Logger) (*Report, error) {
	if cfg.Hands <= 0 {
		return nil, errors.New("hands must be positive")
	}
	if cfg.BigBlind <= 0 {
		return nil, errors.New("big blind must be positive")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, cfg.Hands)

	logger = logger.With().Str("component", "simulate").Int64("seed", cfg.Seed).Logger()
	logger.Info().Int("hands", cfg.Hands).Int("workers", workers).Msg("Starting simulation")

	outcomes := make([]outcome, cfg.Hands)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			for n, i := 0, w; i < cfg.Hands; n, i = n+1, i+workers {
				if n%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				state, street := Spot(cfg.Seed, i, cfg.Bot, cfg.BigBlind)
				dec := d.Decide(state)
				outcomes[i] = outcome{street: street, action: dec.Action, rule: dec.Rule}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	report := tally(cfg, outcomes)
	logger.Info().
		Int("raises", report.Raises.Count).
		Float64("raise_mean", report.Raises.Mean).
		Msg("Simulation complete")
	return report, nil
}

func tally(cfg Config, outcomes []outcome) *Report {
	r := &Report{
		Seed:    cfg.Seed,
		Hands:   len(outcomes),
		Moves:   make(map[strategy.Move]int),
		Rules:   make(map[string]int),
		Streets: make(map[string]map[string]int, len(Streets)),
	}
	for _, s := range Streets {
		r.Streets[s] = make(map[string]int)
	}

	var amounts []float64
	for _, o := range outcomes {
		r.Moves[o.action.Move]++
		r.Rules[o.rule]++
		r.Streets[Streets[o.street]][string(o.action.Move)]++
		if o.action.Move == strategy.Raise {
			amounts = append(amounts, float64(o.action.Amount))
		}
	}

	r.RaiseFrequency = float64(len(amounts)) / float64(len(outcomes))
	r.Raises = raiseStats(amounts)
	return r
}

func raiseStats(amounts []float64) RaiseStats {
	if len(amounts) == 0 {
		return RaiseStats{}
	}
	slices.Sort(amounts)

	mean, std := stat.MeanStdDev(amounts, nil)
	s := RaiseStats{
		Count:  len(amounts),
		Mean:   mean,
		Median: stat.Quantile(0.5, stat.Empirical, amounts, nil),
		Min:    int(amounts[0]),
		Max:    int(amounts[len(amounts)-1]),
	}
	if len(amounts) > 1 {
		s.StdDev = std
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(amounts) - 1)}
		s.CI95 = t.Quantile(0.975) * std / math.Sqrt(float64(len(amounts)))
	}
	return s
}
