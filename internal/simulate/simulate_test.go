package simulate

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerbot/internal/deck"
	"github.com/lox/pokerbot/internal/strategy"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

func testEngine() *strategy.Engine {
	return strategy.New("Simple", testLogger())
}

func TestSpot(t *testing.T) {
	for i := range 200 {
		state, street := Spot(42, i, "Simple", 10)

		require.Len(t, state.Hand, 2)
		require.Len(t, state.Board, boardSizes[street])

		seen := make(map[deck.Card]bool)
		for _, c := range append(append([]deck.Card{}, state.Hand...), state.Board...) {
			require.False(t, seen[c], "duplicate card %s in spot %d", c, i)
			seen[c] = true
		}

		assert.GreaterOrEqual(t, state.Owed(), 0)
		assert.Equal(t, state.CurrBet == state.PlayerCurrBet, state.CanCheck)
		assert.Equal(t, 10, state.BigBlind)
	}
}

func TestSpotDeterministic(t *testing.T) {
	a, sa := Spot(7, 3, "Simple", 10)
	b, sb := Spot(7, 3, "Simple", 10)
	assert.Equal(t, a, b)
	assert.Equal(t, sa, sb)

	c, _ := Spot(8, 3, "Simple", 10)
	assert.NotEqual(t, a, c)
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Hands: 2000, Seed: 1234, Bot: "Simple", BigBlind: 10}

	cfg.Workers = 1
	single, err := Run(ctx, testEngine(), cfg, testLogger())
	require.NoError(t, err)

	cfg.Workers = 8
	parallel, err := Run(ctx, testEngine(), cfg, testLogger())
	require.NoError(t, err)

	assert.Equal(t, single, parallel)
}

func TestRunTotals(t *testing.T) {
	report, err := Run(context.Background(), testEngine(), Config{Hands: 500, Seed: 9, Workers: 3, Bot: "Simple", BigBlind: 10}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 500, report.Hands)
	assert.EqualValues(t, 9, report.Seed)

	moves := 0
	for _, n := range report.Moves {
		moves += n
	}
	assert.Equal(t, 500, moves)

	rules := 0
	for _, n := range report.Rules {
		rules += n
	}
	assert.Equal(t, 500, rules)

	streets := 0
	for _, s := range Streets {
		for _, n := range report.Streets[s] {
			streets += n
		}
	}
	assert.Equal(t, 500, streets)

	assert.Equal(t, report.Moves[strategy.Raise], report.Raises.Count)
	assert.InDelta(t, float64(report.Raises.Count)/500, report.RaiseFrequency, 1e-9)
	if report.Raises.Count > 0 {
		assert.GreaterOrEqual(t, report.Raises.Min, 1)
		assert.LessOrEqual(t, float64(report.Raises.Min), report.Raises.Mean)
		assert.GreaterOrEqual(t, float64(report.Raises.Max), report.Raises.Mean)
	}
}

func TestRunValidation(t *testing.T) {
	_, err := Run(context.Background(), testEngine(), Config{Hands: 0, BigBlind: 10}, testLogger())
	assert.Error(t, err)

	_, err = Run(context.Background(), testEngine(), Config{Hands: 10}, testLogger())
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testEngine(), Config{Hands: 5000, Workers: 2, Bot: "Simple", BigBlind: 10}, testLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRaiseStats(t *testing.T) {
	assert.Equal(t, RaiseStats{}, raiseStats(nil))

	one := raiseStats([]float64{40})
	assert.Equal(t, RaiseStats{Count: 1, Mean: 40, Median: 40, Min: 40, Max: 40}, one)

	s := raiseStats([]float64{30, 10, 20})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 20, s.Mean, 1e-9)
	assert.InDelta(t, 10, s.StdDev, 1e-9)
	assert.InDelta(t, 20, s.Median, 1e-9)
	assert.Equal(t, 10, s.Min)
	assert.Equal(t, 30, s.Max)
	// t(0.975, 2) = 4.303
	assert.InDelta(t, 4.303*10/1.7320508, s.CI95, 0.01)
}
