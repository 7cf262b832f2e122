package scenario

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerbot/internal/deck"
	"github.com/lox/pokerbot/internal/strategy"
)

func testEngine() *strategy.Engine {
	return strategy.New(DefaultBot, zerolog.New(io.Discard).Level(zerolog.Disabled))
}

func TestLoadAndRun(t *testing.T) {
	f, err := Load("testdata/basic.toml")
	require.NoError(t, err)
	assert.Equal(t, "Simple", f.Bot)
	require.Len(t, f.Scenarios, 4)

	for _, r := range Run(testEngine(), f) {
		assert.True(t, r.Passed(), "%s: err=%v mismatch=%v", r.Scenario.Name, r.Err, r.Mismatch)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.toml")
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name: "defaults bot and name",
			input: `
[[scenario]]
hand = "AhAd"
expect_move = "call"
`,
		},
		{
			name:    "no scenarios",
			input:   `bot = "Simple"`,
			wantErr: "no scenarios",
		},
		{
			name: "unknown key",
			input: `
[[scenario]]
hand = "AhAd"
expect_mvoe = "call"
`,
			wantErr: "unknown keys",
		},
		{
			name: "bad move",
			input: `
[[scenario]]
hand = "AhAd"
expect_move = "shove"
`,
			wantErr: "invalid expect_move",
		},
		{
			name:    "bad toml",
			input:   `[[scenario]`,
			wantErr: "decode scenarios",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultBot, f.Bot)
			assert.Equal(t, "scenario 1", f.Scenarios[0].Name)
		})
	}
}

func TestRunReportsMismatches(t *testing.T) {
	f := &File{
		Bot: DefaultBot,
		Scenarios: []Scenario{
			{
				Name:         "wrong expectations",
				Hand:         "AhKh",
				Board:        "2h5h9h",
				Pot:          100,
				CurrBet:      20,
				Stack:        200,
				BigBlind:     10,
				ExpectMove:   "raise",
				ExpectAmount: 50,
				ExpectRule:   strategy.RuleMadePair,
			},
			{
				Name:       "bad cards",
				Hand:       "Zz",
				ExpectMove: "fold",
			},
			{
				Name:       "board too long",
				Hand:       "AhKh",
				Board:      "2c3c4c5c6c7c",
				ExpectMove: "fold",
			},
		},
	}

	results := Run(testEngine(), f)
	require.Len(t, results, 3)

	assert.False(t, results[0].Passed())
	assert.NoError(t, results[0].Err)
	assert.Equal(t, []string{
		"amount: got 100, want 50",
		"rule: got made-trips-or-flush, want made-pair",
	}, results[0].Mismatch)

	assert.False(t, results[1].Passed())
	assert.Error(t, results[1].Err)

	assert.False(t, results[2].Passed())
	assert.Error(t, results[2].Err)
}

func TestFromDecisionRoundTrip(t *testing.T) {
	engine := testEngine()
	state := strategy.GameState{
		Hand:     deck.MustParseCards("QsQd"),
		Board:    deck.MustParseCards("Qh2c7d"),
		Pot:      80,
		CurrBet:  10,
		BigBlind: 10,
		Players:  map[string]strategy.Player{DefaultBot: {Chips: 400}},
	}
	d := engine.Decide(state)

	f := &File{Bot: DefaultBot, Scenarios: []Scenario{FromDecision("recorded", DefaultBot, state, d)}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded.Scenarios, 1)
	assert.Equal(t, "QS QD", decoded.Scenarios[0].Hand)

	results := Run(engine, decoded)
	assert.True(t, results[0].Passed(), "%v %v", results[0].Err, results[0].Mismatch)
}
