package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/lox/pokerbot/cmd/pokerbot/shared"
	"github.com/lox/pokerbot/internal/fileutil"
	"github.com/lox/pokerbot/internal/randutil"
	"github.com/lox/pokerbot/internal/scenario"
	"github.com/lox/pokerbot/internal/simulate"
	"github.com/lox/pokerbot/internal/strategy"
)

// SimulateCmd deals random spots through the engine and summarises the
// decisions.
type SimulateCmd struct {
	Hands       int    `kong:"default='10000',help='Number of spots to deal'"`
	Seed        *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Workers     int    `kong:"default='0',help='Worker goroutines (0 = GOMAXPROCS)'"`
	Name        string `kong:"default='Simple',help='Bot name',env='POKERBOT_NAME'"`
	BigBlind    int    `kong:"default='10',help='Big blind used to size pots and stacks'"`
	Out         string `kong:"help='Write the report as JSON to this path'"`
	Record      string `kong:"help='Write the first spots and their decisions as a TOML scenario file'"`
	RecordCount int    `kong:"default='20',help='Number of spots to record'"`
	Debug       bool   `kong:"help='Enable debug logging'"`
	LogJSON     bool   `kong:"name='log-json',help='Emit JSON log lines'"`
}

func (c *SimulateCmd) Run() error {
	level := "warn"
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLogger(level, c.LogJSON)

	seed := randutil.Resolve(c.Seed)
	ctx, cancel := shared.SetupSignalHandlerWithLogger(logger)
	defer cancel()

	engine := strategy.New(c.Name, logger)
	report, err := simulate.Run(ctx, engine, simulate.Config{
		Hands:    c.Hands,
		Seed:     seed,
		Workers:  c.Workers,
		Bot:      c.Name,
		BigBlind: c.BigBlind,
	}, logger)
	if err != nil {
		return err
	}

	printReport(os.Stdout, report)

	if c.Out != "" {
		if err := fileutil.WriteJSONAtomic(c.Out, report, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Println(dimStyle.Render("report written to " + c.Out))
	}

	if c.Record != "" {
		if err := c.record(engine, seed); err != nil {
			return fmt.Errorf("record scenarios: %w", err)
		}
		fmt.Println(dimStyle.Render("scenarios written to " + c.Record))
	}
	return nil
}

func (c *SimulateCmd) record(engine *strategy.Engine, seed int64) error {
	f := &scenario.File{Bot: c.Name}
	for i := range min(c.RecordCount, c.Hands) {
		state, street := simulate.Spot(seed, i, c.Name, c.BigBlind)
		name := fmt.Sprintf("seed %d spot %d (%s)", seed, i, simulate.Streets[street])
		f.Scenarios = append(f.Scenarios, scenario.FromDecision(name, c.Name, state, engine.Decide(state)))
	}

	var buf bytes.Buffer
	if err := scenario.Encode(&buf, f); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(c.Record, buf.Bytes(), 0o644)
}

func printReport(w io.Writer, r *simulate.Report) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d  %s %d\n\n",
		labelStyle.Render("hands"), r.Hands, labelStyle.Render("seed"), r.Seed)

	fmt.Fprintln(&b, headerStyle.Render("Moves"))
	for _, m := range []strategy.Move{strategy.Fold, strategy.Check, strategy.Call, strategy.Raise} {
		fmt.Fprintf(&b, "  %-6s %7d  %5.1f%%\n", m, r.Moves[m], pct(r.Moves[m], r.Hands))
	}

	fmt.Fprintln(&b, "\n"+headerStyle.Render("By street"))
	for _, s := range simulate.Streets {
		counts := r.Streets[s]
		total := 0
		for _, n := range counts {
			total += n
		}
		fmt.Fprintf(&b, "  %-8s %6d  fold %5.1f%%  check %5.1f%%  call %5.1f%%  raise %5.1f%%\n",
			s, total,
			pct(counts["fold"], total), pct(counts["check"], total),
			pct(counts["call"], total), pct(counts["raise"], total))
	}

	fmt.Fprintln(&b, "\n"+headerStyle.Render("Rules"))
	rules := make([]string, 0, len(r.Rules))
	for rule := range r.Rules {
		rules = append(rules, rule)
	}
	slices.Sort(rules)
	for _, rule := range rules {
		fmt.Fprintf(&b, "  %-20s %7d  %5.1f%%\n", rule, r.Rules[rule], pct(r.Rules[rule], r.Hands))
	}

	fmt.Fprintln(&b, "\n"+headerStyle.Render("Raise sizes"))
	if r.Raises.Count == 0 {
		fmt.Fprint(&b, dimStyle.Render("  no raises"))
	} else {
		fmt.Fprintf(&b, "  mean %.1f ± %.1f  sd %.1f  median %.0f  range %d-%d",
			r.Raises.Mean, r.Raises.CI95, r.Raises.StdDev, r.Raises.Median, r.Raises.Min, r.Raises.Max)
	}

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
