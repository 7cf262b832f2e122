package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/pokerbot/cmd/pokerbot/shared"
	"github.com/lox/pokerbot/internal/scenario"
	"github.com/lox/pokerbot/internal/strategy"
)

// CheckCmd replays scenario files offline and fails if any expectation is
// not met.
type CheckCmd struct {
	Files   []string `arg:"" name:"file" help:"TOML scenario files" type:"existingfile"`
	Verbose bool     `short:"V" help:"Show inputs for passing scenarios too"`
	Debug   bool     `kong:"help='Enable debug logging'"`
}

func (c *CheckCmd) Run() error {
	logger := shared.SetupLogger("info", false)
	if c.Debug {
		logger = shared.SetupLogger("debug", false)
	}

	failed, total := 0, 0
	for _, path := range c.Files {
		f, err := scenario.Load(path)
		if err != nil {
			return err
		}

		engine := strategy.New(f.Bot, logger)
		results := scenario.Run(engine, f)
		failed += printResults(os.Stdout, path, results, c.Verbose)
		total += len(results)
	}

	summary := fmt.Sprintf("%d/%d scenarios passed", total-failed, total)
	if failed > 0 {
		fmt.Println(failStyle.Render(summary))
		return fmt.Errorf("%d of %d scenarios failed", failed, total)
	}
	fmt.Println(passStyle.Render(summary))
	return nil
}

func printResults(w io.Writer, path string, results []scenario.Result, verbose bool) int {
	failed := 0
	fmt.Fprintln(w, headerStyle.Render(path))
	for _, r := range results {
		mark := passStyle.Render("✓")
		if !r.Passed() {
			mark = failStyle.Render("✗")
			failed++
		}
		fmt.Fprintf(w, "  %s %s %s\n", mark, r.Scenario.Name, dimStyle.Render("→ "+r.Decision.Action.String()))

		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "      %s %v\n", labelStyle.Render("error:"), r.Err)
		case !r.Passed():
			fmt.Fprintf(w, "      %s %s\n", labelStyle.Render("mismatch:"), strings.Join(r.Mismatch, "; "))
			fallthrough
		case verbose:
			in := r.Decision.Inputs
			fmt.Fprintf(w, "      %s rule=%s flush=%.3f three=%.3f quads=%.3f draws=%d owed=%d stack=%d pot_odds=%.3f\n",
				labelStyle.Render("inputs:"), r.Decision.Rule, in.Flush, in.Three, in.Quads,
				in.DrawsLeft, in.Owed, in.Stack, in.PotOdds)
		}
	}
	return failed
}
