package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Serve     ServeCmd         `cmd:"" help:"Run the bot service"`
	Act       ActCmd           `cmd:"" help:"Ask a running bot to act on a game state"`
	End       EndCmd           `cmd:"" help:"Send an end-of-hand notification to a running bot"`
	Terminate TerminateCmd     `cmd:"" help:"Ask a running bot to shut down"`
	Wait      WaitCmd          `cmd:"" help:"Wait until a bot accepts connections"`
	Check     CheckCmd         `cmd:"" help:"Replay TOML decision scenarios through the engine"`
	Simulate  SimulateCmd      `cmd:"" help:"Deal random spots and summarise the engine's decisions"`
}

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerbot"),
		kong.Description("Rule-based poker bot speaking length-prefixed JSON over TCP"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
