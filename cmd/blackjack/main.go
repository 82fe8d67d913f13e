package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/lox/blackjack-trainer/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Play     PlayCmd     `cmd:"" default:"1" help:"Play the interactive trainer"`
	Serve    ServeCmd    `cmd:"" help:"Serve trainer sessions over websockets"`
	Simulate SimulateCmd `cmd:"" help:"Simulate basic strategy over many rounds"`
	Chart    ChartCmd    `cmd:"" help:"Print the basic strategy chart"`
	Advise   AdviseCmd   `cmd:"" help:"Recommend a play for one hand"`
	Stats    StatsCmd    `cmd:"" help:"Show balance and lifetime statistics"`
	Bonus    BonusCmd    `cmd:"" help:"Claim the daily bonus"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack basic strategy trainer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
		kong.Bind(&cli.Globals),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
