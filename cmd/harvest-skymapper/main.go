package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Small-Bodies-Node/cs-harvester/build"
	cliutil "github.com/Small-Bodies-Node/cs-harvester/cmd"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/skymapper"
)

func main() {
	app := &cli.App{
		Name:      "harvest-skymapper",
		Usage:     "add SkyMapper DR4 metadata to CATCH",
		UsageText: "harvest-skymapper [options] IMAGE_TABLE CCD_TABLE...",
		Version:   build.UserVersion(),
		Flags: []cli.Flag{
			cliutil.FlagRepo,
			cliutil.FlagVeryVerbose,
			&cli.BoolFlag{
				Name:  "noop",
				Usage: "no-operation mode, just process the files",
			},
		},
		Action: func(cctx *cli.Context) error {
			if cctx.NArg() < 2 {
				return cli.ShowAppHelp(cctx)
			}

			_, cfg, err := cliutil.OpenRepo()
			if err != nil {
				return err
			}

			opts := skymapper.Options{
				ImageTable: cctx.Args().Get(0),
				CCDTables:  cctx.Args().Slice()[1:],
				NoOp:       cctx.Bool("noop"),
			}

			return skymapper.Run(cctx.Context, cfg, opts)
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		cliutil.Exit(err)
	}
}
