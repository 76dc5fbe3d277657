package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Small-Bodies-Node/cs-harvester/build"
	cliutil "github.com/Small-Bodies-Node/cs-harvester/cmd"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/spacewatch"
)

func main() {
	app := &cli.App{
		Name:      "harvest-spacewatch",
		Usage:     "add Spacewatch data to CATCH",
		UsageText: "harvest-spacewatch [options] COLLECTION_LABEL",
		Version:   build.UserVersion(),
		Flags: []cli.Flag{
			cliutil.FlagRepo,
			cliutil.FlagVeryVerbose,
			cliutil.FlagDryRun,
			cliutil.FlagUpdate,
			&cli.StringFlag{
				Name:  "vid",
				Usage: "only process data products with this version ID",
			},
		},
		Action: func(cctx *cli.Context) error {
			if cctx.NArg() != 1 {
				return cli.ShowAppHelp(cctx)
			}

			r, cfg, err := cliutil.OpenRepo()
			if err != nil {
				return err
			}

			opts := spacewatch.Options{
				CollectionPath: cctx.Args().Get(0),
				VID:            cctx.String("vid"),
				Update:         cliutil.Update,
				DryRun:         cliutil.DryRun,
			}

			return spacewatch.Run(cctx.Context, r, cfg, opts)
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		cliutil.Exit(err)
	}
}
