package main

import (
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Small-Bodies-Node/cs-harvester/build"
	cliutil "github.com/Small-Bodies-Node/cs-harvester/cmd"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/atlas"
)

func main() {
	app := &cli.App{
		Name:      "harvest-atlas",
		Usage:     "harvest ATLAS survey metadata for CATCH and the SBN Survey Image Service",
		UsageText: "harvest-atlas [options] TARGET DATABASE\n\nTARGET is catch or sbnsis; DATABASE is the ATLAS-PDS processing database.",
		Description: "The default behavior is to find collections validated since the " +
			"time the last ingested collection was recorded in the database.\n\n" +
			"Date parameter formats are YYYY-MM-DD HH:MM:SS or a Unix timestamp.",
		Version: build.UserVersion(),
		Flags: []cli.Flag{
			cliutil.FlagRepo,
			cliutil.FlagVeryVerbose,
			cliutil.FlagDryRun,
			cliutil.FlagOnlyProcess,
			&cli.StringFlag{
				Name:  "since",
				Usage: "harvest metadata validated since this date and time",
			},
			&cli.IntFlag{
				Name:  "past",
				Usage: "harvest metadata validated in the past PAST hours",
			},
			&cli.StringFlag{
				Name:  "before",
				Usage: "harvest metadata validated before this date and time",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "only list the collections that would be ingested",
			},
		},
		Action: func(cctx *cli.Context) error {
			if cctx.NArg() != 2 {
				return cli.ShowAppHelp(cctx)
			}

			r, cfg, err := cliutil.OpenRepo()
			if err != nil {
				return err
			}

			opts := atlas.Options{
				Target:       cctx.Args().Get(0),
				DatabaseFile: cctx.Args().Get(1),
				PastHours:    cctx.Int("past"),
				List:         cctx.Bool("list"),
				OnlyProcess:  cliutil.OnlyProcess,
				DryRun:       cliutil.DryRun,
			}

			if s := cctx.String("since"); s != "" {
				opts.Since, err = cliutil.ParseTimeFlag(s)
				if err != nil {
					return err
				}
			}
			if s := cctx.String("before"); s != "" {
				opts.Before, err = cliutil.ParseTimeFlag(s)
				if err != nil {
					return err
				}
			} else {
				opts.Before = time.Now().UTC()
			}

			return atlas.Run(cctx.Context, r, cfg, opts)
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		cliutil.Exit(err)
	}
}
