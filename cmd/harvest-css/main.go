package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Small-Bodies-Node/cs-harvester/build"
	cliutil "github.com/Small-Bodies-Node/cs-harvester/cmd"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/css"
)

func main() {
	app := &cli.App{
		Name:    "harvest-css",
		Usage:   "harvest Catalina Sky Survey metadata from the PSI archive for CATCH",
		Version: build.UserVersion(),
		Flags: []cli.Flag{
			cliutil.FlagRepo,
			cliutil.FlagVeryVerbose,
			cliutil.FlagDryRun,
			&cli.StringFlag{
				Name:  "db",
				Usage: "harvester tracking database",
			},
			&cli.StringFlag{
				Name:    "file-list",
				Aliases: []string{"f"},
				Usage:   "do not download a new file list, but use the provided file name",
			},
		},
		Action: func(cctx *cli.Context) error {
			r, cfg, err := cliutil.OpenRepo()
			if err != nil {
				return err
			}

			opts := css.Options{
				DBFile:   cctx.String("db"),
				FileList: cctx.String("file-list"),
				DryRun:   cliutil.DryRun,
			}

			return css.Run(cctx.Context, r, cfg, opts)
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		cliutil.Exit(err)
	}
}
