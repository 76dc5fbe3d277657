package cliutil

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/repo"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

const (
	FlagRepoName    = "repo"
	DefaultRepoPath = "~/.cs-harvester"
)

var RepoPath string
var FlagRepo = &cli.StringFlag{
	Name:        FlagRepoName,
	Usage:       "working directory for the harvester",
	EnvVars:     []string{"CS_HARVESTER_PATH"},
	Value:       DefaultRepoPath,
	Destination: &RepoPath,
}

var DryRun bool
var FlagDryRun = &cli.BoolFlag{
	Name:        "dry-run",
	Aliases:     []string{"n"},
	Usage:       "process labels, but do not add to the database",
	Destination: &DryRun,
}

var OnlyProcess string
var FlagOnlyProcess = &cli.StringFlag{
	Name:        "only-process",
	Usage:       "only process the collection matching this LID",
	Destination: &OnlyProcess,
}

var Update bool
var FlagUpdate = &cli.BoolFlag{
	Name:        "update",
	Usage:       "update the database on conflicts",
	Destination: &Update,
}

// IsVeryVerbose is a global var signalling if the CLI is running in very
// verbose mode or not (default: false).
var IsVeryVerbose bool

// FlagVeryVerbose enables very verbose mode, which is useful when debugging
// the harvesters.  It should be included as a flag on the top-level command
// (e.g. harvest-css -vv).
var FlagVeryVerbose = &cli.BoolFlag{
	Name:        "vv",
	Usage:       "enables very verbose mode, useful for debugging",
	Destination: &IsVeryVerbose,
}

var subsystems = []string{
	"repo", "harvestlog", "archive", "catch", "sbnsis", "progress",
	"atlas", "css", "skymapper", "spacewatch",
}

// OpenRepo expands and initializes the working directory, loads its config,
// and routes runtime logs into the repo logging directory.
func OpenRepo() (*repo.Repo, *config.Harvester, error) {
	r, err := repo.NewRepo(RepoPath)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Init(); err != nil {
		return nil, nil, err
	}

	cfg, err := r.Config()
	if err != nil {
		return nil, nil, err
	}

	logging.SetupLogging(logging.Config{
		Format: logging.ColorizedOutput,
		Stderr: true,
		File:   filepath.Join(r.Path(), cfg.Harvest.RuntimeLogFile),
		Level:  logging.LevelError,
	})

	level := "INFO"
	if IsVeryVerbose {
		level = "DEBUG"
	}
	for _, name := range subsystems {
		_ = logging.SetLogLevel(name, level)
	}

	if DryRun {
		logging.Logger("repo").Info("Dry run, databases will not be updated.")
	}

	return r, cfg, nil
}

// ParseTimeFlag parses a command-line time value as a calendar date or UNIX
// timestamp.
func ParseTimeFlag(s string) (time.Time, error) {
	if unix, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(unix), 0).UTC(), nil
	}

	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, types.Wrapf(types.ErrInvalidConfig, "unparseable date %q", s)
}

// Exit prints err and terminates with a non-zero status.
func Exit(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err) //nolint:errcheck
	os.Exit(1)
}
