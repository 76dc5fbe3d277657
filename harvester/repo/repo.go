package repo

import (
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
)

var log = logging.Logger("repo")

const (
	fsConfig    = "catch.toml"
	fsLogging   = "logging"
	fsDatabases = "dbs"
)

// Repo is the harvester working directory.  It holds the editable config,
// the harvest log, runtime logs, the CSS file-list cache, and the local
// tracking databases.
type Repo struct {
	path       string
	configPath string
}

func NewRepo(path string) (*Repo, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	return &Repo{
		path:       path,
		configPath: filepath.Join(path, fsConfig),
	}, nil
}

func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) ConfigPath() string {
	return r.configPath
}

func (r *Repo) Exists() (bool, error) {
	_, err := os.Stat(r.configPath)
	notexist := os.IsNotExist(err)
	if notexist {
		err = nil
	}
	return !notexist, err
}

// Init creates the working directory tree and writes a commented default
// config.  Initializing an existing repo is a no-op.
func (r *Repo) Init() error {
	exist, err := r.Exists()
	if err != nil {
		return err
	}
	if exist {
		return nil
	}

	log.Infof("Initializing repo at '%s'", r.path)

	for _, dir := range []string{r.path, r.LoggingDir(), r.DatabasesDir()} {
		err = os.MkdirAll(dir, 0755)
		if err != nil && !os.IsExist(err) {
			return err
		}
	}

	if err := r.initConfig(); err != nil {
		return xerrors.Errorf("init config: %w", err)
	}

	return nil
}

func (r *Repo) initConfig() error {
	comment, err := config.ConfigComment(config.DefaultHarvester())
	if err != nil {
		return err
	}

	err = os.WriteFile(r.configPath, comment, 0644)
	if err != nil {
		return xerrors.Errorf("write config: %w", err)
	}

	return nil
}

// Config loads the repo config over the defaults.  A missing config file
// yields the defaults unchanged.
func (r *Repo) Config() (*config.Harvester, error) {
	exist, err := r.Exists()
	if err != nil {
		return nil, err
	}
	if !exist {
		return config.DefaultHarvester(), nil
	}

	return config.FromFile(r.configPath, config.DefaultHarvester())
}

func (r *Repo) LoggingDir() string {
	return filepath.Join(r.path, fsLogging)
}

func (r *Repo) DatabasesDir() string {
	return filepath.Join(r.path, fsDatabases)
}

func (r *Repo) HarvestLogPath(cfg *config.Harvester) string {
	return filepath.Join(r.path, cfg.Harvest.LogFileName)
}

func (r *Repo) FileListPath() string {
	return filepath.Join(r.path, "css-file-list.txt.gz")
}
