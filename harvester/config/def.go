package config

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// harvester config, stored as catch.toml in the repo directory
type Harvester struct {
	Catch   Catch
	SBNSIS  SBNSIS
	Archive Archive
	ATLAS   ATLAS
	Harvest Harvest
}

type Catch struct {
	// postgres connection URL for the CATCH metadata index
	Database  string
	BatchSize int
}

type SBNSIS struct {
	// postgres connection URL for the SBN Survey Image Service
	Database string
}

type Archive struct {
	// URL for the latest list of all CSS files
	FileListURL string
	// URL prefix for the survey archives at PSI
	Prefix         string
	Retries        int
	TimeoutSeconds int
}

type ATLAS struct {
	// mount point for the ATLAS-PDS staging volumes
	DataRoot string
}

type Harvest struct {
	LogFileName    string
	RuntimeLogFile string
}

func DefaultHarvester() *Harvester {
	return &Harvester{
		Catch: Catch{
			Database:  "postgres://localhost/catch",
			BatchSize: 10000,
		},
		SBNSIS: SBNSIS{
			Database: "postgres://localhost/sbnsis",
		},
		Archive: Archive{
			FileListURL:    "https://sbnarchive.psi.edu/pds4/surveys/catalina_extras/file_list.latest.txt.gz",
			Prefix:         "https://sbnarchive.psi.edu/pds4/surveys/",
			Retries:        4,
			TimeoutSeconds: 60,
		},
		ATLAS: ATLAS{
			DataRoot: "/n",
		},
		Harvest: Harvest{
			LogFileName:    "harvest-log.csv",
			RuntimeLogFile: "logging/cs-harvester.log",
		},
	}
}

func ConfigBytes(cfg interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	e := toml.NewEncoder(buf)
	if err := e.Encode(cfg); err != nil {
		return nil, types.Wrap(types.ErrEncodeConfigFailed, err)
	}

	return buf.Bytes(), nil
}
