package types

import "golang.org/x/xerrors"

var (
	ModulePDS4 = "pds4"

	ErrInvalidLID          = xerrors.New("invalid PDS4 logical identifier")
	ErrInvalidVID          = xerrors.New("invalid PDS4 version identifier")
	ErrNotCollection       = xerrors.New("this does not appear to be a collection label")
	ErrBadLabel            = xerrors.New("failed to read the PDS4 label")
	ErrIncompleteInventory = xerrors.New("not all inventory LIDVIDs were found")
)

var (
	ModuleHarvest = "harvest"

	ErrConcurrentHarvest  = xerrors.New("another process has locked the harvest log")
	ErrUnknownTelescope   = xerrors.New("unknown telescope code")
	ErrNoCollectionsFound = xerrors.New("no data collections found")
)

var (
	ModuleConfig = "config"

	ErrDecodeConfigFailed = xerrors.New("failed to decode the config")
	ErrEncodeConfigFailed = xerrors.New("failed to encode the config")
	ErrInvalidConfig      = xerrors.New("invalid config")
	ErrRepoExists         = xerrors.New("repo exists")
)

var (
	ModuleDatabase = "database"

	ErrOpenDatabaseFailed    = xerrors.New("failed to open the database")
	ErrQueryDatabaseFailed   = xerrors.New("failed to query the database")
	ErrAddObservationsFailed = xerrors.New("failed to save observations to the database")
)

var (
	ModuleArchive = "archive"

	ErrFetchFailed   = xerrors.New("failed to fetch from the archive")
	ErrFileListStale = xerrors.New("file list could not be synchronized")
)

func Wrap(err0 error, err1 error) error {
	return xerrors.Errorf("%w, due to %v", err0, err1)
}

func Wrapf(err error, format string, args ...interface{}) error {
	args = append([]interface{}{err}, args...)
	return xerrors.Errorf("%w, "+format, args...)
}
