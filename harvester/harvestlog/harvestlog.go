package harvestlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/pds4"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var log = logging.Logger("harvestlog")

// EndProcessing marks a run still in progress.  A log containing such a row
// belongs to another live process.
const EndProcessing = "processing"

const keepBackups = 5

var header = []string{
	"target", "start", "end", "source", "time_of_last",
	"files", "added", "duplicates", "errors",
}

// Entry is one harvest run.
type Entry struct {
	Target     string
	Start      string
	End        string
	Source     string
	TimeOfLast string
	Files      int
	Added      int
	Duplicates int
	Errors     int
}

func (e *Entry) record() []string {
	return []string{
		e.Target, e.Start, e.End, e.Source, e.TimeOfLast,
		strconv.Itoa(e.Files), strconv.Itoa(e.Added),
		strconv.Itoa(e.Duplicates), strconv.Itoa(e.Errors),
	}
}

// Log tracks harvest runs and results in a CSV file.
type Log struct {
	path    string
	dryRun  bool
	entries []*Entry
}

// Open reads the harvest log, creating an empty one in memory when the file
// does not exist.  Returns ErrConcurrentHarvest when any run is still marked
// as processing.
func Open(path string, dryRun bool) (*Log, error) {
	l := &Log{path: path, dryRun: dryRun}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, types.Wrapf(types.ErrInvalidConfig, "reading harvest log %s: %v", path, err)
		}
		if first {
			first = false
			continue
		}
		if len(record) != len(header) {
			return nil, types.Wrapf(types.ErrInvalidConfig, "harvest log row has %d fields", len(record))
		}

		entry := &Entry{
			Target:     record[0],
			Start:      record[1],
			End:        record[2],
			Source:     record[3],
			TimeOfLast: record[4],
		}
		for i, dst := range []*int{&entry.Files, &entry.Added, &entry.Duplicates, &entry.Errors} {
			n, err := strconv.Atoi(record[5+i])
			if err != nil {
				return nil, types.Wrapf(types.ErrInvalidConfig, "harvest log count %q", record[5+i])
			}
			*dst = n
		}
		l.entries = append(l.entries, entry)
	}

	for _, entry := range l.entries {
		if entry.End == EndProcessing {
			return nil, types.ErrConcurrentHarvest
		}
	}

	return l, nil
}

func (l *Log) Append(entry *Entry) {
	l.entries = append(l.entries, entry)
}

// Last returns the most recent entry, or nil.
func (l *Log) Last() *Entry {
	if len(l.entries) == 0 {
		return nil
	}
	return l.entries[len(l.entries)-1]
}

func (l *Log) Entries() []*Entry {
	return l.entries
}

// Write saves the log to disk.  The previous file is rotated into numbered
// backups, keeping the last five.  Dry runs do not write.
func (l *Log) Write() error {
	if l.dryRun {
		return nil
	}

	if err := l.rotateBackups(); err != nil {
		return err
	}

	file, err := os.Create(l.path)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, entry := range l.entries {
		if err := writer.Write(entry.record()); err != nil {
			return err
		}
	}
	writer.Flush()

	return writer.Error()
}

func backupName(path string, n int) string {
	return fmt.Sprintf("%s.~%d~", path, n)
}

func (l *Log) rotateBackups() error {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(backupName(l.path, keepBackups)); err != nil && !os.IsNotExist(err) {
		return err
	}
	for n := keepBackups - 1; n >= 1; n-- {
		err := os.Rename(backupName(l.path, n), backupName(l.path, n+1))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	current, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	return os.WriteFile(backupName(l.path, 1), current, 0644)
}

// TimeOfLast returns the time of the last file validation for the given
// target and source, or the zero time when no run has recorded one.
func (l *Log) TimeOfLast(target, source string) time.Time {
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if entry.Target != target || entry.Source != source {
			continue
		}
		if entry.TimeOfLast == "" || entry.TimeOfLast == "0" {
			continue
		}

		t, err := pds4.ParseISO(entry.TimeOfLast)
		if err != nil {
			log.Warnf("unparseable time_of_last %q", entry.TimeOfLast)
			continue
		}
		return t
	}

	return time.Time{}
}
