package pds4

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// ReadInventory reads a collection inventory (member status, LIDVID) CSV.
func ReadInventory(r io.Reader) ([]LIDVID, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var members []LIDVID
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, types.Wrap(types.ErrBadLabel, err)
		}
		if len(record) < 2 {
			continue
		}

		lidvid, err := ParseLIDVID(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, err
		}
		members = append(members, lidvid)
	}

	return members, nil
}

func ReadInventoryFile(path string) ([]LIDVID, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.ErrBadLabel, err)
	}
	defer file.Close() //nolint:errcheck

	return ReadInventory(file)
}

// LabelsFromInventory reads each label file and calls fn for those whose
// LIDVID appears in the inventory.  With errorIfIncomplete, an error is
// returned when any inventory LIDVID is not found in the file list.
func LabelsFromInventory(
	inventory []string,
	files []string,
	errorIfIncomplete bool,
	fn func(path string, label *Label) error,
) error {
	remaining := make(map[string]struct{}, len(inventory))
	for _, lidvid := range inventory {
		remaining[lidvid] = struct{}{}
	}

	for _, path := range files {
		label, err := ReadLabelFile(path)
		if err != nil {
			return err
		}

		lidvid, err := label.LIDVID()
		if err != nil {
			return err
		}

		if _, ok := remaining[lidvid.String()]; !ok {
			continue
		}
		delete(remaining, lidvid.String())

		if err := fn(path, label); err != nil {
			return err
		}
	}

	if errorIfIncomplete && len(remaining) > 0 {
		missing := make([]string, 0, len(remaining))
		for lidvid := range remaining {
			missing = append(missing, lidvid)
		}
		return types.Wrapf(types.ErrIncompleteInventory, "%s", strings.Join(missing, ", "))
	}

	return nil
}
