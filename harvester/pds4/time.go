package pds4

import (
	"time"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// ISOFormat matches the harvest log timestamp format (microsecond precision).
const ISOFormat = "2006-01-02 15:04:05.000000"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDateTime parses a PDS4 date_time value.  The UTC zone is assumed when
// none is given.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, types.Wrapf(types.ErrBadLabel, "unparseable date_time %q", s)
}

// MJD converts t to a modified Julian date.
func MJD(t time.Time) float64 {
	return 40587.0 + float64(t.UnixNano())/1e9/86400.0
}

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOFormat)
}

func ParseISO(s string) (time.Time, error) {
	return time.ParseInLocation(ISOFormat, s, time.UTC)
}
