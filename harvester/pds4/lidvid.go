package pds4

import (
	"strconv"
	"strings"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// LIDVID is a PDS4 logical identifier and version identifier pair.
type LIDVID struct {
	lid string
	vid string
}

func NewLIDVID(lid, vid string) (LIDVID, error) {
	if !strings.HasPrefix(lid, "urn:nasa:pds") {
		return LIDVID{}, types.Wrapf(types.ErrInvalidLID, "%q", lid)
	}

	return LIDVID{lid: lid, vid: vid}, nil
}

// ParseLIDVID parses a "lid::vid" string.
func ParseLIDVID(s string) (LIDVID, error) {
	lid, vid, found := strings.Cut(s, "::")
	if !found {
		return LIDVID{}, types.Wrapf(types.ErrInvalidLID, "missing version identifier in %q", s)
	}

	return NewLIDVID(lid, vid)
}

func (lv LIDVID) String() string {
	return lv.lid + "::" + lv.vid
}

func (lv LIDVID) LID() string {
	return lv.lid
}

func (lv LIDVID) VID() string {
	return lv.vid
}

func (lv LIDVID) field(i int) string {
	parts := strings.Split(lv.lid, ":")
	if len(parts) <= i {
		return ""
	}
	return parts[i]
}

func (lv LIDVID) Bundle() string {
	return lv.field(3)
}

func (lv LIDVID) Collection() string {
	return lv.field(4)
}

func (lv LIDVID) ProductID() string {
	return lv.field(5)
}

// Version is a dotted-integer PDS4 version identifier, e.g. "2.0".
type Version []int

func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, types.Wrapf(types.ErrInvalidVID, "%q", s)
		}
		v = append(v, n)
	}

	return v, nil
}

func (v Version) Compare(other Version) int {
	for i := 0; i < len(v) || i < len(other); i++ {
		var a, b int
		if i < len(v) {
			a = v[i]
		}
		if i < len(other) {
			b = other[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
