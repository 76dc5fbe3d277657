package build

// CurrentCommit is set at build time via -ldflags.
var CurrentCommit string

const BuildVersion = "0.3.0"

func UserVersion() string {
	return BuildVersion + CurrentCommit
}
