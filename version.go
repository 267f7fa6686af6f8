package doclai

import "runtime"

const (
	// Name is the application name.
	Name = "doclai"

	// Description is a short description of the application.
	Description = "Structure-preserving AI translation for HTML, OLX course markup and Jupyter notebooks"
)

// Build information, set with ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/doclai.Version=1.0.0 -X github.com/ZaguanLabs/doclai.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// BuildSummary returns a one-line description of the running binary.
func BuildSummary() string {
	return Name + " " + FullVersion() + " (built " + BuildDate + ", " + runtime.Version() + ")"
}

// UserAgent returns a user agent string for HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}
