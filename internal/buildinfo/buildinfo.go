package buildinfo

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for logs and the health endpoint.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String is the full version line, e.g. "v1.2.0 commit 3f2a1c9 built 2026-01-04".
func String() string {
	return fmt.Sprintf("%s commit %s built %s", Version, Commit, Date)
}
