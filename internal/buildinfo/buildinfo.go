// Package buildinfo holds version data injected at link time, e.g.
//
//	go build -ldflags "-X github.com/dmitrijs2005/poskeeper/internal/buildinfo.Version=1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

const na = "N/A"

var (
	Version = na
	Date    = na
	Commit  = na
)

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}

// PrintBuildData writes the build banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", orNA(Version))
	fmt.Fprintf(w, "Build date: %s\n", orNA(Date))
	fmt.Fprintf(w, "Build commit: %s\n", orNA(Commit))
}
