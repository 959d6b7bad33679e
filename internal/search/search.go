// Package search scans initiative markdown files for a query string. There is
// no index: every search reads the files from disk.
package search

import "tracker/internal/config"

const (
	// MaxMatchesPerFile caps the lines reported for one file.
	MaxMatchesPerFile = 3
	// MaxLineRunes truncates long matching lines.
	MaxLineRunes = 100
)

// Match is one matching line, numbered from 1.
type Match struct {
	LineNum int    `json:"line_num"`
	Text    string `json:"text"`
}

// Result groups the matches found in one file of one initiative.
type Result struct {
	Initiative string  `json:"initiative"`
	File       string  `json:"file"`
	Matches    []Match `json:"matches"`
}

// Resolver maps an optional directory name to the root to scan.
type Resolver interface {
	Resolve(name string) config.Directory
}
