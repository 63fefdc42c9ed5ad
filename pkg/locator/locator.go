// Package locator maps resource URLs to cache file paths.
//
// The mapping is a pure string transform: characters that are illegal in
// file names on common platforms are replaced with an underscore and the
// result is placed in a fixed cache subdirectory. Distinct URLs whose
// sanitized forms coincide share a cache file; this is a known limitation.
package locator

import (
	"path/filepath"
	"strings"
)

// DefaultDirectory is the cache subdirectory used when none is configured.
const DefaultDirectory = "GeoFetch Cache"

// illegal lists the characters replaced by Sanitize.
const illegal = `\/:*?"<>|`

var replacer = newReplacer()

func newReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(illegal)*2)
	for _, c := range illegal {
		pairs = append(pairs, string(c), "_")
	}
	return strings.NewReplacer(pairs...)
}

// Locator resolves URLs to paths relative to the data-file store root.
type Locator struct {
	directory string
}

// New returns a Locator rooted at the given cache subdirectory name. An empty
// name selects DefaultDirectory.
func New(directory string) *Locator {
	if directory == "" {
		directory = DefaultDirectory
	}
	return &Locator{directory: directory}
}

// Directory returns the cache subdirectory name.
func (l *Locator) Directory() string {
	return l.directory
}

// Locate returns the relative cache path for the URL's external string form.
func (l *Locator) Locate(external string) string {
	return filepath.Join(l.directory, Sanitize(external))
}

// Sanitize replaces every character in \/:*?"<>| with '_'.
func Sanitize(external string) string {
	return replacer.Replace(external)
}
