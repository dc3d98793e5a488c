package intent

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kwararru/shell/internal/shared/types"
)

// MatchDataType reports whether typ satisfies a filter's data type pattern.
//
// An empty pattern matches anything. A pattern ending in "/*" matches any
// type whose part before the first "/" matches the pattern's prefix, so
// "journal/*" matches "journal/entry" and "*/*" matches every type with a
// slash. Any other pattern is a glob over the whole type; without
// metacharacters that is an exact comparison. An intent without a type
// matches every pattern, so it routes on its action alone.
func MatchDataType(pattern, typ string) bool {
	if pattern == "" || typ == "" {
		return true
	}

	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		head, _, found := strings.Cut(typ, "/")
		if !found {
			return false
		}
		matched, err := doublestar.Match(prefix, head)
		return err == nil && matched
	}

	matched, err := doublestar.Match(pattern, typ)
	return err == nil && matched
}

// FilterMatches reports whether f claims in
func FilterMatches(f types.IntentFilter, in types.Intent) bool {
	return f.Action == in.Action && MatchDataType(f.DataType, in.Type)
}

// Claims reports whether any of m's filters match in
func Claims(m types.AppManifest, in types.Intent) bool {
	for _, f := range m.IntentFilters {
		if FilterMatches(f, in) {
			return true
		}
	}
	return false
}

// FirstMatch returns the id of the first manifest that claims in
func FirstMatch(manifests []types.AppManifest, in types.Intent) (string, bool) {
	for _, m := range manifests {
		if Claims(m, in) {
			return m.ID, true
		}
	}
	return "", false
}

// Candidates returns the ids of every manifest that claims in, in order
func Candidates(manifests []types.AppManifest, in types.Intent) []string {
	var ids []string
	for _, m := range manifests {
		if Claims(m, in) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
