// Package version normalizes installed module version names and orders them.
package version

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var buildNumberRe = regexp.MustCompile(`\+\d+$`)

// Normalize strips the build-iteration suffix from an installed version
// directory name: "1.2.3+4" becomes "1.2.3".
func Normalize(raw string) string {
	return buildNumberRe.ReplaceAllString(raw, "")
}

// Compare orders two version strings. Dot-separated components are compared
// numerically when both are numbers and lexically otherwise; missing
// components count as zero. A leading "v" is ignored.
func Compare(a, b string) int {
	aParts := split(a)
	bParts := split(b)

	maxLen := len(aParts)
	if len(bParts) > maxLen {
		maxLen = len(bParts)
	}

	for i := 0; i < maxLen; i++ {
		aVal := "0"
		bVal := "0"
		if i < len(aParts) {
			aVal = aParts[i]
		}
		if i < len(bParts) {
			bVal = bParts[i]
		}
		if c := compareComponent(aVal, bVal); c != 0 {
			return c
		}
	}
	return 0
}

func compareComponent(a, b string) int {
	aNum, aErr := strconv.Atoi(a)
	bNum, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		if aNum < bNum {
			return -1
		}
		if aNum > bNum {
			return 1
		}
		return 0
	case aErr == nil:
		// Numeric components sort before named ones ("1.0" < "1.rc").
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func split(v string) []string {
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return []string{"0"}
	}
	return strings.Split(v, ".")
}

// Sort orders versions ascending in place. Versions that compare equal keep
// their lexical order so the result is deterministic.
func Sort(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		if c := Compare(versions[i], versions[j]); c != 0 {
			return c < 0
		}
		return versions[i] < versions[j]
	})
}

// Unique returns versions with duplicates removed, keeping first occurrences.
func Unique(versions []string) []string {
	seen := make(map[string]bool, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
