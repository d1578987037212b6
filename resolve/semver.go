package resolve

import (
	"fmt"
	"regexp"
	"strconv"
)

// semverPattern matches a leading dotted numeric triple
// with an optional "v" prefix. Anything after the patch
// component is treated as a suffix.
var semverPattern = regexp.MustCompile(
	`^v?(\d+)\.(\d+)\.(\d+)`,
)

// Semver is the (major, minor, patch) integer tuple
// parsed from a tag-name prefix. It is used only for
// alias grouping and ordering.
type Semver struct {
	Major int
	Minor int
	Patch int
}

// Compare returns -1, 0 or 1 comparing s against other
// component-wise, major first.
func (s Semver) Compare(other Semver) int {
	for _, d := range [3]int{
		s.Major - other.Major,
		s.Minor - other.Minor,
		s.Patch - other.Patch,
	} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}

	return 0
}

// ParseSemver extracts the leading semantic-version
// triple from a tag name. An optional "v" prefix and any
// trailing suffix are tolerated:
//
//	"9.0.300"      -> (9, 0, 300)
//	"v1.2.3"       -> (1, 2, 3)
//	"3.13.7-beta"  -> (3, 13, 7)
//	"latest", "9.0" -> no match
func ParseSemver(tagName string) (Semver, bool) {
	ver, _, ok := parseSemverSuffix(tagName)

	return ver, ok
}

// parseSemverSuffix parses the leading triple and also
// returns the remainder of the tag name after it (e.g.
// "-browser" for "9.0.100-browser").
func parseSemverSuffix(
	tagName string,
) (Semver, string, bool) {
	loc := semverPattern.FindStringSubmatchIndex(tagName)
	if loc == nil {
		return Semver{}, "", false
	}

	// Submatch indices cannot fail to parse: the
	// pattern guarantees digits.
	major, _ := strconv.Atoi(tagName[loc[2]:loc[3]])
	minor, _ := strconv.Atoi(tagName[loc[4]:loc[5]])
	patch, _ := strconv.Atoi(tagName[loc[6]:loc[7]])

	return Semver{
		Major: major,
		Minor: minor,
		Patch: patch,
	}, tagName[loc[1]:], true
}

// aliasCandidate tracks the current winner of one alias
// group while scanning tags in declaration order.
type aliasCandidate struct {
	ver Semver
	tag string
}

// GenerateSemverAliases synthesizes alias names from a
// tag list. For every tag whose name parses as a leading
// semver triple, the "{major}" alias points at the
// highest (major, minor, patch) tag of that major and
// the "{major}.{minor}" alias at the highest patch of
// that minor. Any suffix after the triple is carried
// into both the alias name and its group, so variant
// tags like "9.0.100-browser" alias under "9-browser"
// and "9.0-browser". Non-semver tags are silently
// skipped. Tags parsing to an identical triple resolve
// to the later-declared one, matching the merger's
// last-wins convention.
func GenerateSemverAliases(
	tags []Tag,
) map[string]string {
	groups := make(map[string]aliasCandidate)

	for _, tag := range tags {
		ver, suffix, ok := parseSemverSuffix(tag.Name)
		if !ok {
			continue
		}

		majorKey := fmt.Sprintf(
			"%d%s", ver.Major, suffix,
		)
		minorKey := fmt.Sprintf(
			"%d.%d%s", ver.Major, ver.Minor, suffix,
		)

		for _, key := range [2]string{
			majorKey, minorKey,
		} {
			best, seen := groups[key]
			if !seen || ver.Compare(best.ver) >= 0 {
				groups[key] = aliasCandidate{
					ver: ver,
					tag: tag.Name,
				}
			}
		}
	}

	aliases := make(map[string]string, len(groups))

	for key, cand := range groups {
		aliases[key] = cand.tag
	}

	return aliases
}
