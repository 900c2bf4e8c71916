package entities

import (
	"regexp"
	"strings"
)

// bugRefPattern recognizes bug references in commit logs. Three parts:
// an optional hyphenated prefix word at start of line, the word "bug" or
// "lp" on a word boundary, and the bug number ending the line. Matches:
//
//	bug # 555555
//	Closes-Bug: 555555
//	Fixes: bug # 555555
//	Resolves: bug 555555
//	Partial-Bug: lp bug # 555555
var bugRefPattern = regexp.MustCompile(
	`(?im)^[\t ]*(?P<prefix>[-\w]+)?[ \t:]*(?:\b(?:bug|lp)\b[ \t#:]*)+(?P<bug>\d+)[ \t]*$`)

// BugRef is one bug reference extracted from a commit log.
type BugRef struct {
	Number string
	Prefix string // normalized: first hyphen-separated word, lower case
}

// ParseBugRefs extracts unique bug references from a commit log. The first
// occurrence of a bug number wins; its prefix keyword (normalized, empty ->
// "closes") determines the permitted actions.
func ParseBugRefs(commitLog string) []BugRef {
	seen := map[string]bool{}
	var refs []BugRef
	for _, match := range bugRefPattern.FindAllStringSubmatch(commitLog, -1) {
		prefix, number := match[1], match[2]
		if seen[number] {
			continue
		}
		seen[number] = true
		refs = append(refs, BugRef{Number: number, Prefix: normalizePrefix(prefix)})
	}
	return refs
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "closes"
	}
	return strings.ToLower(strings.SplitN(prefix, "-", 2)[0])
}

// BugActions is the set of bug-tracker changes a reference's prefix keyword
// permits.
type BugActions struct {
	Comment      bool // add a comment to the bug
	SideNote     bool // add a "related" comment only
	InProgress   bool // set status In Progress
	FixCommitted bool // set status Fix Committed
	FixReleased  bool // set status Fix Released
}

// ActionsFor maps a normalized prefix keyword to its permitted actions.
func (r BugRef) ActionsFor() BugActions {
	switch r.Prefix {
	case "closes", "fixes", "resolves":
		return BugActions{Comment: true, InProgress: true, FixCommitted: true, FixReleased: true}
	case "partial":
		return BugActions{Comment: true, InProgress: true}
	case "related", "impacts", "affects":
		return BugActions{SideNote: true}
	default:
		return BugActions{Comment: true}
	}
}
