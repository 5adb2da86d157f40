package normalize

import "strings"

// Query is a parsed search string. Groups are OR'd; the terms of a group
// are AND'd.
type Query struct {
	groups [][]term
}

type term struct {
	text   string
	negate bool
}

// ParseQuery parses a search string. "|" separates alternatives, spaces
// separate required terms and a leading "-" negates a term. Matching is on
// lowercased substrings, so "proj" matches a tag "Projects/alpha".
func ParseQuery(text string) Query {
	var q Query
	for _, group := range strings.Split(strings.ToLower(text), "|") {
		var terms []term
		for _, field := range strings.Fields(group) {
			t := term{text: field}
			if strings.HasPrefix(field, "-") {
				t = term{text: field[1:], negate: true}
			}
			if t.text == "" {
				continue
			}
			terms = append(terms, t)
		}
		if len(terms) > 0 {
			q.groups = append(q.groups, terms)
		}
	}
	return q
}

// Empty reports whether the query accepts everything.
func (q Query) Empty() bool {
	return len(q.groups) == 0
}

// Match reports whether a document carrying tags passes the query.
func (q Query) Match(tags []string) bool {
	if q.Empty() {
		return true
	}
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	for _, group := range q.groups {
		if matchAll(group, lowered) {
			return true
		}
	}
	return false
}

func matchAll(terms []term, tags []string) bool {
	for _, t := range terms {
		if anyContains(tags, t.text) == t.negate {
			return false
		}
	}
	return true
}

func anyContains(tags []string, sub string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, sub) {
			return true
		}
	}
	return false
}

// String returns the canonical form of the query, used to tell whether the
// search actually changed.
func (q Query) String() string {
	groups := make([]string, 0, len(q.groups))
	for _, g := range q.groups {
		parts := make([]string, 0, len(g))
		for _, t := range g {
			if t.negate {
				parts = append(parts, "-"+t.text)
			} else {
				parts = append(parts, t.text)
			}
		}
		groups = append(groups, strings.Join(parts, " "))
	}
	return strings.Join(groups, "|")
}
