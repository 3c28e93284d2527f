package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// HasAnyFold is HasAny ignoring case.
func HasAnyFold(s string, subs ...string) bool {
	lowered := make([]string, len(subs))
	for i, sub := range subs {
		lowered[i] = strings.ToLower(sub)
	}
	return HasAny(strings.ToLower(s), lowered...)
}

// SplitList splits a comma separated list, trimming items and dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
