// Package models defines the shared domain types for tally.
package models

import (
	"sort"
	"strconv"
	"strings"
)

// MessageID is a server-assigned message id. Ids are ordered numerically.
type MessageID int64

// UserID identifies a person. It is the only stable identifier for a person.
type UserID int64

// StreamID identifies a stream (channel).
type StreamID int64

// SortedIDs returns a copy of ids sorted ascending.
func SortedIDs(ids []MessageID) []MessageID {
	out := make([]MessageID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedUserIDs returns a copy of ids sorted numerically ascending.
func SortedUserIDs(ids []UserID) []UserID {
	out := make([]UserID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// JoinUserIDs sorts ids numerically and joins them with commas.
// This is the canonical form of a conversation key.
func JoinUserIDs(ids []UserID) string {
	sorted := SortedUserIDs(ids)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

// SplitUserIDs parses a comma-joined user id string. Blank and malformed
// entries are skipped; ok is false if any entry was malformed.
func SplitUserIDs(s string) (ids []UserID, ok bool) {
	ok = true
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			ok = false
			continue
		}
		ids = append(ids, UserID(n))
	}
	return ids, ok
}
