package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinUserIDs_SortsNumerically(t *testing.T) {
	require.Equal(t, "9,10,101", JoinUserIDs([]UserID{101, 10, 9}))
	require.Equal(t, "", JoinUserIDs(nil))
}

func TestSplitUserIDs(t *testing.T) {
	ids, ok := SplitUserIDs("3, 1,,2")
	require.True(t, ok)
	require.Equal(t, []UserID{3, 1, 2}, ids)

	ids, ok = SplitUserIDs("4,bogus")
	require.False(t, ok)
	require.Equal(t, []UserID{4}, ids)
}

func TestSortedIDs_DoesNotMutateInput(t *testing.T) {
	in := []MessageID{30, 2, 100}
	out := SortedIDs(in)
	require.Equal(t, []MessageID{2, 30, 100}, out)
	require.Equal(t, []MessageID{30, 2, 100}, in)
}

func TestUnreadSnapshotAllIDs(t *testing.T) {
	snap := &UnreadSnapshot{
		PMs:      []UnreadPM{{SenderID: 1, UnreadMessageIDs: []MessageID{5}}},
		Huddles:  []UnreadHuddle{{UserIDsString: "1,2", UnreadMessageIDs: []MessageID{6}}},
		Streams:  []UnreadStream{{StreamID: 9, Topic: "java", UnreadMessageIDs: []MessageID{7, 8}}},
		Mentions: []MessageID{8},
	}
	require.ElementsMatch(t, []MessageID{5, 6, 7, 8, 8}, snap.AllIDs())
}
