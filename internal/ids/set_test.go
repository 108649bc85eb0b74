package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
)

func TestSet_Basics(t *testing.T) {
	s := New()
	require.True(t, s.IsEmpty())
	_, ok := s.Max()
	require.False(t, ok)

	s.Add(10)
	s.AddMany([]models.MessageID{3, 42, 10})
	require.Equal(t, 3, s.Count())
	require.True(t, s.Has(42))
	require.ElementsMatch(t, []models.MessageID{3, 10, 42}, s.Members())

	max, ok := s.Max()
	require.True(t, ok)
	require.Equal(t, models.MessageID(42), max)

	s.Del(42)
	s.Del(999)
	require.False(t, s.Has(42))
	max, _ = s.Max()
	require.Equal(t, models.MessageID(10), max)

	s.Clear()
	require.True(t, s.IsEmpty())
	require.Equal(t, 0, s.Count())
}
