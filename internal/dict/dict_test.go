package dict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDict_InsertionOrder(t *testing.T) {
	d := New[int64, string]()
	d.Set(3, "c")
	d.Set(1, "a")
	d.Set(2, "b")
	d.Set(3, "C")
	require.Equal(t, []int64{3, 1, 2}, d.Keys())

	v, ok := d.Get(3)
	require.True(t, ok)
	require.Equal(t, "C", v)

	d.Del(1)
	d.Del(99)
	require.Equal(t, []int64{3, 2}, d.Keys())
	d.Set(1, "a")
	require.Equal(t, []int64{3, 2, 1}, d.Keys())

	var seen []string
	d.Each(func(_ int64, v string) { seen = append(seen, v) })
	require.Equal(t, []string{"C", "b", "a"}, seen)

	d.Clear()
	require.Equal(t, 0, d.Len())
	require.False(t, d.Has(3))
}

func TestFoldDict_CaseInsensitiveKeepsFirstCasing(t *testing.T) {
	d := NewFold[int]()
	d.Set("Java", 1)
	d.Set("JAVA", 2)
	d.Set("gossip", 3)

	require.Equal(t, 2, d.Len())
	v, ok := d.Get("java")
	require.True(t, ok)
	require.Equal(t, 2, v)

	key, ok := d.CanonicalKey("jAvA")
	require.True(t, ok)
	require.Equal(t, "Java", key)
	require.Equal(t, []string{"Java", "gossip"}, d.Keys())

	d.Del("GOSSIP")
	require.False(t, d.Has("gossip"))
}

func TestFoldKey_Lowercases(t *testing.T) {
	require.Equal(t, FoldKey("STRASSE"), FoldKey("strasse"))
	require.Equal(t, FoldKey("École"), FoldKey("ÉCOLE"))
	require.Equal(t, "java", FoldKey("JAVA"))
}

func TestFoldDict_SharpSDistinctFromDoubleS(t *testing.T) {
	d := NewFold[int]()
	d.Set("Straße", 1)
	d.Set("STRASSE", 2)

	require.Equal(t, 2, d.Len())
	v, ok := d.Get("straße")
	require.True(t, ok)
	require.Equal(t, 1, v)
	v, ok = d.Get("strasse")
	require.True(t, ok)
	require.Equal(t, 2, v)
}
