package domain

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookOrdering(t *testing.T) {
	t.Run("registered stays first", func(t *testing.T) {
		b := NewBook()
		require.NoError(t, b.SetRegistered("A"))
		require.NoError(t, b.AddAddress("B"))
		require.NoError(t, b.SetRegistered("C"))

		assert.Equal(t, []string{"C", "A", "B"}, b.Entries())
	})

	t.Run("no duplicates on add", func(t *testing.T) {
		b := NewBook()
		require.NoError(t, b.AddAddress("A"))
		require.NoError(t, b.AddAddress("A"))

		assert.Equal(t, []string{"A"}, b.Entries())
	})

	t.Run("trimmed duplicates are duplicates", func(t *testing.T) {
		b := NewBook()
		require.NoError(t, b.AddAddress("A"))
		require.NoError(t, b.AddAddress("  A "))

		assert.Equal(t, []string{"A"}, b.Entries())
	})

	t.Run("case matters", func(t *testing.T) {
		b := NewBook()
		require.NoError(t, b.AddAddress("a"))
		require.NoError(t, b.AddAddress("A"))

		assert.Equal(t, []string{"a", "A"}, b.Entries())
	})

	t.Run("registering a known address moves it", func(t *testing.T) {
		b := NewBook()
		for _, a := range []string{"A", "B", "C", "D"} {
			require.NoError(t, b.AddAddress(a))
		}
		require.NoError(t, b.SetRegistered(" C"))

		assert.Equal(t, []string{" C", "A", "B", "D"}, b.Entries())
		assert.Equal(t, " C", b.Registered())
	})

	t.Run("first add becomes registered", func(t *testing.T) {
		b := NewBook()
		require.NoError(t, b.AddAddress("A"))
		require.NoError(t, b.AddAddress("B"))

		assert.Equal(t, "A", b.Registered())
	})

	t.Run("blank addresses rejected", func(t *testing.T) {
		b := NewBook()
		assert.ErrorIs(t, b.AddAddress("  "), ErrEmptyAddress)
		assert.ErrorIs(t, b.SetRegistered(""), ErrEmptyAddress)
		assert.Empty(t, b.Entries())
	})
}

func TestBookSelect(t *testing.T) {
	b := NewBook()
	require.NoError(t, b.AddAddress("12 MG Road"))

	got, err := b.Select(" 12 MG Road  ")
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road", got)
	assert.Equal(t, "12 MG Road", b.Selected())

	_, err = b.Select("12 mg road")
	assert.ErrorIs(t, err, ErrUnknownAddress)
	assert.Equal(t, "12 MG Road", b.Selected())
}

func TestBookEntriesIsACopy(t *testing.T) {
	b := NewBook()
	require.NoError(t, b.AddAddress("A"))

	e := b.Entries()
	e[0] = "Z"
	assert.Equal(t, []string{"A"}, b.Entries())
}

// Random sequences of SetRegistered/AddAddress keep index 0 on the last
// registered address (or the first address ever added) and never hold
// two trimmed-equal entries.
func TestBookInvariantsHoldForRandomSequences(t *testing.T) {
	pool := []string{"A", " A", "B", "B ", "C", "D", "E"}
	r := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 500; run++ {
		b := NewBook()
		var wantFirst string

		for step := 0; step < 12; step++ {
			addr := pool[r.IntN(len(pool))]
			if r.IntN(3) == 0 {
				require.NoError(t, b.SetRegistered(addr))
				wantFirst = strings.TrimSpace(addr)
			} else {
				require.NoError(t, b.AddAddress(addr))
				if wantFirst == "" {
					wantFirst = strings.TrimSpace(addr)
				}
			}

			entries := b.Entries()
			require.NotEmpty(t, entries)
			assert.Equal(t, wantFirst, strings.TrimSpace(entries[0]))

			seen := map[string]bool{}
			for _, e := range entries {
				k := strings.TrimSpace(e)
				require.False(t, seen[k], "duplicate %q in %v", k, entries)
				seen[k] = true
			}
		}
	}
}
