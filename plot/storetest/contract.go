// Package storetest checks plot.Store implementations against a shared contract.
package storetest

import (
	"context"
	"testing"

	"etherplot/plot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract verifies that an empty store behaves like plot.Store documents.
func RunStoreContract(t *testing.T, s plot.Store) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		got, err := s.Load(ctx, plot.DefaultLoadLimit)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Save and Load", func(t *testing.T) {
		want := plot.Plot{ID: 1, Formula: "sin(x)", Color: plot.Red, Visible: true, Valid: true}
		require.NoError(t, s.Save(ctx, want))

		got, err := s.Load(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, want, got[0])
	})

	t.Run("Upsert", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, plot.Plot{ID: 1, Formula: "cos(x)", Color: plot.Blue}))

		got, err := s.Load(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "cos(x)", got[0].Formula)
		assert.Equal(t, plot.Blue, got[0].Color)
		assert.False(t, got[0].Visible)
	})

	t.Run("Load Newest Oldest First", func(t *testing.T) {
		batch := make([]plot.Plot, 0, 12)
		for id := int64(12); id >= 1; id-- {
			batch = append(batch, plot.Plot{ID: id, Formula: "x", Visible: true, Valid: true})
		}
		require.NoError(t, s.Save(ctx, batch...))

		got, err := s.Load(ctx, plot.DefaultLoadLimit)
		require.NoError(t, err)
		require.Len(t, got, plot.DefaultLoadLimit)
		for i, p := range got {
			assert.Equal(t, int64(i+3), p.ID)
		}

		all, err := s.Load(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 12)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, 12))
		require.NoError(t, s.Delete(ctx, 404), "deleting a missing plot is not an error")

		got, err := s.Load(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 11)
		assert.Equal(t, int64(11), got[len(got)-1].ID)
	})
}
