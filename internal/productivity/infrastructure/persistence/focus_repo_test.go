package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentFocusRepository(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewDocumentFocusRepository(store)

			pinned, err := repo.Pinned(ctx, "ana")
			require.NoError(t, err)
			assert.Empty(t, pinned, "nothing is pinned before the first write")

			require.NoError(t, repo.SetPinned(ctx, "ana", "t1"))
			require.NoError(t, repo.SetPinned(ctx, "ben", "t9"))

			pinned, err = repo.Pinned(ctx, "ana")
			require.NoError(t, err)
			assert.Equal(t, "t1", pinned)

			require.NoError(t, repo.SetPinned(ctx, "ana", ""))
			pinned, err = repo.Pinned(ctx, "ana")
			require.NoError(t, err)
			assert.Empty(t, pinned)

			pinned, err = repo.Pinned(ctx, "ben")
			require.NoError(t, err)
			assert.Equal(t, "t9", pinned)
		})
	}
}
