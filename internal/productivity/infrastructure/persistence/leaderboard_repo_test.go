package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLeaderboardRepository(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewDocumentLeaderboardRepository(store)

			entry, err := repo.RecordCompletion(ctx, "ana", testNow)
			require.NoError(t, err)
			assert.Equal(t, 1, entry.CompletedCount)

			for i := range 2 {
				_, err := repo.RecordCompletion(ctx, "ben", testNow.Add(time.Duration(i)*time.Hour))
				require.NoError(t, err)
			}
			entry, err = repo.RecordCompletion(ctx, "ana", testNow.Add(-time.Hour))
			require.NoError(t, err)
			assert.Equal(t, 2, entry.CompletedCount)
			assert.True(t, entry.LastCompletedAt.Equal(testNow), "last completion never moves backwards")

			_, err = repo.RecordCompletion(ctx, "cam", testNow)
			require.NoError(t, err)

			top, err := repo.Top(ctx, 2)
			require.NoError(t, err)
			require.Len(t, top, 2)
			assert.Equal(t, "ana", top[0].UserID)
			assert.Equal(t, "ben", top[1].UserID)
			assert.Equal(t, 2, top[1].CompletedCount)
			assert.True(t, top[1].LastCompletedAt.Equal(testNow.Add(time.Hour)))
		})
	}
}
