package repository

import (
	"context"
	"testing"

	"receivables/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.Account{
		ID:        model.DefaultAccountID,
		Username:  "dayou",
		Password:  "hash-1",
		CreatedAt: model.Now(),
	}))

	t.Run("GetByUsername", func(t *testing.T) {
		account, err := repo.GetByUsername(ctx, "dayou")
		require.NoError(t, err)
		assert.Equal(t, model.DefaultAccountID, account.ID)
		assert.Equal(t, "hash-1", account.Password)

		_, err = repo.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("ExistsByUsername", func(t *testing.T) {
		ok, err := repo.ExistsByUsername(ctx, "dayou")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ExistsByID", func(t *testing.T) {
		ok, err := repo.ExistsByID(ctx, model.DefaultAccountID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsByID(ctx, "acc9")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("UpdateCredentials", func(t *testing.T) {
		require.NoError(t, repo.UpdateCredentials(ctx, model.DefaultAccountID, "boss", "hash-2"))

		_, err := repo.GetByUsername(ctx, "dayou")
		assert.ErrorIs(t, err, ErrAccountNotFound)

		account, err := repo.GetByUsername(ctx, "boss")
		require.NoError(t, err)
		assert.Equal(t, "hash-2", account.Password)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		err := repo.Create(ctx, &model.Account{ID: "acc2", Username: "boss", Password: "x", CreatedAt: model.Now()})
		assert.Error(t, err)
	})
}
