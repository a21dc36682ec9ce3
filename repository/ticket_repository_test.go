package repository

import (
	"context"
	"testing"

	"tokenlottery/domain/entities"
	"tokenlottery/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	lotteries := NewLotteryRepository(testDB.DB)
	repo := NewTicketRepository(testDB.DB)

	namespace := entities.DefaultNamespace
	require.NoError(t, lotteries.Create(ctx, testutil.CreateTestLottery(namespace, testutil.TestAddress("authority"))))

	buyer := testutil.TestAddress("buyer")
	other := testutil.TestAddress("other")

	missing, err := repo.GetCollection(ctx, namespace)
	require.NoError(t, err)
	assert.Nil(t, missing)

	collection, err := repo.CreateCollection(ctx, namespace)
	require.NoError(t, err)
	assert.True(t, collection.Verified)
	assert.Equal(t, entities.CollectionKey(namespace), collection.CollectionKey)

	_, err = repo.CreateCollection(ctx, namespace)
	assert.ErrorIs(t, err, entities.ErrCollectionExists)

	var minted []*entities.TicketCredential
	for seq := int64(0); seq < 3; seq++ {
		credential, err := repo.MintAndRegister(ctx, buyer, collection.CollectionKey, namespace, seq)
		require.NoError(t, err)
		minted = append(minted, credential)
	}

	t.Run("credential round trip", func(t *testing.T) {
		stored, err := repo.GetCredential(ctx, minted[2].ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, int64(2), stored.Sequence)
		assert.Equal(t, entities.TicketName(2), stored.Name)
		assert.Equal(t, buyer, stored.Owner)
		assert.True(t, stored.IsFor(2))
		assert.True(t, stored.BelongsTo(collection.CollectionKey))
	})

	t.Run("membership", func(t *testing.T) {
		member, err := repo.VerifyMembership(ctx, minted[0].ID, collection.CollectionKey)
		require.NoError(t, err)
		assert.True(t, member)

		member, err = repo.VerifyMembership(ctx, minted[0].ID, entities.CollectionKey("other"))
		require.NoError(t, err)
		assert.False(t, member)
	})

	t.Run("duplicate sequence rejected", func(t *testing.T) {
		_, err := repo.MintAndRegister(ctx, buyer, collection.CollectionKey, namespace, 1)
		assert.Error(t, err)
	})

	t.Run("holding follows transfer", func(t *testing.T) {
		held, err := repo.HoldingAmount(ctx, minted[1].ID, buyer)
		require.NoError(t, err)
		assert.Equal(t, int64(1), held)

		require.NoError(t, repo.Transfer(ctx, minted[1].ID, buyer, other))
		assert.ErrorIs(t, repo.Transfer(ctx, minted[1].ID, buyer, other), entities.ErrNoTicket)

		held, err = repo.HoldingAmount(ctx, minted[1].ID, buyer)
		require.NoError(t, err)
		assert.Equal(t, int64(0), held)

		held, err = repo.HoldingAmount(ctx, minted[1].ID, other)
		require.NoError(t, err)
		assert.Equal(t, int64(1), held)
	})

	t.Run("list by owner", func(t *testing.T) {
		owned, err := repo.ListByOwner(ctx, namespace, buyer)
		require.NoError(t, err)
		require.Len(t, owned, 2)
		assert.Equal(t, int64(0), owned[0].Sequence)
		assert.Equal(t, int64(2), owned[1].Sequence)
	})
}
