package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmaddr/extractor/internal/entity"
)

func addr(country, full string) entity.StoredAddress {
	return entity.StoredAddress{
		Country:     country,
		CountryName: "Testland",
		StreetName:  "Main St",
		City:        "Springfield",
		FullAddress: full,
		WorkerID:    "w1",
	}
}

func TestSaveReportsInsertedCount(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(newTestDB(t), testLogger())

	n, err := store.Save(ctx, []entity.StoredAddress{
		addr("mc", "1 Main St, Springfield, Testland"),
		addr("mc", "2 Main St, Springfield, Testland"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := store.CountForCountry(ctx, "mc")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestSaveIgnoresDuplicatesWithinBatch(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(newTestDB(t), testLogger())

	n, err := store.Save(ctx, []entity.StoredAddress{
		addr("mc", "1 Main St, Springfield, Testland"),
		addr("mc", "1 Main St, Springfield, Testland"),
		addr("mc", "2 Main St, Springfield, Testland"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "the duplicate must not abort the batch")
}

func TestSaveIgnoresDuplicatesAcrossBatches(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(newTestDB(t), testLogger())

	n, err := store.Save(ctx, []entity.StoredAddress{addr("mc", "1 Main St, Springfield, Testland")})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = store.Save(ctx, []entity.StoredAddress{
		addr("mc", "1 Main St, Springfield, Testland"),
		addr("mc", "2 Main St, Springfield, Testland"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	total, err := store.CountForCountry(ctx, "mc")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestSaveSameAddressDifferentCountries(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(newTestDB(t), testLogger())

	n, err := store.Save(ctx, []entity.StoredAddress{
		addr("mc", "1 Main St, Springfield, Testland"),
		addr("li", "1 Main St, Springfield, Testland"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "the natural key is scoped per country")
}

func TestSaveEmptyBatch(t *testing.T) {
	store := NewRecordStore(newTestDB(t), testLogger())
	n, err := store.Save(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveChunksLargeBatches(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(newTestDB(t), testLogger())

	batch := make([]entity.StoredAddress, 0, insertChunk+50)
	for i := 0; i < insertChunk+50; i++ {
		batch = append(batch, addr("mc", fmt.Sprintf("%d Main St, Springfield, Testland", i)))
	}
	n, err := store.Save(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(insertChunk+50), n)

	total, err := store.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(insertChunk+50), total)
}
