package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/revenue-middleware/pkg/amount"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

const entity = revenue.EntityID(7)

func page(from, n int) []revenue.Transaction {
	txs := make([]revenue.Transaction, n)
	for i := range txs {
		txs[i] = revenue.Transaction{
			ID:        fmt.Sprintf("tx-%d", from+i),
			Direction: revenue.DirectionIncoming,
			Amount:    amount.FromNano(int64(from+i), amount.Chain),
		}
	}
	return txs
}

func TestStore_FirstLoadUsesEmptyCursor(t *testing.T) {
	s := New()

	cursor, ok := s.BeginLoad(entity, revenue.StreamAll)
	require.True(t, ok)
	assert.Equal(t, "", cursor)
	assert.True(t, s.IsLoading(entity, revenue.StreamAll))

	_, ok = s.BeginLoad(entity, revenue.StreamAll)
	assert.False(t, ok, "second load while loading is a no-op")
}

func TestStore_PaginationUntilEnd(t *testing.T) {
	s := New()

	cursor, ok := s.BeginLoad(entity, revenue.StreamAll)
	require.True(t, ok)
	assert.Equal(t, "", cursor)
	s.Complete(entity, revenue.StreamAll, page(0, 20), true, "c1")

	cursor, ok = s.BeginLoad(entity, revenue.StreamAll)
	require.True(t, ok)
	assert.Equal(t, "c1", cursor)
	s.Complete(entity, revenue.StreamAll, page(20, 20), true, "c2")

	cursor, ok = s.BeginLoad(entity, revenue.StreamAll)
	require.True(t, ok)
	assert.Equal(t, "c2", cursor)
	s.Complete(entity, revenue.StreamAll, page(40, 5), false, "ignored")

	v := s.View(entity, revenue.StreamAll)
	require.Len(t, v.Transactions, 45)
	for i, tx := range v.Transactions {
		assert.Equal(t, fmt.Sprintf("tx-%d", i), tx.ID)
	}
	assert.Nil(t, v.Cursor)
	assert.True(t, v.EndReached)
	assert.True(t, s.IsFullyLoaded(entity, revenue.StreamAll))

	_, ok = s.BeginLoad(entity, revenue.StreamAll)
	assert.False(t, ok, "loads are no-ops once the end is reached")
}

func TestStore_InvalidateReopensEndedStream(t *testing.T) {
	s := New()
	s.BeginLoad(entity, revenue.StreamIncoming)
	s.Complete(entity, revenue.StreamIncoming, page(0, 3), false, "")

	reset := s.Invalidate(entity)
	assert.ElementsMatch(t, revenue.Streams, reset)

	v := s.View(entity, revenue.StreamIncoming)
	assert.Empty(t, v.Transactions)
	assert.False(t, v.EndReached)
	assert.Nil(t, v.Cursor)
	assert.True(t, v.EverHadData, "everHadData is sticky")

	cursor, ok := s.BeginLoad(entity, revenue.StreamIncoming)
	require.True(t, ok)
	assert.Equal(t, "", cursor)
}

func TestStore_InvalidateSkipsLoadingStream(t *testing.T) {
	s := New()
	s.BeginLoad(entity, revenue.StreamAll)
	s.Complete(entity, revenue.StreamAll, page(0, 2), true, "c1")
	s.BeginLoad(entity, revenue.StreamAll)

	reset := s.Invalidate(entity)
	assert.ElementsMatch(t, []revenue.StreamType{revenue.StreamIncoming, revenue.StreamOutgoing}, reset)
	assert.Len(t, s.View(entity, revenue.StreamAll).Transactions, 2)

	s.Complete(entity, revenue.StreamAll, page(2, 2), true, "c2")
	v := s.View(entity, revenue.StreamAll)
	assert.Len(t, v.Transactions, 4, "in-flight page lands on top of the kept records")
	require.NotNil(t, v.Cursor)
	assert.Equal(t, "c2", *v.Cursor)
}

func TestStore_FailEndsStream(t *testing.T) {
	s := New()
	s.BeginLoad(entity, revenue.StreamOutgoing)
	s.Fail(entity, revenue.StreamOutgoing)

	assert.False(t, s.IsLoading(entity, revenue.StreamOutgoing))
	assert.True(t, s.IsFullyLoaded(entity, revenue.StreamOutgoing))
	_, ok := s.BeginLoad(entity, revenue.StreamOutgoing)
	assert.False(t, ok)
	assert.False(t, s.EverHadData(entity, revenue.StreamOutgoing))
}

func TestStore_FailAfterPageClearsCursor(t *testing.T) {
	s := New()
	s.BeginLoad(entity, revenue.StreamAll)
	s.Complete(entity, revenue.StreamAll, page(0, 20), true, "c1")
	cursor, ok := s.BeginLoad(entity, revenue.StreamAll)
	require.True(t, ok)
	require.Equal(t, "c1", cursor)

	s.Fail(entity, revenue.StreamAll)

	v := s.View(entity, revenue.StreamAll)
	assert.True(t, v.EndReached)
	assert.Nil(t, v.Cursor)
	assert.Len(t, v.Transactions, 20, "loaded records are kept")

	s.Invalidate(entity)
	cursor, ok = s.BeginLoad(entity, revenue.StreamAll)
	require.True(t, ok)
	assert.Equal(t, "", cursor, "reload starts from the first page")
}

func TestStore_MoreWithoutCursorEndsStream(t *testing.T) {
	s := New()
	s.BeginLoad(entity, revenue.StreamAll)
	s.Complete(entity, revenue.StreamAll, page(0, 20), true, "")

	v := s.View(entity, revenue.StreamAll)
	assert.True(t, v.EndReached)
	assert.Nil(t, v.Cursor)
	assert.Len(t, v.Transactions, 20)
	assert.True(t, s.IsFullyLoaded(entity, revenue.StreamAll))

	_, ok := s.BeginLoad(entity, revenue.StreamAll)
	assert.False(t, ok, "the first page is not fetched again")
}

func TestStore_EmptyPageKeepsEverHadDataFalse(t *testing.T) {
	s := New()
	s.BeginLoad(entity, revenue.StreamAll)
	s.Complete(entity, revenue.StreamAll, nil, false, "")

	assert.False(t, s.EverHadData(entity, revenue.StreamAll))
	assert.False(t, s.HasAny(entity, revenue.StreamAll))
	assert.True(t, s.IsFullyLoaded(entity, revenue.StreamAll))
}

func TestStore_PreloadCandidates(t *testing.T) {
	s := New()
	assert.Equal(t, revenue.Streams, s.PreloadCandidates(entity))

	s.BeginLoad(entity, revenue.StreamAll)
	s.BeginLoad(entity, revenue.StreamIncoming)
	s.Complete(entity, revenue.StreamIncoming, page(0, 1), true, "c1")

	assert.Equal(t, []revenue.StreamType{revenue.StreamOutgoing}, s.PreloadCandidates(entity))
	assert.True(t, s.HasAnyStream(entity))
	assert.False(t, s.HasAnyStream(entity+1))
}

func TestStore_ViewIsACopy(t *testing.T) {
	s := New()
	s.BeginLoad(entity, revenue.StreamAll)
	s.Complete(entity, revenue.StreamAll, page(0, 1), true, "c1")

	v := s.View(entity, revenue.StreamAll)
	v.Transactions[0].ID = "mutated"
	*v.Cursor = "mutated"

	again := s.View(entity, revenue.StreamAll)
	assert.Equal(t, "tx-0", again.Transactions[0].ID)
	assert.Equal(t, "c1", *again.Cursor)
}
