package collection_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelarchive/archive-server/internal/client"
	"github.com/angelarchive/archive-server/internal/collection"
	"github.com/angelarchive/archive-server/internal/domain"
	domainerrors "github.com/angelarchive/archive-server/internal/errors"
	"github.com/angelarchive/archive-server/internal/reconcile"
	"github.com/angelarchive/archive-server/internal/view"
)

// fakeAPI is an in-memory server double.
type fakeAPI struct {
	mu      sync.Mutex
	angels  []*domain.Angel
	records map[string]domain.CollectionRecord

	putErr  error
	puts    int
	deletes int

	putDelay        time.Duration
	inFlightPuts    atomic.Int32
	maxInFlightPuts atomic.Int32
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		angels: []*domain.Angel{
			{ID: "ang_bear", Name: "Bear", SeriesID: "ser_1", CardNumber: 1},
			{ID: "ang_rabbit", Name: "Rabbit", SeriesID: "ser_1", CardNumber: 2},
			{ID: "ang_snowman", Name: "Snowman", SeriesID: "ser_2", CardNumber: 3},
		},
		records: make(map[string]domain.CollectionRecord),
	}
}

func (f *fakeAPI) ListAngels(context.Context) ([]*domain.Angel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.angels, nil
}

func (f *fakeAPI) ListRecords(context.Context) ([]*client.CollectionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]*client.CollectionItem, 0, len(f.records))
	for _, rec := range f.records {
		items = append(items, &client.CollectionItem{CollectionRecord: rec})
	}
	return items, nil
}

func (f *fakeAPI) PutRecord(_ context.Context, rec domain.CollectionRecord) (*client.CollectionItem, error) {
	cur := f.inFlightPuts.Add(1)
	defer f.inFlightPuts.Add(-1)
	for {
		max := f.maxInFlightPuts.Load()
		if cur <= max || f.maxInFlightPuts.CompareAndSwap(max, cur) {
			break
		}
	}
	if f.putDelay > 0 {
		time.Sleep(f.putDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.records[rec.AngelID] = rec
	return &client.CollectionItem{CollectionRecord: rec}, nil
}

func (f *fakeAPI) DeleteRecord(_ context.Context, angelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.records, angelID)
	return nil
}

func newLoadedStore(t *testing.T, api *fakeAPI) *collection.Store {
	t.Helper()
	st := collection.NewStore(api, nil)
	require.NoError(t, st.Load(context.Background()))
	return st
}

func TestLoad_MissingRecordIsZero(t *testing.T) {
	st := newLoadedStore(t, newFakeAPI())

	rec := st.Record("ang_bear")
	assert.Equal(t, 0, rec.Count)
	assert.False(t, rec.IsFavorite)
	assert.Len(t, st.Angels(), 3)
}

func TestLoad_NormalizesMissingTradeCount(t *testing.T) {
	api := newFakeAPI()
	api.records["ang_bear"] = domain.CollectionRecord{
		AngelID: "ang_bear", Count: 3, WillingToTrade: true,
	}

	st := newLoadedStore(t, api)
	assert.Equal(t, 1, st.Record("ang_bear").TradeCount)
}

func TestApplyIntent_SetCountRoundtrip(t *testing.T) {
	api := newFakeAPI()
	st := newLoadedStore(t, api)
	ctx := context.Background()

	require.NoError(t, st.ApplyIntent(ctx, "ang_bear", reconcile.SetCount{Count: 2}))
	assert.Equal(t, 2, st.Record("ang_bear").Count)
	assert.Equal(t, 1, api.puts)

	// Dropping back to an all-default record deletes rather than upserts.
	require.NoError(t, st.ApplyIntent(ctx, "ang_bear", reconcile.SetCount{Count: 0}))
	assert.Equal(t, 0, st.Record("ang_bear").Count)
	assert.Equal(t, 1, api.deletes)
	assert.Equal(t, 0, st.Len())
}

func TestApplyIntent_RejectionLeavesStateUntouched(t *testing.T) {
	api := newFakeAPI()
	st := newLoadedStore(t, api)

	err := st.ApplyIntent(context.Background(), "ang_bear", reconcile.ToggleFavorite{})
	var rejection *reconcile.Rejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, 0, api.puts)
	assert.False(t, st.Record("ang_bear").IsFavorite)
}

func TestApplyIntent_ServerFailureIsNotAppliedLocally(t *testing.T) {
	api := newFakeAPI()
	st := newLoadedStore(t, api)
	api.putErr = domainerrors.ErrUnauthorized

	err := st.ApplyIntent(context.Background(), "ang_bear", reconcile.SetCount{Count: 5})
	require.Error(t, err)
	assert.Equal(t, 0, st.Record("ang_bear").Count)
}

func TestApplyIntent_TradeFlow(t *testing.T) {
	api := newFakeAPI()
	st := newLoadedStore(t, api)
	ctx := context.Background()

	require.NoError(t, st.ApplyIntent(ctx, "ang_bear", reconcile.SetCount{Count: 3}))
	require.NoError(t, st.ApplyIntent(ctx, "ang_bear", reconcile.ToggleWillingToTrade{}))

	rec := st.Record("ang_bear")
	assert.True(t, rec.WillingToTrade)
	assert.Equal(t, 1, rec.TradeCount)

	require.NoError(t, st.ApplyIntent(ctx, "ang_bear", reconcile.SetTradeCount{Count: 2}))
	assert.Equal(t, 2, st.Record("ang_bear").TradeCount)

	// Seeking more copies clears the trade offer.
	require.NoError(t, st.ApplyIntent(ctx, "ang_bear", reconcile.ToggleInSearchOf{}))
	rec = st.Record("ang_bear")
	assert.True(t, rec.InSearchOf)
	assert.False(t, rec.WillingToTrade)
	assert.Equal(t, 0, rec.TradeCount)
}

func TestApplyIntent_WritesDoNotOverlap(t *testing.T) {
	api := newFakeAPI()
	api.putDelay = 10 * time.Millisecond
	st := newLoadedStore(t, api)

	var wg sync.WaitGroup
	for _, id := range []string{"ang_bear", "ang_rabbit", "ang_snowman"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, st.ApplyIntent(context.Background(), id, reconcile.SetCount{Count: 2}))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.maxInFlightPuts.Load(), "mutations must not issue overlapping writes")
	assert.Equal(t, 3, api.puts)
	assert.Equal(t, 3, st.Len())
}

func TestVisible_FiltersAndSorts(t *testing.T) {
	api := newFakeAPI()
	st := newLoadedStore(t, api)
	ctx := context.Background()

	require.NoError(t, st.ApplyIntent(ctx, "ang_rabbit", reconcile.SetCount{Count: 4}))
	require.NoError(t, st.ApplyIntent(ctx, "ang_bear", reconcile.SetCount{Count: 1}))

	owned := st.Visible(view.Criteria{Ownership: view.OwnershipOwned, Sort: view.SortCountDesc})
	require.Len(t, owned, 2)
	assert.Equal(t, "Rabbit", owned[0].Angel.Name)

	series := st.Visible(view.Criteria{SeriesIDs: []string{"ser_2"}})
	require.Len(t, series, 1)
	assert.Equal(t, "Snowman", series[0].Angel.Name)

	searched := st.Visible(view.Criteria{Search: "rab"})
	require.Len(t, searched, 1)
	assert.Equal(t, "Rabbit", searched[0].Angel.Name)
}

func TestSubscribe_NotifiedOnChange(t *testing.T) {
	api := newFakeAPI()
	st := collection.NewStore(api, nil)

	var calls int
	st.Subscribe(func() { calls++ })

	require.NoError(t, st.Load(context.Background()))
	require.NoError(t, st.ApplyIntent(context.Background(), "ang_bear", reconcile.SetCount{Count: 1}))

	assert.Equal(t, 2, calls)
}
