package commit_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pricedesk/internal/commit"
	"pricedesk/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ── Mocks ─────────────────────────────────────────────────────────────────────

type storeMock struct{ mock.Mock }

func (m *storeMock) UpdateItemPrices(ctx context.Context, id string, patch pricing.Patch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

var _ commit.Updater = (*storeMock)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func staged(t *testing.T, id, field, raw string) []*pricing.PriceItem {
	t.Helper()
	it := pricing.NewPriceItem(id, "P-"+id, "", "", 1, d("100.00"), d("150.00"), d("140.00"))
	out, err := pricing.SetStagedValue([]*pricing.PriceItem{it}, id, pricing.Field(field), raw)
	require.NoError(t, err)
	return out
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCommitNothingToCommit(t *testing.T) {
	store := &storeMock{}
	c := commit.NewCoordinator(store, 4)
	items := []*pricing.PriceItem{pricing.NewPriceItem("1", "", "", "", 1, d("1"), d("1"), d("1"))}

	res, err := c.Commit(context.Background(), items, "r", "ops")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, commit.ErrNothingToCommit)
	store.AssertNotCalled(t, "UpdateItemPrices", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommitSendsMinimalPatch(t *testing.T) {
	store := &storeMock{}
	items := staged(t, "1", "priceA", "155.5")
	items = append(items, pricing.NewPriceItem("2", "", "", "", 1, d("1"), d("1"), d("1")))

	store.On("UpdateItemPrices", mock.Anything, "1", mock.MatchedBy(func(p pricing.Patch) bool {
		return p.Cost == nil && p.PriceB == nil &&
			p.PriceA != nil && p.PriceA.Equal(d("155.5")) &&
			p.Reason == "supplier list" && p.Actor == "ops"
	})).Return(nil).Once()

	res, err := commit.NewCoordinator(store, 4).Commit(context.Background(), items, "supplier list", "ops")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, res.Succeeded)
	assert.Empty(t, res.Failed)
	assert.NoError(t, res.Err())
	store.AssertExpectations(t)
}

func TestCommitDefaultsAuditPayload(t *testing.T) {
	store := &storeMock{}
	items := staged(t, "1", "cost", "90")
	store.On("UpdateItemPrices", mock.Anything, "1", mock.MatchedBy(func(p pricing.Patch) bool {
		return p.Reason == commit.DefaultReason && p.Actor == commit.DefaultActor
	})).Return(nil)

	_, err := commit.NewCoordinator(store, 0).Commit(context.Background(), items, "  ", "")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCommitPartialFailureIsContained(t *testing.T) {
	store := &storeMock{}
	var items []*pricing.PriceItem
	for _, id := range []string{"A", "B", "C"} {
		items = append(items, staged(t, id, "cost", "120")...)
	}
	store.On("UpdateItemPrices", mock.Anything, "A", mock.Anything).Return(nil)
	store.On("UpdateItemPrices", mock.Anything, "B", mock.Anything).Return(errors.New("503 service unavailable"))
	store.On("UpdateItemPrices", mock.Anything, "C", mock.Anything).Return(nil)

	res, err := commit.NewCoordinator(store, 3).Commit(context.Background(), items, "r", "ops")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "B", res.Failed[0].ID)
	assert.Contains(t, res.Failed[0].Detail, "503")
	assert.Equal(t, []string{"B"}, res.FailedIDs())

	var perr *commit.PartialCommitError
	require.ErrorAs(t, res.Err(), &perr)
	assert.Equal(t, 2, perr.Succeeded)
	assert.Contains(t, perr.Error(), "B")
	store.AssertNumberOfCalls(t, "UpdateItemPrices", 3)
}

func TestCommitDoesNotTouchCommittedValues(t *testing.T) {
	store := &storeMock{}
	items := staged(t, "1", "cost", "130")
	store.On("UpdateItemPrices", mock.Anything, "1", mock.Anything).Return(nil)

	_, err := commit.NewCoordinator(store, 1).Commit(context.Background(), items, "r", "ops")
	require.NoError(t, err)
	assert.True(t, items[0].Cost.Equal(d("100.00")))
	assert.True(t, items[0].IsModified(), "only a reload clears the flag")
}

// blockingStore holds every call until all expected calls are in flight.
type blockingStore struct {
	want     int32
	inFlight int32
	release  chan struct{}
	once     sync.Once
	ctxErrs  int32
}

func (s *blockingStore) UpdateItemPrices(ctx context.Context, _ string, _ pricing.Patch) error {
	if atomic.AddInt32(&s.inFlight, 1) == s.want {
		s.once.Do(func() { close(s.release) })
	}
	select {
	case <-s.release:
	case <-time.After(2 * time.Second):
		return errors.New("updates were not issued concurrently")
	}
	if ctx.Err() != nil {
		atomic.AddInt32(&s.ctxErrs, 1)
	}
	return nil
}

func TestCommitFansOutConcurrentlyAndIgnoresCallerCancel(t *testing.T) {
	var items []*pricing.PriceItem
	for _, id := range []string{"1", "2", "3", "4"} {
		items = append(items, staged(t, id, "priceB", "1")...)
	}
	store := &blockingStore{want: 4, release: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := commit.NewCoordinator(store, 4).Commit(ctx, items, "r", "ops")
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 4)
	assert.Empty(t, res.Failed)
	assert.Zero(t, atomic.LoadInt32(&store.ctxErrs))
}
