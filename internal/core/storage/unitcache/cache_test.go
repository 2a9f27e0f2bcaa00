package unitcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/storage"
)

type mockUnitStore struct {
	mock.Mock
}

func (m *mockUnitStore) FetchUnit(ctx context.Context, id string) (booking.Unit, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(booking.Unit), args.Error(1)
}

func (m *mockUnitStore) FetchUnitCount(ctx context.Context, ownerScope string, activeOnly bool) (int, error) {
	args := m.Called(ctx, ownerScope, activeOnly)
	return args.Int(0), args.Error(1)
}

func TestFetchUnitIsCached(t *testing.T) {
	store := &mockUnitStore{}
	ctx := context.Background()
	unit := booking.Unit{ID: "unit-1", OwnerID: "owner-a", Active: true}
	store.On("FetchUnit", ctx, "unit-1").Return(unit, nil).Once()

	c := New(store, Options{TTL: time.Minute})
	defer c.Stop()

	for i := 0; i < 3; i++ {
		got, err := c.FetchUnit(ctx, "unit-1")
		require.NoError(t, err)
		require.Equal(t, unit, got)
	}
	store.AssertExpectations(t)
}

func TestFetchUnitNotFoundIsNotCached(t *testing.T) {
	store := &mockUnitStore{}
	ctx := context.Background()
	store.On("FetchUnit", ctx, "missing").Return(booking.Unit{}, storage.ErrNotFound).Twice()

	c := New(store, Options{})
	defer c.Stop()

	_, err := c.FetchUnit(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = c.FetchUnit(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
	store.AssertExpectations(t)
}

func TestFetchUnitCountKeyedByScope(t *testing.T) {
	store := &mockUnitStore{}
	ctx := context.Background()
	store.On("FetchUnitCount", ctx, "owner-a", true).Return(3, nil).Once()
	store.On("FetchUnitCount", ctx, "owner-a", false).Return(4, nil).Once()

	c := New(store, Options{})
	defer c.Stop()

	for i := 0; i < 2; i++ {
		n, err := c.FetchUnitCount(ctx, "owner-a", true)
		require.NoError(t, err)
		require.Equal(t, 3, n)

		n, err = c.FetchUnitCount(ctx, "owner-a", false)
		require.NoError(t, err)
		require.Equal(t, 4, n)
	}
	store.AssertExpectations(t)
}
