package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/litreads/internal/catalog"
	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/internal/repository/memory"
)

// --- Mock Store ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, visitorID, key string) ([]byte, error) {
	args := m.Called(ctx, visitorID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, visitorID, key string, value []byte) error {
	args := m.Called(ctx, visitorID, key, value)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, visitorID, key string) error {
	args := m.Called(ctx, visitorID, key)
	return args.Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock Notifier ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PublishCartUpdated(ctx context.Context, visitorID string, cart domain.Cart) error {
	args := m.Called(ctx, visitorID, cart)
	return args.Error(0)
}

func (m *mockNotifier) PublishCartCleared(ctx context.Context, visitorID string) error {
	args := m.Called(ctx, visitorID)
	return args.Error(0)
}

func (m *mockNotifier) PublishCheckoutCompleted(ctx context.Context, visitorID string, form domain.CheckoutForm, cart domain.CartView) error {
	args := m.Called(ctx, visitorID, form, cart)
	return args.Error(0)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shippedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	return c
}

// quietNotifier accepts every event.
func quietNotifier() *mockNotifier {
	n := new(mockNotifier)
	n.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("PublishCartCleared", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("PublishCheckoutCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return n
}

func newMemoryCartService(t *testing.T) (*CartService, *memory.Store, *mockNotifier) {
	t.Helper()
	store := memory.NewStore(0)
	notifier := quietNotifier()
	return NewCartService(store, shippedCatalog(t), notifier, newTestLogger()), store, notifier
}
