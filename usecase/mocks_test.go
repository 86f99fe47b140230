package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"

	"api-music/domain/model"
	"api-music/infrastructure/metrics"
)

// Mock implementations
type MockMediaProvider struct {
	mock.Mock
}

func (m *MockMediaProvider) ListFlat(ctx context.Context, locator string) (*model.SourceListing, error) {
	args := m.Called(ctx, locator)
	listing, _ := args.Get(0).(*model.SourceListing)
	return listing, args.Error(1)
}

func (m *MockMediaProvider) ListFormats(ctx context.Context, watchURL string) (*model.FormatListing, error) {
	args := m.Called(ctx, watchURL)
	listing, _ := args.Get(0).(*model.FormatListing)
	return listing, args.Error(1)
}

func (m *MockMediaProvider) Search(ctx context.Context, query string, limit int) (*model.SourceListing, error) {
	args := m.Called(ctx, query, limit)
	listing, _ := args.Get(0).(*model.SourceListing)
	return listing, args.Error(1)
}

type MockStreamCache struct {
	mock.Mock
}

func (m *MockStreamCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStreamCache) Put(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func duration(seconds float64) *float64 {
	return &seconds
}

func testutilCounter(m *metrics.Metrics, result string) float64 {
	return testutil.ToFloat64(m.StreamCache.WithLabelValues(result))
}
