// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/solarcorr/schema"
	"github.com/stretchr/testify/mock"
)

// CatalogStats reports what the catalog loader did with the raw rows.
type CatalogStats struct {
	Rows     int // Rows read from the file
	Filtered int // Rows removed by the Velocity > 0 filter
	Invalid  int // Rows skipped because a field could not be parsed
}

// EventSource loads the CBI event catalog.
// This allows the analysis orchestration to be tested without files on disk.
type EventSource interface {
	// LoadEvents returns the filtered events in file order.
	LoadEvents(ctx context.Context) ([]schema.Event, CatalogStats, error)
}

// DenseSource loads one magnetic-field parameter as a time-ordered series.
type DenseSource interface {
	// LoadSeries returns the non-null values of param ordered by timestamp.
	// A zero start or end leaves that side of the range unbounded.
	LoadSeries(ctx context.Context, param string, start, end time.Time) (schema.DenseSeries, error)

	// Close releases the underlying connection.
	Close() error
}

// --- Mock implementations ---

// MockEventSource is a testify mock for EventSource.
type MockEventSource struct {
	mock.Mock
}

var _ EventSource = &MockEventSource{} // Compile-time check

// LoadEvents implements EventSource.
func (m *MockEventSource) LoadEvents(ctx context.Context) ([]schema.Event, CatalogStats, error) {
	ret := m.Called(ctx)
	events, _ := ret.Get(0).([]schema.Event)
	stats, _ := ret.Get(1).(CatalogStats)
	return events, stats, ret.Error(2)
}

// MockDenseSource is a testify mock for DenseSource.
type MockDenseSource struct {
	mock.Mock
}

var _ DenseSource = &MockDenseSource{} // Compile-time check

// LoadSeries implements DenseSource.
func (m *MockDenseSource) LoadSeries(ctx context.Context, param string, start, end time.Time) (schema.DenseSeries, error) {
	ret := m.Called(ctx, param, start, end)
	series, _ := ret.Get(0).(schema.DenseSeries)
	return series, ret.Error(1)
}

// Close implements DenseSource.
func (m *MockDenseSource) Close() error {
	return m.Called().Error(0)
}
