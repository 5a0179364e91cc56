package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GalleryMetrics holds OTLP instruments for the photo/album store
type GalleryMetrics struct {
	mutations       metric.Int64Counter
	persistFailures metric.Int64Counter
	loadFallbacks   metric.Int64Counter
	photos          metric.Int64Gauge
	albums          metric.Int64Gauge
	favorites       metric.Int64Gauge
}

// NewGalleryMetrics creates gallery metrics instruments
func NewGalleryMetrics() (*GalleryMetrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &GalleryMetrics{}
	var err error

	counters := []struct {
		dst              *metric.Int64Counter
		name, desc, unit string
	}{
		{&m.mutations, "gallery.store.mutations", "Store mutations by operation and outcome", "{mutations}"},
		{&m.persistFailures, "gallery.store.persist_failures", "Storage writes that failed and were kept in memory only", "{writes}"},
		{&m.loadFallbacks, "gallery.store.load_fallbacks", "Collections replaced by seed or empty data on load", "{collections}"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit)); err != nil {
			return nil, err
		}
	}

	gauges := []struct {
		dst              *metric.Int64Gauge
		name, desc, unit string
	}{
		{&m.photos, "gallery.photos", "Number of photos in the store", "{photos}"},
		{&m.albums, "gallery.albums", "Number of albums in the store", "{albums}"},
		{&m.favorites, "gallery.favorites", "Number of favorited photos", "{photos}"},
	}
	for _, g := range gauges {
		if *g.dst, err = meter.Int64Gauge(g.name, metric.WithDescription(g.desc), metric.WithUnit(g.unit)); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordMutation records a store mutation and its outcome
func (m *GalleryMetrics) RecordMutation(ctx context.Context, operation string, err error) {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		Operation(operation),
		attribute.Bool("success", err == nil),
	))
}

// RecordPersistFailure records a storage write that did not succeed
func (m *GalleryMetrics) RecordPersistFailure(ctx context.Context, key string) {
	m.persistFailures.Add(ctx, 1, metric.WithAttributes(StorageKey(key)))
}

// RecordLoadFallback records a collection that was seeded instead of loaded
func (m *GalleryMetrics) RecordLoadFallback(ctx context.Context, key, reason string) {
	m.loadFallbacks.Add(ctx, 1, metric.WithAttributes(
		StorageKey(key),
		attribute.String("reason", reason),
	))
}

// RecordSizes records the current collection sizes
func (m *GalleryMetrics) RecordSizes(ctx context.Context, photos, albums, favorites int) {
	m.photos.Record(ctx, int64(photos))
	m.albums.Record(ctx, int64(albums))
	m.favorites.Record(ctx, int64(favorites))
}
