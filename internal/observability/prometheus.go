package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GallerySizeFunc reports the current collection sizes
type GallerySizeFunc func() (photos, albums, favorites int)

// NewPrometheusRegistry returns a registry with runtime collectors and
// gauges reading the gallery sizes at scrape time.
func NewPrometheusRegistry(sizes GallerySizeFunc) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		sizeGauge("photos", "Number of photos in the gallery", func() int { p, _, _ := sizes(); return p }),
		sizeGauge("albums", "Number of albums in the gallery", func() int { _, a, _ := sizes(); return a }),
		sizeGauge("favorites", "Number of favorited photos", func() int { _, _, f := sizes(); return f }),
	)
	return reg
}

func sizeGauge(name, help string, value func() int) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "gallery",
		Name:      name,
		Help:      help,
	}, func() float64 { return float64(value()) })
}

// PrometheusHandler serves the registry in the Prometheus text format
func PrometheusHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
