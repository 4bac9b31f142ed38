package status

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Namespace prefixes every exported metric name
const Namespace = "gridshooter"

// Collector exports a Registry as Prometheus gauges
// Metrics are read at scrape time, so keys registered later are picked up
type Collector struct {
	reg  *Registry
	info *prometheus.Desc
}

// NewCollector wraps reg
func NewCollector(reg *Registry) *Collector {
	return &Collector{
		reg: reg,
		info: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "info"),
			"String-valued status entries",
			[]string{"key", "value"}, nil,
		),
	}
}

// MetricName converts a registry key to a Prometheus metric name
func MetricName(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return prometheus.BuildFQName(Namespace, "", r.Replace(key))
}

// Describe sends no fixed descriptors; the collector is unchecked
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, v := range c.reg.Numeric() {
		desc := prometheus.NewDesc(MetricName(key), "status metric "+key, nil, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v)
	}
	c.reg.Strings.Range(func(key string, v *AtomicString) {
		ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, key, v.Load())
	})
}

// Server exposes a registry on /metrics
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer builds a metrics listener for addr using a private Prometheus registry
func NewServer(addr string, reg *Registry, logger *zap.Logger) (*Server, error) {
	promReg := prometheus.NewRegistry()
	if err := promReg.Register(NewCollector(reg)); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("metrics listener started", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler { return s.srv.Handler }
