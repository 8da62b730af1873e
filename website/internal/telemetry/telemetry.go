// Package telemetry exposes website domain metrics on a Prometheus registry.
package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oe/sunrain-sub002/website/internal/i18n"
)

const namespace = "website"

// Metrics implements the storage and assessment observers.
type Metrics struct {
	resets     *prometheus.CounterVec
	pruned     *prometheus.CounterVec
	started    *prometheus.CounterVec
	completed  *prometheus.CounterVec
	abandoned  *prometheus.CounterVec
	crisisSeen *prometheus.CounterVec
}

// New registers the domain collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "collection_resets_total",
			Help:      "Collections discarded after failing integrity checks.",
		}, []string{"collection", "reason"}),
		pruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "records_pruned_total",
			Help:      "Records dropped to respect quota or retention.",
		}, []string{"collection"}),
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "sessions_started_total",
			Help:      "Assessment sessions started.",
		}, []string{"questionnaire"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "sessions_completed_total",
			Help:      "Assessment sessions completed, by result severity.",
		}, []string{"questionnaire", "severity"}),
		abandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "sessions_abandoned_total",
			Help:      "Assessment sessions abandoned.",
		}, []string{"questionnaire"}),
		crisisSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "crisis_flags_total",
			Help:      "Completed assessments whose result carried a crisis flag.",
		}, []string{"questionnaire"}),
	}
	reg.MustRegister(m.resets, m.pruned, m.started, m.completed, m.abandoned, m.crisisSeen)
	return m
}

func (m *Metrics) CollectionReset(collection, reason string) {
	m.resets.WithLabelValues(collection, reason).Inc()
}

func (m *Metrics) RecordsPruned(collection string, n int) {
	m.pruned.WithLabelValues(collection).Add(float64(n))
}

func (m *Metrics) SessionStarted(questionnaireID string) {
	m.started.WithLabelValues(questionnaireID).Inc()
}

func (m *Metrics) SessionCompleted(questionnaireID, severity string, crisis bool) {
	if severity == "" {
		severity = "none"
	}
	m.completed.WithLabelValues(questionnaireID, severity).Inc()
	if crisis {
		m.crisisSeen.WithLabelValues(questionnaireID).Inc()
	}
}

func (m *Metrics) SessionAbandoned(questionnaireID string) {
	m.abandoned.WithLabelValues(questionnaireID).Inc()
}

// CacheCollector reports translation cache counters at scrape time.
type CacheCollector struct {
	cache *i18n.Cache

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	tierHits    *prometheus.Desc
	evictions   *prometheus.Desc
	expirations *prometheus.Desc
	size        *prometheus.Desc
	maxEntries  *prometheus.Desc
}

// NewCacheCollector describes cache under website_i18n_cache_*.
func NewCacheCollector(cache *i18n.Cache) *CacheCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "i18n_cache", name), help, nil, nil)
	}
	return &CacheCollector{
		cache:       cache,
		hits:        desc("hits_total", "Translation cache hits."),
		misses:      desc("misses_total", "Translation cache misses."),
		tierHits:    desc("tier_hits_total", "Misses served by the shared tier."),
		evictions:   desc("evictions_total", "Entries evicted by the LRU bound."),
		expirations: desc("expirations_total", "Entries dropped after their TTL."),
		size:        desc("entries", "Entries currently cached."),
		maxEntries:  desc("max_entries", "Configured entry ceiling."),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.tierHits
	ch <- c.evictions
	ch <- c.expirations
	ch <- c.size
	ch <- c.maxEntries
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.tierHits, prometheus.CounterValue, float64(s.TierHits))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.CounterValue, float64(s.Expirations))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
	ch <- prometheus.MustNewConstMetric(c.maxEntries, prometheus.GaugeValue, float64(s.MaxEntries))
}

// BuildInfo registers a constant website_build_info gauge.
func BuildInfo(reg prometheus.Registerer, version string, languages int) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Build metadata.",
		ConstLabels: prometheus.Labels{"version": version, "languages": strconv.Itoa(languages)},
	})
	g.Set(1)
	reg.MustRegister(g)
}
