package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const METRICS_NAMESPACE = "skills_sh"

// run statistics, written out for the node_exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	skillsParsed     *prometheus.GaugeVec
	starFetches      *prometheus.CounterVec
	starCacheHits    prometheus.Counter
	summaryFetches   *prometheus.CounterVec
	summaryCacheHits prometheus.Counter
	enrichedSkills   *prometheus.GaugeVec
	runDuration      prometheus.Gauge
	lastSuccess      prometheus.Gauge
}

func new_metrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		skillsParsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "skills_parsed",
			Help:      "Distinct skills parsed from the trending page, per list.",
		}, []string{"list"}),
		starFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "star_fetches_total",
			Help:      "GitHub star count requests, by result.",
		}, []string{"result"}),
		starCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "star_cache_hits_total",
			Help:      "Repositories whose star count was already cached.",
		}),
		summaryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "summary_fetches_total",
			Help:      "Skill detail page requests, by result.",
		}, []string{"result"}),
		summaryCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "summary_cache_hits_total",
			Help:      "Skills whose summary was reused from the cache.",
		}),
		enrichedSkills: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "enriched_skills",
			Help:      "Curated skills written out, by summary source.",
		}, []string{"summary_source"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last run completed.",
		}),
	}

	m.registry.MustRegister(
		m.skillsParsed,
		m.starFetches,
		m.starCacheHits,
		m.summaryFetches,
		m.summaryCacheHits,
		m.enrichedSkills,
		m.runDuration,
		m.lastSuccess,
	)
	return m
}

func result_label(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func (m *Metrics) record_star_fetch(ok bool) {
	m.starFetches.WithLabelValues(result_label(ok)).Inc()
}

func (m *Metrics) record_summary_fetch(ok bool) {
	m.summaryFetches.WithLabelValues(result_label(ok)).Inc()
}

func (m *Metrics) record_domains(domain_list []Domain) {
	m.enrichedSkills.Reset()
	for _, domain := range domain_list {
		for _, skill := range domain.Skills {
			m.enrichedSkills.WithLabelValues(skill.SummarySource).Inc()
		}
	}
}

func (m *Metrics) finish(started time.Time) {
	m.runDuration.Set(time.Since(started).Seconds())
	m.lastSuccess.SetToCurrentTime()
}

// writes all metrics to `path` in the text exposition format.
func (m *Metrics) write(path string) error {
	err := prometheus.WriteToTextfile(path, m.registry)
	if err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
