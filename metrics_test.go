package goSignup

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricSignupCreated)
	m.Observe(MetricRegisterLatency, 10*time.Millisecond)

	if m.Value(MetricSignupCreated) != 0 {
		t.Fatal("disabled metrics must not count")
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsCountersAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricSignupCreated)
	m.Inc(MetricSignupCreated)
	m.Inc(MetricRiskMobileClient)

	if got := m.Value(MetricSignupCreated); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricSignupCreated] != 2 {
		t.Fatalf("snapshot mismatch: %d", snap.Counters[MetricSignupCreated])
	}
	if snap.Counters[MetricRiskMobileClient] != 1 {
		t.Fatalf("snapshot mismatch: %d", snap.Counters[MetricRiskMobileClient])
	}
	if len(snap.Histograms) != 0 {
		t.Fatal("histograms disabled, snapshot must omit them")
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricRegisterLatency, 3*time.Millisecond)
	m.Observe(MetricRegisterLatency, 8*time.Millisecond)
	m.Observe(MetricRegisterLatency, 90*time.Millisecond)
	m.Observe(MetricRegisterLatency, 2*time.Second)

	buckets := m.Snapshot().Histograms[MetricRegisterLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	if buckets[0] != 1 || buckets[1] != 1 || buckets[4] != 1 || buckets[7] != 1 {
		t.Fatalf("unexpected bucket distribution: %v", buckets)
	}
}

func TestMetricsObserveIgnoresNonLatencyIDs(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricSignupCreated, 10*time.Millisecond)

	if buckets := m.Snapshot().Histograms[MetricRegisterLatency]; buckets != nil {
		for _, v := range buckets {
			if v != 0 {
				t.Fatalf("counter IDs must not feed the latency histogram: %v", buckets)
			}
		}
	}
}

func TestMetricsOutOfRangeIDIgnored(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount)
	m.Inc(metricIDCount + 100)
	if got := m.Value(metricIDCount); got != 0 {
		t.Fatalf("expected out-of-range reads to be zero, got %d", got)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 16
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Inc(MetricSignupWebAttempt)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricSignupWebAttempt); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}

func TestRiskMetricMapping(t *testing.T) {
	cases := map[RiskReason]MetricID{
		RiskNone:                MetricRiskNone,
		RiskIPKnown:             MetricRiskIPKnown,
		RiskIPSuspicious:        MetricRiskIPSuspicious,
		RiskFingerprintKnown:    MetricRiskFingerprintKnown,
		RiskFingerprintMissing:  MetricRiskFingerprintMissing,
		RiskSuspiciousUserAgent: MetricRiskSuspiciousUserAgent,
		RiskMobileClient:        MetricRiskMobileClient,
	}

	for reason, want := range cases {
		if got := riskMetric(reason); got != want {
			t.Fatalf("riskMetric(%v) = %v, want %v", reason, got, want)
		}
	}
}

func TestChannelMetricMapping(t *testing.T) {
	if channelMetric(ChannelWeb) != MetricSignupWebAttempt {
		t.Fatal("web channel must map to web attempt counter")
	}
	if channelMetric(ChannelMobile) != MetricSignupMobileAttempt {
		t.Fatal("mobile channel must map to mobile attempt counter")
	}
}
