package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
)

// 确保实现了回收域观察者接口
var _ reclaim.Observer = (*Metrics)(nil)

// Metrics 站点核心指标集合
type Metrics struct {
	live          *prometheus.GaugeVec
	retired       *prometheus.CounterVec
	invalidCipher prometheus.Counter
	slotWraps     prometheus.Counter

	reclaimPending prometheus.Gauge
	reclaimed      prometheus.Counter
	gracePeriod    prometheus.Histogram
}

// New 创建指标并注册到 reg
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_objects",
			Help:      "Objects allocated and not yet reclaimed.",
		}, []string{"class"}),
		retired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retired_total",
			Help:      "Objects handed to the reclaim domain.",
		}, []string{"class"}),
		invalidCipher: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_cipher_total",
			Help:      "Key allocations rejected for an unknown cipher suite.",
		}),
		slotWraps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_wraps_total",
			Help:      "Stations published with a mac_id outside the table range.",
		}),
		reclaimPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reclaim_pending",
			Help:      "Destructors waiting for a grace period.",
		}),
		reclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaimed_total",
			Help:      "Destructors run after their grace period.",
		}),
		gracePeriod: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grace_period_seconds",
			Help:      "Time spent waiting for pre-existing readers.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	for _, c := range []prometheus.Collector{
		m.live, m.retired, m.invalidCipher, m.slotWraps,
		m.reclaimPending, m.reclaimed, m.gracePeriod,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Allocated 对象已分配并发布
func (m *Metrics) Allocated(c resourcemgr.Class) {
	if m == nil {
		return
	}
	m.live.WithLabelValues(c.String()).Inc()
}

// Retired 对象已交给回收域
func (m *Metrics) Retired(c resourcemgr.Class) {
	if m == nil {
		return
	}
	m.retired.WithLabelValues(c.String()).Inc()
}

// Freed 对象已在宽限期后析构
func (m *Metrics) Freed(c resourcemgr.Class) {
	if m == nil {
		return
	}
	m.live.WithLabelValues(c.String()).Dec()
}

// InvalidCipher 记录一次非法套件
func (m *Metrics) InvalidCipher() {
	if m == nil {
		return
	}
	m.invalidCipher.Inc()
}

// SlotWrapped 记录一次 mac_id 取模回绕
func (m *Metrics) SlotWrapped() {
	if m == nil {
		return
	}
	m.slotWraps.Inc()
}

// GracePeriod 实现 reclaim.Observer
func (m *Metrics) GracePeriod(d time.Duration) {
	if m == nil {
		return
	}
	m.gracePeriod.Observe(d.Seconds())
}

// Reclaimed 实现 reclaim.Observer
func (m *Metrics) Reclaimed() {
	if m == nil {
		return
	}
	m.reclaimed.Inc()
}

// Pending 实现 reclaim.Observer
func (m *Metrics) Pending(n int64) {
	if m == nil {
		return
	}
	m.reclaimPending.Set(float64(n))
}
