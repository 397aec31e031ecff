package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化(可重复调用)
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics()

	if HTTPRequestsTotal == nil || LoansCreatedTotal == nil || AllocationFailuresTotal == nil {
		t.Fatal("指标未初始化")
	}
	if CheckoutDuration == nil || ReturnsTotal == nil || CircuitBreakerState == nil {
		t.Fatal("指标未初始化")
	}
}

// TestCounter 测试Counter指标
func TestCounter(t *testing.T) {
	InitMetrics()

	before := getCounterValue(t, LoansCreatedTotal)
	IncCounter(LoansCreatedTotal)
	IncCounter(LoansCreatedTotal)
	IncCounter(LoansCreatedTotal)

	if got := getCounterValue(t, LoansCreatedTotal) - before; got != 3 {
		t.Errorf("Counter增量错误: expected=3, got=%f", got)
	}
}

// TestCounterVec 不同原因的分配失败分别计数
func TestCounterVec(t *testing.T) {
	InitMetrics()

	noCopy := map[string]string{"reason": "NO_COPY"}
	limit := map[string]string{"reason": "LOAN_LIMIT_REACHED"}
	beforeNoCopy := getCounterVecValue(t, AllocationFailuresTotal, noCopy)
	beforeLimit := getCounterVecValue(t, AllocationFailuresTotal, limit)

	IncCounterVec(AllocationFailuresTotal, noCopy)
	IncCounterVec(AllocationFailuresTotal, noCopy)
	IncCounterVec(AllocationFailuresTotal, limit)

	if got := getCounterVecValue(t, AllocationFailuresTotal, noCopy) - beforeNoCopy; got != 2 {
		t.Errorf("NO_COPY计数错误: expected=2, got=%f", got)
	}
	if got := getCounterVecValue(t, AllocationFailuresTotal, limit) - beforeLimit; got != 1 {
		t.Errorf("LOAN_LIMIT_REACHED计数错误: expected=1, got=%f", got)
	}
}

// TestGauge 测试Gauge指标
func TestGauge(t *testing.T) {
	InitMetrics()

	before := getGaugeValue(t, HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)

	if got := getGaugeValue(t, HTTPRequestsInProgress) - before; got != 1 {
		t.Errorf("Gauge增量错误: expected=1, got=%f", got)
	}
	DecGauge(HTTPRequestsInProgress)
}

// TestGaugeVec 测试熔断器状态
func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "notifier"}, 1)
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "other"}, 0)

	if got := getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "notifier"}); got != 1 {
		t.Errorf("GaugeVec值错误: expected=1, got=%f", got)
	}
	if got := getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "other"}); got != 0 {
		t.Errorf("GaugeVec值错误: expected=0, got=%f", got)
	}
}

// TestHistogram 测试结算耗时直方图
func TestHistogram(t *testing.T) {
	InitMetrics()

	beforeCount, beforeSum := getHistogram(t, CheckoutDuration)
	ObserveHistogram(CheckoutDuration, 0.05)
	ObserveHistogram(CheckoutDuration, 0.5)

	count, sum := getHistogram(t, CheckoutDuration)
	if count-beforeCount != 2 {
		t.Errorf("Histogram观测次数错误: expected=2, got=%d", count-beforeCount)
	}
	if diff := sum - beforeSum; diff < 0.549 || diff > 0.551 {
		t.Errorf("Histogram总和错误: expected=0.55, got=%f", diff)
	}
}

// TestHistogramVec 测试HTTP耗时按路由区分
func TestHistogramVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"method": "POST", "path": "/api/v1/cart/checkout"}
	before := getHistogramVecCount(t, HTTPRequestDuration, labels)

	ObserveHistogramVec(HTTPRequestDuration, labels, 0.05)
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.1)
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "GET", "path": "/api/v1/cart"}, 0.2)

	if got := getHistogramVecCount(t, HTTPRequestDuration, labels) - before; got != 2 {
		t.Errorf("HistogramVec观测次数错误: expected=2, got=%d", got)
	}
}

// TestNilSafe 未初始化的指标不会panic
func TestNilSafe(t *testing.T) {
	var c prometheus.Counter
	var cv *prometheus.CounterVec
	var h prometheus.Histogram
	IncCounter(c)
	IncCounterVec(cv, map[string]string{"reason": "x"})
	ObserveHistogram(h, 1)
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("读取Counter值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	return getCounterValue(t, counterVec.With(labels))
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("读取Gauge值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	return getGaugeValue(t, gaugeVec.With(labels))
}

func getHistogram(t *testing.T, histogram prometheus.Histogram) (uint64, float64) {
	var metric dto.Metric
	if err := histogram.Write(&metric); err != nil {
		t.Fatalf("读取Histogram值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount(), metric.Histogram.GetSampleSum()
}

func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	h, ok := histogramVec.With(labels).(prometheus.Histogram)
	if !ok {
		t.Fatal("HistogramVec返回类型错误")
	}
	count, _ := getHistogram(t, h)
	return count
}
