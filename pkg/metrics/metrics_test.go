package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("signals"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.RecordNormalization("soccer", "high", "home", 20, 100, 0.2)

			Convey("Then collectors use the configured names and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_signals_normalizations_total")
				So(names, ShouldContain, "test_signals_clarity_score")
				So(testutil.ToFloat64(m.normalizations.WithLabelValues("soccer", "high")), ShouldEqual, 1)
			})
		})

		Convey("When empty options are passed", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "unisig")
				So(m.subsystem, ShouldEqual, "engine")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording across components", func() {
			before := testutil.ToFloat64(globalManager.duplicates)

			So(func() {
				RecordNormalization("basketball", "low", "even", 0, 20, 0.1)
				RecordDuplicate()
				RecordValidationError()
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueWaitLatency(1)
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(2)
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				UpdateStoreRecords(7)
				RecordStoreSaveLatency(0.01)
				RecordStoreQueryLatency(0.02)
				UpdateStreamClients(1)
				RecordStreamMessage()
				RecordStreamDropped()
				RecordHTTPRequest("/v1/normalize", "POST", 200, 1.5)
				RecordRateLimited()
				RecordErrorByComponent("worker", "store")
			}, ShouldNotPanic)

			Convey("Then values are visible on the shared registry", func() {
				So(testutil.ToFloat64(globalManager.duplicates), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.storeRecords), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.httpRequests.WithLabelValues("/v1/normalize", "POST", "200")), ShouldBeGreaterThanOrEqualTo, 1)

				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if strings.HasPrefix(f.GetName(), "unisig_engine_") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}
