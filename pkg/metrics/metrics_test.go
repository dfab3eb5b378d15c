package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording judging metrics", func() {
			Convey("Then it should record scored turns", func() {
				So(func() {
					RecordTurnScored()
					RecordTurnScored()
				}, ShouldNotPanic)
			})

			Convey("And it should record judge latency and errors", func() {
				So(func() {
					RecordJudgeLatency(100.0)
					RecordJudgeLatency(150.0)
					RecordJudgeError()
				}, ShouldNotPanic)
			})

			Convey("And it should record stored evaluations", func() {
				So(func() {
					RecordEvaluationStored()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording aggregation metrics", func() {
			So(func() {
				RecordAggregation()
				RecordAggregationLatency(12.0)
				RecordAggregationError()
				RecordNothingToAggregate()
				RecordResultUpsert()
			}, ShouldNotPanic)
		})

		Convey("When recording lifecycle metrics", func() {
			So(func() {
				RecordInterviewTransition("SCHEDULED", "JOINED")
				RecordApplicationTransition("APPLIED", "INTERVIEW")
				RecordIllegalTransition()
				RecordTokenConsumed()
				RecordJoinRejected()
				RecordNotificationError()
			}, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() {
				UpdateQueueSize(1000)
				UpdateQueueCapacity(10000)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(8)
				RecordWorkerProcessingLatency(42.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording repository and totals metrics", func() {
			So(func() {
				RecordRepositoryUpdateLatency(3.0)
				UpdateInterviewsTotal(12)
				UpdateResultsTotal(7)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("interviews", "POST", "201")
				RecordHTTPRequestDuration("interviews", "POST", "201", 15.0)
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024)
				UpdateSystemGoroutineCount(42)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global metrics registry", t, func() {
		Convey("When fetching it", func() {
			registry := GetRegistry()

			Convey("Then it should be available and gatherable", func() {
				So(registry, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
