package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When a manager is created with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.aoisSelected.Add(3)

			Convey("Then collectors use the namespace and labels", func() {
				So(m, ShouldNotBeNil)
				expected := `
# HELP test_unit_aois_selected_total Total number of AOIs returned
# TYPE test_unit_aois_selected_total counter
test_unit_aois_selected_total{env="test"} 3
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_aois_selected_total")
				So(err, ShouldBeNil)
			})
		})

		Convey("When two managers share a registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When identification metrics are recorded", func() {
			before := testutil.ToFloat64(globalManager.aoisSelected)
			RecordAOIsSelected(2)
			RecordIdentifyLatency(12)
			UpdateWindowSize(200)
			RecordExhaustedSelection()
			RecordDegenerateLayer("vegetation")

			Convey("Then the collectors reflect them", func() {
				So(testutil.ToFloat64(globalManager.aoisSelected), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.windowSize), ShouldEqual, 200)
				So(testutil.ToFloat64(globalManager.degenerateLayers.WithLabelValues("vegetation")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When job and queue metrics are recorded", func() {
			UpdateQueueCapacity(16)
			UpdateQueueSize(4)
			UpdateWorkerCount(2)
			UpdateWorkerActiveCount(1)
			UpdateRunsStored(7)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 16)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.runsStored), ShouldEqual, 7)
			})

			Convey("And counters never panic", func() {
				So(func() {
					RecordJobSubmitted()
					RecordJobDuplicate()
					RecordJobCompleted("done")
					RecordQueueEnqueueError()
					RecordQueueDequeue()
					RecordValidationBuildings(5)
					RecordHTTPRequest("/aoi", "POST", "200")
					RecordHTTPRequestDuration("/aoi", "POST", "200", 1.5)
					RecordErrorByComponent("queue", "full")
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry is the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
