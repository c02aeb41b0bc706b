package model_test

import (
	"testing"
	"time"

	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Given a submitted job", t, func() {
		now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
		job := model.Job{ID: "job-1", RequestID: "req-1", Params: aoi.DefaultParams(), SubmittedAt: now}

		Convey("When its run is created", func() {
			run := model.NewRun(job)

			Convey("Then it is queued and carries the job identity", func() {
				So(run.JobID, ShouldEqual, "job-1")
				So(run.RequestID, ShouldEqual, "req-1")
				So(run.Status, ShouldEqual, model.StatusQueued)
				So(run.SubmittedAt, ShouldEqual, now)
				So(run.Report, ShouldBeNil)
			})
		})
	})

	Convey("Terminal states", t, func() {
		So(model.StatusQueued.Terminal(), ShouldBeFalse)
		So(model.StatusDone.Terminal(), ShouldBeTrue)
		So(model.StatusPartial.Terminal(), ShouldBeTrue)
		So(model.StatusFailed.Terminal(), ShouldBeTrue)
	})
}
