package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/okian/feint/internal/app"
	"github.com/okian/feint/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestServiceLifecycle(t *testing.T) {
	convey.Convey("Given a new service", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatalf("failed to initialize logger: %v", err)
		}
		ctx := context.Background()

		convey.Convey("When created with defaults", func() {
			svc := service.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then the registry should be nil before Start", func() {
				convey.So(svc.Registry(), convey.ShouldBeNil)
			})

			convey.Convey("And Start should build the registry", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()

				reg := svc.Registry()
				convey.So(reg, convey.ShouldNotBeNil)
				convey.So(reg.Len(), convey.ShouldEqual, 10)
			})

			convey.Convey("And Start should be idempotent", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()
				first := svc.Registry()

				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				convey.So(svc.Registry(), convey.ShouldEqual, first)
			})
		})

		convey.Convey("When created with custom options", func() {
			svc := service.New(
				service.WithStallDuration(2*time.Second),
				service.WithBodyLogLimit(1024),
				service.WithLogger(logger.Get()),
			)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then stats should reflect the configuration", func() {
				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldBeTrue)
				convey.So(stats["stall_seconds"], convey.ShouldEqual, 2.0)
				convey.So(stats["body_log_limit"], convey.ShouldEqual, 1024)
				convey.So(stats["scenario_count"], convey.ShouldEqual, 10)
			})

			convey.Convey("And the body log limit accessor should match", func() {
				convey.So(svc.BodyLogLimit(), convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When created with invalid option values", func() {
			svc := service.New(
				service.WithStallDuration(0),
				service.WithBodyLogLimit(-1),
			)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then defaults should be kept", func() {
				stats := svc.GetStats()
				convey.So(stats["stall_seconds"], convey.ShouldEqual, 600.0)
				convey.So(svc.BodyLogLimit(), convey.ShouldEqual, 64*1024)
			})
		})

		convey.Convey("When stopping a service that never started", func() {
			svc := service.New()
			convey.So(svc.Stop, convey.ShouldNotPanic)
		})
	})
}
