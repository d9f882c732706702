package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	convey.Convey("Given an initialized global logger", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When logging at every level with fields", func() {
			l := logger.Get()

			convey.So(func() {
				l.Debug(ctx, "debug message", logger.String("k", "v"))
				l.Info(ctx, "info message", logger.Int("n", 1))
				l.Warn(ctx, "warn message", logger.Any("v", []string{"a"}))
				l.Error(ctx, "error message", logger.Error(errors.New("boom")))
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When deriving a named logger", func() {
			named := logger.Named("upsert")

			convey.So(named, convey.ShouldNotBeNil)
			convey.So(func() { named.Info(ctx, "scoped message") }, convey.ShouldNotPanic)
		})

		convey.Convey("When setting log levels from strings", func() {
			convey.So(logger.SetLevelString("debug"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("WARN"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString(""), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("loud"), convey.ShouldNotBeNil)
		})

		convey.Convey("When syncing", func() {
			convey.So(logger.Sync(), convey.ShouldBeNil)
		})
	})
}
