package main

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/adapters/http/api"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/adapters/http/swagger"
	app "github.com/justinhuttinger/abc-to-ghl-api/internal/app"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/config"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestWiring(t *testing.T) {
	convey.Convey("Given the main application wiring", t, func() {
		ctx := context.Background()

		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("ABCGHL_ADDR", ":8081")
			_ = os.Setenv("ABCGHL_RUN_MODE", "once")
			defer func() {
				_ = os.Unsetenv("ABCGHL_ADDR")
				_ = os.Unsetenv("ABCGHL_RUN_MODE")
			}()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the service config reflects the overrides", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.RunMode, convey.ShouldEqual, config.ModeOnce)
			})
		})

		convey.Convey("When registering routes on a fresh mux", func() {
			mux := http.NewServeMux()
			svc := app.New()

			convey.So(func() {
				swagger.Register(ctx, mux)
				api.NewServer(svc, 1).Register(ctx, mux)
			}, convey.ShouldNotPanic)
		})
	})
}
