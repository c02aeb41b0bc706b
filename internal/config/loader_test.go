package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/heataoi/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading with environment variables", func() {
			_ = os.Setenv("HEATAOI_ADDR", ":8080")
			_ = os.Setenv("HEATAOI_QUEUE_SIZE", "64")
			_ = os.Setenv("HEATAOI_TOP_N", "5")
			_ = os.Setenv("HEATAOI_TARGET_KM", "1.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.TopN, convey.ShouldEqual, 5)
				convey.So(cfg.TargetKM, convey.ShouldEqual, 1.5)
			})
		})

		convey.Convey("When loading with a YAML file and env", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
worker_count: 3
max_hotspot_limit: 20
log_format: json
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("HEATAOI_CONFIG", tmpFile)
			_ = os.Setenv("HEATAOI_WORKER_COUNT", "7")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 7)
				convey.So(cfg.MaxHotspotLimit, convey.ShouldEqual, 20)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("HEATAOI_CONFIG", "/nonexistent/heataoi.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value fails validation", func() {
			tmpFile := createTempConfigFile(`addr: ""`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("HEATAOI_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then the validation error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"HEATAOI_CONFIG",
		"HEATAOI_ADDR",
		"HEATAOI_QUEUE_SIZE",
		"HEATAOI_WORKER_COUNT",
		"HEATAOI_TOP_N",
		"HEATAOI_TARGET_KM",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "heataoi-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
