package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/unisignals/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("UNISIG_ADDR", ":8080")
			_ = os.Setenv("UNISIG_QUEUE_SIZE", "500")
			_ = os.Setenv("UNISIG_WORKER_COUNT", "3")
			_ = os.Setenv("UNISIG_RATE_LIMIT_RPS", "12.5")
			_ = os.Setenv("UNISIG_CORS_ORIGINS", "https://a.example, https://b.example,")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 12.5)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, "unisig.yaml", `
addr: ":9090"
queue_size: 300
worker_count: 24
max_list_limit: 50
cors_origins:
  - https://ui.example
`)
			_ = os.Setenv("UNISIG_CONFIG", path)
			_ = os.Setenv("UNISIG_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins over them", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.MaxListLimit, convey.ShouldEqual, 50)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://ui.example"})
				convey.So(cfg.StreamBuffer, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with a TOML file", func() {
			path := writeConfigFile(t, "unisig.toml", `
addr = ":7070"
dedupe_size = 0
rate_limit_rps = 5.0
rate_limit_burst = 10
`)
			_ = os.Setenv("UNISIG_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse TOML", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 0)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 5.0)
				convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the file is malformed", func() {
			path := writeConfigFile(t, "bad.yaml", `invalid: yaml: content: [`)
			_ = os.Setenv("UNISIG_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("UNISIG_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file extension is unknown", func() {
			path := writeConfigFile(t, "unisig.ini", `addr=:1`)
			_ = os.Setenv("UNISIG_CONFIG", path)

			_, err := config.Load(ctx)

			convey.Convey("Then the loader refuses it", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unsupported")
			})
		})

		convey.Convey("When the result fails validation", func() {
			_ = os.Setenv("UNISIG_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})
	})
}

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"UNISIG_CONFIG", "UNISIG_ADDR", "UNISIG_QUEUE_SIZE", "UNISIG_WORKER_COUNT",
		"UNISIG_DEDUPE_SIZE", "UNISIG_MAX_LIST_LIMIT", "UNISIG_CORS_ORIGINS",
		"UNISIG_RATE_LIMIT_RPS", "UNISIG_RATE_LIMIT_BURST", "UNISIG_STREAM_BUFFER",
		"UNISIG_LOG_LEVEL",
	} {
		_ = os.Unsetenv(k)
	}
}
