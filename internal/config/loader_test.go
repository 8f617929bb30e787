package config_test

import (
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/okian/onice/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.Phase, convey.ShouldEqual, "regular")
				convey.So(cfg.MinTimelineSeconds, convey.ShouldEqual, 3595)
				convey.So(cfg.GateThreshold, convey.ShouldEqual, 11)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ONICE_ADDR", ":8080")
			_ = os.Setenv("ONICE_QUEUE_SIZE", "512")
			_ = os.Setenv("ONICE_WORKER_COUNT", "8")
			_ = os.Setenv("ONICE_PHASE", "playoffs")
			_ = os.Setenv("ONICE_DB_PATH", "/tmp/onice-test.db")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 512)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.Phase, convey.ShouldEqual, "playoffs")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/onice-test.db")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9091"
job_dir: "/data/games"
queue_size: 1024
worker_count: 4
min_timeline_seconds: 3600
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ONICE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9091")
				convey.So(cfg.JobDir, convey.ShouldEqual, "/data/games")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.MinTimelineSeconds, convey.ShouldEqual, 3600)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9091"
queue_size: 1024
worker_count: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ONICE_CONFIG", tmpFile)
			_ = os.Setenv("ONICE_ADDR", ":8080")     // This should override the file
			_ = os.Setenv("ONICE_WORKER_COUNT", "2") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")   // Overridden by env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024) // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)  // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ONICE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ONICE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ONICE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown phase", func() {
			_ = os.Setenv("ONICE_PHASE", "preseason")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "phase must be regular or playoffs")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
addr: ":9091"
worker_count: 6
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ONICE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9091")            // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 6)           // From file
				convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)          // From defaults
				convey.So(cfg.Phase, convey.ShouldEqual, "regular")         // From defaults
				convey.So(cfg.MinTimelineSeconds, convey.ShouldEqual, 3595) // From defaults
			})
		})
	})
}

// clearConfigEnvVars removes every ONICE_ variable the tests set.
func clearConfigEnvVars() {
	for _, key := range []string{
		"ONICE_CONFIG",
		"ONICE_LOG_LEVEL",
		"ONICE_ADDR",
		"ONICE_JOB_DIR",
		"ONICE_DB_PATH",
		"ONICE_QUEUE_SIZE",
		"ONICE_WORKER_COUNT",
		"ONICE_PHASE",
		"ONICE_REGULATION_PERIODS",
		"ONICE_MIN_TIMELINE_SECONDS",
		"ONICE_GATE_THRESHOLD",
	} {
		_ = os.Unsetenv(key)
	}
}

// createTempConfigFile writes content to a temp YAML file and returns its path.
func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "onice-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}
