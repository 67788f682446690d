// Package flags holds the CLI flag definitions shared by the service
// binaries, plus helpers turning parsed flags into component configs.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/aacecandev/blog/common"
	"github.com/aacecandev/blog/httpserver"
	"github.com/aacecandev/blog/storage"
)

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for the API",
	EnvVars: []string{"BLOG_LISTEN_ADDR"},
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics, empty disables",
	EnvVars: []string{"BLOG_METRICS_ADDR"},
}

var ContentDirFlag = &cli.StringFlag{
	Name:    "content-dir",
	Value:   "",
	Usage:   "local directory with {slug}.md post files",
	EnvVars: []string{"BLOG_CONTENT_DIR"},
}

var S3BucketFlag = &cli.StringFlag{
	Name:    "s3-bucket",
	Value:   "",
	Usage:   "S3 bucket with post objects, takes precedence over content-dir",
	EnvVars: []string{"BLOG_S3_BUCKET"},
}

var S3PrefixFlag = &cli.StringFlag{
	Name:    "s3-prefix",
	Value:   "posts/",
	Usage:   "object key prefix under which posts live",
	EnvVars: []string{"BLOG_S3_PREFIX"},
}

var S3RegionFlag = &cli.StringFlag{
	Name:    "s3-region",
	Value:   "eu-west-1",
	Usage:   "AWS region of the bucket",
	EnvVars: []string{"BLOG_S3_REGION"},
}

var S3EndpointFlag = &cli.StringFlag{
	Name:    "s3-endpoint",
	Value:   "",
	Usage:   "custom endpoint for S3-compatible object stores",
	EnvVars: []string{"BLOG_S3_ENDPOINT"},
}

var S3AccessKeyFlag = &cli.StringFlag{
	Name:    "s3-access-key",
	Value:   "",
	Usage:   "static S3 access key, empty uses the SDK credential chain",
	EnvVars: []string{"BLOG_S3_ACCESS_KEY"},
}

var S3SecretKeyFlag = &cli.StringFlag{
	Name:    "s3-secret-key",
	Value:   "",
	Usage:   "static S3 secret key",
	EnvVars: []string{"BLOG_S3_SECRET_KEY"},
}

var CacheTTLFlag = &cli.Int64Flag{
	Name:    "cache-ttl-seconds",
	Value:   300,
	Usage:   "content cache TTL in seconds, 0 disables caching",
	EnvVars: []string{"BLOG_CACHE_TTL_SECONDS"},
}

var StorageTimeoutFlag = &cli.Int64Flag{
	Name:    "storage-timeout-seconds",
	Value:   10,
	Usage:   "per-call timeout for backend I/O in seconds",
	EnvVars: []string{"BLOG_STORAGE_TIMEOUT_SECONDS"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	Usage:   "log in JSON format",
	EnvVars: []string{"BLOG_LOG_JSON"},
}

var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	Usage:   "log debug messages",
	EnvVars: []string{"BLOG_LOG_DEBUG"},
}

var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

// ServerFlags is the full flag set of the blog-server binary.
var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	MetricsAddrFlag,
	ContentDirFlag,
	S3BucketFlag,
	S3PrefixFlag,
	S3RegionFlag,
	S3EndpointFlag,
	S3AccessKeyFlag,
	S3SecretKeyFlag,
	CacheTTLFlag,
	StorageTimeoutFlag,
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
	PprofFlag,
	DrainSecondsFlag,
}

// SetupLogger builds the process logger from the log-* flags.
func SetupLogger(cCtx *cli.Context) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
		Version: common.Version,
	})

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// StorageConfig assembles the backend config from the storage flags.
func StorageConfig(cCtx *cli.Context) storage.Config {
	return storage.Config{
		ContentDir:     cCtx.String(ContentDirFlag.Name),
		Bucket:         cCtx.String(S3BucketFlag.Name),
		Prefix:         cCtx.String(S3PrefixFlag.Name),
		Region:         cCtx.String(S3RegionFlag.Name),
		Endpoint:       cCtx.String(S3EndpointFlag.Name),
		AccessKey:      cCtx.String(S3AccessKeyFlag.Name),
		SecretKey:      cCtx.String(S3SecretKeyFlag.Name),
		RequestTimeout: time.Duration(cCtx.Int64(StorageTimeoutFlag.Name)) * time.Second,
	}
}

// ConfigureServer assembles the HTTP server config from the server flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}
