package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ashetkar/scalarun/cli/config"
	"github.com/ashetkar/scalarun/cli/render"
	"github.com/ashetkar/scalarun/history"
	"github.com/ashetkar/scalarun/log"
	"github.com/ashetkar/scalarun/metrics"
	"github.com/ashetkar/scalarun/notify"
	"github.com/ashetkar/scalarun/notify/redis"
	"github.com/ashetkar/scalarun/notify/webhook"
	"github.com/ashetkar/scalarun/runtime"
	"github.com/ashetkar/scalarun/storage"
	"github.com/ashetkar/scalarun/types"
)

// Exit codes for the run command.
const (
	exitSuccess       = 0
	exitTestsFailed   = 1
	exitLaunchFailure = 2
)

// RunCommand returns the run command.
// This is the only command that executes work.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Launch the ScalaTest runner and evaluate its outcome",
		Flags:  append(runConfigFlags(), runOutputFlags()...),
		Action: runAction,
	}
}

// runConfigFlags are the flags that shape the runner invocation itself.
// Shared with the args command so both build identical argument lists.
func runConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to scalarun.yaml config file",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "Label identifying this invocation (reports, history, archive)",
			Value: "scalatest",
		},
		// JVM launch flags
		&cli.StringFlag{
			Name:  "java",
			Usage: "Path to the java executable",
		},
		&cli.StringSliceFlag{
			Name:  "classpath",
			Usage: "Classpath entry (repeatable, order preserved)",
		},
		&cli.StringSliceFlag{
			Name:  "jvm-arg",
			Usage: "JVM argument (repeatable, order preserved)",
		},
		&cli.StringSliceFlag{
			Name:  "env",
			Usage: "Child environment entry KEY=VALUE (repeatable; the runner inherits nothing else)",
		},
		&cli.StringFlag{
			Name:  "working-dir",
			Usage: "Working directory for the runner process",
		},
		// Test selection flags
		&cli.StringFlag{
			Name:  "test-root",
			Usage: "Directory containing compiled tests (runpath)",
		},
		&cli.StringSliceFlag{
			Name:  "pattern",
			Usage: "Test name substring filter (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "suite",
			Usage: "Fully qualified suite class name (repeatable, deduplicated)",
		},
		&cli.StringSliceFlag{
			Name:  "include-tag",
			Usage: "Include tests tagged with this tag (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-tag",
			Usage: "Exclude tests tagged with this tag (repeatable)",
		},
		&cli.IntFlag{
			Name:  "parallelism",
			Usage: "Concurrent worker forks (0 = runner default)",
		},
		&cli.BoolFlag{
			Name:  "no-runner-color",
			Usage: "Disable ANSI color in the runner's standard output",
		},
		&cli.StringSliceFlag{
			Name:  "config-entry",
			Usage: "Runner config map entry KEY=VALUE (repeatable, emitted sorted)",
		},
		// Report flags
		&cli.StringFlag{
			Name:  "junit-xml",
			Usage: "JUnit XML report entry point (enables the XML report)",
		},
		&cli.StringFlag{
			Name:  "html-dir",
			Usage: "HTML report destination directory (enables the HTML report)",
		},
		&cli.StringFlag{
			Name:  "html",
			Usage: "HTML report entry point (for the failure link)",
		},
		&cli.StringFlag{
			Name:  "result-file",
			Usage: "Machine-readable result file path",
		},
		&cli.StringFlag{
			Name:  "output-file",
			Usage: "Redirect runner stdout to this file (truncated)",
		},
		&cli.StringFlag{
			Name:  "error-file",
			Usage: "Redirect runner stderr to this file (truncated)",
		},
		&cli.BoolFlag{
			Name:  "ignore-failures",
			Usage: "Downgrade a failing run to a warning (never affects launch failures)",
		},
	}
}

// runOutputFlags are the post-run surfaces: report, archive, history, webhook.
func runOutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress the summary line",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a JSON run report to this path ('-' for stderr)",
		},
		&cli.StringFlag{
			Name:  "archive",
			Usage: "Archive artifacts to fs:<dir> or s3:<bucket/prefix>",
		},
		&cli.StringFlag{
			Name:  "archive-region",
			Usage: "AWS region for the s3 archive backend",
		},
		&cli.StringFlag{
			Name:  "archive-endpoint",
			Usage: "Custom S3 endpoint URL (MinIO, R2)",
		},
		&cli.BoolFlag{
			Name:  "archive-path-style",
			Usage: "Force path-style S3 addressing",
		},
		&cli.StringFlag{
			Name:  "history-dir",
			Usage: "Append a record of this run to the history store at this directory",
		},
		&cli.StringFlag{
			Name:  "webhook-url",
			Usage: "POST a completion event to this URL",
		},
		&cli.StringSliceFlag{
			Name:  "webhook-header",
			Usage: "Webhook HTTP header KEY=VALUE (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "webhook-timeout",
			Usage: "Webhook request timeout",
		},
		&cli.IntFlag{
			Name:  "webhook-retries",
			Usage: "Webhook retry attempts on transient failure",
			Value: webhook.DefaultRetries,
		},
		&cli.StringFlag{
			Name:  "redis-url",
			Usage: "Publish a completion event to this Redis instance",
		},
		&cli.StringFlag{
			Name:  "redis-channel",
			Usage: "Redis pub/sub channel for completion events",
		},
	}
}

func runAction(c *cli.Context) error {
	fileCfg, err := loadFileConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitLaunchFailure)
	}

	cfg, err := buildRunConfig(c, fileCfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), exitLaunchFailure)
	}

	label := c.String("label")
	logger := log.NewLogger(label)
	defer logger.Sync()
	collector := metrics.NewCollector(types.RunnerMainClass, cfg.TestRoot)

	orchestrator, err := runtime.NewOrchestrator(cfg, logger, collector)
	if err != nil {
		return cli.Exit(err.Error(), exitLaunchFailure)
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	startTime := time.Now()
	result, err := orchestrator.Execute(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("launch failed: %v", err), exitLaunchFailure)
	}

	// Post-run surfaces. None of these change the run's exit code; they
	// log and count failures instead.
	archiveArtifacts(ctx, c, fileCfg, cfg, label, logger, collector)

	snap := collector.Snapshot()
	report := runtime.BuildRunReport(label, cfg, result, snap)

	if path := c.String("report"); path != "" {
		if err := runtime.WriteRunReport(report, path); err != nil {
			logger.Warn("failed to write run report", map[string]any{"path": path, "error": err.Error()})
		}
	}

	if dir := mergeString(c.String("history-dir"), fileCfg.HistoryDir); dir != "" {
		appendHistory(dir, report, startTime, logger)
	}

	publishNotifications(ctx, c, fileCfg, report, logger, collector)

	if !c.Bool("quiet") {
		r, rerr := render.NewRenderer(c)
		if rerr == nil {
			r.RenderSummary(label, string(result.Outcome.Status), result.Outcome.Message)
		}
	}

	return cli.Exit("", outcomeToExitCode(result.Outcome.Status))
}

// loadFileConfig loads the YAML config when --config is given.
// Returns an empty config otherwise so merge logic stays uniform.
func loadFileConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// buildRunConfig merges CLI flags over file config into a RunConfig.
// Flags always win; file values fill the gaps.
func buildRunConfig(c *cli.Context, fileCfg *config.Config) (*types.RunConfig, error) {
	env, err := parseKeyValues(c.StringSlice("env"))
	if err != nil {
		return nil, fmt.Errorf("invalid --env: %w", err)
	}
	if env == nil && len(fileCfg.Java.Env) > 0 {
		env = fileCfg.Java.Env
	}

	entries, err := parseKeyValues(c.StringSlice("config-entry"))
	if err != nil {
		return nil, fmt.Errorf("invalid --config-entry: %w", err)
	}
	configEntries := make(map[string]any)
	for k, v := range fileCfg.ConfigEntries {
		configEntries[k] = v
	}
	for k, v := range entries {
		configEntries[k] = v
	}
	if len(configEntries) == 0 {
		configEntries = nil
	}

	color := true
	if fileCfg.Color != nil {
		color = *fileCfg.Color
	}
	if c.Bool("no-runner-color") {
		color = false
	}

	parallelism := fileCfg.Parallelism
	if c.IsSet("parallelism") {
		parallelism = c.Int("parallelism")
	}

	junitXML := mergeString(c.String("junit-xml"), fileCfg.Reports.JUnitXML)
	htmlDir := mergeString(c.String("html-dir"), fileCfg.Reports.HTMLDir)
	htmlEntry := mergeString(c.String("html"), fileCfg.Reports.HTML)

	cfg := &types.RunConfig{
		JavaExecutable:   mergeString(c.String("java"), fileCfg.Java.Executable),
		Classpath:        mergeSlice(c.StringSlice("classpath"), fileCfg.Java.Classpath),
		JVMArgs:          mergeSlice(c.StringSlice("jvm-arg"), fileCfg.Java.Args),
		Environment:      env,
		WorkingDir:       mergeString(c.String("working-dir"), fileCfg.Java.WorkingDir),
		MaxParallelForks: parallelism,
		ColorOutput:      color,
		TestRoot:         mergeString(c.String("test-root"), fileCfg.TestRoot),
		IncludePatterns:  mergeSlice(c.StringSlice("pattern"), fileCfg.Patterns),
		TagIncludes:      mergeSlice(c.StringSlice("include-tag"), fileCfg.IncludeTags),
		TagExcludes:      mergeSlice(c.StringSlice("exclude-tag"), fileCfg.ExcludeTags),
		Suites:           mergeSlice(c.StringSlice("suite"), fileCfg.Suites),
		ConfigEntries:    configEntries,
		ResultFilePath:   mergeString(c.String("result-file"), fileCfg.Reports.ResultFile),
		OutputFilePath:   mergeString(c.String("output-file"), fileCfg.Reports.OutputFile),
		ErrorFilePath:    mergeString(c.String("error-file"), fileCfg.Reports.ErrorFile),
		Reports: types.ReportSettings{
			JUnitXMLEnabled:    junitXML != "",
			JUnitXMLEntryPoint: junitXML,
			HTMLEnabled:        htmlDir != "",
			HTMLEntryPoint:     htmlEntry,
			HTMLDestinationDir: htmlDir,
		},
		IgnoreFailures: c.Bool("ignore-failures") || fileCfg.IgnoreFailures,
	}
	return cfg, nil
}

// archiveArtifacts copies run artifacts to the configured destination.
func archiveArtifacts(ctx context.Context, c *cli.Context, fileCfg *config.Config, cfg *types.RunConfig, label string, logger *log.Logger, collector *metrics.Collector) {
	dest := mergeString(c.String("archive"), fileCfg.Archive.Dest)
	if dest == "" {
		return
	}

	archiver, err := buildArchiver(ctx, c, fileCfg, dest)
	if err != nil {
		collector.IncArchiveFailure()
		logger.Warn("failed to create archiver", map[string]any{"dest": dest, "error": err.Error()})
		return
	}

	paths := storage.CollectArtifacts(cfg)
	n, err := archiver.Archive(ctx, label, paths)
	if err != nil {
		collector.IncArchiveFailure()
		logger.Warn("artifact archive failed", map[string]any{"dest": dest, "error": err.Error()})
		return
	}

	collector.AddArtifactsArchived(int64(n))
	logger.Info("artifacts archived", map[string]any{"dest": dest, "count": n})
}

func buildArchiver(ctx context.Context, c *cli.Context, fileCfg *config.Config, dest string) (storage.Archiver, error) {
	backend, path, err := storage.ParseDest(dest)
	if err != nil {
		return nil, err
	}

	switch backend {
	case "fs":
		return storage.NewFSArchiver(path)
	case "s3":
		bucket, prefix := storage.ParseS3Path(path)
		return storage.NewS3Archiver(ctx, storage.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       mergeString(c.String("archive-region"), fileCfg.Archive.Region),
			Endpoint:     mergeString(c.String("archive-endpoint"), fileCfg.Archive.Endpoint),
			UsePathStyle: c.Bool("archive-path-style") || fileCfg.Archive.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown archive backend: %s", backend)
	}
}

// appendHistory records the run in the local history store.
func appendHistory(dir string, report *runtime.RunReport, startedAt time.Time, logger *log.Logger) {
	store, err := history.NewStore(dir)
	if err != nil {
		logger.Warn("failed to open history store", map[string]any{"dir": dir, "error": err.Error()})
		return
	}

	rec := history.Record{
		Label:      report.Label,
		Outcome:    string(report.Outcome),
		Message:    report.Message,
		ExitCode:   report.ExitCode,
		DurationMs: report.DurationMs,
		StartedAt:  startedAt,
	}
	if err := store.Append(rec); err != nil {
		logger.Warn("failed to append history record", map[string]any{"dir": dir, "error": err.Error()})
	}
}

// publishNotifications sends a completion event to every configured
// notifier. Notifiers are independent; one failing does not stop another.
func publishNotifications(ctx context.Context, c *cli.Context, fileCfg *config.Config, report *runtime.RunReport, logger *log.Logger, collector *metrics.Collector) {
	event := &notify.RunCompletedEvent{
		EventType:  "run_completed",
		Label:      report.Label,
		Outcome:    string(report.Outcome),
		Message:    report.Message,
		ExitCode:   report.ExitCode,
		DurationMs: report.DurationMs,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    types.Version,
	}

	type target struct {
		name  string
		dest  string
		build func() (notify.Notifier, error)
	}
	var targets []target

	if url := mergeString(c.String("webhook-url"), fileCfg.Webhook.URL); url != "" {
		targets = append(targets, target{"webhook", url, func() (notify.Notifier, error) {
			return buildWebhookNotifier(c, fileCfg, url)
		}})
	}
	if url := mergeString(c.String("redis-url"), fileCfg.Redis.URL); url != "" {
		targets = append(targets, target{"redis", url, func() (notify.Notifier, error) {
			return buildRedisNotifier(c, fileCfg, url)
		}})
	}

	for _, tgt := range targets {
		notifier, err := tgt.build()
		if err != nil {
			collector.IncNotifyFailure()
			logger.Warn("failed to create notifier", map[string]any{"notifier": tgt.name, "error": err.Error()})
			continue
		}
		if err := notifier.Publish(ctx, event); err != nil {
			collector.IncNotifyFailure()
			logger.Warn("notification publish failed", map[string]any{"notifier": tgt.name, "dest": tgt.dest, "error": err.Error()})
		} else {
			logger.Info("notification published", map[string]any{"notifier": tgt.name, "dest": tgt.dest})
		}
		_ = notifier.Close()
	}
}

func buildWebhookNotifier(c *cli.Context, fileCfg *config.Config, url string) (notify.Notifier, error) {
	headers, err := parseKeyValues(c.StringSlice("webhook-header"))
	if err != nil {
		return nil, fmt.Errorf("invalid webhook headers: %w", err)
	}
	if headers == nil {
		headers = fileCfg.Webhook.Headers
	}

	timeout := fileCfg.Webhook.Timeout.Duration
	if c.IsSet("webhook-timeout") {
		timeout = c.Duration("webhook-timeout")
	}
	retries := webhook.DefaultRetries
	if fileCfg.Webhook.Retries != nil {
		retries = *fileCfg.Webhook.Retries
	}
	if c.IsSet("webhook-retries") {
		retries = c.Int("webhook-retries")
	}

	return webhook.New(webhook.Config{
		URL:     url,
		Headers: headers,
		Timeout: timeout,
		Retries: retries,
	})
}

func buildRedisNotifier(c *cli.Context, fileCfg *config.Config, url string) (notify.Notifier, error) {
	retries := redis.DefaultRetries
	if fileCfg.Redis.Retries != nil {
		retries = *fileCfg.Redis.Retries
	}

	return redis.New(redis.Config{
		URL:     url,
		Channel: mergeString(c.String("redis-channel"), fileCfg.Redis.Channel),
		Timeout: fileCfg.Redis.Timeout.Duration,
		Retries: retries,
	})
}

func outcomeToExitCode(status types.OutcomeStatus) int {
	switch status {
	case types.OutcomeSuccess, types.OutcomeWarned:
		return exitSuccess
	default:
		return exitTestsFailed
	}
}

// mergeString returns the flag value if set, otherwise the file value.
func mergeString(flagVal, fileVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return fileVal
}

// mergeSlice returns the flag values if any, otherwise the file values.
func mergeSlice(flagVals, fileVals []string) []string {
	if len(flagVals) > 0 {
		return flagVals
	}
	return fileVals
}

// parseKeyValues parses repeated KEY=VALUE flags into a map.
// Returns nil for empty input so callers can distinguish "unset".
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected KEY=VALUE, got %q", pair)
		}
		m[key] = value
	}
	return m, nil
}
