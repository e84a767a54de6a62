package config

import (
	"fmt"
	"time"
)

// Config represents a scalarun.yaml configuration file.
// All values are optional and act as defaults for scalarun run flags.
// CLI flags always override config values.
type Config struct {
	Java          JavaConfig     `yaml:"java"`
	TestRoot      string         `yaml:"test_root"`
	Patterns      []string       `yaml:"patterns"`
	Suites        []string       `yaml:"suites"`
	IncludeTags   []string       `yaml:"include_tags"`
	ExcludeTags   []string       `yaml:"exclude_tags"`
	Parallelism   int            `yaml:"parallelism"`
	Color         *bool          `yaml:"color,omitempty"`
	ConfigEntries map[string]any `yaml:"config_entries,omitempty"`
	Reports       ReportsConfig  `yaml:"reports"`
	IgnoreFailures bool          `yaml:"ignore_failures"`
	Archive       ArchiveConfig  `yaml:"archive"`
	HistoryDir    string         `yaml:"history_dir"`
	Webhook       WebhookConfig  `yaml:"webhook"`
	Redis         RedisConfig    `yaml:"redis"`
}

// JavaConfig holds JVM launch defaults from the config file.
type JavaConfig struct {
	Executable string            `yaml:"executable"`
	Classpath  []string          `yaml:"classpath"`
	Args       []string          `yaml:"args"`
	Env        map[string]string `yaml:"env,omitempty"`
	WorkingDir string            `yaml:"working_dir"`
}

// ReportsConfig holds report output defaults from the config file.
type ReportsConfig struct {
	JUnitXML   string `yaml:"junit_xml"`
	HTML       string `yaml:"html"`
	HTMLDir    string `yaml:"html_dir"`
	ResultFile string `yaml:"result_file"`
	OutputFile string `yaml:"output_file"`
	ErrorFile  string `yaml:"error_file"`
}

// ArchiveConfig holds artifact archiving defaults from the config file.
type ArchiveConfig struct {
	Dest        string `yaml:"dest"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// WebhookConfig holds completion-webhook defaults from the config file.
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// RedisConfig holds Redis pub/sub notification defaults from the config file.
type RedisConfig struct {
	URL     string   `yaml:"url"`
	Channel string   `yaml:"channel,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
	Retries *int     `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
