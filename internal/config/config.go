package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sigwatch/internal/components/configutil"
	"sigwatch/internal/components/telemetry"

	"dario.cat/mergo"
)

type SanderlingConfig struct {
	URL               string  `json:"url"`
	TimeoutMs         int     `json:"timeout_ms"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	// DumpDir, when set, receives one file per request made to the service.
	// It is emptied on startup.
	DumpDir string `json:"dump_dir"`
}

func (c SanderlingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type HandshakeConfig struct {
	PollIntervalMs int `json:"poll_interval_ms"`
	MaxIterations  int `json:"max_iterations"`
}

func (c HandshakeConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

type WatchConfig struct {
	PollIntervalMs int `json:"poll_interval_ms"`
	// ReconnectAfterFailures is the number of consecutive failed reads after
	// which the watcher drops its connection and handshakes again, 0 never
	// reconnects.
	ReconnectAfterFailures int `json:"reconnect_after_failures"`
}

func (c WatchConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

type ConsoleConfig struct {
	NoColor bool `json:"no_color"`
}

type EmailConfig struct {
	SmtpHost string   `json:"smtp_host"`
	SmtpPort int      `json:"smtp_port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
	// Watchlist restricts mails to events in these systems, names are
	// matched loosely so "jita" matches "Jita".
	Watchlist []string `json:"watchlist"`
	// WatchlistSimilarity is the lowest Jaro-Winkler similarity at which a
	// system counts as being on the watchlist.
	WatchlistSimilarity float64 `json:"watchlist_similarity"`
}

func (c EmailConfig) Enabled() bool {
	return c.SmtpHost != "" && len(c.To) > 0
}

type WebsocketConfig struct {
	// Listen is the address the websocket sink serves on, empty disables it.
	Listen string `json:"listen"`
}

type TelemetryConfig struct {
	telemetry.Config
	PerfStatsIntervalMs int `json:"perf_stats_interval_ms"`
}

func (c TelemetryConfig) PerfStatsInterval() time.Duration {
	return time.Duration(c.PerfStatsIntervalMs) * time.Millisecond
}

type MockServiceConfig struct {
	Port int `json:"port"`
	// SetupSteps is how many requests are answered with a setup not complete
	// response before the mock starts answering for real.
	SetupSteps int `json:"setup_steps"`
	// SearchSteps is how many ui root searches stay in progress.
	SearchSteps int `json:"search_steps"`
	// ClosedEvery makes every n-th text reading show a closed agency window.
	ClosedEvery int `json:"closed_every"`
}

type Config struct {
	Sanderling  SanderlingConfig  `json:"sanderling"`
	Handshake   HandshakeConfig   `json:"handshake"`
	Watch       WatchConfig       `json:"watch"`
	Console     ConsoleConfig     `json:"console"`
	Email       EmailConfig       `json:"email"`
	Websocket   WebsocketConfig   `json:"websocket"`
	Telemetry   TelemetryConfig   `json:"telemetry"`
	MockService MockServiceConfig `json:"mock_service"`
}

func Default() Config {
	return Config{
		Sanderling: SanderlingConfig{
			URL:               "http://localhost:80/api/",
			TimeoutMs:         30000,
			RequestsPerSecond: 4,
		},
		Handshake: HandshakeConfig{
			PollIntervalMs: 1000,
			MaxIterations:  100,
		},
		Watch: WatchConfig{
			PollIntervalMs: 10000,
		},
		Email: EmailConfig{
			SmtpPort:            587,
			WatchlistSimilarity: 0.95,
		},
		Telemetry: TelemetryConfig{
			PerfStatsIntervalMs: 30000,
		},
		MockService: MockServiceConfig{
			Port:        8080,
			SetupSteps:  2,
			SearchSteps: 2,
			ClosedEvery: 10,
		},
	}
}

// Validate rejects values that cannot be used even after defaults were
// filled in.
func (c Config) Validate() error {
	var errs []error
	if c.Sanderling.TimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("sanderling.timeout_ms must not be negative"))
	}
	if c.Sanderling.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("sanderling.requests_per_second must not be negative"))
	}
	if c.Handshake.PollIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("handshake.poll_interval_ms must not be negative"))
	}
	if c.Handshake.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("handshake.max_iterations must not be negative"))
	}
	if c.Watch.PollIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("watch.poll_interval_ms must not be negative"))
	}
	if c.Watch.ReconnectAfterFailures < 0 {
		errs = append(errs, fmt.Errorf("watch.reconnect_after_failures must not be negative"))
	}
	return errors.Join(errs...)
}

// Load reads the config file at path (plus its local override) and fills
// every unset field from Default. A bare file name is looked up from the
// working directory upwards. A missing file yields the defaults.
func Load(path string) (Config, error) {
	read := configutil.ReadConfig[Config]
	if filepath.Base(path) == path {
		read = configutil.ReadRecursively[Config]
	}
	cfg, err := read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	err = mergo.Merge(&cfg, Default())
	if err != nil {
		return Config{}, fmt.Errorf("merge defaults: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
