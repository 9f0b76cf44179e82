package course_archiver

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAttempts        = 8
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
	DefaultYtDlpCommand    = "yt-dlp"
)

// Config holds the tunables that may be set from a TOML file. CLI flags override it.
type Config struct {
	// VideosRoot is where the <Type>s/<n>/ tree is created; empty means the parent of the static root.
	VideosRoot string       `toml:"videos_root"`
	Journal    string       `toml:"journal"`
	Direct     DirectConfig `toml:"direct"`
	YtDlp      YtDlpConfig  `toml:"yt_dlp"`
}

type DirectConfig struct {
	Attempts        int           `toml:"attempts"`
	InitialInterval time.Duration `toml:"initial_interval"`
	MaxInterval     time.Duration `toml:"max_interval"`
	// Timeout applies to each attempt; zero means no timeout.
	Timeout   time.Duration `toml:"timeout"`
	UserAgent string        `toml:"user_agent"`
}

type YtDlpConfig struct {
	Command string `toml:"command"`
}

func DefaultConfig() Config {
	return Config{
		Direct: DirectConfig{
			Attempts:        DefaultAttempts,
			InitialInterval: DefaultInitialInterval,
			MaxInterval:     DefaultMaxInterval,
		},
		YtDlp: YtDlpConfig{
			Command: DefaultYtDlpCommand,
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. A missing file is not an error when optional is set.
func LoadConfig(path string, optional bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return cfg, fmt.Errorf("%w: reading config %s: %v", ErrPrecondition, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%w: unknown config keys in %s: %v", ErrPrecondition, path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Direct.Attempts < 1 {
		return fmt.Errorf("%w: direct.attempts must be at least 1, got %d", ErrPrecondition, c.Direct.Attempts)
	}
	if c.Direct.InitialInterval < 0 || c.Direct.MaxInterval < 0 || c.Direct.Timeout < 0 {
		return fmt.Errorf("%w: negative duration in direct config", ErrPrecondition)
	}
	if c.YtDlp.Command == "" {
		return fmt.Errorf("%w: yt_dlp.command must not be empty", ErrPrecondition)
	}
	return nil
}
