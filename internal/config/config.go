// Package config loads gradbench settings from defaults, an optional
// config file, GRADBENCH_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/gradbench/internal/tensor"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Bench  BenchConfig  `mapstructure:"bench"`
	Device DeviceConfig `mapstructure:"device"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

type BenchConfig struct {
	Warmup int    `mapstructure:"warmup"`
	NLoops int    `mapstructure:"nloops"`
	Seed   int64  `mapstructure:"seed"`
	Size   int    `mapstructure:"size"`
	DType  string `mapstructure:"dtype"`
}

// DataType returns the tensor data type named by DType.
func (b BenchConfig) DataType() (tensor.DataType, error) {
	dt, ok := tensor.ParseDataType(b.DType)
	if !ok {
		return tensor.Float32, fmt.Errorf("invalid dtype %q (expected float32|float64)", b.DType)
	}
	return dt, nil
}

type DeviceConfig struct {
	Kind string `mapstructure:"kind"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	ArrowPath   string `mapstructure:"arrow_path"`
	MetricsPath string `mapstructure:"metrics_path"`
	JSON        bool   `mapstructure:"json"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"warmup", "bench.warmup"},
	{"nloops", "bench.nloops"},
	{"seed", "bench.seed"},
	{"size", "bench.size"},
	{"dtype", "bench.dtype"},
	{"device", "device.kind"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
	{"arrow-out", "output.arrow_path"},
	{"metrics-out", "output.metrics_path"},
	{"json", "output.json"},
}

func DefaultConfig() Config {
	return Config{
		Bench: BenchConfig{
			Warmup: 5,
			NLoops: 20,
			Seed:   0,
			Size:   4096,
			DType:  "float32",
		},
		Device: DeviceConfig{
			Kind: DeviceCPU,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.Int("warmup", defaults.Bench.Warmup, "Untimed iterations before measuring")
	fs.Int("nloops", defaults.Bench.NLoops, "Timed iterations")
	fs.Int64("seed", defaults.Bench.Seed, "Random seed for generated inputs")
	fs.Int("size", defaults.Bench.Size, "Number of elements in generated inputs")
	fs.String("dtype", defaults.Bench.DType, "Data type of generated inputs: float32|float64")
	fs.String("device", defaults.Device.Kind, "Timing device: cpu|webgpu")
	fs.String("log-level", defaults.Log.Level, "Log level: debug|info|warn|error")
	fs.String("log-format", defaults.Log.Format, "Log format: console|json")
	fs.String("arrow-out", defaults.Output.ArrowPath, "Write timings as an Arrow IPC stream to this path")
	fs.String("metrics-out", defaults.Output.MetricsPath, "Write Prometheus textfile metrics to this path")
	fs.Bool("json", defaults.Output.JSON, "Print timings as JSON instead of the text report")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("GRADBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("gradbench")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	kind, err := NormalizeDevice(cfg.Device.Kind)
	if err != nil {
		return Config{}, err
	}
	cfg.Device.Kind = kind

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("bench.warmup", c.Bench.Warmup)
	v.SetDefault("bench.nloops", c.Bench.NLoops)
	v.SetDefault("bench.seed", c.Bench.Seed)
	v.SetDefault("bench.size", c.Bench.Size)
	v.SetDefault("bench.dtype", c.Bench.DType)
	v.SetDefault("device.kind", c.Device.Kind)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("output.arrow_path", c.Output.ArrowPath)
	v.SetDefault("output.metrics_path", c.Output.MetricsPath)
	v.SetDefault("output.json", c.Output.JSON)
}

// bindFlags binds each registered flag to its dotted key. Unchanged flags
// only supply a fallback, so file and environment values still apply.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", fk.flag, err)
		}
	}
	return nil
}

// Validate reports the first setting that the benchmark cannot run with.
func (c Config) Validate() error {
	if c.Bench.Warmup < 0 {
		return fmt.Errorf("warmup must be non-negative, got %d", c.Bench.Warmup)
	}
	if c.Bench.NLoops < 0 {
		return fmt.Errorf("nloops must be non-negative, got %d", c.Bench.NLoops)
	}
	if c.Bench.Size < 1 {
		return fmt.Errorf("size must be at least 1, got %d", c.Bench.Size)
	}
	if _, err := c.Bench.DataType(); err != nil {
		return err
	}
	if _, err := NormalizeDevice(c.Device.Kind); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected console|json)", c.Log.Format)
	}
	return nil
}
