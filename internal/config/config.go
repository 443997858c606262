package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aryankumar/forkjoin/internal/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = ".forkjoin"
	defaultConfigDir  = ".forkjoin"

	// EnvPrefix is the prefix of every environment variable read by the manager
	EnvPrefix = "FORKJOIN"

	// EnvNumThreads overrides the thread count for the whole process
	EnvNumThreads = "FORKJOIN_NUM_THREADS"

	// EnvOMPNumThreads is honoured when EnvNumThreads is unset
	EnvOMPNumThreads = "OMP_NUM_THREADS"

	DefaultGrainSize    int64 = 32768
	DefaultElements     int64 = 1 << 22
	DefaultOutputFormat       = "table"
)

// Manager handles forkjoin configuration
type Manager struct {
	configPath string
	fileUsed   string
	config     *ForkJoinConfig
	viper      *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
		config:     &ForkJoinConfig{},
	}
}

// Load loads the forkjoin configuration from file and environment
func (m *Manager) Load() (*ForkJoinConfig, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		// Check ~/.forkjoin/.forkjoin.yaml, then ~/.forkjoin.yaml
		m.viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	// FORKJOIN_THREADS_NUM, FORKJOIN_DEFAULTS_GRAINSIZE, ...
	m.viper.SetEnvPrefix(EnvPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()
	m.setDefaults()

	m.config = &ForkJoinConfig{}

	if err := m.viper.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		m.fileUsed = m.viper.ConfigFileUsed()
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.applyDefaults()

	if err := Validate(m.config); err != nil {
		return nil, err
	}

	return m.config, nil
}

// Save saves the current configuration to file
func (m *Manager) Save() error {
	if m.configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		m.configPath = filepath.Join(home, defaultConfigDir, defaultConfigName+".yaml")
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	m.viper.Set("threads.num", m.config.Threads.Num)
	m.viper.Set("defaults.grainSize", m.config.Defaults.GrainSize)
	m.viper.Set("defaults.elements", m.config.Defaults.Elements)
	m.viper.Set("defaults.outputFormat", m.config.Defaults.OutputFormat)
	m.viper.Set("defaults.noColor", m.config.Defaults.NoColor)

	if err := m.viper.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BindPFlag makes a command-line flag override the config key when the flag
// is set. Bindings must be made before Load.
func (m *Manager) BindPFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("%w: no flag bound to %q", util.ErrInvalidArgument, key)
	}
	return m.viper.BindPFlag(key, flag)
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *ForkJoinConfig {
	return m.config
}

// ConfigFileUsed returns the path of the file Load read, or "" when no file
// was found
func (m *Manager) ConfigFileUsed() string {
	return m.fileUsed
}

// SetNumThreads updates the configured thread count
func (m *Manager) SetNumThreads(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %w", util.ErrInvalidConfig,
			util.NewValidationError("threads.num", n, "must be non-negative"))
	}
	m.config.Threads.Num = n
	return nil
}

// NumThreads returns the effective thread count for this configuration
func (m *Manager) NumThreads() int {
	return ResolveNumThreads(m.config.Threads.Num)
}

func (m *Manager) setDefaults() {
	m.viper.SetDefault("threads.num", 0)
	m.viper.SetDefault("defaults.grainSize", DefaultGrainSize)
	m.viper.SetDefault("defaults.elements", DefaultElements)
	m.viper.SetDefault("defaults.outputFormat", DefaultOutputFormat)
	m.viper.SetDefault("defaults.noColor", false)
}

// applyDefaults sets default values for zero-valued fields
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	if m.config.Defaults.GrainSize == 0 {
		m.config.Defaults.GrainSize = DefaultGrainSize
	}

	if m.config.Defaults.Elements == 0 {
		m.config.Defaults.Elements = DefaultElements
	}

	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = DefaultOutputFormat
	}
}

// Validate checks a configuration for values the runtime cannot use
func Validate(cfg *ForkJoinConfig) error {
	var errs util.MultiError

	if cfg.Threads.Num < 0 {
		errs.Add(util.NewValidationError("threads.num", cfg.Threads.Num, "must be non-negative"))
	}
	if cfg.Defaults.GrainSize < 0 {
		errs.Add(util.NewValidationError("defaults.grainSize", cfg.Defaults.GrainSize, "must be non-negative"))
	}
	if cfg.Defaults.Elements < 0 {
		errs.Add(util.NewValidationError("defaults.elements", cfg.Defaults.Elements, "must be non-negative"))
	}
	switch cfg.Defaults.OutputFormat {
	case "", "table", "json", "yaml":
	default:
		errs.Add(util.NewValidationError("defaults.outputFormat", cfg.Defaults.OutputFormat, "must be one of table, json, yaml"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", util.ErrInvalidConfig, err)
	}
	return nil
}

// ResolveNumThreads returns configured when it is positive, otherwise the
// first positive value of FORKJOIN_NUM_THREADS or OMP_NUM_THREADS, otherwise
// GOMAXPROCS.
func ResolveNumThreads(configured int) int {
	if configured > 0 {
		return configured
	}

	if n := EnvNumThreadsOverride(); n > 0 {
		return n
	}

	return runtime.GOMAXPROCS(0)
}

// EnvNumThreadsOverride returns the thread count requested through the
// environment, or 0 when neither variable holds a positive integer.
func EnvNumThreadsOverride() int {
	v := viper.New()
	for _, key := range []string{EnvNumThreads, EnvOMPNumThreads} {
		if err := v.BindEnv(strings.ToLower(key), key); err != nil {
			continue
		}
		if n := v.GetInt(strings.ToLower(key)); n > 0 {
			return n
		}
	}
	return 0
}

// LookupEnvThreads returns the raw values of FORKJOIN_NUM_THREADS and
// OMP_NUM_THREADS, empty when unset.
func LookupEnvThreads() (forkjoin, omp string) {
	v := viper.New()
	_ = v.BindEnv("forkjoin", EnvNumThreads)
	_ = v.BindEnv("omp", EnvOMPNumThreads)
	return v.GetString("forkjoin"), v.GetString("omp")
}
