package config

// ForkJoinConfig represents the forkjoin configuration file structure
type ForkJoinConfig struct {
	// Threads controls the size of the worker team
	Threads ThreadsConfig `yaml:"threads,omitempty" json:"threads,omitempty"`

	// Defaults contains default settings for CLI runs
	Defaults DefaultsConfig `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// ThreadsConfig controls the parallelism upper bound
type ThreadsConfig struct {
	// Num is the maximum number of threads; 0 means resolve from the
	// environment and fall back to GOMAXPROCS
	Num int `yaml:"num" json:"num"`
}

// DefaultsConfig contains default configuration values
type DefaultsConfig struct {
	// GrainSize is the default minimum chunk size for bench and plan
	GrainSize int64 `yaml:"grainSize,omitempty" json:"grainSize,omitempty"`

	// Elements is the default range length used by bench
	Elements int64 `yaml:"elements,omitempty" json:"elements,omitempty"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`
}
