package logger

// Config controls where logs go and how files rotate.
type Config struct {
	Level      string `mapstructure:"level"`
	FileName   string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
	// Stderr mirrors every entry to standard error.
	Stderr bool `mapstructure:"stderr"`
}

func DefaultConfig() *Config {
	return &Config{
		Level:      "INFO",
		FileName:   "./logs/rolldice.log",
		MaxSize:    100,
		MaxAge:     30,
		MaxBackups: 5,
		Compress:   true,
	}
}
