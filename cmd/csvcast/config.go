package main

import (
	"fmt"

	"github.com/spf13/viper"
)

type rewriteConfig struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`

	In struct {
		Comma   string `mapstructure:"comma"`
		Quote   string `mapstructure:"quote"`
		Comment string `mapstructure:"comment"`
	} `mapstructure:"in"`

	Out struct {
		Comma   string `mapstructure:"comma"`
		Quote   string `mapstructure:"quote"`
		Quoting string `mapstructure:"quoting"`
		CRLF    bool   `mapstructure:"crlf"`
	} `mapstructure:"out"`

	DropComments bool `mapstructure:"drop_comments"`
	DropBlank    bool `mapstructure:"drop_blank"`
}

func loadConfig(path string) (*rewriteConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("in.comma", ",")
	v.SetDefault("in.quote", `"`)
	v.SetDefault("in.comment", "#")
	v.SetDefault("out.comma", ",")
	v.SetDefault("out.quote", `"`)
	v.SetDefault("out.quoting", "minimal")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg rewriteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Input == "" {
		return nil, fmt.Errorf("config: input path is required")
	}
	for name, b := range map[string]string{
		"in.comma":   cfg.In.Comma,
		"in.quote":   cfg.In.Quote,
		"in.comment": cfg.In.Comment,
		"out.comma":  cfg.Out.Comma,
		"out.quote":  cfg.Out.Quote,
	} {
		if len(b) != 1 {
			return nil, fmt.Errorf("config: %s must be a single byte, got %q", name, b)
		}
	}

	return &cfg, nil
}
