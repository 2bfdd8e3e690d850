package main

import (
	"io"

	"github.com/spf13/viper"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/codec"
	"github.com/ankit-chaubey/media-metadata-convert/core/convert"
	"github.com/ankit-chaubey/media-metadata-convert/core/xmppacket"
)

const (
	flagLogLevel = "log-level"
	flagJSON     = "json"
	flagFrom     = "from"
	flagTo       = "to"
	flagKind     = "kind"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`
	JSON     bool   `mapstructure:"json" yaml:"json"`
}

func newConfig() (*CLIConfig, error) {
	var cfg CLIConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// services bundles what the commands need, built from the current config.
type services struct {
	codec     *codec.Codec
	tc        *xmppacket.RoundTrip
	converter *convert.Converter
	printer   *core.Printer
}

func newServices(out io.Writer) *services {
	c := codec.New(codec.WithLogger(log.Named("codec")))
	tc := xmppacket.NewRoundTrip(c, c, xmppacket.WithLogger(log.Named("xmp")))
	conv := convert.New(convert.WithLogger(log.Named("convert")), convert.WithTranscoder(tc))
	return &services{
		codec:     c,
		tc:        tc,
		converter: conv,
		printer:   &core.Printer{JSON: config != nil && config.JSON, Writer: out},
	}
}
