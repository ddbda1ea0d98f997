package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"shroud/stegano/img"
	"shroud/stegano/payload"
	"shroud/util"
)

const (
	DefaultOutputSuffix = "_embed"
)

/*
 * Configuration for steganography: how the payload is framed and which
 * embedding variant is used per carrier format.
 */
type SteganoConfig struct {
	LengthBytes  int    `yaml:"length_bytes"`  // size of the payload length header
	PointFilter  string `yaml:"point_filter"`  // homogeneous or none
	GIFMethod    string `yaml:"gif_method"`    // sorted or shuffle
	JPEGQuality  int    `yaml:"jpeg_quality"`  // quality of the re-encoded JPEG
	OutputSuffix string `yaml:"output_suffix"` // appended to the carrier name
}

type FullConfig struct {
	StegConfig SteganoConfig   `yaml:"steganography_config"`
	Logger     util.LoggerInfo `yaml:"logger_config"`
	Debug      bool            `yaml:"debug"`
}

func DefaultConfig() *FullConfig {
	return &FullConfig{
		StegConfig: SteganoConfig{
			LengthBytes:  payload.DefaultLengthBytes,
			PointFilter:  img.FilterHomogeneous.String(),
			GIFMethod:    img.GIFSorted.String(),
			JPEGQuality:  img.DefaultJPEGQuality,
			OutputSuffix: DefaultOutputSuffix,
		},
		Logger: util.LoggerInfo{
			IsColored: true,
			Mode:      util.DefaultMode,
		},
	}
}

func (c *FullConfig) Validate() error {
	s := c.StegConfig
	if s.LengthBytes < 1 || s.LengthBytes > payload.MaxLengthBytes {
		return fmt.Errorf("length_bytes must be between 1 and %d, got %d", payload.MaxLengthBytes, s.LengthBytes)
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", s.JPEGQuality)
	}
	if _, err := img.ParseFilterKind(s.PointFilter); err != nil {
		return err
	}
	if _, err := img.ParseGIFMethod(s.GIFMethod); err != nil {
		return err
	}
	return nil
}

// ImageOptions converts the steganography section into embedding options.
func (c *FullConfig) ImageOptions() (img.Options, error) {
	if err := c.Validate(); err != nil {
		return img.Options{}, err
	}
	filter, _ := img.ParseFilterKind(c.StegConfig.PointFilter)
	method, _ := img.ParseGIFMethod(c.StegConfig.GIFMethod)
	return img.Options{
		Filter:      filter,
		GIF:         method,
		JPEGQuality: c.StegConfig.JPEGQuality,
	}, nil
}

/*
 * Functions for loading and saving configuration in YAML format.
 * An empty password keeps the file in plaintext.
 */
func LoadConfig(filename string, password string) (*FullConfig, error) {
	data, err := util.ReadEncrypted(filename, password)
	if err != nil {
		return nil, err
	}

	conf := DefaultConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", filename, err)
	}
	return conf, nil
}

func SaveConfig(filename string, password string, c *FullConfig) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return util.WriteEncrypted(filename, password, data)
}
