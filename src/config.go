package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Optional YAML configuration file.
 *
 * Description:	Every key mirrors a command-line flag. Only keys that
 *		are present change anything, so the file can set site
 *		defaults and flags given on the command line still win.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	RBDS           *bool   `yaml:"rbds"`
	Timestamp      *bool   `yaml:"timestamp"`
	TimeFormat     *string `yaml:"time_format"`
	ShowPartial    *bool   `yaml:"show_partial"`
	ShowRaw        *bool   `yaml:"show_raw"`
	BLER           *bool   `yaml:"bler"`
	Channels       *int    `yaml:"channels"`
	Input          *string `yaml:"input"`
	TMCEvents      *string `yaml:"tmc_events"`
	TMCSuppl       *string `yaml:"tmc_suppl"`
	PrometheusAddr *string `yaml:"prometheus_addr"`
	MQTTBroker     *string `yaml:"mqtt_broker"`
	MQTTTopic      *string `yaml:"mqtt_topic"`
}

// LoadOptionsFile applies the configuration file at path on top of o.
// Unknown keys are an error; a typo that silently does nothing is
// worse than a refusal to start.
func LoadOptionsFile(path string, o *Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var config fileConfig
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if config.RBDS != nil {
		o.RBDS = *config.RBDS
	}
	if config.Timestamp != nil {
		o.Timestamp = *config.Timestamp
	}
	if config.TimeFormat != nil {
		o.TimeFormat = *config.TimeFormat
	}
	if config.ShowPartial != nil {
		o.ShowPartial = *config.ShowPartial
	}
	if config.ShowRaw != nil {
		o.ShowRaw = *config.ShowRaw
	}
	if config.BLER != nil {
		o.BLER = *config.BLER
	}
	if config.Channels != nil {
		o.NumChannels = *config.Channels
	}
	if config.Input != nil {
		format, ok := ParseInputFormat(*config.Input)
		if !ok {
			return fmt.Errorf("config %s: unknown input format %q", path, *config.Input)
		}
		o.Input = format
	}
	if config.TMCEvents != nil {
		o.TMCEventPath = *config.TMCEvents
	}
	if config.TMCSuppl != nil {
		o.TMCSupplPath = *config.TMCSuppl
	}
	if config.PrometheusAddr != nil {
		o.PrometheusAddr = *config.PrometheusAddr
	}
	if config.MQTTBroker != nil {
		o.MQTTBroker = *config.MQTTBroker
	}
	if config.MQTTTopic != nil {
		o.MQTTTopic = *config.MQTTTopic
	}
	return nil
}
