package main

/*------------------------------------------------------------------
 *
 * Purpose:	Command-line RDS group decoder.
 *
 * Inputs:	An unsynchronized ASCII bit stream ('0'/'1') or
 *		pre-synchronized hex groups on stdin.
 *
 * Outputs:	One JSON document per decoded group on stdout, and
 *		optionally the same records on an MQTT topic.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	redbone "github.com/doismellburning/redbone/src"
	"github.com/spf13/pflag"
)

func main() {
	var configPath = pflag.StringP("config", "c", "", "Read options from this YAML file.  Command-line flags override it.")
	var rbds = pflag.BoolP("rbds", "u", false, "Use North American (RBDS) program type names and attempt to decode the callsign.")
	var timestamp = pflag.BoolP("timestamp", "t", false, "Add an rx_time field to every group.")
	var timeFormat = pflag.String("time-format", "%Y-%m-%dT%H:%M:%S%z", "Timestamp format, in 'strftime' notation.")
	var showPartial = pflag.BoolP("show-partial", "p", false, "Show PS names, RadioText and AF lists before they are fully received.")
	var showRaw = pflag.BoolP("show-raw", "R", false, "Add a raw_data field with the group contents as hex.")
	var bler = pflag.BoolP("bler", "E", false, "Add a bler field, the percentage of erroneous blocks over the last 12 groups.")
	var numChannels = pflag.Int("channels", 1, "Number of channels in the bit stream, interleaved bit by bit.  With more than one, records carry a channel field.")
	var inputFormat = pflag.StringP("input", "i", "bits", `Input format.
bits: an unsynchronized stream of ASCII '0' and '1' characters.
hex:  one group per line as four hex blocks, missing blocks as "----".`)
	var tmcEvents = pflag.String("tmc-events", "", "Path to the semicolon-separated ALERT-C event list.")
	var tmcSuppl = pflag.String("tmc-suppl", "", "Path to the semicolon-separated ALERT-C supplementary information list.")
	var prometheusAddr = pflag.String("prometheus-addr", "", "Expose Prometheus metrics on this address, e.g. :9348.")
	var mqttBroker = pflag.String("mqtt-broker", "", "Also publish every record to this MQTT broker, e.g. tcp://localhost:1883.")
	var mqttTopic = pflag.String("mqtt-topic", "redbone/groups", "MQTT topic for published records.")
	var verbose = pflag.BoolP("verbose", "v", false, "Verbose.  Log per-line input problems.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Decode RDS groups from stdin to line-delimited JSON on stdout.\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	options := redbone.NewOptions()

	if *configPath != "" {
		if err := redbone.LoadOptionsFile(*configPath, options); err != nil {
			log.Fatal("Config file failed", "err", err)
		}
	}

	changed := pflag.CommandLine.Changed
	if changed("rbds") {
		options.RBDS = *rbds
	}
	if changed("timestamp") {
		options.Timestamp = *timestamp
	}
	if changed("time-format") {
		options.TimeFormat = *timeFormat
	}
	if changed("show-partial") {
		options.ShowPartial = *showPartial
	}
	if changed("show-raw") {
		options.ShowRaw = *showRaw
	}
	if changed("bler") {
		options.BLER = *bler
	}
	if changed("channels") {
		options.NumChannels = *numChannels
	}
	if changed("input") {
		format, ok := redbone.ParseInputFormat(*inputFormat)
		if !ok {
			log.Fatal("Unknown input format", "input", *inputFormat)
		}
		options.Input = format
	}
	if changed("tmc-events") {
		options.TMCEventPath = *tmcEvents
	}
	if changed("tmc-suppl") {
		options.TMCSupplPath = *tmcSuppl
	}
	if changed("prometheus-addr") {
		options.PrometheusAddr = *prometheusAddr
	}
	if changed("mqtt-broker") {
		options.MQTTBroker = *mqttBroker
	}
	if changed("mqtt-topic") {
		options.MQTTTopic = *mqttTopic
	}

	if options.NumChannels < 1 {
		log.Fatal("Need at least one channel", "channels", options.NumChannels)
	}

	var writer redbone.RecordWriter = redbone.NewJSONLinesWriter(os.Stdout)

	if options.MQTTBroker != "" {
		mqttWriter, err := redbone.NewMQTTWriter(options.MQTTBroker, options.MQTTTopic)
		if err != nil {
			log.Fatal("MQTT connection failed", "err", err)
		}
		log.Info("Publishing records to MQTT", "broker", options.MQTTBroker, "topic", options.MQTTTopic)
		writer = redbone.NewMultiRecordWriter(writer, mqttWriter)
	}

	channels := make([]*redbone.Channel, options.NumChannels)
	for i := range channels {
		channels[i] = redbone.NewChannel(options, i, writer)
	}

	if options.PrometheusAddr != "" {
		metrics := redbone.NewMetrics()
		for _, channel := range channels {
			channel.SetMetrics(metrics)
		}
		go func() {
			log.Info("Serving Prometheus metrics", "addr", options.PrometheusAddr)
			if err := metrics.Serve(options.PrometheusAddr); err != nil {
				log.Error("Metrics server failed", "err", err)
			}
		}()
	}

	var err error
	switch options.Input {
	case redbone.InputHex:
		err = runHex(channels[0])
	default:
		err = runBits(channels)
	}
	if err != nil {
		log.Fatal("Decoding failed", "err", err)
	}

	for _, channel := range channels {
		if err := channel.Flush(); err != nil {
			log.Fatal("Decoding failed", "err", err)
		}
	}
}

func runBits(channels []*redbone.Channel) error {
	reader := bufio.NewReader(os.Stdin)
	which := 0
	for {
		c, err := reader.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}

		switch c {
		case '0', '1':
			if err := channels[which].ProcessBit(c == '1'); err != nil {
				return err
			}
			which = (which + 1) % len(channels)
		default:
			// Whitespace and framing characters pass through silently.
		}
	}
}

func runHex(channel *redbone.Channel) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		group, err := redbone.ParseHexGroup(line)
		if err != nil {
			log.Debug("Skipping malformed group", "line", line, "err", err)
			continue
		}
		if err := channel.PushGroup(group); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}
