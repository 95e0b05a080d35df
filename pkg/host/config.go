// Package host runs a console on a host machine against a simulated board.
package host

import (
	"flag"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/pinsh/pkg/console"
	"github.com/robotalks/pinsh/pkg/hal/stream"
)

// Transports selectable with -transport.
const (
	TransportStdio     = "stdio"
	TransportSerial    = "serial"
	TransportWebsocket = "ws"
	TransportMQTT      = "mqtt"
)

// Config defines how the console is exposed.
type Config struct {
	Transport string

	// Device and BaudRate select the serial port.
	Device   string
	BaudRate int

	// Listen is the websocket listen address.
	Listen string

	// MQTTBrokerURL specifies the MQTT broker to use,
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// DeviceID names the console in MQTT topics.
	DeviceID string
	// Events publishes command records over MQTT.
	Events bool

	ChipSelect int
	ClockHz    uint
	// RealTime makes delay block on the system clock.
	RealTime bool
}

var defaultConfig = Config{
	Transport:     TransportStdio,
	BaudRate:      stream.DefaultBaudRate,
	Listen:        ":8080",
	MQTTBrokerURL: "mqtt://localhost:1883/pinsh/",
	ChipSelect:    console.DefaultChipSelect,
	ClockHz:       uint(console.DefaultClockHz),
	RealTime:      true,
}

func init() {
	if val := os.Getenv("PINSH_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Transport, "transport", defaultConfig.Transport, "Console transport: stdio, serial, ws or mqtt.")
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Websocket listen address.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID in MQTT topics, defaults to the machine ID.")
	flag.BoolVar(&defaultConfig.Events, "events", defaultConfig.Events, "Publish command events over MQTT.")
	flag.IntVar(&defaultConfig.ChipSelect, "cs", defaultConfig.ChipSelect, "SPI chip-select pin.")
	flag.UintVar(&defaultConfig.ClockHz, "spi-clock", defaultConfig.ClockHz, "SPI clock (Hz).")
	flag.BoolVar(&defaultConfig.RealTime, "realtime", defaultConfig.RealTime, "Block on delay using the system clock.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Options returns the console options.
func (c *Config) Options() console.Options {
	opts := console.DefaultOptions()
	opts.ChipSelect = c.ChipSelect
	opts.ClockHz = uint32(c.ClockHz)
	return opts
}

// DeviceName returns the configured device ID or the machine ID.
func (c *Config) DeviceName() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	id, err := machineid.ProtectedID("pinsh")
	if err != nil {
		glog.Warningf("machine id: %v", err)
		return "pinsh"
	}
	return id
}
