package stream

import (
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// SerialConfig specifies a serial device.
type SerialConfig struct {
	Device   string
	BaudRate int
}

// DefaultBaudRate is used when SerialConfig.BaudRate is zero.
const DefaultBaudRate = 115200

// OpenSerial opens a serial device as 8N1.
func OpenSerial(conf SerialConfig) (serial.Port, error) {
	baud := conf.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(conf.Device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial %s", conf.Device)
	}
	return port, nil
}

// SerialPorts lists the serial devices on the system.
func SerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	return ports, errors.Wrap(err, "list serial ports")
}
