package tsp

import (
	"context"
	"strings"
	"time"

	"github.com/gotmc/query"
	"go.bug.st/serial"
)

// DefaultBaudRate matches the 2600-series factory RS-232 setting.
const DefaultBaudRate = 9600

// SerialTransport connects to an instrument's RS-232 interface through a
// local serial port.
type SerialTransport struct {
	portName     string
	baudRate     int
	queryTimeout time.Duration

	port serial.Port
}

var _ Transport = (*SerialTransport)(nil)
var _ query.Querier = (*SerialTransport)(nil)

// NewSerialTransport creates a serial transport for the given port name,
// e.g. "/dev/ttyUSB0" or "COM3". A baudRate of zero falls back to
// DefaultBaudRate; a queryTimeout of zero falls back to DefaultQueryTimeout.
func NewSerialTransport(portName string, baudRate int, queryTimeout time.Duration) *SerialTransport {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &SerialTransport{
		portName:     portName,
		baudRate:     baudRate,
		queryTimeout: queryTimeout,
	}
}

// SetQueryTimeout sets the reply read timeout, applied to the port when it
// is opened. Non-positive values are ignored.
func (t *SerialTransport) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		t.queryTimeout = d
	}
}

// Connect opens the serial port.
func (t *SerialTransport) Connect(_ context.Context) error {
	mode := &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(t.portName, mode)
	if err != nil {
		return err
	}
	if err := port.SetReadTimeout(t.queryTimeout); err != nil {
		port.Close()
		return err
	}

	t.port = port

	return nil
}

// WriteLine sends one newline-terminated command line.
func (t *SerialTransport) WriteLine(line string) error {
	if t.port == nil {
		return ErrNotConnected
	}

	_, err := t.port.Write([]byte(strings.TrimRight(line, "\r\n") + "\n"))

	return err
}

// Query sends one command line and reads back one reply line. A zero-byte
// read means the port's read timeout elapsed with no reply and surfaces as
// ErrTimeout.
func (t *SerialTransport) Query(cmd string) (string, error) {
	if t.port == nil {
		return "", ErrNotConnected
	}

	if err := t.WriteLine(cmd); err != nil {
		return "", err
	}

	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", ErrTimeout
		}
		if buf[0] == '\n' {
			break
		}
		line = append(line, buf[0])
	}

	return strings.TrimRight(string(line), "\r"), nil
}

// Close closes the serial port.
func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}

	err := t.port.Close()
	t.port = nil

	return err
}
