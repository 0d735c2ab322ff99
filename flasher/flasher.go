/*
	bubprg
	Copyright (c) 2026 bubprg authors.  All right reserved.

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package flasher

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// BaudRate is the only speed the bub command UART runs at.
const BaudRate = 4800

// ProtocolMismatchError is returned when a device reply does not contain
// the expected status marker.
type ProtocolMismatchError struct {
	Command  string
	Expected string
	Response string
}

func (e *ProtocolMismatchError) Error() string {
	return fmt.Sprintf("expected %s, command was: %s, response was: %s", e.Expected, e.Command, e.Response)
}

// DeviceUnresponsiveError is returned when the probe never got an answer.
type DeviceUnresponsiveError struct {
	Attempts int
	Err      error
}

func (e *DeviceUnresponsiveError) Error() string {
	return fmt.Sprintf("avr isp bub not responding after %d attempts: %s", e.Attempts, e.Err)
}

func (e *DeviceUnresponsiveError) Unwrap() error {
	return e.Err
}

// Port is the part of a serial port the bub protocol needs.
// serial.Port satisfies it.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// Config holds the tunables of a bub session.
type Config struct {
	BaudRate       int           `yaml:"baud_rate"`
	ChunkSize      int           `yaml:"chunk_size"`
	ProbeAttempts  int           `yaml:"probe_attempts"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	CRCTimeout     time.Duration `yaml:"crc_timeout"`
}

// MaxChunkSize is the largest page the bub EEPROM write accepts.
const MaxChunkSize = 64

// DefaultConfig returns the settings the bub firmware is known to work with.
func DefaultConfig() Config {
	return Config{
		BaudRate:       BaudRate,
		ChunkSize:      MaxChunkSize,
		ProbeAttempts:  5,
		CommandTimeout: 500 * time.Millisecond,
		CRCTimeout:     20 * time.Second,
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if c.ChunkSize < 1 || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("chunk size %d out of range 1-%d", c.ChunkSize, MaxChunkSize)
	}
	if c.ProbeAttempts < 1 {
		return fmt.Errorf("probe attempts should be at least 1, got %d", c.ProbeAttempts)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("invalid command timeout %s", c.CommandTimeout)
	}
	if c.CRCTimeout <= 0 {
		return fmt.Errorf("invalid crc timeout %s", c.CRCTimeout)
	}
	return nil
}

func openSerial(portAddress string, baudRate int) (serial.Port, error) {
	port, err := serial.Open(portAddress, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		err = fmt.Errorf("opening serial port %s: %w", portAddress, err)
		logrus.Error(err)
		return nil, err
	}
	logrus.Infof("Opened port %s at %d", portAddress, baudRate)
	return port, nil
}

// ListPorts returns the serial ports available on the host.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		logrus.Error(err)
		return nil, err
	}
	return ports, nil
}
