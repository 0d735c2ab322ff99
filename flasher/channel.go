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
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// noResponse replaces an empty reply in mismatch errors.
const noResponse = "(none)"

// Channel exchanges AT command lines with the bub.
type Channel struct {
	port Port
	// last read timeout applied to port, zero until the first exchange
	timeout time.Duration
}

// NewChannel wraps port. The channel does not own the port.
func NewChannel(port Port) *Channel {
	return &Channel{port: port}
}

// Send writes command and reads back a single line. When expected is not
// empty the reply must contain it, otherwise a *ProtocolMismatchError is
// returned together with the reply.
func (c *Channel) Send(command, expected string, timeout time.Duration) (string, error) {
	if err := c.prepare(command, timeout); err != nil {
		return "", err
	}

	deadline := time.Now().Add(timeout)
	res, _, err := c.readLine(deadline)
	if err != nil {
		err = fmt.Errorf("reading response to %s: %w", command, err)
		logrus.Error(err)
		return "", err
	}
	res = strings.TrimRight(res, " \t\r\n")
	logrus.Debugf("<< %s", res)

	if expected != "" && !strings.Contains(res, expected) {
		shown := res
		if shown == "" {
			shown = noResponse
		}
		return res, &ProtocolMismatchError{Command: command, Expected: expected, Response: shown}
	}
	return res, nil
}

// Query writes command and collects reply lines until one contains
// terminator or the device stays silent for timeout.
func (c *Channel) Query(command, terminator string, timeout time.Duration) ([]string, error) {
	if err := c.prepare(command, timeout); err != nil {
		return nil, err
	}

	var lines []string
	for {
		line, complete, err := c.readLine(time.Now().Add(timeout))
		if err != nil {
			err = fmt.Errorf("reading response to %s: %w", command, err)
			logrus.Error(err)
			return lines, err
		}
		line = strings.TrimRight(line, " \t\r\n")
		if line != "" {
			logrus.Debugf("<< %s", line)
		}
		if terminator != "" && strings.Contains(line, terminator) {
			return lines, nil
		}
		if line != "" {
			lines = append(lines, line)
		}
		if !complete {
			return lines, nil
		}
	}
}

// prepare sets the read timeout, drops stale input and writes the command line.
func (c *Channel) prepare(command string, timeout time.Duration) error {
	if c.timeout != timeout {
		if err := c.port.SetReadTimeout(timeout); err != nil {
			err = fmt.Errorf("could not set timeout on serial port: %w", err)
			logrus.Error(err)
			return err
		}
		c.timeout = timeout
	}

	if err := c.port.ResetInputBuffer(); err != nil {
		err = fmt.Errorf("flushing serial input: %w", err)
		logrus.Error(err)
		return err
	}

	logrus.Debugf(">> %s", command)
	data := []byte(command + "\n")
	for {
		sent, err := c.port.Write(data)
		if err != nil {
			err = fmt.Errorf("writing %s: %w", command, err)
			logrus.Error(err)
			return err
		}
		if sent == len(data) {
			return nil
		}
		logrus.Debugf("Sent %d bytes out of %d", sent, len(data))
		data = data[sent:]
	}
}

// readLine reads up to a line feed. complete is false when the port timed
// out or the deadline passed before the line feed arrived.
func (c *Channel) readLine(deadline time.Time) (line string, complete bool, err error) {
	var res []byte
	buf := make([]byte, 1)
	for {
		n, err := c.port.Read(buf)
		if err != nil {
			return string(res), false, err
		}
		if n == 0 {
			return string(res), false, nil
		}
		if buf[0] == '\n' {
			return string(res), true, nil
		}
		res = append(res, buf[0])
		if time.Now().After(deadline) {
			return string(res), false, nil
		}
	}
}
