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
	"strings"

	"github.com/sirupsen/logrus"
	semver "go.bug.st/relaxed-semver"
	"golang.org/x/exp/slices"
)

// RequiredCommands are the command prefixes a transfer relies on.
var RequiredCommands = []string{
	"AT+BUFWR=",
	"AT+BUFCMP",
	"AT+BUFRDDISP=",
	"AT+EE24RD=",
	"AT+EE24WR=",
	"AT+EE24CRC=",
}

// DeviceInfo is what the bub tells about itself.
type DeviceInfo struct {
	Banner   string                 `json:"banner"`
	Version  *semver.RelaxedVersion `json:"version,omitempty"`
	Commands []string               `json:"commands"`
}

// Supports reports whether the device listed all the given commands.
func (i *DeviceInfo) Supports(commands ...string) bool {
	for _, command := range commands {
		if !slices.Contains(i.Commands, command) {
			return false
		}
	}
	return true
}

// Missing returns the required commands the device did not list.
func (i *DeviceInfo) Missing() []string {
	var missing []string
	for _, command := range RequiredCommands {
		if !slices.Contains(i.Commands, command) {
			missing = append(missing, command)
		}
	}
	return missing
}

// Identify probes the bub and queries its banner and command list.
// The port is closed when it returns.
func (f *BubFlasher) Identify() (*DeviceInfo, error) {
	defer f.Close()

	f.state = StateProbing
	if err := f.hello(); err != nil {
		f.state = StateFailed
		return nil, err
	}

	// ATI ends with OK too, it must be consumed before AT$ flushes the input
	lines, err := f.channel.Query(identCommand, statusOK, f.config.CommandTimeout)
	if err != nil {
		f.state = StateFailed
		return nil, err
	}
	banner := ""
	if len(lines) > 0 {
		banner = lines[0]
	}
	commands, err := f.channel.Query(listCommand, statusOK, f.config.CommandTimeout)
	if err != nil {
		f.state = StateFailed
		return nil, err
	}
	f.state = StateDone

	info := &DeviceInfo{
		Banner:   banner,
		Version:  parseBannerVersion(banner),
		Commands: commands,
	}
	logrus.Infof("Device: %s, %d commands", info.Banner, len(info.Commands))
	return info, nil
}

// parseBannerVersion extracts 1.0 from "AVR isp bub v1.0".
func parseBannerVersion(banner string) *semver.RelaxedVersion {
	fields := strings.Fields(banner)
	for i := len(fields) - 1; i >= 0; i-- {
		field := fields[i]
		if len(field) > 1 && (field[0] == 'v' || field[0] == 'V') && field[1] >= '0' && field[1] <= '9' {
			return semver.ParseRelaxed(field[1:])
		}
	}
	return nil
}
