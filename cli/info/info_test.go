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

package info

import (
	"testing"

	"github.com/bubtools/bubprg/flasher"
	"github.com/stretchr/testify/require"
	semver "go.bug.st/relaxed-semver"
)

func TestResult(t *testing.T) {
	res := newResult("/dev/ttyUSB0", &flasher.DeviceInfo{
		Banner:   "AVR isp bub v1.0",
		Version:  semver.ParseRelaxed("1.0"),
		Commands: []string{"AT+BUFWR=", "AT+BUFCMP"},
	})
	require.Equal(t, "/dev/ttyUSB0", res.Port)
	require.Contains(t, res.Missing, "AT+EE24CRC=")
	require.NotContains(t, res.Missing, "AT+BUFCMP")

	out := res.String()
	require.Contains(t, out, "AVR isp bub v1.0")
	require.Contains(t, out, "AT+BUFWR=\nAT+BUFCMP")
	require.Contains(t, out, "Missing commands: ")
}

func TestResultComplete(t *testing.T) {
	res := newResult("COM3", &flasher.DeviceInfo{
		Banner:   "AVR isp bub",
		Commands: flasher.RequiredCommands,
	})
	require.Empty(t, res.Missing)
	require.NotContains(t, res.String(), "Missing")
}
