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

package arguments

import (
	"time"

	"github.com/bubtools/bubprg/flasher"
	"github.com/spf13/cobra"
)

// Flags contains the session flags shared by the commands talking to a bub.
// This is useful so all commands accept the same overrides.
type Flags struct {
	Timeout    time.Duration
	CRCTimeout time.Duration
	Attempts   int
}

// AddToCommand adds the session flags to the specified Command
func (f *Flags) AddToCommand(cmd *cobra.Command) {
	cmd.Flags().DurationVarP(&f.Timeout, "timeout", "t", 0, "Response timeout for each command, e.g.: 500ms (default from config)")
	cmd.Flags().DurationVar(&f.CRCTimeout, "crc-timeout", 0, "Response timeout for the device CRC computation, e.g.: 20s (default from config)")
	cmd.Flags().IntVar(&f.Attempts, "attempts", 0, "Number of probes before giving up on the device (default from config)")
}

// Apply overrides the values of config with the flags that were set.
func (f *Flags) Apply(config flasher.Config) (flasher.Config, error) {
	if f.Timeout != 0 {
		config.CommandTimeout = f.Timeout
	}
	if f.CRCTimeout != 0 {
		config.CRCTimeout = f.CRCTimeout
	}
	if f.Attempts != 0 {
		config.ProbeAttempts = f.Attempts
	}
	return config, config.Validate()
}
