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
	"fmt"
	"os"
	"strings"

	"github.com/arduino/arduino-cli/table"
	"github.com/bubtools/bubprg/cli/arguments"
	"github.com/bubtools/bubprg/cli/feedback"
	"github.com/bubtools/bubprg/cli/globals"
	"github.com/bubtools/bubprg/flasher"
	"github.com/spf13/cobra"
	semver "go.bug.st/relaxed-semver"
)

var sessionFlags arguments.Flags

// NewCommand created a new `info` command
func NewCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:     "info serial_if",
		Short:   "Shows the banner and the command set of a bub.",
		Long:    "Probes the AVR ISP bub on serial_if, then shows its banner, firmware version and supported commands.",
		Example: "  " + os.Args[0] + " info /dev/ttyUSB0",
		Args:    cobra.ExactArgs(1),
		Run:     run,
	}
	sessionFlags.AddToCommand(infoCmd)
	return infoCmd
}

func run(cmd *cobra.Command, args []string) {
	config, err := sessionFlags.Apply(globals.Config)
	if err != nil {
		feedback.Fatal(fmt.Sprintf("Invalid session settings: %s", err), feedback.ErrBadArgument)
		return
	}

	f, err := flasher.NewBubFlasher(args[0], config)
	if err != nil {
		feedback.Fatal(fmt.Sprintf("Error opening %s: %s", args[0], err), feedback.ErrGeneric)
		return
	}
	info, err := f.Identify()
	if err != nil {
		feedback.FatalError(err, feedback.ErrGeneric)
		return
	}
	feedback.PrintResult(newResult(args[0], info))
}

// Result is the outcome of the `info` command
type Result struct {
	Port     string                 `json:"port"`
	Banner   string                 `json:"banner"`
	Version  *semver.RelaxedVersion `json:"version,omitempty"`
	Commands []string               `json:"commands"`
	Missing  []string               `json:"missing,omitempty"`
}

func newResult(port string, info *flasher.DeviceInfo) *Result {
	return &Result{
		Port:     port,
		Banner:   info.Banner,
		Version:  info.Version,
		Commands: info.Commands,
		Missing:  info.Missing(),
	}
}

func (r *Result) String() string {
	version := ""
	if r.Version != nil {
		version = r.Version.String()
	}
	t := table.New()
	t.SetHeader("Port", "Banner", "Version")
	t.AddRow(r.Port, r.Banner, version)
	out := t.Render() + "\n" + strings.Join(r.Commands, "\n")
	if len(r.Missing) > 0 {
		out += "\nMissing commands: " + strings.Join(r.Missing, " ")
	}
	return out
}

// Data implements feedback.Result interface
func (r *Result) Data() interface{} {
	return r
}
