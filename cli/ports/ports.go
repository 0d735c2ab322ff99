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

package ports

import (
	"os"

	"github.com/arduino/arduino-cli/table"
	"github.com/bubtools/bubprg/cli/feedback"
	"github.com/bubtools/bubprg/flasher"
	"github.com/spf13/cobra"
)

// NewCommand created a new `ports` command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ports",
		Short:   "Lists the serial ports a bub could be attached to.",
		Long:    "Lists the serial ports found on this system.",
		Example: "  " + os.Args[0] + " ports",
		Args:    cobra.NoArgs,
		Run:     run,
	}
}

func run(cmd *cobra.Command, args []string) {
	list, err := flasher.ListPorts()
	if err != nil {
		feedback.FatalError(err, feedback.ErrGeneric)
		return
	}
	feedback.PrintResult(Result(list))
}

// Result is the list of detected serial ports
type Result []string

func (r Result) String() string {
	if len(r) == 0 {
		return "No serial ports found."
	}
	t := table.New()
	t.SetHeader("Port")
	for _, port := range r {
		t.AddRow(port)
	}
	return t.Render()
}

// Data implements feedback.Result interface
func (r Result) Data() interface{} {
	return r
}
