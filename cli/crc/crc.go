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

package crc

import (
	"fmt"
	"os"

	"github.com/arduino/go-paths-helper"
	"github.com/bubtools/bubprg/cli/feedback"
	"github.com/bubtools/bubprg/cli/globals"
	"github.com/bubtools/bubprg/flasher"
	"github.com/bubtools/bubprg/image"
	"github.com/spf13/cobra"
)

// NewCommand created a new `crc` command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "crc filename",
		Short: "Computes the CRC of an image without a device.",
		Long: "Loads a raw binary or Intel HEX image and prints the CRC-16 the bub would report " +
			"after flashing it, so it can be compared with a later AT+EE24CRC query.",
		Example: "  " + os.Args[0] + " crc eeprom.hex",
		Args:    cobra.ExactArgs(1),
		Run:     run,
	}
}

func run(cmd *cobra.Command, args []string) {
	if code := compute(args[0]); code != feedback.Success {
		os.Exit(int(code))
	}
}

func compute(location string) feedback.ExitCode {
	img, err := load(location)
	if err != nil {
		feedback.Error(fmt.Sprintf("Bad %s file\n%s", image.FormatName(location), err))
		return feedback.ErrGeneric
	}
	feedback.PrintResult(newResult(location, img))
	return feedback.Success
}

func load(location string) (*image.Image, error) {
	if !image.IsRemote(location) {
		return image.Load(paths.New(location))
	}
	file, err := image.Fetch(location, globals.DownloadPath)
	defer globals.DownloadPath.RemoveAll()
	if err != nil {
		return nil, err
	}
	return image.Load(file)
}

// Result is the outcome of the `crc` command
type Result struct {
	File    string `json:"file"`
	MinAddr int    `json:"min_address"`
	MaxAddr int    `json:"max_address"`
	Length  int    `json:"length"`
	CRC     string `json:"crc"`
}

func newResult(file string, img *image.Image) *Result {
	return &Result{
		File:    file,
		MinAddr: img.MinAddr(),
		MaxAddr: img.MaxAddr(),
		Length:  img.Len(),
		CRC:     flasher.FormatCRC(flasher.CRC16(img.Bytes())),
	}
}

func (r *Result) String() string {
	out := fmt.Sprintf("%s: %06x..%06x (%d bytes)\nFile CRC  : %s", r.File, r.MinAddr, r.MaxAddr, r.Length, r.CRC)
	if r.MinAddr != 0 {
		out += "\nImage does not start at 0, the device CRC will not match"
	}
	return out
}

// Data implements feedback.Result interface
func (r *Result) Data() interface{} {
	return r
}
