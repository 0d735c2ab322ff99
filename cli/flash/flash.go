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

package flash

import (
	"errors"
	"fmt"

	"github.com/arduino/go-paths-helper"
	"github.com/bubtools/bubprg/cli/feedback"
	"github.com/bubtools/bubprg/cli/globals"
	"github.com/bubtools/bubprg/flasher"
	"github.com/bubtools/bubprg/image"
)

// openFlasher opens the bub session, tests replace it with a scripted port.
var openFlasher = flasher.NewBubFlasher

// Run writes the image found at location to the EEPROM behind the bub on
// port and returns the process exit code.
func Run(port, location string, config flasher.Config) feedback.ExitCode {
	img, err := loadImage(location)
	if err != nil {
		feedback.Error(fmt.Sprintf("Bad %s file\n%s", image.FormatName(location), err))
		return feedback.ErrGeneric
	}
	feedback.Printf("Image spans %06x..%06x (%d bytes)\n", img.MinAddr(), img.MaxAddr(), img.Len())

	f, err := openFlasher(port, config)
	if err != nil {
		feedback.Error(fmt.Sprintf("Error opening %s: %s", port, err))
		return feedback.ErrGeneric
	}
	defer f.Close()
	if feedback.GetFormat() == feedback.Text {
		f.SetProgressCallback(printProgress)
	}

	res, err := f.FlashImage(img)
	var unresponsive *flasher.DeviceUnresponsiveError
	if errors.As(err, &unresponsive) {
		feedback.Error("avr isp bub not responding")
		return feedback.ErrGeneric
	}
	res.Port = port

	if err != nil {
		feedback.Print("Error!", err)
	}
	feedback.Print()
	feedback.PrintResult(res)
	feedback.Print("Done.")

	if err != nil {
		return feedback.ErrGeneric
	}
	return feedback.Success
}

// loadImage reads a local image or downloads a remote one first. Downloads
// are removed as soon as the image is in memory.
func loadImage(location string) (*image.Image, error) {
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

func printProgress(p flasher.Progress) {
	feedback.Printf("%06x %d %d / %d ( %d %%) %s  left\n", p.Address, p.Size, p.Sent, p.Total, p.Percent, p.Remaining)
}
