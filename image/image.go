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

// Package image loads the payload written to the bub EEPROM, either a raw
// binary placed at address 0 or an Intel HEX file.
package image

import (
	"fmt"
	"net/url"

	"github.com/arduino/go-paths-helper"
	"github.com/marcinbor85/gohex"
	"github.com/sirupsen/logrus"
)

// Padding fills the holes between Intel HEX segments, as in erased memory.
const Padding = 0xff

// LoadError is returned when an image file can't be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("bad image file %s: %s", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Image is an immutable, contiguous view of [MinAddr, MaxAddr].
type Image struct {
	minAddr int
	data    []byte
}

// MinAddr is the lowest address holding data.
func (i *Image) MinAddr() int {
	return i.minAddr
}

// MaxAddr is the highest address holding data.
func (i *Image) MaxAddr() int {
	return i.minAddr + len(i.data) - 1
}

// Len is the number of bytes between MinAddr and MaxAddr included.
func (i *Image) Len() int {
	return len(i.data)
}

// At returns the byte at address, which must be in [MinAddr, MaxAddr].
func (i *Image) At(address int) byte {
	return i.data[address-i.minAddr]
}

// Bytes returns a copy of the whole range.
func (i *Image) Bytes() []byte {
	return append([]byte(nil), i.data...)
}

// IsIntelHex tells whether file is parsed as Intel HEX. The match on the
// extension is case sensitive.
func IsIntelHex(file *paths.Path) bool {
	return file.Ext() == ".hex"
}

// FormatName names the format location is loaded as, "hex" or "image".
func FormatName(location string) string {
	if IsRemote(location) {
		if u, err := url.Parse(location); err == nil {
			location = u.Path
		}
	}
	if location != "" && IsIntelHex(paths.New(location)) {
		return "hex"
	}
	return "image"
}

// Load reads file as Intel HEX or raw binary depending on its extension.
func Load(file *paths.Path) (*Image, error) {
	mem := gohex.NewMemory()
	if IsIntelHex(file) {
		logrus.Debugf("Parsing Intel HEX %s", file)
		f, err := file.Open()
		if err != nil {
			return nil, &LoadError{Path: file.String(), Err: err}
		}
		defer f.Close()
		if err := mem.ParseIntelHex(f); err != nil {
			err = &LoadError{Path: file.String(), Err: err}
			logrus.Error(err)
			return nil, err
		}
	} else {
		logrus.Debugf("Reading binary %s", file)
		data, err := file.ReadFile()
		if err != nil {
			return nil, &LoadError{Path: file.String(), Err: err}
		}
		if err := mem.AddBinary(0, data); err != nil {
			return nil, &LoadError{Path: file.String(), Err: err}
		}
	}

	img, err := fromMemory(mem)
	if err != nil {
		err = &LoadError{Path: file.String(), Err: err}
		logrus.Error(err)
		return nil, err
	}
	logrus.Infof("Loaded %s: %06x-%06x (%d bytes)", file, img.MinAddr(), img.MaxAddr(), img.Len())
	return img, nil
}

// FromBytes builds an image holding data from address base.
func FromBytes(base int, data []byte) *Image {
	return &Image{minAddr: base, data: append([]byte(nil), data...)}
}

func fromMemory(mem *gohex.Memory) (*Image, error) {
	segments := mem.GetDataSegments()
	first, last := uint32(0), uint32(0)
	found := false
	for _, segment := range segments {
		if len(segment.Data) == 0 {
			continue
		}
		end := segment.Address + uint32(len(segment.Data)) - 1
		if !found || segment.Address < first {
			first = segment.Address
		}
		if !found || end > last {
			last = end
		}
		found = true
	}
	if !found {
		return nil, fmt.Errorf("image is empty")
	}
	return &Image{
		minAddr: int(first),
		data:    mem.ToBinary(first, last-first+1, Padding),
	}, nil
}
