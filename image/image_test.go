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

package image

import (
	"bytes"
	"errors"
	"testing"

	"github.com/arduino/go-paths-helper"
	"github.com/marcinbor85/gohex"
	"github.com/stretchr/testify/require"
)

func writeHex(t *testing.T, file *paths.Path, segments map[uint32][]byte) {
	mem := gohex.NewMemory()
	for address, data := range segments {
		require.NoError(t, mem.AddBinary(address, data))
	}
	var buf bytes.Buffer
	require.NoError(t, mem.DumpIntelHex(&buf, 16))
	require.NoError(t, file.WriteFile(buf.Bytes()))
}

func TestLoadBinary(t *testing.T) {
	file := paths.New(t.TempDir()).Join("eeprom.bin")
	data := []byte{0x10, 0x20, 0x30, 0x40, 0x50}
	require.NoError(t, file.WriteFile(data))

	img, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, 0, img.MinAddr())
	require.Equal(t, 4, img.MaxAddr())
	require.Equal(t, 5, img.Len())
	require.Equal(t, byte(0x30), img.At(2))
	require.Equal(t, data, img.Bytes())
}

func TestLoadIntelHex(t *testing.T) {
	file := paths.New(t.TempDir()).Join("eeprom.hex")
	writeHex(t, file, map[uint32][]byte{
		0x100: {0x01, 0x02, 0x03},
		0x108: {0x0a, 0x0b},
	})

	img, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, 0x100, img.MinAddr())
	require.Equal(t, 0x109, img.MaxAddr())
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0xff, 0xff, 0xff, 0xff, 0xff, 0x0a, 0x0b}, img.Bytes())
	require.Equal(t, byte(0x0b), img.At(0x109))
}

func TestLoadUppercaseHexIsBinary(t *testing.T) {
	file := paths.New(t.TempDir()).Join("eeprom.HEX")
	content := []byte(":0100000042BD\n")
	require.NoError(t, file.WriteFile(content))

	img, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, 0, img.MinAddr())
	require.Equal(t, content, img.Bytes())
}

func TestLoadMalformedHex(t *testing.T) {
	file := paths.New(t.TempDir()).Join("broken.hex")
	require.NoError(t, file.WriteFile([]byte(":10000000zzzz\n")))

	img, err := Load(file)
	require.Nil(t, img)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, file.String(), loadErr.Path)
}

func TestLoadEmpty(t *testing.T) {
	file := paths.New(t.TempDir()).Join("empty.bin")
	require.NoError(t, file.WriteFile(nil))

	_, err := Load(file)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Contains(t, err.Error(), "image is empty")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(paths.New(t.TempDir()).Join("missing.bin"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestFormatName(t *testing.T) {
	require.Equal(t, "hex", FormatName("eeprom.hex"))
	require.Equal(t, "image", FormatName("eeprom.bin"))
	require.Equal(t, "image", FormatName("EEPROM.HEX"))
	require.Equal(t, "hex", FormatName("https://example.com/fw/eeprom.hex?rev=2"))
	require.Equal(t, "image", FormatName("https://example.com"))
	require.Equal(t, "image", FormatName(""))
}

func TestFromBytes(t *testing.T) {
	data := []byte{1, 2, 3}
	img := FromBytes(0x40, data)
	data[0] = 9
	require.Equal(t, 0x40, img.MinAddr())
	require.Equal(t, 0x42, img.MaxAddr())
	require.Equal(t, byte(1), img.At(0x40))
}
