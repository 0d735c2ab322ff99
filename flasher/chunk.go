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
	"encoding/hex"
	"fmt"
)

// Image is a byte addressable payload covering [MinAddr, MaxAddr].
type Image interface {
	MinAddr() int
	MaxAddr() int
	At(address int) byte
}

// Chunk is a contiguous slice of an Image sent and verified as a unit.
type Chunk struct {
	Address int
	Size    int
}

func (c Chunk) String() string {
	return fmt.Sprintf("%06x+%d", c.Address, c.Size)
}

// planChunks splits [minAddr, maxAddr] in consecutive chunks of at most size bytes.
func planChunks(minAddr, maxAddr, size int) []Chunk {
	var chunks []Chunk
	for address := minAddr; address <= maxAddr; {
		n := min(size, maxAddr-address+1)
		chunks = append(chunks, Chunk{Address: address, Size: n})
		address += n
	}
	return chunks
}

// chunkData copies the bytes of c out of img in address order.
func chunkData(img Image, c Chunk) []byte {
	data := make([]byte, c.Size)
	for i := range data {
		data[i] = img.At(c.Address + i)
	}
	return data
}

// bub commands
func bufWriteCommand(data []byte) string {
	return "AT+BUFWR=" + hex.EncodeToString(data)
}

func eepromWriteCommand(address int) string {
	return fmt.Sprintf("AT+EE24WR=%06x", address)
}

func eepromReadCommand(address, size int) string {
	return fmt.Sprintf("AT+EE24RD=%06x,%d", address, size)
}

func eepromCRCCommand(length int) string {
	return fmt.Sprintf("AT+EE24CRC=%d", length)
}

const (
	probeCommand   = "AT+BUFRDDISP=0"
	compareCommand = "AT+BUFCMP"
	identCommand   = "ATI"
	listCommand    = "AT$"
	statusOK       = "OK"
)
