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

import "fmt"

// UpdateCRC16 folds data into a CRC-16/XMODEM accumulator
// (poly 0x1021, init 0, MSB first, no final xor).
func UpdateCRC16(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC16 computes the CRC-16/XMODEM of data.
func CRC16(data []byte) uint16 {
	return UpdateCRC16(0, data)
}

// FormatCRC renders crc the way the bub prints it.
func FormatCRC(crc uint16) string {
	return fmt.Sprintf("%04x", crc)
}
