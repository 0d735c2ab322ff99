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
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fakeBub emulates the bub firmware behind a Port. Replies are queued as
// soon as a command line is written; an empty queue reads as a timeout.
type fakeBub struct {
	pending  []byte
	line     []byte
	log      []string
	timeouts []time.Duration
	resets   int
	closed   bool

	// mute drops every command without answering
	mute bool
	// override can answer a command instead of the emulated firmware
	override func(command string) (reply []string, handled bool)
	// slowTail holds back the last line of multi-line replies, as the UART
	// does at 4800 baud: it shows up on the next idle read or right after
	// the next input flush
	slowTail bool
	tail     []byte
	// readErr is returned by every Read once set
	readErr error

	wbuf     []byte
	rbuf     []byte
	eeprom   []byte
	bufdisp  bool
	banner   string
	commands []string
}

func newFakeBub() *fakeBub {
	eeprom := bytes.Repeat([]byte{0xff}, 0x10000)
	return &fakeBub{
		eeprom:  eeprom,
		bufdisp: true,
		banner:  "AVR isp bub v1.0",
		commands: []string{
			"AT+BUFWR=", "AT+BUFRD", "AT+BUFRDLEN", "AT+BUFSWAP", "AT+BUFCMP", "AT+BUFRDDISP=",
			"AT+I2CADR=", "AT+EE24RD=", "AT+EE24WR=", "AT+EE24CRC=",
		},
	}
}

func (b *fakeBub) Read(p []byte) (int, error) {
	if b.readErr != nil {
		return 0, b.readErr
	}
	if len(b.pending) == 0 {
		b.pending, b.tail = b.tail, nil
	}
	if len(b.pending) == 0 {
		return 0, nil
	}
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	return n, nil
}

func (b *fakeBub) Write(p []byte) (int, error) {
	for _, c := range p {
		switch c {
		case '\n':
			b.handle(string(b.line))
			b.line = b.line[:0]
		case '\r':
		default:
			b.line = append(b.line, c)
		}
	}
	return len(p), nil
}

func (b *fakeBub) SetReadTimeout(t time.Duration) error {
	b.timeouts = append(b.timeouts, t)
	return nil
}

func (b *fakeBub) ResetInputBuffer() error {
	b.pending, b.tail = b.tail, nil
	b.resets++
	return nil
}

func (b *fakeBub) Close() error {
	b.closed = true
	return nil
}

// queue appends raw bytes to the read side, as if the device sent them.
func (b *fakeBub) queue(s string) {
	b.pending = append(b.pending, s...)
}

// sent returns the logged commands starting with prefix.
func (b *fakeBub) sent(prefix string) []string {
	var res []string
	for _, command := range b.log {
		if strings.HasPrefix(command, prefix) {
			res = append(res, command)
		}
	}
	return res
}

func (b *fakeBub) handle(command string) {
	b.log = append(b.log, command)
	if b.mute {
		return
	}
	reply, handled := []string(nil), false
	if b.override != nil {
		reply, handled = b.override(command)
	}
	if !handled {
		reply = b.execute(command)
	}
	if b.slowTail && len(reply) > 1 {
		b.tail = append(b.tail, reply[len(reply)-1]+"\r\n"...)
		reply = reply[:len(reply)-1]
	}
	for _, line := range reply {
		b.queue(line + "\r\n")
	}
}

func (b *fakeBub) execute(command string) []string {
	ok := []string{"OK"}
	fail := []string{"ERROR"}
	switch {
	case command == "AT+BUFRDDISP=0":
		b.bufdisp = false
		return ok
	case command == "AT+BUFRDDISP=1":
		b.bufdisp = true
		return ok
	case strings.HasPrefix(command, "AT+BUFWR="):
		data, err := hex.DecodeString(strings.TrimPrefix(command, "AT+BUFWR="))
		if err != nil || len(data) > 128 {
			return fail
		}
		b.wbuf = data
		return ok
	case strings.HasPrefix(command, "AT+EE24WR="):
		arg := strings.TrimPrefix(command, "AT+EE24WR=")
		address, err := strconv.ParseUint(arg, 16, 32)
		if err != nil || len(arg) != 6 || len(b.wbuf) == 0 {
			return fail
		}
		copy(b.eeprom[address:], b.wbuf)
		return ok
	case strings.HasPrefix(command, "AT+EE24RD="):
		args := strings.Split(strings.TrimPrefix(command, "AT+EE24RD="), ",")
		if len(args) != 2 || len(args[0]) != 6 {
			return fail
		}
		address, err := strconv.ParseUint(args[0], 16, 32)
		if err != nil {
			return fail
		}
		length, err := strconv.Atoi(args[1])
		if err != nil || length < 1 || length > 128 {
			return fail
		}
		b.rbuf = append([]byte(nil), b.eeprom[address:int(address)+length]...)
		if b.bufdisp {
			return []string{hex.EncodeToString(b.rbuf), "OK"}
		}
		return ok
	case command == "AT+BUFCMP":
		if !bytes.Equal(b.rbuf, b.wbuf) {
			return fail
		}
		return ok
	case strings.HasPrefix(command, "AT+EE24CRC="):
		length, err := strconv.Atoi(strings.TrimPrefix(command, "AT+EE24CRC="))
		if err != nil {
			return fail
		}
		return []string{fmt.Sprintf("%04x", CRC16(b.eeprom[:length])), "OK"}
	case command == "ATI":
		return []string{b.banner, "OK"}
	case command == "AT$":
		return append(append([]string(nil), b.commands...), "OK")
	}
	return fail
}

// bytesImage is a contiguous Image starting at base.
type bytesImage struct {
	base int
	data []byte
}

func (i *bytesImage) MinAddr() int        { return i.base }
func (i *bytesImage) MaxAddr() int        { return i.base + len(i.data) - 1 }
func (i *bytesImage) At(address int) byte { return i.data[address-i.base] }

func sequence(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	return data
}
