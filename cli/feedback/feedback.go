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

package feedback

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ExitCode to be used for Fatal.
type ExitCode int

const (
	// Success (0 is the no-error return code in Unix)
	Success ExitCode = iota

	// ErrGeneric Generic error (1 is the reserved "catchall" code in Unix).
	// Usage errors and an unresponsive bub exit with it too.
	ErrGeneric

	_ // (2 Is reserved in Unix)

	// ErrBadArgument is returned when a flag value is not valid (3)
	ErrBadArgument
)

// OutputFormat is an output format
type OutputFormat int

const (
	// Text is the plain text format, suitable for interactive terminals
	Text OutputFormat = iota
	// JSON format
	JSON
)

var formats = map[string]OutputFormat{
	"json": JSON,
	"text": Text,
}

func (f OutputFormat) String() string {
	for res, format := range formats {
		if format == f {
			return res
		}
	}
	panic("unknown output format")
}

// ParseOutputFormat parses a string and returns the corresponding OutputFormat.
// The boolean returned is true if the string was a valid OutputFormat.
func ParseOutputFormat(in string) (OutputFormat, bool) {
	format, found := formats[in]
	return format, found
}

var (
	format OutputFormat = Text
	stdOut io.Writer    = os.Stdout
	exit                = os.Exit
)

// Result is anything more complex than a sentence that needs to be printed
// for the user.
type Result interface {
	fmt.Stringer
	Data() interface{}
}

// SetFormat can be used to change the output format at runtime
func SetFormat(f OutputFormat) {
	format = f
}

// GetFormat returns the output format currently set
func GetFormat() OutputFormat {
	return format
}

// Print writes a line for the operator. Nothing is printed in JSON mode,
// where only results are emitted.
func Print(v ...interface{}) {
	if format == Text {
		fmt.Fprintln(stdOut, v...)
	}
}

// Printf is Print with formatting, no newline is added.
func Printf(f string, v ...interface{}) {
	if format == Text {
		fmt.Fprintf(stdOut, f, v...)
	}
}

// SetOut can be used to change the out writer at runtime
func SetOut(out io.Writer) {
	stdOut = out
}

// FatalError outputs the error and exits with status exitCode.
func FatalError(err error, exitCode ExitCode) {
	Fatal(err.Error(), exitCode)
}

// Fatal outputs the errorMsg and exits with status exitCode.
func Fatal(errorMsg string, exitCode ExitCode) {
	Error(errorMsg)
	exit(int(exitCode))
}

// Error outputs errorMsg without exiting. Errors go to stdout like every
// other operator line, in JSON mode as an error document.
func Error(errorMsg string) {
	if format == Text {
		fmt.Fprintln(stdOut, errorMsg)
		return
	}

	res := struct {
		Error string `json:"error"`
	}{Error: errorMsg}
	d, _ := json.MarshalIndent(res, "", "  ")
	fmt.Fprintln(stdOut, string(d))
}

// PrintResult is a convenient wrapper to provide feedback for complex data,
// where the contents can't be just serialized to JSON but requires more
// structure.
func PrintResult(res Result) {
	var data string
	switch format {
	case JSON:
		d, err := json.MarshalIndent(res.Data(), "", "  ")
		if err != nil {
			Fatal(fmt.Sprintf("Error during JSON encoding of the output: %v", err), ErrGeneric)
			return
		}
		data = string(d)
	case Text:
		data = res.String()
	default:
		panic("unknown output format")
	}
	if data != "" {
		fmt.Fprintln(stdOut, data)
	}
}
