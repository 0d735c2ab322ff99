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

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arduino/go-paths-helper"
	"github.com/bubtools/bubprg/cli/arguments"
	"github.com/bubtools/bubprg/cli/crc"
	"github.com/bubtools/bubprg/cli/feedback"
	"github.com/bubtools/bubprg/cli/flash"
	"github.com/bubtools/bubprg/cli/globals"
	"github.com/bubtools/bubprg/cli/info"
	"github.com/bubtools/bubprg/cli/ports"
	"github.com/bubtools/bubprg/cli/version"
	"github.com/bubtools/bubprg/config"
	v "github.com/bubtools/bubprg/version"
	"github.com/mattn/go-colorable"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const usage = "bubprg serial_if filename"

var (
	sessionFlags arguments.Flags
	outputFormat string
	logFile      string
	logFormat    string
	configFile   string
)

func NewCommand() *cobra.Command {
	// bubprg is the root command, it flashes an image when given a port and a file
	bubprgCli := &cobra.Command{
		Use:   usage,
		Short: "AVR ISP bub EEPROM programmer.",
		Long:  "bubprg writes a raw binary or Intel HEX image to the I2C EEPROM of an AVR ISP bub, verifying every chunk and the final CRC.",
		Example: "" +
			"  " + os.Args[0] + " /dev/ttyUSB0 eeprom.bin\n" +
			"  " + os.Args[0] + " COM3 eeprom.hex --timeout 1s\n" +
			"  " + os.Args[0] + " /dev/ttyUSB0 https://example.com/eeprom.hex --format json\n",
		Args:             cobra.ArbitraryArgs,
		Run:              run,
		PersistentPreRun: preRun,
	}

	bubprgCli.AddCommand(version.NewCommand())
	bubprgCli.AddCommand(info.NewCommand())
	bubprgCli.AddCommand(crc.NewCommand())
	bubprgCli.AddCommand(ports.NewCommand())

	sessionFlags.AddToCommand(bubprgCli)

	bubprgCli.PersistentFlags().StringVar(&outputFormat, "format", "text", "The output format, can be {text|json}.")
	bubprgCli.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML file with session settings")

	bubprgCli.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to the file where logs will be written")
	bubprgCli.PersistentFlags().StringVar(&logFormat, "log-format", "", "The output format for the logs, can be {text|json}.")
	bubprgCli.PersistentFlags().StringVar(&globals.LogLevel, "log-level", "info", "Messages with this level and above will be logged. Valid levels are: trace, debug, info, warn, error, fatal, panic")
	bubprgCli.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "Print the logs on the standard output.")

	return bubprgCli
}

func run(cmd *cobra.Command, args []string) {
	if code := runFlash(args); code != feedback.Success {
		os.Exit(int(code))
	}
}

func runFlash(args []string) feedback.ExitCode {
	if len(args) != 2 {
		feedback.Error("usage: " + usage)
		return feedback.ErrGeneric
	}

	cfg, err := sessionFlags.Apply(globals.Config)
	if err != nil {
		feedback.Error(fmt.Sprintf("Invalid session settings: %s", err))
		return feedback.ErrBadArgument
	}
	return flash.Run(args[0], args[1], cfg)
}

func preRun(cmd *cobra.Command, args []string) {
	// Prepare logging
	if globals.Verbose {
		// if we print on stdout, do it in full colors
		logrus.SetOutput(colorable.NewColorableStdout())
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors: true,
		})
	} else {
		logrus.SetOutput(io.Discard)
	}

	// Normalize the format strings
	logFormat = strings.ToLower(logFormat)
	if logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			feedback.Fatal(fmt.Sprintf("Unable to open file for logging: %s", logFile), feedback.ErrBadArgument)
			return
		}

		// Use a hook so we don't get color codes in the log file
		if logFormat == "json" {
			logrus.AddHook(lfshook.NewHook(file, &logrus.JSONFormatter{}))
		} else {
			logrus.AddHook(lfshook.NewHook(file, &logrus.TextFormatter{}))
		}
	}

	// Configure logging filter
	if lvl, err := logrus.ParseLevel(globals.LogLevel); err != nil {
		feedback.Fatal(fmt.Sprintf("Invalid option for --log-level: %s", globals.LogLevel), feedback.ErrBadArgument)
		return
	} else {
		logrus.SetLevel(lvl)
	}

	//
	// Prepare the Feedback system
	//

	// normalize the format strings
	outputFormat = strings.ToLower(outputFormat)
	// check the right output format was passed
	format, found := feedback.ParseOutputFormat(outputFormat)
	if !found {
		feedback.Fatal(fmt.Sprintf("Invalid output format: %s", outputFormat), feedback.ErrBadArgument)
		return
	}

	// use the output format to configure the Feedback
	feedback.SetFormat(format)

	logrus.Info(v.VersionInfo)

	var cfgPath *paths.Path
	if configFile != "" {
		cfgPath = paths.New(configFile)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		feedback.Fatal(err.Error(), feedback.ErrBadArgument)
		return
	}
	globals.Config = cfg
}
