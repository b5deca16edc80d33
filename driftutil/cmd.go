/*
Copyright © 2024 the drift authors.
This file is part of drift.

drift is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

drift is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with drift.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package driftutil holds the command-line interface of drift.
package driftutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/drift"
	"github.com/spatialmodel/drift/gdp"
	"github.com/spatialmodel/drift/nc"
	"github.com/spatialmodel/drift/yomaha"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to drift.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_level",
			usage: `
              log_level specifies the least severe level of log messages
              to print: one of panic, fatal, error, warn, info, debug
              or trace.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "speed",
			usage: `
              speed specifies where the speed variable comes from. 'v'
              stores the northward velocity, as earlier conversions of
              these files did. 'column' stores the speed column of the
              trajectory file.`,
			defaultVal: gdp.SpeedFromV.String(),
			flagsets:   []*pflag.FlagSet{gdpCmd.Flags()},
		},
		{
			name: "allow_missing_metadata",
			usage: `
              allow_missing_metadata specifies whether drifters without a
              metadata record are written with null metadata. If false,
              such a drifter stops the conversion.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{gdpCmd.Flags()},
		},
		{
			name: "line_buffer",
			usage: `
              line_buffer specifies the number of records to hold in
              memory before they are written to the output file.`,
			shorthand:  "l",
			defaultVal: yomaha.DefaultLineBuffer,
			flagsets:   []*pflag.FlagSet{yomahaCmd.Flags()},
		},
		{
			name: "zlib",
			usage: `
              zlib specifies whether the output file is gzip compressed.`,
			shorthand:  "z",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{yomahaCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("DRIFT")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(gdpCmd)
	Root.AddCommand(yomahaCmd)
	Root.AddCommand(inspectCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("drift: problem reading configuration file: %v", err)
		}
	}
	return setLogger()
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "drift",
	Short: "Convert ocean drifter and float trajectories to NetCDF.",
	Long: `drift converts the trajectory files of the Global Drifter Program and
the YoMaHa'07 Argo float velocity dataset into self-describing NetCDF files.
Use the subcommands specified below to choose a dataset.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'DRIFT_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of drift.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "drift v%s\n", drift.Version)
	},
	DisableAutoGenTag: true,
}

var gdpCmd = &cobra.Command{
	Use:   "gdp trajectory_file metadata_file output_file",
	Short: "Convert Global Drifter Program trajectories.",
	Long: `gdp converts a Global Drifter Program trajectory file and its
deployment metadata file into a NetCDF file holding one row per drifter.
The trajectory file must be grouped by drifter identifier, and every
drifter must have exactly one metadata record.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		speed, err := gdp.ParseSpeedSource(Cfg.GetString("speed"))
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		in, err := checkInputFile(args[0])
		if err != nil {
			return err
		}
		meta, err := checkInputFile(args[1])
		if err != nil {
			return err
		}
		out, err := checkOutputFile(args[2])
		if err != nil {
			return err
		}
		_, err = gdp.Convert(in, meta, out, gdp.Config{
			Speed:                speed,
			AllowMissingMetadata: Cfg.GetBool("allow_missing_metadata"),
			Log:                  logger,
		})
		return err
	},
	DisableAutoGenTag: true,
}

var yomahaCmd = &cobra.Command{
	Use:   "yomaha input_file output_file",
	Short: "Convert the YoMaHa'07 float velocity dataset.",
	Long: `yomaha puts the YoMaHa'07 estimates of deep and surface velocities
into a NetCDF file with one row per input line. For a description of
YoMaHa'07 and access to it, see
http://apdrc.soest.hawaii.edu/projects/yomaha/index.php.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lineBuffer, err := checkLineBuffer(Cfg.Get("line_buffer"))
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		in, err := checkInputFile(args[0])
		if err != nil {
			return err
		}
		out, err := checkOutputFile(args[1])
		if err != nil {
			return err
		}
		c := &yomaha.Converter{LineBuffer: lineBuffer, Log: logger}
		_, err = c.ConvertFile(in, out, Cfg.GetBool("zlib"))
		return err
	},
	DisableAutoGenTag: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect file",
	Short: "Summarize a NetCDF file.",
	Long: `inspect lists the attributes and variables of a NetCDF file, with the
number, minimum and maximum of the non-missing values of each numeric
variable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		in, err := checkInputFile(args[0])
		if err != nil {
			return err
		}
		s, err := nc.Inspect(in)
		if err != nil {
			return err
		}
		return s.Fprint(cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}
