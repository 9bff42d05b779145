/*
Copyright © 2026 the HARP authors.
This file is part of HARP.

HARP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HARP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HARP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package harputil holds the command line tools for HARP products.
package harputil

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/harp"
	"github.com/spatialmodel/harp/libharp"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrEmptyMerge is returned by merge when none of the inputs holds data.
// No output file is written in that case.
var ErrEmptyMerge = errors.New("harp: merged product is empty")

// Cfg holds the configuration and the command tree of the harp tool.
type Cfg struct {
	*viper.Viper

	// Root is the main command.
	Root *cobra.Command

	// Log receives diagnostics. Its level follows the loglevel option.
	Log *logrus.Logger

	versionCmd, convertCmd, mergeCmd, dumpCmd, checkCmd, unitsCmd *cobra.Command
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates the command tree and binds every option to
// its flags, to the HARP_ environment variables and to the configuration
// file.
func InitializeConfig() *Cfg {
	cfg := &Cfg{
		Viper: viper.New(),
		Log:   logrus.New(),
	}
	cfg.Log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}

	cfg.Root = &cobra.Command{
		Use:   "harp",
		Short: "Tools for HARP atmospheric data products.",
		Long: `harp converts, merges and inspects HARP products: netCDF files holding
variables tagged with the time, latitude, longitude, vertical and spectral
dimensions. Use the subcommands specified below to access the tools.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'HARP_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of the HARP library.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("HARP v%s\n", libharp.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.convertCmd = &cobra.Command{
		Use:   "convert input output",
		Short: "Convert a product",
		Long: `convert imports a product, applying the given operations and ingestion
options, and exports the result to a new file. An output file name ending in
.gz, .zst or .lz4 is written compressed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cfg.context()
			if err != nil {
				return err
			}
			return Convert(ctx, args[0], args[1], cfg.importOptions(), cfg.exportOptions())
		},
		DisableAutoGenTag: true,
	}

	cfg.mergeCmd = &cobra.Command{
		Use:   "merge input... output",
		Short: "Merge products",
		Long: `merge imports every input product, or every file matching an input
pattern, and appends them along the time dimension into a single output
product. Empty products are skipped. If no input holds any data, no output
is written and the command exits with status 2.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cfg.context()
			if err != nil {
				return err
			}
			inputs := args[:len(args)-1]
			if cfg.GetBool("list") {
				if inputs, err = readFileLists(inputs); err != nil {
					return err
				}
			}
			return Merge(ctx, inputs, args[len(args)-1], cfg.importOptions(), cfg.exportOptions())
		},
		DisableAutoGenTag: true,
	}

	cfg.dumpCmd = &cobra.Command{
		Use:   "dump input",
		Short: "Print the contents of a product",
		Long: `dump prints the attributes and the variables of a product as text,
JSON or YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cfg.context()
			if err != nil {
				return err
			}
			return Dump(cmd.OutOrStdout(), ctx, args[0], DumpOptions{
				Format:   cfg.GetString("format"),
				List:     cfg.GetBool("list"),
				Data:     cfg.GetBool("data"),
				Checksum: cfg.GetBool("checksum"),
				Import:   cfg.importOptions(),
			})
		},
		DisableAutoGenTag: true,
	}

	cfg.checkCmd = &cobra.Command{
		Use:   "check input...",
		Short: "Check products",
		Long: `check imports each input and reports whether it is a valid HARP
product.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cfg.context()
			if err != nil {
				return err
			}
			return Check(cmd.OutOrStdout(), ctx, args, cfg.GetString("options"))
		},
		DisableAutoGenTag: true,
	}

	cfg.unitsCmd = &cobra.Command{
		Use:   "units from to value...",
		Short: "Convert values between units",
		Long: `units converts each value from one unit to another and prints the
results, one per line.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := cfg.context()
			if err != nil {
				return err
			}
			values := make([]float64, len(args)-2)
			for i, a := range args[2:] {
				if values[i], err = cast.ToFloat64E(a); err != nil {
					return fmt.Errorf("harp: invalid value '%s': %v", a, err)
				}
			}
			return ConvertUnits(cmd.OutOrStdout(), ctx, args[0], args[1], values)
		},
		DisableAutoGenTag: true,
	}

	cfg.Root.AddCommand(cfg.versionCmd)
	cfg.Root.AddCommand(cfg.convertCmd)
	cfg.Root.AddCommand(cfg.mergeCmd)
	cfg.Root.AddCommand(cfg.dumpCmd)
	cfg.Root.AddCommand(cfg.checkCmd)
	cfg.Root.AddCommand(cfg.unitsCmd)

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel sets the amount of diagnostic output: one of panic,
              fatal, error, warning, info or debug.`,
			defaultVal: "warning",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "encoding",
			usage: `
              encoding is the text encoding of strings in the products:
              ascii, utf-8 or an IANA character set name such as ISO-8859-1.`,
			defaultVal: harp.DefaultEncoding,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "UnitDefinitions",
			usage: `
              UnitDefinitions is the path to a TOML file with additional unit
              definitions. It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "operations",
			usage: `
              operations is a semicolon separated list of operations to apply
              to each product during import, such as
              "latitude > 0; keep(datetime, latitude, temperature)".`,
			shorthand:  "a",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.convertCmd.Flags(), cfg.mergeCmd.Flags(), cfg.dumpCmd.Flags()},
		},
		{
			name: "options",
			usage: `
              options is a semicolon separated list of ingestion options in
              the form key=value.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.convertCmd.Flags(), cfg.mergeCmd.Flags(), cfg.dumpCmd.Flags(), cfg.checkCmd.Flags()},
		},
		{
			name: "format",
			usage: `
              format is the output format. For convert and merge it is the
              file format, netcdf (the default), hdf4 or hdf5; for dump it
              is text (the default), json or yaml.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.convertCmd.Flags(), cfg.mergeCmd.Flags(), cfg.dumpCmd.Flags()},
		},
		{
			name: "compression",
			usage: `
              compression is the compression level, 0 (off) to 9, of
              compressed output files.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cfg.convertCmd.Flags(), cfg.mergeCmd.Flags()},
		},
		{
			name: "reduce",
			usage: `
              reduce is a list of operations applied to the merged product
              after each input is appended, such as "bin()".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.mergeCmd.Flags()},
		},
		{
			name: "post",
			usage: `
              post is a list of operations applied once to the merged
              product.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.mergeCmd.Flags()},
		},
		{
			name: "list",
			usage: `
              For merge, list treats each input as a text file naming one
              product per line. For dump, list prints only the variable
              names.`,
			shorthand:  "l",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.mergeCmd.Flags(), cfg.dumpCmd.Flags()},
		},
		{
			name: "data",
			usage: `
              data includes the variable data in the dump.`,
			shorthand:  "d",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.dumpCmd.Flags()},
		},
		{
			name: "checksum",
			usage: `
              checksum includes a digest of each variable in the dump.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.dumpCmd.Flags()},
		},
	}

	cfg.SetEnvPrefix("HARP")
	cfg.AutomaticEnv()

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
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	return cfg
}

// setConfig reads the configuration file, if any, and applies the
// logging and encoding options.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("harp: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("harp: %v", err)
	}
	cfg.Log.SetLevel(level)
	return nil
}

// context returns a conversion context with its own native library,
// configured from the options.
func (cfg *Cfg) context() (*harp.Context, error) {
	lib := libharp.New()
	lib.Log = cfg.Log
	if path := cfg.GetString("UnitDefinitions"); path != "" {
		if err := lib.LoadUnitDefinitions(os.ExpandEnv(path)); err != nil {
			return nil, fmt.Errorf("harp: loading unit definitions: %v", err)
		}
	}
	ctx := harp.NewContext(lib)
	ctx.Log = cfg.Log
	if err := ctx.SetEncoding(cfg.GetString("encoding")); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (cfg *Cfg) importOptions() harp.ImportOptions {
	return harp.ImportOptions{
		Operations:       cfg.GetString("operations"),
		Options:          cfg.GetString("options"),
		ReduceOperations: cfg.GetString("reduce"),
		PostOperations:   cfg.GetString("post"),
	}
}

func (cfg *Cfg) exportOptions() harp.ExportOptions {
	return harp.ExportOptions{
		Format:          strings.ToLower(cfg.GetString("format")),
		HDF5Compression: cfg.GetInt("compression"),
	}
}
