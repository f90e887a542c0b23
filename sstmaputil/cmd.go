/*
Copyright © 2024 the sstmap authors.
This file is part of sstmap.

sstmap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

sstmap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with sstmap.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package sstmaputil holds the command-line interface and configuration
// handling for sstmap.
package sstmaputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/favouriteplots/sstmap"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
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
	// dataSets are the commands that read the anomaly dataset.
	dataSets := []*pflag.FlagSet{renderCmd.Flags(), animateCmd.Flags()}

	// Options are the configuration options available to sstmap.
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
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "StyleFile",
			usage: `
              StyleFile is the path to a TOML file of style settings that
              override the defaults. Use 'sstmap style' to print the
              available settings. It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "StyleScale",
			usage: `
              StyleScale multiplies all font sizes, line widths and pads
              of the style.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "AnomalyFile",
			usage: `
              AnomalyFile is the path to the NetCDF file of daily sea surface
              temperature anomalies. It can include environment variables.`,
			defaultVal: "sst.day.anom.nc",
			flagsets:   dataSets,
		},
		{
			name: "AnomalyVariable",
			usage: `
              AnomalyVariable is the name of the anomaly variable in AnomalyFile.
              Its dimensions must be [time, lat, lon] or [time, zlev, lat, lon].`,
			defaultVal: sstmap.OISSTVars.Data,
			flagsets:   dataSets,
		},
		{
			name: "BathymetryFile",
			usage: `
              BathymetryFile is the path to the NetCDF file of sea floor elevation
              with variables lon, lat and z. It can include environment variables.`,
			defaultVal: "bathymetry.nc",
			flagsets:   dataSets,
		},
		{
			name: "LandShapefile",
			usage: `
              LandShapefile is the path to a polygon shapefile of land, for
              example Natural Earth 50m land. It is required by the render and
              animate commands. For the background command it is optional, and
              if it is empty no coastlines are drawn. It can include environment
              variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), animateCmd.Flags(), backgroundCmd.Flags()},
		},
		{
			name: "PathShapefile",
			usage: `
              PathShapefile is the path to a polyline shapefile of monthly reference
              current paths with YEAR and MONTH attributes. If it is empty, no
              path is drawn. It can include environment variables.`,
			defaultVal: "",
			flagsets:   dataSets,
		},
		{
			name: "Year",
			usage: `
              Year is the year of the anomaly data.`,
			shorthand:  "y",
			defaultVal: 2016,
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), animateCmd.Flags(), synthCmd.Flags()},
		},
		{
			name: "Day",
			usage: `
              Day is the zero-based day of year to render.`,
			shorthand:  "d",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{renderCmd.Flags()},
		},
		{
			name: "DPI",
			usage: `
              DPI is the output resolution in dots per inch. If it is zero, the
              style resolution is used for single figures and 100 is used for
              animation frames.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), animateCmd.Flags(), backgroundCmd.Flags()},
		},
		{
			name: "ManualColorScale",
			usage: `
              ManualColorScale specifies whether the color scale runs from ColorMin to
              ColorMax. If false, it spans the range of the data.`,
			defaultVal: false,
			flagsets:   dataSets,
		},
		{
			name: "ColorMin",
			usage: `
              ColorMin is the low end of a manual color scale in °C.`,
			defaultVal: -5.0,
			flagsets:   dataSets,
		},
		{
			name: "ColorMax",
			usage: `
              ColorMax is the high end of a manual color scale in °C.`,
			defaultVal: 5.0,
			flagsets:   dataSets,
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the output image. The format is chosen by
              the extension: .png, .jpg or .tif. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "sst_anom.png",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), backgroundCmd.Flags()},
		},
		{
			name: "FigureDir",
			usage: `
              FigureDir is the directory the daily animation frames are saved in.
              It can include environment variables.`,
			defaultVal: "figures",
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
		{
			name: "GIFPath",
			usage: `
              GIFPath is the directory the animation is saved in. It can include
              environment variables.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
		{
			name: "GIFName",
			usage: `
              GIFName is the file name of the animation, without the .gif extension.`,
			defaultVal: "sst_anom",
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
		{
			name: "FrameDuration",
			usage: `
              FrameDuration is how long each animation frame is shown, in seconds.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
		{
			name: "Background.Extent",
			usage: `
              Background.Extent is the map region as [W, E, S, N] in degrees.`,
			defaultVal: []float64{235, 290, 15, 52},
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Background.XTicks",
			usage: `
              Background.XTicks are the longitudes of the gridlines.`,
			defaultVal: []float64{-120, -105, -90, -75},
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Background.YTicks",
			usage: `
              Background.YTicks are the latitudes of the gridlines.`,
			defaultVal: []float64{20, 30, 40, 50},
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Background.Alpha",
			usage: `
              Background.Alpha is the gridline opacity, between 0 and 1.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Background.PlotTopo",
			usage: `
              Background.PlotTopo specifies whether to draw the 1000 m topography
              contour.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Background.TopographyFile",
			usage: `
              Background.TopographyFile is the path to the NetCDF topography file with
              variables X, Y and bath. It can include environment variables.`,
			defaultVal: "topo.nc",
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Background.Width",
			usage: `
              Background.Width is the figure width in inches.`,
			defaultVal: 3.0,
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Background.Height",
			usage: `
              Background.Height is the figure height in inches.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{backgroundCmd.Flags()},
		},
		{
			name: "Synth.Dir",
			usage: `
              Synth.Dir is the directory synthetic datasets are written to. It can
              include environment variables.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{synthCmd.Flags()},
		},
		{
			name: "Synth.Days",
			usage: `
              Synth.Days is the number of days of synthetic anomalies to write.`,
			defaultVal: sstmap.MaxDay + 1,
			flagsets:   []*pflag.FlagSet{synthCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SSTMAP")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case []float64:
				// Float slices are passed as JSON arrays.
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(bytes.TrimSpace(b.Bytes()))
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
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
	Root.AddCommand(renderCmd)
	Root.AddCommand(animateCmd)
	Root.AddCommand(backgroundCmd)
	Root.AddCommand(styleCmd)
	Root.AddCommand(synthCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("sstmap: problem reading configuration file: %w", err)
		}
	}
	return nil
}

// setLog configures the standard logger.
func setLog() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "sstmap",
	Short: "Maps of sea surface temperature anomalies.",
	Long: `sstmap draws daily maps of sea surface temperature anomalies in the
northwest Atlantic, assembles a year of them into an animated GIF, and
draws map backgrounds for other ocean figures.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SSTMAP_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		setLog()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of sstmap.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sstmap v%s\n", sstmap.Version)
	},
	DisableAutoGenTag: true,
}

// renderCmd draws the anomaly map for a single day.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw the anomaly map for one day.",
	Long: `render draws the sea surface temperature anomaly map for day Day of
year Year and saves it to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := NewRenderer(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		o := sstmap.PlotOptions{
			Day:              Cfg.GetInt("Day"),
			Year:             Cfg.GetInt("Year"),
			DPI:              Cfg.GetInt("DPI"),
			ManualColorScale: Cfg.GetBool("ManualColorScale"),
			ColorMin:         Cfg.GetFloat64("ColorMin"),
			ColorMax:         Cfg.GetFloat64("ColorMax"),
		}
		if o.DPI == 0 {
			o.DPI = r.Style.DPI
		}
		return Render(r, o, outputFile)
	},
	DisableAutoGenTag: true,
}

// animateCmd draws a year of daily maps and assembles them into a GIF.
var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Animate a year of anomaly maps.",
	Long: `animate draws the anomaly map for every day of year Year, saves them as
FigureDir/<day>.png and assembles them in day order into the looping
animation GIFPath/GIFName.gif.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := NewRenderer(Cfg)
		if err != nil {
			return err
		}
		a := &sstmap.Animator{Renderer: r, Log: logrus.StandardLogger()}
		return a.Animate(sstmap.AnimationOptions{
			Year:             Cfg.GetInt("Year"),
			ManualColorScale: Cfg.GetBool("ManualColorScale"),
			ColorMin:         Cfg.GetFloat64("ColorMin"),
			ColorMax:         Cfg.GetFloat64("ColorMax"),
			DPI:              Cfg.GetInt("DPI"),
			FrameDuration:    Cfg.GetFloat64("FrameDuration"),
			FigureDir:        Cfg.GetString("FigureDir"),
			GIFPath:          Cfg.GetString("GIFPath"),
			GIFName:          Cfg.GetString("GIFName"),
		})
	},
	DisableAutoGenTag: true,
}

// backgroundCmd draws an empty map background.
var backgroundCmd = &cobra.Command{
	Use:   "background",
	Short: "Draw a map background.",
	Long: `background draws coastlines, dashed gridlines and, optionally, the
1000 m topography contour over the region Background.Extent and saves
the result to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		style, err := loadStyle(Cfg)
		if err != nil {
			return err
		}
		o, err := BackgroundConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		land, err := loadLand(Cfg)
		if err != nil {
			return err
		}
		dpi := Cfg.GetInt("DPI")
		if dpi == 0 {
			dpi = style.DPI
		}
		b := &sstmap.Background{
			Style:      style,
			Land:       land,
			Topography: sstmap.TopographyFile(Cfg.GetString("Background.TopographyFile")),
		}
		return DrawBackground(b, o, Cfg.GetFloat64("Background.Width"),
			Cfg.GetFloat64("Background.Height"), dpi, outputFile)
	},
	DisableAutoGenTag: true,
}

// styleCmd prints the plot parameters and style.
var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Print the plot style.",
	Long: `style prints the shared plot parameters and the style settings in
effect after applying StyleFile and StyleScale. The settings are printed
in the TOML format that StyleFile accepts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		style, err := loadStyle(Cfg)
		if err != nil {
			return err
		}
		return PrintStyle(cmd.OutOrStdout(), style)
	},
	DisableAutoGenTag: true,
}

// synthCmd writes synthetic datasets.
var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Write synthetic input data.",
	Long: `synth writes a synthetic anomaly dataset (sst.day.anom.nc), bathymetry
(bathymetry.nc), topography (topo.nc), land (land.shp) and reference
paths (paths.shp) to Synth.Dir, for trying sstmap without downloading data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Synth(Cfg.GetString("Synth.Dir"), Cfg.GetInt("Year"), Cfg.GetInt("Synth.Days"))
	},
	DisableAutoGenTag: true,
}
