package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/buffos/go-reflections/internal/export"
	"github.com/buffos/go-reflections/internal/render"
	"github.com/buffos/go-reflections/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is the release of the reflections tool.
const Version = "0.1.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options of the reflections tool.
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
			name: "log-level",
			usage: `
              log-level is one of panic, fatal, error, warn, info, debug or trace.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "addr",
			usage: `
              addr is the host:port the web server listens on.`,
			defaultVal: "localhost:7272",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), Root.Flags()},
		},
		{
			name: "session-ttl",
			usage: `
              session-ttl is how long an idle browser session is kept. Zero keeps
              sessions until the server stops.`,
			defaultVal: 30 * time.Minute,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), Root.Flags()},
		},
		{
			name: "export-cache",
			usage: `
              export-cache is how many rendered downloads the server keeps in
              memory. Zero disables the cache.`,
			defaultVal: server.DefaultCacheSize,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), Root.Flags()},
		},
		{
			name: "open",
			usage: `
              open opens the app in the default browser once the server is listening.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), Root.Flags()},
		},
		{
			name: "mdns",
			usage: `
              mdns advertises the server on the local network so that other devices
              can find it with 'reflections discover'.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), Root.Flags()},
		},
		{
			name: "padding",
			usage: `
              padding is the margin, in data units, added around the figures.`,
			defaultVal: render.DefaultPadding,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "chart-width",
			usage: `
              chart-width is the width of the SVG chart in pixels.`,
			defaultVal: 800,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "chart-height",
			usage: `
              chart-height is the height of the SVG chart in pixels.`,
			defaultVal: 600,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "image-backend",
			usage: `
              image-backend selects how PNG and JPEG files are made: 'chrome' renders
              the SVG chart in headless Chrome, 'plot' draws it with gonum/plot.`,
			defaultVal: export.BackendChrome,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "output",
			usage: `
              output is the file to write to. The default is standard output.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags()},
		},
		{
			name: "kind",
			usage: `
              kind overrides the reflection stored in the figure file: x-axis, y-axis,
              origin, y=x, y=-x, horizontal or vertical.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags()},
		},
		{
			name: "param",
			usage: `
              param overrides k or h for the horizontal and vertical reflections.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{renderCmd.Flags()},
		},
		{
			name: "timeout",
			usage: `
              timeout is how long to listen for servers on the local network.`,
			defaultVal: 3 * time.Second,
			flagsets:   []*pflag.FlagSet{discoverCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("REFLECT")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
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
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case time.Duration:
				set.DurationP(option.name, option.shorthand, v, option.usage)
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
	Root.AddCommand(serveCmd)
	Root.AddCommand(renderCmd)
	Root.AddCommand(discoverCmd)
}

// setConfig finds and reads in the configuration file, if there is one, and
// applies the logging settings.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("reflections: problem reading configuration file: %w", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("reflections: %w", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	return nil
}

// newExporter builds the exporter described by the configuration.
func newExporter(cfg *viper.Viper) (*export.Exporter, error) {
	style := render.DefaultChartStyle()
	style.Width = float64(cfg.GetInt("chart-width"))
	style.Height = float64(cfg.GetInt("chart-height"))
	opts := render.Options{Padding: cfg.GetFloat64("padding")}
	return export.NewExporter(opts, style, cfg.GetString("image-backend"), logger)
}

// Root is the main command. Without a subcommand it starts the web server.
var Root = &cobra.Command{
	Use:   "reflections",
	Short: "An interactive tool for teaching reflections in the plane.",
	Long: `reflections draws a figure and its mirror image for the reflections taught
in school geometry: across the axes, through the origin, across y = x and
y = -x, and across horizontal and vertical lines.

Run without a subcommand to start the web app. Configuration can be changed
by using a configuration file (and providing the path to the file using the
--config flag), by using command-line arguments, or by setting environment
variables in the format 'REFLECT_VAR' where 'VAR' is the name of the
variable to be set, with dashes replaced by underscores.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	RunE:              func(cmd *cobra.Command, args []string) error { return serve(cmd.Context(), Cfg) },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of reflections.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reflections v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web app.",
	Long: `serve starts the interactive web app. Each browser gets its own figure,
kept until it has been idle for session-ttl.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), Cfg)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <figure> <format>",
	Short: "Draw a figure file without starting the server.",
	Long: `render reads a figure from a JSON or TOML file and writes the original and
reflected figures in the given format: svg, html, png, jpg, pdf, json or toml.
The JSON form is {"points": [{"x": 1, "y": 1}, ...], "reflection": {"kind":
"x-axis"}}; a bare array of points is also accepted and reflected across the
x-axis.`,
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderFigure(cmd, args[0], args[1], Cfg)
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List reflections servers on the local network.",
	Long: `discover lists servers started with --mdns on the local network, so that
other devices in a classroom can find the one running the app.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return discover(cmd, Cfg.GetDuration("timeout"))
	},
}
