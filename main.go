package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shroud/config"
	stutil "shroud/stegano/util"
	"shroud/util"
)

const (
	ShroudFolder   = ".shroud"
	ConfigFilename = "config.yaml"

	// password of an encrypted configuration file
	ConfigPasswordVariable = "SHROUD_CONFIG_PASSWORD"
)

// errUsage makes run print the help text.
var errUsage = errors.New("invalid usage")

type app struct {
	configFile     string
	configPassword string
	conf           *config.FullConfig
	logger         *util.Logger
	stdout         io.Writer
}

type command func(a *app, args []string) error

var commands = map[string]command{
	"embed":    (*app).embed,
	"extract":  (*app).extract,
	"capacity": (*app).capacity,
	"readlog":  (*app).readLog,
	"editconf": (*app).editConfig,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	if len(args) < 1 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		help(stdout)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		help(stdout)
		return 2
	}

	a := &app{stdout: stdout}
	err := cmd(a, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		help(stdout)
		return 2
	}
	if a.logger != nil {
		a.logger.LogError(err)
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return 1
}

// newFlags registers the options every command understands.
func (a *app) newFlags(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&a.configFile, "c", "", "configuration file (default ~/"+ShroudFolder+"/"+ConfigFilename+")")
	debug := fs.Bool("d", false, "show debug information")
	return fs, debug
}

// setup loads the configuration, creating a default one on first use, and
// builds the logger from it.
func (a *app) setup(debug bool) error {
	if a.configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("Failed to get home directory: %w", err)
		}
		folder := filepath.Join(home, ShroudFolder)
		if err = os.MkdirAll(folder, 0700); err != nil {
			return fmt.Errorf("Failed to create shroud directory: %w", err)
		}
		a.configFile = filepath.Join(folder, ConfigFilename)
	}
	a.configPassword = os.Getenv(ConfigPasswordVariable)

	if _, err := os.Stat(a.configFile); errors.Is(err, os.ErrNotExist) {
		if err = config.SaveConfig(a.configFile, a.configPassword, config.DefaultConfig()); err != nil {
			return fmt.Errorf("Failed to save default configuration: %w", err)
		}
	}
	conf, err := config.LoadConfig(a.configFile, a.configPassword)
	if err != nil {
		return fmt.Errorf("Failed to load configuration: %w", err)
	}
	if debug || conf.Debug {
		conf.Logger.Mode |= util.Debug
		stutil.DebugMode = true
	}
	a.conf = conf
	a.logger = util.NewLogger(&a.conf.Logger)
	return nil
}

// formatSize prints a byte count with a binary unit.
func formatSize(v int) string {
	if v < 1024 {
		return fmt.Sprintf("%d B", v)
	}
	z := 0
	for n := v; n >= 1024; n >>= 10 {
		z++
	}
	return fmt.Sprintf("%.1f %cB", float64(v)/float64(int(1)<<(z*10)), " KMGTPE"[z])
}

func help(w io.Writer) {
	line := `Usage: shroud <command> [options] <image>...

The following commands are supported:
	embed		embed a message and/or files into an image
	extract		extract the hidden data from an image
	capacity	show how many bytes an image (or every image of a folder) can hold
	readlog		print the log file
	editconf	edit the configuration in $SHROUD_EDITOR

Options of embed:
	-m <message>			message to embed
	-f <file>			file to embed, may be repeated
	-k <key>			secret key used for encryption and hiding (prompted if missing)
	-o <path>			where to write the steganogram
	-visualize <path>		write a PNG marking every point the payload touched
	--disable-noise-detection	do not avoid homogeneous areas

Options of extract:
	-k <key>			secret key
	-o <folder>			folder to store extracted files (default: next to the image)
	--disable-noise-detection	the image was embedded with noise detection disabled

Common options:
	-c <file>			configuration file
	-d				show debug information

Supported formats: bmp, gif, jpg, png
`
	fmt.Fprintf(w, "%s", line)
}
