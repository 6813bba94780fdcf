package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/airbusgeo/gridio/cmd"
	"github.com/airbusgeo/gridio/internal/drivers"
	"github.com/airbusgeo/gridio/internal/log"
	"go.uber.org/zap"
)

const usage = `usage: gridio <command> [flags]

commands:
  drivers   list the raster and vector drivers
  import    import raster files as Cloud Optimized GeoTIFF grids
  export    export vector layers into another format

run "gridio <command> -h" for the flags of a command
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Logger(ctx).Error("exit on error", zap.Error(err))
		}
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "drivers":
		return runDrivers(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags registers the flags shared by all the commands
type commonFlags struct {
	console    bool
	drivers    string
	gdalConfig *cmd.GDALConfig
}

func newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	c := commonFlags{}
	fs.BoolVar(&c.console, "console", false, "human-readable logs")
	fs.StringVar(&c.drivers, "drivers", "", "comma-separated list of the GDAL drivers to use (default: all the registered drivers)")
	c.gdalConfig = cmd.GDALConfigFlags(fs)
	return fs, &c
}

// init configures logging and GDAL
func (c *commonFlags) init(ctx context.Context) error {
	if c.console {
		log.Console()
	}
	if err := cmd.InitGDAL(ctx, c.gdalConfig); err != nil {
		return fmt.Errorf("init gdal: %w", err)
	}
	return nil
}

// driverTable probes the drivers given with -drivers, or the default ones
func (c *commonFlags) driverTable() *drivers.Table {
	return drivers.Probe(splitList(c.drivers)...)
}

func splitList(s string) []string {
	var res []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			res = append(res, e)
		}
	}
	return res
}

// stringsFlag is a repeatable string flag
type stringsFlag []string

func (s *stringsFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
