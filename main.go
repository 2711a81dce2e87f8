package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briangreenhill/marathoncoach/internal/app"
	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/logging"
)

const version = "0.3.0"

func main() {
	c := &cli{out: os.Stdout, errOut: os.Stderr, now: time.Now}
	if err := c.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	cfg config.Config
	app *app.App
}

func (c *cli) run(args []string) error {
	if len(args) == 0 {
		c.usage()
		return nil
	}

	switch args[0] {
	case "help", "--help", "-h":
		c.usage()
		return nil
	case "version", "--version", "-v":
		fmt.Fprintf(c.out, "Marathon Coach v%s\n", version)
		return nil
	}

	if err := c.setup(); err != nil {
		return err
	}
	defer c.app.Close()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "vdot":
		return c.vdot(rest)
	case "time":
		return c.marathonTime(rest)
	case "paces":
		return c.paces(rest)
	case "phases":
		return c.phases(rest)
	case "window":
		return c.window(rest)
	case "plan":
		return c.plan(rest)
	case "prompt":
		return c.prompt(rest)
	case "seed":
		return c.seed(rest)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (c *cli) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	logger := logging.NewWithWriter(c.errOut, cfg.LogLevel, true)
	a, err := app.New(context.Background(), cfg, logger, version)
	if err != nil {
		return err
	}
	a.Builder.Now = c.now
	c.app = a
	return nil
}

func (c *cli) usage() {
	fmt.Fprintln(c.out, "Usage: marathoncoach <command> [arguments]")
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  vdot <category> <time> [--trace]    VDOT for a race result (5km, 10km, half, marathon)")
	fmt.Fprintln(c.out, "  time <vdot>                         Marathon time for a VDOT")
	fmt.Fprintln(c.out, "  paces <vdot> [--trace]              Training paces for a VDOT")
	fmt.Fprintln(c.out, "  phases <current> <target> [n]       Phase VDOT targets")
	fmt.Fprintln(c.out, "  window <YYYY-MM-DD> [min-weeks]     Training window for a race date")
	fmt.Fprintln(c.out, "  plan [flags]                        Compute a full plan (see plan --help)")
	fmt.Fprintln(c.out, "  prompt [flags] [--generate]         Render the plan prompt, optionally send it to the generator")
	fmt.Fprintln(c.out, "  seed [dir]                          Store reference tables in DATABASE_URL")
	fmt.Fprintln(c.out, "  version                             Show version")
	fmt.Fprintln(c.out, "Environment:")
	fmt.Fprintln(c.out, "  TABLES_SOURCE       embedded (default), dir or postgres")
	fmt.Fprintln(c.out, "  TABLES_DIR          Directory holding vdot_list.csv and vdot_pace.csv")
	fmt.Fprintln(c.out, "  TRAINING_MIN_WEEKS  Minimum plan length in weeks (default 12)")
	fmt.Fprintln(c.out, "  GENERATOR_ENDPOINT  Text generation endpoint for prompt --generate")
}
