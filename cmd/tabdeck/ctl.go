package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/b/tabdeck/pkg/config"
	"github.com/b/tabdeck/pkg/control"
	"github.com/b/tabdeck/pkg/paths"
	"github.com/b/tabdeck/pkg/validate"
)

// runCtl sends one request to the dashboard running for the project.
func runCtl(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ctl", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", *startDir, "directory inside the project")
	timeout := fs.Duration("timeout", 2*time.Second, "connect and reply timeout")
	fs.Usage = func() {
		fmt.Fprintf(out, "usage: tabdeck ctl [flags] <request> [args...]\n\nrequests: ping, state, %s\n\nflags:\n",
			strings.Join(control.ActionNames(), ", "))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing request")
	}

	cfg, root, err := loadConfig(*configPath, *dir, validate.New())
	if err != nil {
		return err
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	if name == "run" && len(rest) > 0 && config.FindCommand(cfg, rest[0]) == nil {
		return fmt.Errorf("run: no command %q in config", rest[0])
	}
	c, err := control.Dial(paths.SocketPath(root), *timeout)
	if err != nil {
		return fmt.Errorf("is tabdeck running in %s? %w", root, err)
	}
	defer c.Close()

	switch name {
	case "ping":
		if err := c.Ping(); err != nil {
			return err
		}
		fmt.Fprintln(out, "pong")
	case "state":
		snap, err := c.State()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	default:
		if err := c.Action(name, rest...); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
