// Command query_ext asks the running shell about an installed extension
// over D-Bus and prints its info and errors.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/pflag"

	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/util/log"
)

// D-Bus name and object of the shell's extension service
const (
	busName = "org.gnome.Shell.Extensions"
	busPath = "/org/gnome/Shell/Extensions"
)

// Querier returns an extension's info and errors.
type Querier interface {
	GetExtensionInfo(uuid string) (map[string]dbus.Variant, error)
	GetExtensionErrors(uuid string) ([]string, error)
}

// shellExtensions queries the shell over a bus connection.
type shellExtensions struct {
	obj dbus.BusObject
}

func (s *shellExtensions) GetExtensionInfo(uuid string) (map[string]dbus.Variant, error) {
	var info map[string]dbus.Variant
	if err := s.obj.Call(busName+".GetExtensionInfo", 0, uuid).Store(&info); err != nil {
		return nil, fmt.Errorf("GetExtensionInfo(%q): %w", uuid, err)
	}
	return info, nil
}

func (s *shellExtensions) GetExtensionErrors(uuid string) ([]string, error) {
	var errs []string
	if err := s.obj.Call(busName+".GetExtensionErrors", 0, uuid).Store(&errs); err != nil {
		return nil, fmt.Errorf("GetExtensionErrors(%q): %w", uuid, err)
	}
	return errs, nil
}

// connectBus opens the session or system bus. The returned function closes it.
func connectBus(system bool) (Querier, func(), error) {
	var conn *dbus.Conn
	var err error
	if system {
		conn, err = dbus.ConnectSystemBus()
	} else {
		conn, err = dbus.ConnectSessionBus()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to D-Bus: %w", err)
	}
	q := &shellExtensions{obj: conn.Object(busName, dbus.ObjectPath(busPath))}
	return q, func() { conn.Close() }, nil
}

// Connector opens a Querier.
type Connector func(system bool) (Querier, func(), error)

func run(args []string, stdout, stderr io.Writer, connect Connector) error {
	var (
		uuid     string
		asJSON   bool
		format   bool
		fconfig  []string
		system   bool
		sleepSec int
		verbose  bool
	)

	flagSet := pflag.NewFlagSet("query_ext", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&uuid, "uuid", "u", config.AppID, "extension UUID")
	flagSet.BoolVarP(&asJSON, "json", "j", false, "output JSON instead of the D-Bus value dump")
	flagSet.BoolVarP(&format, "format", "f", false, "output result with formatting")
	flagSet.StringArrayVarP(&fconfig, "fconfig", "F", nil, "configure -f,--format options (KEY=VAL: maxdepth, oneline, indent, indentstr)")
	flagSet.BoolVar(&system, "system", false, "use system bus instead of session bus")
	flagSet.IntVarP(&sleepSec, "sleep", "s", 0, "sleep for NUM seconds before running")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "be verbose with output")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	fc := DefaultFormatConfig
	if len(fconfig) > 0 {
		// -F without -f almost always means -f was forgotten
		format = true
	}
	if format {
		var err error
		if fc, err = ParseFormatConfig(fconfig); err != nil {
			return err
		}
	}
	if verbose {
		log.Printf("Format config: %+v", fc)
	}

	if sleepSec > 0 {
		log.Printf("Sleeping for %d second(s)", sleepSec)
		time.Sleep(time.Duration(sleepSec) * time.Second)
	}

	q, closeBus, err := connect(system)
	if err != nil {
		return err
	}
	defer closeBus()

	if verbose {
		log.Printf("%s.GetExtensionInfo(%q)", busName, uuid)
	}
	info, err := q.GetExtensionInfo(uuid)
	if err != nil {
		return err
	}
	if err := printResponse(stdout, stderr, uuid+": Info:", info, asJSON, fc); err != nil {
		return err
	}

	if verbose {
		log.Printf("%s.GetExtensionErrors(%q)", busName, uuid)
	}
	extErrs, err := q.GetExtensionErrors(uuid)
	if err != nil {
		return err
	}
	return printResponse(stdout, stderr, uuid+": Errors:", extErrs, asJSON, fc)
}

func printResponse(stdout, stderr io.Writer, name string, resp any, asJSON bool, fc FormatConfig) error {
	fmt.Fprintln(stderr, name)
	if !asJSON {
		_, err := fmt.Fprintln(stdout, Format(resp, fc))
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(Plain(resp))
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, connectBus); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
