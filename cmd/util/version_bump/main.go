// Command version_bump sets or increments the top-level "version" of a JSON
// document such as an extension's metadata.json.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// versionKey is the top-level key holding the version.
const versionKey = "version"

// backupSuffix is appended to the input path for backup copies.
const backupSuffix = "backup"

// versionFormat remembers how a version was written so the new one can be
// written the same way.
type versionFormat struct {
	str    bool // Written as a JSON string
	fixed  bool // Written without a fractional part
	places int  // Digits after the decimal point, -1 if unknown
}

// parseVersion reads a version that is a JSON number or a numeric string.
func parseVersion(v any) (float64, versionFormat, error) {
	var text string
	f := versionFormat{places: -1}
	switch t := v.(type) {
	case string:
		text, f.str = strings.TrimSpace(t), true
	case json.Number:
		text = t.String()
	default:
		return 0, f, fmt.Errorf("version must be a number or a string, got %T", v)
	}

	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, f, fmt.Errorf("invalid version %q: %w", text, err)
	}
	if i := strings.IndexByte(text, '.'); i >= 0 {
		f.places = len(text) - i - 1
	} else if !strings.ContainsAny(text, "eE") {
		f.fixed, f.places = true, 0
	}
	return val, f, nil
}

// formatVersion writes val in format f. A fixed version that is no longer
// integral becomes a decimal. places overrides the deduced precision when
// not negative.
func formatVersion(val float64, f versionFormat, places int) any {
	if places < 0 {
		places = f.places
	}
	if f.fixed && val != math.Trunc(val) {
		f.fixed = false
		if places == 0 {
			places = -1
		}
	}

	var text string
	switch {
	case f.fixed:
		text = strconv.FormatInt(int64(val), 10)
	case places > 0:
		text = strconv.FormatFloat(round(val, places), 'f', places, 64)
	default:
		text = strconv.FormatFloat(val, 'f', -1, 64)
		if !f.str && !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
	}

	if f.str {
		return text
	}
	return json.Number(text)
}

func round(val float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(val*p) / p
}

// updateVersion applies set, or else inc, to the version v.
func updateVersion(v any, set *float64, inc float64, places int) (any, error) {
	val, f, err := parseVersion(v)
	if err != nil {
		return nil, err
	}
	if set != nil {
		val = *set
	} else {
		val += inc
	}
	return formatVersion(val, f, places), nil
}

// backup copies path to path.backup, or path.backup.N if that exists.
func backup(path string) (int, string, error) {
	bkpath := path + "." + backupSuffix
	for n := 1; ; n++ {
		if _, err := os.Stat(bkpath); errors.Is(err, os.ErrNotExist) {
			break
		}
		bkpath = fmt.Sprintf("%s.%s.%d", path, backupSuffix, n)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", err
	}
	if err := os.WriteFile(bkpath, data, 0644); err != nil {
		return 0, "", err
	}
	return len(data), bkpath, nil
}

// sameFile reports whether a and b name the same existing file.
func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func encode(data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		inc       float64
		set       float64
		places    int
		out       string
		overwrite bool
		noBackup  bool
	)

	flagSet := pflag.NewFlagSet("version_bump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Float64VarP(&inc, "inc", "i", 0.1, "add NUM to the version number")
	flagSet.Float64VarP(&set, "set", "s", 0, "set the version number to NUM")
	flagSet.IntVarP(&places, "places", "n", -1, "round version to NUM digits after the decimal (default: deduce)")
	flagSet.StringVarP(&out, "out", "o", "", "write output to PATH (default: stdout)")
	flagSet.BoolVarP(&overwrite, "overwrite", "O", false, "overwrite file in-place (implies -o=<metadata>)")
	flagSet.BoolVar(&noBackup, "no-backup", false, "do not create a backup file when overwriting the input file")
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "usage: version_bump [flags] [metadata.json]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}
	metadata := flagSet.Arg(0)
	if overwrite && metadata == "" {
		return errors.New("--overwrite requires a filename; can't overwrite stdin")
	}

	var raw []byte
	var err error
	if metadata != "" {
		raw, err = os.ReadFile(metadata)
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return err
	}

	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	old, ok := data[versionKey]
	if !ok {
		return fmt.Errorf("no top-level %q key", versionKey)
	}

	var setp *float64
	if flagSet.Changed("set") {
		setp = &set
	}
	ver, err := updateVersion(old, setp, inc, places)
	if err != nil {
		return err
	}
	data[versionKey] = ver
	fmt.Fprintf(stderr, "Set version to %v (from %v)\n", ver, old)

	outputFile := out
	if overwrite {
		outputFile = metadata
	}

	if outputFile != "" && sameFile(outputFile, metadata) {
		if noBackup {
			fmt.Fprintf(stderr, "Warning: about to overwrite %s!\n", metadata)
		} else {
			n, bkpath, err := backup(metadata)
			if err != nil {
				return fmt.Errorf("failed to back up %s: %w", metadata, err)
			}
			fmt.Fprintf(stderr, "Copied %s to %s (%d bytes)\n", metadata, bkpath, n)
		}
	}

	encoded, err := encode(data)
	if err != nil {
		return err
	}
	if outputFile == "" {
		_, err = stdout.Write(encoded)
		return err
	}
	if err := os.WriteFile(outputFile, encoded, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Wrote %d bytes to %s\n", len(encoded), outputFile)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
