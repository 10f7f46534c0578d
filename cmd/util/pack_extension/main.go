// Command pack_extension zips a shell extension directory into
// <uuid>.shell-extension.zip, the layout the shell's installer expects.
package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

const (
	metadataFile = "metadata.json"
	zipSuffix    = ".shell-extension.zip"
)

// requiredKeys must be present in metadata.json.
var requiredKeys = []string{"uuid", "name", "description", "shell-version"}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var distDir string
	var version int

	flagSet := pflag.NewFlagSet("pack_extension", pflag.ContinueOnError)
	flagSet.StringVarP(&distDir, "out-dir", "o", "dist", "directory to write the zip to")
	flagSet.IntVar(&version, "version", 0, "stamp this version into metadata.json (default: keep)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	srcDir := "."
	if flagSet.NArg() > 0 {
		srcDir = flagSet.Arg(0)
	}

	raw, err := os.ReadFile(filepath.Join(srcDir, metadataFile))
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	uuid, err := validateMetadata(raw)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("creating dist dir: %w", err)
	}

	var modifier func(string, []byte) ([]byte, error)
	if flagSet.Changed("version") {
		modifier = func(path string, content []byte) ([]byte, error) {
			if filepath.Base(path) == metadataFile {
				return stampVersion(content, version)
			}
			return content, nil
		}
	}

	dest := filepath.Join(distDir, uuid+zipSuffix)
	fmt.Fprintf(stdout, "Packing %s...\n", uuid)
	if err := zipDirectory(srcDir, dest, modifier); err != nil {
		return fmt.Errorf("packing %s: %w", uuid, err)
	}
	fmt.Fprintf(stdout, "Created %s\n", dest)
	return nil
}

// validateMetadata checks the required keys and returns the uuid.
func validateMetadata(content []byte) (string, error) {
	var metadata map[string]any
	if err := json.Unmarshal(content, &metadata); err != nil {
		return "", fmt.Errorf("invalid %s: %w", metadataFile, err)
	}
	for _, k := range requiredKeys {
		if _, ok := metadata[k]; !ok {
			return "", fmt.Errorf("%s is missing %q", metadataFile, k)
		}
	}
	uuid, ok := metadata["uuid"].(string)
	if !ok || uuid == "" || strings.ContainsAny(uuid, `/\`) {
		return "", fmt.Errorf("%s has an invalid uuid %v", metadataFile, metadata["uuid"])
	}
	return uuid, nil
}

// stampVersion sets the top-level version of metadata.json.
func stampVersion(content []byte, version int) ([]byte, error) {
	var metadata map[string]any
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	if err := dec.Decode(&metadata); err != nil {
		return nil, err
	}
	metadata["version"] = version
	return json.MarshalIndent(metadata, "", "  ")
}

// skipped reports files that never belong in a package: hidden files,
// version_bump backups and earlier zips.
func skipped(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.Contains(name, ".backup") ||
		strings.HasSuffix(name, ".zip")
}

// zipDirectory zips the contents of src into dest.
// modifier is an optional function to modify file content on the fly.
func zipDirectory(src, dest string, modifier func(path string, content []byte) ([]byte, error)) (err error) {
	absDest, _ := filepath.Abs(dest)

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := zip.NewWriter(out)
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != src && skipped(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absDest {
			return nil
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		f, err := w.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if modifier != nil {
			content, err = modifier(path, content)
			if err != nil {
				return fmt.Errorf("modifying %s: %w", path, err)
			}
		}

		_, err = f.Write(content)
		return err
	})
}
