//go:build release

package log

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kaedenn/kext/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	logDir, err := config.CacheDir()
	if err != nil {
		log.Printf("Keeping stderr logging: %v", err)
		return
	}

	// Ensure the log directory exists
	if err := os.MkdirAll(logDir, config.DirPerm); err != nil {
		log.Printf("Keeping stderr logging, failed to create %s: %v", logDir, err)
		return
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, config.ConsoleLogFile),
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	})
}

// Print calls the standard log.Print()
func Print(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println()
func Println(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
}

// Fatal calls the standard log.Fatal()
func Fatal(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf calls the standard log.Fatalf()
func Fatalf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Debug is a no-op in release builds
func Debug(v ...interface{}) {}

// Debugf is a no-op in release builds
func Debugf(format string, v ...interface{}) {}
