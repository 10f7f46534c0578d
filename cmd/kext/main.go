package main

import (
	"os"

	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/pkg/env"
	"github.com/kaedenn/kext/pkg/panel"
	"github.com/kaedenn/kext/ui"
	"github.com/kaedenn/kext/util/log"
)

func main() {
	cacheDir, err := config.CacheDir()
	if err != nil {
		log.Fatalf("Failed to locate cache directory: %v", err)
	}

	acquired, err := acquireLock(cacheDir)
	if err != nil {
		log.Fatalf("Failed to acquire single-instance lock: %v", err)
	}
	if !acquired {
		log.Printf("Another instance of %s is already running.", config.AppName)
		os.Exit(0)
	}
	defer releaseLock()

	e, err := env.New(cacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize %s: %v", config.AppName, err)
	}
	e.Cache.Logf("init() %s %s", config.AppName, config.AppVersion)

	app := ui.GetInstance(e)
	if app == nil {
		e.Error.Logf("%s requires a system tray", config.AppName)
		return
	}

	app.Register(panel.NewButton(e))
	e.Cache.Logf("enable()")
	app.Start()
}
