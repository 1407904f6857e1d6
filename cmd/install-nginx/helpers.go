package main

import (
	"github.com/nginxutil/install-nginx/internal/config"
	ui "github.com/nginxutil/install-nginx/internal/ui"
)

// getPrinter returns a UI printer bound to the current --output flag.
func getPrinter() ui.Printer { return ui.NewPrinterFromGlobal(flagOutput) }

// loadCfg reads defaults + env via internal/config.Load() and then
// applies overrides from flags (signing-key, path, user, pid-folder).
func loadCfg() config.Config {
	cfg := config.Load()
	if flagSigningKey != "" {
		cfg.SigningKeyPath = flagSigningKey
	}
	if flagPath != "" {
		cfg.InstallPath = flagPath
	}
	if flagUser != "" {
		cfg.ServiceUser = flagUser
	}
	if flagPIDFolder != "" {
		cfg.PIDFolder = flagPIDFolder
	}
	return cfg
}
