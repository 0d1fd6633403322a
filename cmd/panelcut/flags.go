package main

import (
	"github.com/flanksource/commons/logger"
	"github.com/piwi3910/PanelCut/internal/project"
	"github.com/spf13/pflag"
)

// AllFlags holds the global command line options.
type AllFlags struct {
	logger.Flags
	ConfigDir string // Overrides ~/.panelcut
}

var Flags = AllFlags{
	Flags: logger.Flags{
		Level:       "info",
		LogToStderr: true,
	},
}

// BindFlags adds the global flags to a cobra flag set.
func BindFlags(flags *pflag.FlagSet) {
	flags.CountVarP(&Flags.Flags.LevelCount, "loglevel", "v", "Increase logging level")
	flags.StringVar(&Flags.Flags.Level, "log-level", "info", "Set the default log level")
	flags.BoolVar(&Flags.Flags.JsonLogs, "json-logs", false, "Print logs in json format to stderr")
	flags.BoolVar(&Flags.Flags.ReportCaller, "report-caller", false, "Report log caller info")
	flags.BoolVar(&Flags.Flags.LogToStderr, "log-to-stderr", true, "Log to stderr instead of stdout")

	flags.StringVar(&Flags.ConfigDir, "config-dir", "", "Directory for config, inventory, profiles and templates (default ~/.panelcut)")
}

func (a AllFlags) UseFlags() {
	logger.Configure(a.Flags)
	logger.Debugf("config dir: %s", a.configDir())
}

func (a AllFlags) configDir() string {
	if a.ConfigDir != "" {
		return a.ConfigDir
	}
	return project.DefaultConfigDir()
}

func configPath() string    { return project.ConfigPath(Flags.configDir()) }
func inventoryPath() string { return project.InventoryPath(Flags.configDir()) }
func templatesPath() string { return project.TemplatesPath(Flags.configDir()) }
func profilesPath() string  { return project.ProfilesPath(Flags.configDir()) }
