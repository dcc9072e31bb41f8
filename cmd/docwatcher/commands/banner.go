package commands

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/intake"
	"github.com/teranos/docwatcher/logger"
	"github.com/teranos/docwatcher/version"
)

// printStartupBanner prints the service settings when stdout is a terminal
// user rather than a log collector
func printStartupBanner(cfg *am.Config) {
	if logger.JSONOutput {
		return
	}

	info := version.Get()
	pterm.DefaultHeader.WithFullWidth().Println("docwatcher " + info.Version)

	rows := [][]string{
		{"Watch folder", cfg.Watch.Folder},
		{"Consume folder", cfg.Consume.Folder},
		{"Extensions", strings.Join(intake.SupportedExtensions(), " ")},
		{"Settle", cfg.Stabilization.Settle.String()},
		{"HTTP", cfg.Server.Addr()},
		{"Log level", logger.Level().CapitalString()},
		{"Commit", info.Short()},
	}
	if cfg.Log.File != "" {
		rows = append(rows, []string{"Log file", cfg.Log.File})
	}

	pterm.DefaultTable.WithData(rows).Render()
	pterm.Println()
}
