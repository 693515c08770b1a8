// Command mdsfetch is a minimal, single-purpose exporter. It keeps its
// cursor in a flat resume file instead of the token database, so a killed
// run can be restarted with the same flags and pick up where it stopped.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"mdsexport/pkg/config"
	"mdsexport/pkg/exporter"
	"mdsexport/pkg/logger"
	"mdsexport/pkg/mds"
	"mdsexport/pkg/resumefile"
	"mdsexport/pkg/ui"
)

var (
	resumptionToken = flag.String("resumption-token", "", "Resumption token to start the export from")
	output          = flag.String("output", "downloads.jsonl", "Output file for downloaded records")
	resumeFilePath  = flag.String("resume-file", "resume.txt", "File holding the latest cursor")
	baseURL         = flag.String("base-url", "", "Base URL of the MDS API")
)

func main() {
	flag.Parse()

	// Build command line flags map
	flags := make(map[string]interface{})
	if *baseURL != "" {
		flags["base-url"] = *baseURL
	}
	if *output != "" {
		flags["output"] = *output
	}

	// Load configuration
	cfg, err := config.Load("", flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	log := logger.GetLogger()

	resume := resumefile.New(*resumeFilePath)

	// An explicit token wins; otherwise fall back to the resume file left
	// behind by an earlier run.
	token := strings.TrimSpace(*resumptionToken)
	if token == "" {
		token, err = resume.Load()
		if err != nil {
			ui.PrintError("Failed to read resume file", err.Error())
			os.Exit(1)
		}
		if token != "" {
			ui.PrintInfo("Resuming from", resume.Path())
		}
	}

	if token == "" {
		ui.PrintError("Missing resumption token", "Provide --resumption-token or a non-empty --resume-file")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := mds.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	driver := exporter.New(client, log)

	log.WithField("output", cfg.Export.OutputPath).Info("Starting export")

	summary, err := driver.Run(context.Background(), exporter.Options{
		Token:        token,
		OutputPath:   cfg.Export.OutputPath,
		Updater:      exporter.FileUpdater{File: resume},
		ShowProgress: true,
	})
	if err != nil {
		log.WithError(err).Error("Export failed")
		ui.PrintError("Export failed", err.Error())
		os.Exit(1)
	}

	log.WithField("records", summary.Records).Info("Export completed successfully")
}
