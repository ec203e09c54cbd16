// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command xhrmigrate migrates legacy Rails test call sites of the form
//
//	xhr :get, images_path, {limit: 10}, {Accept: 'text/html'}
//
// to the Rails 5 keyword-argument convention
//
//	get images_path, headers: { Accept: 'text/html' }, params: { limit: 10 }, xhr: true
//
// Usage:
//
//	# Print the rewritten file to stdout
//	xhrmigrate test/functional/images_controller_test.rb
//
//	# Rewrite files in place, 8 files at a time
//	xhrmigrate -w --jobs 8 test/
//
//	# Show what would change
//	xhrmigrate --diff test/
//
//	# CI gate: non-zero exit if any file still uses the legacy form
//	xhrmigrate --check test/
//
// A file that fails validation (already-migrated call, unsupported call
// shape, unparseable source) is reported and left untouched; other files
// in the same run are still processed.
package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/xhrmigrate/config"
)

var (
	flagWrite   bool
	flagDiff    bool
	flagCheck   bool
	flagVerbose bool
	flagJobs    int
	flagConfig  string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "xhrmigrate [flags] path ...",
		Short:         "Migrate legacy `xhr` test calls to the keyword-argument convention",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	cmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "rewrite files in place instead of printing to stdout")
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "print a unified diff of the changes instead of the result")
	cmd.Flags().BoolVar(&flagCheck, "check", false, "report files that need migration and exit non-zero if any do")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().IntVar(&flagJobs, "jobs", 0, "number of files processed in parallel (default from config)")
	cmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML run configuration file")

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(flagConfig)
	if err != nil {
		slog.Error("loading configuration", slog.Any("error", err))
		return err
	}
	if flagJobs > 0 {
		cfg.Jobs = flagJobs
	}

	files, err := collectFiles(args, cfg)
	if err != nil {
		slog.Error("collecting files", slog.Any("error", err))
		return err
	}
	if len(files) == 0 {
		slog.Info("no files to process")
		return nil
	}

	results := processFiles(cmd.Context(), cfg, files)

	failed, changed := 0, 0
	for _, res := range results {
		if res.err != nil {
			slog.Error("migration failed",
				slog.String("file", res.path),
				slog.Any("error", res.err))
			failed++
			continue
		}
		same := bytes.Equal(res.original, res.rewritten)
		if !same {
			changed++
		}
		if err := emit(res, same); err != nil {
			slog.Error("writing result",
				slog.String("file", res.path),
				slog.Any("error", err))
			failed++
		}
	}

	slog.Info("run complete",
		slog.Int("files", len(results)),
		slog.Int("changed", changed),
		slog.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	if flagCheck && changed > 0 {
		return fmt.Errorf("%d files need migration", changed)
	}
	return nil
}

// emit writes one successful result according to the output mode.
func emit(res result, same bool) error {
	switch {
	case flagCheck:
		if !same {
			fmt.Println(res.path)
		}
	case flagDiff:
		if !same {
			text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(res.original)),
				B:        difflib.SplitLines(string(res.rewritten)),
				FromFile: res.path,
				ToFile:   res.path + " (migrated)",
				Context:  3,
			})
			if err != nil {
				return err
			}
			fmt.Print(text)
		}
	case flagWrite:
		if !same {
			if err := os.WriteFile(res.path, res.rewritten, 0o644); err != nil {
				return err
			}
			slog.Debug("rewrote file", slog.String("file", res.path))
		}
	default:
		if _, err := os.Stdout.Write(res.rewritten); err != nil {
			return err
		}
	}
	return nil
}
