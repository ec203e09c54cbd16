// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/xhrmigrate/config"
	"github.com/AleutianAI/xhrmigrate/rewrite"
	"github.com/AleutianAI/xhrmigrate/syntax"
)

// result is the outcome of migrating one file. original and rewritten
// are both nil when err is set: a failed file never produces output.
type result struct {
	path      string
	original  []byte
	rewritten []byte
	err       error
}

// collectFiles expands the command-line arguments into the list of files
// to migrate. Directory arguments are walked recursively for files with a
// configured extension; explicitly named files are taken as-is. Exclude
// globs from the configuration apply only during directory discovery.
func collectFiles(args []string, cfg *config.Config) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if excluded(path, cfg) {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasExtension(path, cfg.Extensions) || excluded(path, cfg) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func excluded(path string, cfg *config.Config) bool {
	base := filepath.Base(path)
	slash := filepath.ToSlash(path)
	for _, pattern := range cfg.Exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, slash); ok {
			return true
		}
		if strings.HasPrefix(slash, strings.TrimSuffix(pattern, "/")+"/") {
			return true
		}
	}
	return false
}

// processFiles migrates the files with up to cfg.Jobs workers. Files
// share nothing — each gets its own tree, edit set, and output buffer —
// so the only coordination is the worker limit. Results come back in
// input order regardless of completion order.
func processFiles(ctx context.Context, cfg *config.Config, paths []string) []result {
	parser := syntax.NewParser(syntax.WithMaxFileSize(cfg.MaxFileSize))
	results := make([]result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = processOne(ctx, parser, path)
			return nil
		})
	}
	// Workers report per-file failures through their result slot.
	_ = g.Wait()

	return results
}

func processOne(ctx context.Context, parser *syntax.Parser, path string) result {
	content, err := os.ReadFile(path)
	if err != nil {
		return result{path: path, err: err}
	}

	tree, err := parser.Parse(ctx, content, path)
	if err != nil {
		return result{path: path, err: err}
	}

	rewritten, err := rewrite.Source(ctx, content, tree)
	if err != nil {
		return result{path: path, err: err}
	}

	return result{path: path, original: content, rewritten: rewritten}
}
