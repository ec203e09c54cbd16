// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rewrite converts legacy `xhr :verb, path, params, headers`
// call sites to the keyword-argument convention
// `verb path, headers: ..., params: ..., xhr: true`.
//
// The package is a pure transformation over (original bytes, parsed tree):
// it does no file I/O and holds no state between calls. All bytes outside
// matched call expressions come through untouched, including whitespace
// and comments.
package rewrite

import (
	"context"
	"log/slog"
	"sort"

	"github.com/AleutianAI/xhrmigrate/syntax"
)

// edit is one pending text replacement: the original span of a matched
// call expression and the serialized replacement call.
type edit struct {
	start uint32
	end   uint32
	text  string
}

// Source rewrites every legacy call site in src.
//
// Description:
//
//	Source walks the whole tree once. For each matched call it validates
//	the legacy shape, synthesizes the replacement subtree, serializes it,
//	and records a span edit. The first validation failure aborts the
//	whole file: no partial conversion is ever produced. When every match
//	validates, the edits are applied in a single linear pass over the
//	buffer.
//
// Inputs:
//   - ctx: Context for tracing. The walk itself has no suspension points.
//   - src: The original file bytes the tree was parsed from.
//   - tree: The parsed tree for src, spans attached.
//
// Outputs:
//   - []byte: The rewritten source. A fresh buffer, even when no call
//     site matched.
//   - error: ErrAlreadyMigrated, ErrUnsupportedArity, or
//     ErrOverlappingEdits, wrapped with the offending call's text.
//
// Thread Safety: Safe for concurrent use; rewrites of different files
// share nothing.
func Source(ctx context.Context, src []byte, tree *syntax.Node) ([]byte, error) {
	ctx, span := startRewriteSpan(ctx, len(src))
	defer span.End()

	printer := syntax.NewPrinter(syntax.WithCommandCalls(true))

	var edits []edit
	var failure error
	syntax.Walk(tree, func(n *syntax.Node) bool {
		if failure != nil {
			return false
		}
		if !isLegacyCall(n) {
			return true
		}

		if n.Span == nil {
			// Matches come from the parsed tree, which always carries spans.
			failure = nodeErr(ErrUnsupportedArity, n, src)
			return false
		}

		trailing, err := legacyArguments(n, src)
		if err != nil {
			failure = err
			return false
		}

		args := n.Args()
		replacement := synthesizeCall(args[0], args[1], trailing)
		text, err := printer.Print(replacement)
		if err != nil {
			failure = nodeErr(err, n, src)
			return false
		}

		slog.Debug("rewriting call site",
			slog.String("from", n.SourceText(src)),
			slog.String("to", text))
		edits = append(edits, edit{start: n.Span.Start, end: n.Span.End, text: text})
		return true
	})
	if failure != nil {
		recordRewrite(ctx, span, 0, failure)
		return nil, failure
	}

	out, err := applyEdits(src, edits)
	recordRewrite(ctx, span, len(edits), err)
	return out, err
}

// applyEdits materializes the final text: every edit's span is replaced
// by its serialized text, everything else is copied byte for byte. Edits
// commute, so they are sorted by start offset and applied in one pass.
func applyEdits(src []byte, edits []edit) ([]byte, error) {
	if len(edits) == 0 {
		return append([]byte(nil), src...), nil
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	out := make([]byte, 0, len(src))
	last := uint32(0)
	for _, e := range edits {
		if e.start < last {
			return nil, ErrOverlappingEdits
		}
		out = append(out, src[last:e.start]...)
		out = append(out, e.text...)
		last = e.end
	}
	out = append(out, src[last:]...)
	return out, nil
}
