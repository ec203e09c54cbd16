// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rewrite

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/xhrmigrate/syntax"
)

var (
	// ErrAlreadyMigrated is returned when a legacy-named call already
	// carries keyword arguments. Rewriting it again would double-wrap.
	ErrAlreadyMigrated = errors.New("call site already uses keyword arguments")

	// ErrUnsupportedArity is returned when a matched call does not fit
	// either of the two known legacy shapes. The tool refuses to guess.
	ErrUnsupportedArity = errors.New("unsupported legacy call shape")

	// ErrOverlappingEdits is returned when two matched call sites claim
	// overlapping byte ranges. Distinct call sites never overlap in
	// well-formed input, so this indicates a malformed tree.
	ErrOverlappingEdits = errors.New("overlapping rewrites")
)

// nodeErr wraps err with the offending node's source text, so the
// user-visible failure names the exact call site that triggered it.
func nodeErr(err error, n *syntax.Node, src []byte) error {
	if text := n.SourceText(src); text != "" {
		return fmt.Errorf("%w: %s", err, text)
	}
	return err
}
