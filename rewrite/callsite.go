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
	"github.com/AleutianAI/xhrmigrate/syntax"
)

// legacyMethod is the method name of the calling convention this tool
// replaces. The rule is fixed; there is deliberately no way to configure it.
const legacyMethod = "xhr"

// isLegacyCall reports whether the node is a receiver-less call to the
// legacy method. Pure predicate; it runs on every node of the tree so a
// single pass converts all call sites in a file.
func isLegacyCall(n *syntax.Node) bool {
	if n == nil || n.Kind != syntax.KindCall || n.Receiver() != nil {
		return false
	}
	method := n.Method()
	return method != nil && method.Kind == syntax.KindSymbol && method.Sym == legacyMethod
}

// legacyArguments validates a matched call against the two supported
// legacy shapes and returns its trailing argument nodes.
//
// Description:
//
//	A legacy call is `xhr :verb, path`, optionally followed by a
//	positional params argument and a positional headers argument. The
//	function returns those trailing arguments (0, 1, or 2 nodes).
//
//	Two conditions are surfaced as errors rather than skipped:
//	  - ErrAlreadyMigrated: the single trailing argument is a keyword
//	    hash whose first key is params or headers. The call was already
//	    converted (or hand-written in the new style under the old name);
//	    rewriting it would double-wrap the arguments.
//	  - ErrUnsupportedArity: more than two trailing arguments, a missing
//	    verb/path prefix, a verb that is not a symbol literal, or an
//	    attached block. Richer call signatures than the two known shapes
//	    are refused outright.
//
// Inputs:
//   - call: A node for which isLegacyCall returned true.
//   - src: The original buffer, used only to quote the offending call in
//     error messages.
//
// Outputs:
//   - []*syntax.Node: The trailing arguments; element 0 (if present) is
//     params, element 1 (if present) is headers.
//   - error: ErrAlreadyMigrated or ErrUnsupportedArity, wrapped with the
//     call's source text.
func legacyArguments(call *syntax.Node, src []byte) ([]*syntax.Node, error) {
	if call.Block() != nil {
		return nil, nodeErr(ErrUnsupportedArity, call, src)
	}
	args := call.Args()
	if len(args) < 2 {
		return nil, nodeErr(ErrUnsupportedArity, call, src)
	}
	if args[0] == nil || args[0].Kind != syntax.KindSymbol {
		return nil, nodeErr(ErrUnsupportedArity, call, src)
	}

	trailing := args[2:]
	if len(trailing) == 1 && isKeywordHash(trailing[0]) {
		return nil, nodeErr(ErrAlreadyMigrated, call, src)
	}
	if len(trailing) > 2 {
		return nil, nodeErr(ErrUnsupportedArity, call, src)
	}
	return trailing, nil
}

// isKeywordHash reports whether the node is a hash literal whose first
// entry is keyed by the params or headers symbol — the signature of a
// call that already uses the new convention.
func isKeywordHash(n *syntax.Node) bool {
	if n == nil || n.Kind != syntax.KindHash || len(n.Children) == 0 {
		return false
	}
	first := n.Children[0]
	if first == nil || first.Kind != syntax.KindPair || len(first.Children) != 2 {
		return false
	}
	key := first.Children[0]
	if key == nil || key.Kind != syntax.KindSymbol {
		return false
	}
	return key.Sym == "params" || key.Sym == "headers"
}

// synthesizeCall builds the replacement call node from a validated match.
//
// The replacement keeps the original path expression untouched, promotes
// the verb symbol to the method name, and folds the trailing arguments
// into one keyword hash. Pair order is fixed: headers, params, then the
// xhr flag, and it is never reordered after synthesis. A params argument
// that is an empty hash literal is dropped entirely; emitting `params: {}`
// would suggest meaningful params where historically there were none.
func synthesizeCall(verb, path *syntax.Node, trailing []*syntax.Node) *syntax.Node {
	var params, headers *syntax.Node
	if len(trailing) > 0 {
		params = trailing[0]
	}
	if len(trailing) > 1 {
		headers = trailing[1]
	}

	var pairs []*syntax.Node
	if headers != nil {
		pairs = append(pairs, syntax.NewPair(syntax.NewSymbol("headers"), headers))
	}
	if params != nil && !isEmptyHash(params) {
		pairs = append(pairs, syntax.NewPair(syntax.NewSymbol("params"), params))
	}
	pairs = append(pairs, syntax.NewPair(syntax.NewSymbol("xhr"), syntax.NewTrue()))

	return syntax.NewCall(nil, syntax.NewSymbol(verb.Sym), path, syntax.NewHash(pairs...))
}

func isEmptyHash(n *syntax.Node) bool {
	return n != nil && n.Kind == syntax.KindHash && len(n.Children) == 0
}
