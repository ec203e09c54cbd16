// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package syntax holds the node model shared by the Ruby parser and the
// printer, plus the parser and printer themselves.
//
// The model is deliberately small: only the constructs the rewriter
// inspects structurally get their own kind (calls, hashes, pairs, symbols,
// the true literal). Everything else is carried as an opaque node that
// keeps its verbatim source text and its converted named children, so
// traversal still reaches calls nested anywhere in the file.
package syntax

// Kind tags a Node with the closed set of shapes the rewriter understands.
type Kind uint8

const (
	// KindOpaque is any construct the rewriter does not interpret.
	// Opaque nodes carry their verbatim source text.
	KindOpaque Kind = iota

	// KindCall is a method invocation. Children are laid out as
	// [receiver, method, args..., block?]; the receiver slot is nil for
	// receiver-less calls and the method slot is a KindSymbol node.
	KindCall

	// KindHash is a hash literal (braced or a trailing run of bare
	// keyword pairs). Children are the entries, normally KindPair.
	KindHash

	// KindPair is a single key/value hash entry. Children are [key, value].
	KindPair

	// KindSymbol is a symbol literal or a symbol-valued name (method
	// names, hash keys). The value lives in Node.Sym, without the colon.
	KindSymbol

	// KindTrue is the true literal.
	KindTrue

	// KindBlock is a block attached to a call (`do ... end` or braces).
	// Block nodes carry their verbatim source text like opaque nodes, but
	// keep their own kind so blocks never masquerade as positional
	// arguments. A block is always the last child of its call.
	KindBlock
)

// String returns a short name for the kind, used in logs and test failures.
func (k Kind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindCall:
		return "call"
	case KindHash:
		return "hash"
	case KindPair:
		return "pair"
	case KindSymbol:
		return "symbol"
	case KindTrue:
		return "true"
	case KindBlock:
		return "block"
	}
	return "unknown"
}

// Span is a byte-offset range into the original source buffer.
type Span struct {
	Start uint32
	End   uint32
}

// Node is one vertex of the tagged syntax tree.
//
// Description:
//
//	Nodes come from exactly two places. Parsed nodes are produced by
//	Parse, always carry a Span, and are never mutated after conversion.
//	Synthesized nodes are built by the rewriter through the New*
//	constructors and never carry a Span. The Span is used only to know
//	which original bytes a replacement covers; semantics are always
//	derived from the node itself.
//
// Thread Safety: Nodes are immutable after construction and safe to
// share between goroutines.
type Node struct {
	Kind Kind

	// Sym is the symbol value for KindSymbol nodes, without the leading colon.
	Sym string

	// Text is the verbatim source text for KindOpaque nodes.
	Text string

	// Children are the ordered child nodes. For KindCall the first slot
	// is the receiver and may be nil.
	Children []*Node

	// Span locates the node in the original buffer; nil for synthesized nodes.
	Span *Span
}

// NewSymbol builds a synthesized symbol node.
func NewSymbol(name string) *Node {
	return &Node{Kind: KindSymbol, Sym: name}
}

// NewTrue builds a synthesized true literal.
func NewTrue() *Node {
	return &Node{Kind: KindTrue}
}

// NewPair builds a synthesized key/value pair.
func NewPair(key, value *Node) *Node {
	return &Node{Kind: KindPair, Children: []*Node{key, value}}
}

// NewHash builds a synthesized hash literal from the given pairs.
func NewHash(pairs ...*Node) *Node {
	return &Node{Kind: KindHash, Children: pairs}
}

// NewCall builds a synthesized call node. receiver may be nil for a
// receiver-less call; method must be a KindSymbol node.
func NewCall(receiver, method *Node, args ...*Node) *Node {
	children := make([]*Node, 0, 2+len(args))
	children = append(children, receiver, method)
	children = append(children, args...)
	return &Node{Kind: KindCall, Children: children}
}

// Receiver returns the receiver of a call node, or nil.
func (n *Node) Receiver() *Node {
	if n == nil || n.Kind != KindCall || len(n.Children) < 1 {
		return nil
	}
	return n.Children[0]
}

// Method returns the method-name symbol of a call node, or nil.
func (n *Node) Method() *Node {
	if n == nil || n.Kind != KindCall || len(n.Children) < 2 {
		return nil
	}
	return n.Children[1]
}

// Args returns the positional argument nodes of a call node. A trailing
// block is not an argument and is excluded; use Block to reach it. The
// returned slice aliases the node's children and must not be mutated.
func (n *Node) Args() []*Node {
	if n == nil || n.Kind != KindCall || len(n.Children) < 3 {
		return nil
	}
	args := n.Children[2:]
	if last := args[len(args)-1]; last != nil && last.Kind == KindBlock {
		args = args[:len(args)-1]
	}
	return args
}

// Block returns the block attached to a call node, or nil.
func (n *Node) Block() *Node {
	if n == nil || n.Kind != KindCall || len(n.Children) < 3 {
		return nil
	}
	last := n.Children[len(n.Children)-1]
	if last != nil && last.Kind == KindBlock {
		return last
	}
	return nil
}

// SourceText returns the original bytes the node was parsed from, or ""
// for synthesized nodes and spans that fall outside src.
func (n *Node) SourceText(src []byte) string {
	if n == nil || n.Span == nil {
		return ""
	}
	if int(n.Span.Start) > len(src) || int(n.Span.End) > len(src) || n.Span.Start > n.Span.End {
		return ""
	}
	return string(src[n.Span.Start:n.Span.End])
}

// Walk calls fn for n and then, unless fn returned false, for every
// descendant in depth-first order. Nil children (the receiver slot of
// receiver-less calls) are skipped.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
