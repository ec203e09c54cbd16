// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package syntax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

const (
	// DefaultMaxFileSize is the largest file Parse accepts by default (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the size above which Parse logs a warning (1MB).
	WarnFileSize = 1024 * 1024
)

var (
	// ErrFileTooLarge is returned when content exceeds the parser's size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent is returned when content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrSyntax is returned when the source cannot be parsed cleanly.
	// The rewriter never operates on a partially-parsed file.
	ErrSyntax = errors.New("syntax error")
)

// ParserOption configures a Parser instance.
type ParserOption func(*Parser)

// WithMaxFileSize sets the maximum file size the parser will accept.
func WithMaxFileSize(bytes int64) ParserOption {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// Parser parses Ruby source into the tagged node model.
//
// Description:
//
//	Parser uses tree-sitter with the Ruby grammar. Each Parse call creates
//	its own tree-sitter parser instance internally, so a single Parser may
//	be shared between goroutines processing different files.
//
// Thread Safety: Parser instances are safe for concurrent use.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a Parser with the given options applied over defaults.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts Ruby source into the tagged node tree.
//
// Description:
//
//	Parse validates size and encoding, runs tree-sitter over the content,
//	and converts the concrete syntax tree into the Node model. Every
//	converted node carries the byte-offset span of the source it came
//	from. A tree containing syntax errors is rejected outright: the
//	rewriter refuses to patch a file it could not fully understand.
//
// Inputs:
//   - ctx: Context for cancellation and tracing. Tree-sitter parsing
//     itself cannot be interrupted mid-parse.
//   - content: Raw Ruby source bytes. Must be valid UTF-8.
//   - filePath: Path used for error reporting and tracing only; Parse
//     does no file I/O.
//
// Outputs:
//   - *Node: Root of the converted tree. Never nil on success.
//   - error: ErrFileTooLarge, ErrInvalidContent, ErrSyntax, or a
//     context error.
//
// Thread Safety: This method is safe for concurrent use.
func (p *Parser) Parse(ctx context.Context, content []byte, filePath string) (*Node, error) {
	ctx, span := startParseSpan(ctx, filePath, len(content))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, filePath, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, filePath)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(ruby.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s produced no syntax tree", ErrSyntax, filePath)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s contains invalid Ruby", ErrSyntax, filePath)
	}

	converted := convert(root, content)
	setParseSpanResult(span, converted)
	return converted, nil
}

// convert maps a tree-sitter node into the tagged node model. Constructs
// outside the closed kind set become opaque nodes that keep their named
// children, so calls nested in blocks, conditionals, or class bodies stay
// reachable during traversal.
func convert(n *sitter.Node, src []byte) *Node {
	switch n.Type() {
	case "call":
		if out := convertCall(n, src); out != nil {
			return out
		}
	case "hash":
		out := &Node{Kind: KindHash, Span: spanOf(n)}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out.Children = append(out.Children, convert(n.NamedChild(i), src))
		}
		return out
	case "pair":
		key := n.ChildByFieldName("key")
		value := n.ChildByFieldName("value")
		if key != nil && value != nil {
			return &Node{
				Kind:     KindPair,
				Span:     spanOf(n),
				Children: []*Node{convert(key, src), convert(value, src)},
			}
		}
	case "simple_symbol":
		return &Node{
			Kind: KindSymbol,
			Sym:  strings.TrimPrefix(nodeText(n, src), ":"),
			Span: spanOf(n),
		}
	case "hash_key_symbol":
		return &Node{Kind: KindSymbol, Sym: nodeText(n, src), Span: spanOf(n)}
	case "true":
		return &Node{Kind: KindTrue, Span: spanOf(n)}
	}

	out := &Node{Kind: KindOpaque, Text: nodeText(n, src), Span: spanOf(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out.Children = append(out.Children, convert(n.NamedChild(i), src))
	}
	return out
}

// convertCall maps a tree-sitter call into a KindCall node with the
// [receiver, method, args...] child layout. Returns nil for call shapes
// without a method name (e.g. proc invocation via .()); those fall back
// to opaque conversion.
func convertCall(n *sitter.Node, src []byte) *Node {
	method := n.ChildByFieldName("method")
	if method == nil {
		return nil
	}

	out := &Node{Kind: KindCall, Span: spanOf(n)}

	var receiver *Node
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		receiver = convert(recv, src)
	}
	out.Children = append(out.Children,
		receiver,
		&Node{Kind: KindSymbol, Sym: nodeText(method, src), Span: spanOf(method)},
	)

	if args := n.ChildByFieldName("arguments"); args != nil {
		converted := make([]*Node, 0, args.NamedChildCount())
		for i := 0; i < int(args.NamedChildCount()); i++ {
			converted = append(converted, convert(args.NamedChild(i), src))
		}
		out.Children = append(out.Children, groupTrailingPairs(converted)...)
	}

	if block := n.ChildByFieldName("block"); block != nil {
		b := &Node{Kind: KindBlock, Text: nodeText(block, src), Span: spanOf(block)}
		for i := 0; i < int(block.NamedChildCount()); i++ {
			b.Children = append(b.Children, convert(block.NamedChild(i), src))
		}
		out.Children = append(out.Children, b)
	}

	return out
}

// groupTrailingPairs collapses a trailing run of bare keyword pairs in an
// argument list into a single hash node, matching how a braced literal in
// the same position converts. The synthetic hash spans from the first pair
// to the last.
func groupTrailingPairs(args []*Node) []*Node {
	i := len(args)
	for i > 0 && args[i-1] != nil && args[i-1].Kind == KindPair {
		i--
	}
	if i == len(args) {
		return args
	}
	// Copy the pairs out before reslicing: appending the hash below reuses
	// the slot args[i], which args[i:] would otherwise still alias.
	pairs := append([]*Node(nil), args[i:]...)
	hash := &Node{Kind: KindHash, Children: pairs}
	if first, last := pairs[0].Span, pairs[len(pairs)-1].Span; first != nil && last != nil {
		hash.Span = &Span{Start: first.Start, End: last.End}
	}
	return append(args[:i:i], hash)
}

func spanOf(n *sitter.Node) *Span {
	return &Span{Start: n.StartByte(), End: n.EndByte()}
}

func nodeText(n *sitter.Node, src []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(start) >= len(src) || int(end) > len(src) {
		return ""
	}
	return string(src[start:end])
}
