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
	"errors"
	"fmt"
	"strings"
)

// ErrUnprintable is returned for nodes the printer cannot render, such as
// a call with no method slot.
var ErrUnprintable = errors.New("unprintable node")

// PrinterOption configures a Printer instance.
type PrinterOption func(*Printer)

// WithCommandCalls makes the printer render receiver-less calls in Ruby
// command style (`get path, xhr: true`) instead of with parentheses.
func WithCommandCalls(enabled bool) PrinterOption {
	return func(p *Printer) {
		p.commandCalls = enabled
	}
}

// Printer serializes a node tree back into Ruby source text.
//
// Description:
//
//	Printer renders any node, parsed or synthesized. Opaque nodes print
//	their verbatim source text, so argument expressions taken from the
//	original file come back byte-identical. The call style is an option
//	on the printer rather than a fixup on its output, so callers that want
//	the command style never have to patch parentheses out of the result.
//
// Thread Safety: Printer instances are immutable after construction and
// safe for concurrent use.
type Printer struct {
	commandCalls bool
}

// NewPrinter creates a Printer with the given options applied.
func NewPrinter(opts ...PrinterOption) *Printer {
	p := &Printer{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Print renders the node as Ruby source text.
func (p *Printer) Print(n *Node) (string, error) {
	var sb strings.Builder
	if err := p.print(&sb, n, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (p *Printer) print(sb *strings.Builder, n *Node, depth int) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrUnprintable)
	}

	switch n.Kind {
	case KindOpaque, KindBlock:
		sb.WriteString(n.Text)
		return nil

	case KindSymbol:
		sb.WriteByte(':')
		sb.WriteString(n.Sym)
		return nil

	case KindTrue:
		sb.WriteString("true")
		return nil

	case KindPair:
		if len(n.Children) != 2 {
			return fmt.Errorf("%w: pair with %d children", ErrUnprintable, len(n.Children))
		}
		return p.printPair(sb, n.Children[0], n.Children[1], depth)

	case KindHash:
		if len(n.Children) == 0 {
			sb.WriteString("{}")
			return nil
		}
		sb.WriteString("{ ")
		if err := p.printList(sb, n.Children, depth+1); err != nil {
			return err
		}
		sb.WriteString(" }")
		return nil

	case KindCall:
		return p.printCall(sb, n, depth)
	}

	return fmt.Errorf("%w: kind %s", ErrUnprintable, n.Kind)
}

// printPair renders `key: value` for symbol keys and `key => value`
// otherwise.
func (p *Printer) printPair(sb *strings.Builder, key, value *Node, depth int) error {
	if key != nil && key.Kind == KindSymbol {
		sb.WriteString(key.Sym)
		sb.WriteString(": ")
		return p.print(sb, value, depth)
	}
	if err := p.print(sb, key, depth); err != nil {
		return err
	}
	sb.WriteString(" => ")
	return p.print(sb, value, depth)
}

// printCall renders a call node. A trailing hash argument is rendered as
// bare keyword pairs, which is the Ruby idiom for keyword arguments at a
// call site. The command style applies only to the outermost call: a call
// nested inside an argument keeps its parentheses so the rendering stays
// unambiguous.
func (p *Printer) printCall(sb *strings.Builder, n *Node, depth int) error {
	method := n.Method()
	if method == nil || method.Kind != KindSymbol {
		return fmt.Errorf("%w: call without method name", ErrUnprintable)
	}

	if recv := n.Receiver(); recv != nil {
		if err := p.print(sb, recv, depth+1); err != nil {
			return err
		}
		sb.WriteByte('.')
	}
	sb.WriteString(method.Sym)

	args := n.Args()
	if len(args) > 0 {
		open, shut := "(", ")"
		if p.commandCalls && depth == 0 && n.Receiver() == nil {
			open, shut = " ", ""
		}
		sb.WriteString(open)
		for i, arg := range args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if i == len(args)-1 && arg != nil && arg.Kind == KindHash && len(arg.Children) > 0 {
				if err := p.printList(sb, arg.Children, depth+1); err != nil {
					return err
				}
				continue
			}
			if err := p.print(sb, arg, depth+1); err != nil {
				return err
			}
		}
		sb.WriteString(shut)
	}

	if blk := n.Block(); blk != nil {
		sb.WriteByte(' ')
		return p.print(sb, blk, depth+1)
	}
	return nil
}

func (p *Printer) printList(sb *strings.Builder, nodes []*Node, depth int) error {
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := p.print(sb, n, depth); err != nil {
			return err
		}
	}
	return nil
}
