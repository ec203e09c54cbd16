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
	"testing"
)

func opaque(text string) *Node {
	return &Node{Kind: KindOpaque, Text: text}
}

func TestPrinter_CommandCall(t *testing.T) {
	call := NewCall(nil, NewSymbol("get"),
		opaque("images_path"),
		NewHash(
			NewPair(NewSymbol("params"), NewHash(
				NewPair(NewSymbol("limit"), opaque("10")),
				NewPair(NewSymbol("sort"), opaque("'new'")),
			)),
			NewPair(NewSymbol("xhr"), NewTrue()),
		))

	got, err := NewPrinter(WithCommandCalls(true)).Print(call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "get images_path, params: { limit: 10, sort: 'new' }, xhr: true"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrinter_ParenCall(t *testing.T) {
	call := NewCall(nil, NewSymbol("get"),
		opaque("root_path"),
		NewHash(NewPair(NewSymbol("xhr"), NewTrue())))

	got, err := NewPrinter().Print(call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "get(root_path, xhr: true)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrinter_CallWithBlock(t *testing.T) {
	call := &Node{Kind: KindCall, Children: []*Node{
		opaque("images"),
		NewSymbol("each"),
		{Kind: KindBlock, Text: "do |image|\n  puts image\nend"},
	}}

	got, err := NewPrinter().Print(call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "images.each do |image|\n  puts image\nend"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrinter_ReceiverCallKeepsParens(t *testing.T) {
	call := NewCall(opaque("client"), NewSymbol("get"), opaque("root_path"))

	got, err := NewPrinter(WithCommandCalls(true)).Print(call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "client.get(root_path)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrinter_CommandStyleOnlyAtTopLevel(t *testing.T) {
	// A call used as an argument keeps its parentheses even when the
	// outermost call renders in command style.
	inner := NewCall(nil, NewSymbol("image_path"), opaque("@image"))
	call := NewCall(nil, NewSymbol("get"),
		inner,
		NewHash(NewPair(NewSymbol("xhr"), NewTrue())))

	got, err := NewPrinter(WithCommandCalls(true)).Print(call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "get image_path(@image), xhr: true"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrinter_BareCall(t *testing.T) {
	got, err := NewPrinter(WithCommandCalls(true)).Print(NewCall(nil, NewSymbol("logout")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "logout" {
		t.Errorf("got %q, want %q", got, "logout")
	}
}

func TestPrinter_Leaves(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"symbol", NewSymbol("get"), ":get"},
		{"true", NewTrue(), "true"},
		{"opaque", opaque("images_path"), "images_path"},
		{"empty hash", NewHash(), "{}"},
		{"rocket pair", NewPair(opaque("'Accept'"), opaque("'text/html'")), "'Accept' => 'text/html'"},
		{"symbol pair", NewPair(NewSymbol("limit"), opaque("10")), "limit: 10"},
		{"hash", NewHash(NewPair(NewSymbol("q"), opaque("1"))), "{ q: 1 }"},
	}

	printer := NewPrinter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := printer.Print(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinter_Unprintable(t *testing.T) {
	printer := NewPrinter()

	if _, err := printer.Print(nil); !errors.Is(err, ErrUnprintable) {
		t.Errorf("nil node: expected ErrUnprintable, got %v", err)
	}

	noMethod := &Node{Kind: KindCall, Children: []*Node{nil, nil}}
	if _, err := printer.Print(noMethod); !errors.Is(err, ErrUnprintable) {
		t.Errorf("call without method: expected ErrUnprintable, got %v", err)
	}

	badPair := &Node{Kind: KindPair, Children: []*Node{NewSymbol("k")}}
	if _, err := printer.Print(badPair); !errors.Is(err, ErrUnprintable) {
		t.Errorf("one-child pair: expected ErrUnprintable, got %v", err)
	}
}

func TestPrinter_RoundTripParsedArguments(t *testing.T) {
	// Argument expressions lifted from a parsed tree are opaque and must
	// come back byte-identical.
	source := "xhr :get, polymorphic_path([@user, :images]), {limit: 10}\n"
	call := findCall(mustParse(t, source), "xhr")
	if call == nil {
		t.Fatal("expected an xhr call node")
	}

	path := call.Args()[1]
	got, err := NewPrinter().Print(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "polymorphic_path([@user, :images])"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
