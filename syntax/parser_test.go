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
	"bytes"
	"context"
	"errors"
	"testing"
)

// findCall returns the first call node whose method symbol is name.
func findCall(root *Node, name string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == KindCall {
			if m := n.Method(); m != nil && m.Sym == name {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

func mustParse(t *testing.T, source string) *Node {
	t.Helper()
	root, err := NewParser().Parse(context.Background(), []byte(source), "test.rb")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if root == nil {
		t.Fatal("expected non-nil root")
	}
	return root
}

func TestParse_EmptyFile(t *testing.T) {
	root := mustParse(t, "")
	if root.Kind != KindOpaque {
		t.Errorf("expected opaque root, got %s", root.Kind)
	}
	if len(root.Children) != 0 {
		t.Errorf("expected no children, got %d", len(root.Children))
	}
}

func TestParse_LegacyCallShape(t *testing.T) {
	source := "xhr :get, images_path, {limit: 10, sort: 'new'}\n"
	call := findCall(mustParse(t, source), "xhr")
	if call == nil {
		t.Fatal("expected an xhr call node")
	}

	if recv := call.Receiver(); recv != nil {
		t.Errorf("expected nil receiver, got %s", recv.Kind)
	}

	args := call.Args()
	if len(args) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(args))
	}

	if args[0].Kind != KindSymbol || args[0].Sym != "get" {
		t.Errorf("expected verb symbol :get, got %s %q", args[0].Kind, args[0].Sym)
	}
	if args[1].Kind != KindOpaque || args[1].Text != "images_path" {
		t.Errorf("expected opaque path images_path, got %s %q", args[1].Kind, args[1].Text)
	}
	if args[2].Kind != KindHash {
		t.Fatalf("expected hash argument, got %s", args[2].Kind)
	}
	if len(args[2].Children) != 2 {
		t.Fatalf("expected 2 hash pairs, got %d", len(args[2].Children))
	}

	first := args[2].Children[0]
	if first.Kind != KindPair {
		t.Fatalf("expected pair, got %s", first.Kind)
	}
	if key := first.Children[0]; key.Kind != KindSymbol || key.Sym != "limit" {
		t.Errorf("expected key symbol limit, got %s %q", key.Kind, key.Sym)
	}
	if value := first.Children[1]; value.Kind != KindOpaque || value.Text != "10" {
		t.Errorf("expected opaque value 10, got %s %q", value.Kind, value.Text)
	}
}

func TestParse_CallSpanCoversSource(t *testing.T) {
	prefix := "# migrate me\n"
	callText := "xhr :post, logout_path"
	source := prefix + callText + "\n"

	call := findCall(mustParse(t, source), "xhr")
	if call == nil {
		t.Fatal("expected an xhr call node")
	}
	if call.Span == nil {
		t.Fatal("parsed call has no span")
	}
	if got := call.SourceText([]byte(source)); got != callText {
		t.Errorf("span covers %q, want %q", got, callText)
	}
}

func TestParse_TrailingKeywordPairsGroupIntoHash(t *testing.T) {
	source := "get root_path, params: { q: 1 }, xhr: true\n"
	call := findCall(mustParse(t, source), "get")
	if call == nil {
		t.Fatal("expected a get call node")
	}

	args := call.Args()
	if len(args) != 2 {
		t.Fatalf("expected path plus one grouped hash, got %d arguments", len(args))
	}
	hash := args[1]
	if hash.Kind != KindHash {
		t.Fatalf("expected grouped hash, got %s", hash.Kind)
	}
	if len(hash.Children) != 2 {
		t.Fatalf("expected 2 keyword pairs, got %d", len(hash.Children))
	}
	for i, pair := range hash.Children {
		if pair == nil || pair.Kind != KindPair {
			t.Fatalf("grouped hash child %d is not a pair", i)
		}
	}
	if key := hash.Children[0].Children[0]; key.Sym != "params" {
		t.Errorf("expected first key params, got %q", key.Sym)
	}
	if value := hash.Children[1].Children[1]; value.Kind != KindTrue {
		t.Errorf("expected true literal for xhr key, got %s", value.Kind)
	}
	if hash.Span == nil {
		t.Fatal("grouped hash has no span")
	}
	if got := hash.SourceText([]byte(source)); got != "params: { q: 1 }, xhr: true" {
		t.Errorf("grouped hash span covers %q", got)
	}
}

func TestParse_CallBlockIsNotAnArgument(t *testing.T) {
	source := "xhr :get, images_path do\n  assert_response :success\nend\n"
	call := findCall(mustParse(t, source), "xhr")
	if call == nil {
		t.Fatal("expected an xhr call node")
	}

	args := call.Args()
	if len(args) != 2 {
		t.Fatalf("expected verb and path only, got %d arguments", len(args))
	}
	blk := call.Block()
	if blk == nil || blk.Kind != KindBlock {
		t.Fatal("expected the do...end block on the block slot")
	}
	if got := blk.SourceText([]byte(source)); got != "do\n  assert_response :success\nend" {
		t.Errorf("block span covers %q", got)
	}
}

func TestParse_CallInsideBlockIsReachable(t *testing.T) {
	source := "test 'fetches images' do\n  xhr :get, images_path\nend\n"
	root := mustParse(t, source)
	if findCall(root, "xhr") == nil {
		t.Fatal("expected the xhr call nested in the block to be reachable")
	}
}

func TestParse_ReceiverCall(t *testing.T) {
	source := "client.xhr :get, images_path\n"
	call := findCall(mustParse(t, source), "xhr")
	if call == nil {
		t.Fatal("expected an xhr call node")
	}
	if call.Receiver() == nil {
		t.Error("expected non-nil receiver for client.xhr")
	}
}

func TestParse_AllParsedNodesCarrySpans(t *testing.T) {
	source := "class ImagesTest\n  def test_index\n    xhr :get, images_path, {limit: 10}\n  end\nend\n"
	Walk(mustParse(t, source), func(n *Node) bool {
		if n.Span == nil {
			t.Errorf("parsed %s node has no span", n.Kind)
		}
		return true
	})
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("def broken(\n"), "broken.rb")
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte{0xff, 0xfe, 0xfd}, "bad.rb")
	if !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}
}

func TestParse_FileTooLarge(t *testing.T) {
	parser := NewParser(WithMaxFileSize(8))
	_, err := parser.Parse(context.Background(), bytes.Repeat([]byte("a"), 16), "big.rb")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewParser().Parse(ctx, []byte("xhr :get, root_path\n"), "test.rb")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParse_Concurrent(t *testing.T) {
	parser := NewParser()
	source := []byte("xhr :get, images_path, {limit: 10}\n")

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := parser.Parse(context.Background(), source, "test.rb")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent parse failed: %v", err)
		}
	}
}
