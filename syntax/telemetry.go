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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/AleutianAI/xhrmigrate/syntax"

// startParseSpan opens a tracing span for one parse. With no tracer
// provider installed this is a no-op span.
func startParseSpan(ctx context.Context, filePath string, sizeBytes int) (context.Context, oteltrace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "syntax.Parse",
		oteltrace.WithAttributes(
			attribute.String("file.path", filePath),
			attribute.Int("file.size_bytes", sizeBytes),
		))
}

// setParseSpanResult records the converted tree size on the parse span.
func setParseSpanResult(span oteltrace.Span, root *Node) {
	nodes := 0
	Walk(root, func(*Node) bool {
		nodes++
		return true
	})
	span.SetAttributes(attribute.Int("syntax.node_count", nodes))
}
