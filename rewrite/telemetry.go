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
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/AleutianAI/xhrmigrate/rewrite"

var (
	metricsOnce     sync.Once
	callSiteCounter metric.Int64Counter
)

// startRewriteSpan opens a tracing span for one file rewrite. With no
// tracer provider installed this is a no-op span.
func startRewriteSpan(ctx context.Context, sizeBytes int) (context.Context, oteltrace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "rewrite.Source",
		oteltrace.WithAttributes(
			attribute.Int("file.size_bytes", sizeBytes),
		))
}

// recordRewrite records the outcome of one rewrite on the span and the
// call-site counter.
func recordRewrite(ctx context.Context, span oteltrace.Span, rewritten int, err error) {
	metricsOnce.Do(func() {
		callSiteCounter, _ = otel.Meter(instrumentationName).Int64Counter(
			"xhrmigrate.call_sites.rewritten",
			metric.WithDescription("Legacy call sites converted to the keyword convention"))
	})

	span.SetAttributes(attribute.Int("rewrite.call_sites", rewritten))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return
	}
	if callSiteCounter != nil {
		callSiteCounter.Add(ctx, int64(rewritten))
	}
}
