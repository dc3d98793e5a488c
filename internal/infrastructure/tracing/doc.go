/*
Package tracing provides lightweight request tracing.

Each HTTP request gets a span. Trace and span ids travel in the X-Trace-ID
and X-Span-ID headers, so a shell frontend can stitch its own logs to the
server's. Finished spans are buffered and written to the log by a single
collector goroutine; nothing is exported elsewhere.

# Usage

	tracer := tracing.New("shell", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
