package observability

import (
	"context"
	"log/slog"

	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
	"github.com/Sumatoshi-tech/ivtree/pkg/alg/intervaltree"
)

// ChangeLogger returns a change listener that logs every event at debug level.
func ChangeLogger[I interval.Value[I]](ctx context.Context, logger *slog.Logger) func(intervaltree.Change[I]) {
	return func(c intervaltree.Change[I]) {
		if !logger.Enabled(ctx, slog.LevelDebug) {
			return
		}

		attrs := []slog.Attr{slog.String(attrKind, c.Kind.String())}

		if c.Case != "" {
			attrs = append(attrs, slog.String(attrCase, string(c.Case)))
		}

		if c.Kind != intervaltree.KindCleared {
			attrs = append(attrs, slog.String("interval", c.Interval.String()))
		}

		logger.LogAttrs(ctx, slog.LevelDebug, "tree change", attrs...)
	}
}

// ChangeCounter returns a change listener that counts events on tm.
func ChangeCounter[I interval.Value[I]](ctx context.Context, tm *TreeMetrics) func(intervaltree.Change[I]) {
	return func(c intervaltree.Change[I]) {
		tm.RecordChange(ctx, c.Kind.String(), string(c.Case))
	}
}

// Tee returns a listener that forwards each event to every non-nil listener in order.
func Tee[I interval.Value[I]](listeners ...func(intervaltree.Change[I])) func(intervaltree.Change[I]) {
	return func(c intervaltree.Change[I]) {
		for _, l := range listeners {
			if l != nil {
				l(c)
			}
		}
	}
}
