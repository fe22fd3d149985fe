package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Notifier delivers a block to the operator.
type Notifier interface {
	Notify(ctx context.Context, block Block) error
}

// WriterNotifier prints blocks to w, one blank line between blocks.
type WriterNotifier struct {
	w io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, block Block) error {
	if _, err := fmt.Fprintf(n.w, "%s\n\n", block); err != nil {
		return fmt.Errorf("failed to write %q report: %w", block.Title, err)
	}
	return nil
}

// LogNotifier emits each block as one error record.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, block Block) error {
	n.logger.ErrorContext(ctx, block.Title, slog.Any("lines", block.Lines), slog.Int("count", len(block.Lines)))
	return nil
}

// Multi fans a block out to every notifier, attempting all of them.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, block Block) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, block); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
