package snapshot

import (
	"context"

	"go.uber.org/zap"

	"github.com/qt-konan/zeroiq-bot/memory"
)

// Pusher sends a written snapshot file to a remote archive.
type Pusher interface {
	Push(ctx context.Context, snapshotPath string) error
}

// Pipeline implements memory.Exporter by writing the local snapshot and
// then, when an archiver is configured, pushing it to the remote archive.
// A failed push never fails the export: the local snapshot already holds
// the authoritative copy.
type Pipeline struct {
	Writer *Writer
	Pusher Pusher
	Logger *zap.SugaredLogger
}

var _ memory.Exporter = (*Pipeline)(nil)

// Export writes the snapshot and best-effort pushes it to the archive.
func (p *Pipeline) Export(ctx context.Context, entries []memory.Entry) error {
	if err := p.Writer.Export(ctx, entries); err != nil {
		return err
	}

	if p.Pusher != nil {
		if err := p.Pusher.Push(ctx, p.Writer.Path()); err != nil {
			if p.Logger != nil {
				p.Logger.Warnw("Archive push failed", "error", err)
			}
		}
	}

	return nil
}
