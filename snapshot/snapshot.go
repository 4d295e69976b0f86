// Package snapshot writes the portable JSON copy of the memory store.
// The snapshot is independent of the primary database: it is rewritten in
// full after every learn and can be carried to another machine or pushed
// to a remote archive.
package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/qt-konan/zeroiq-bot/errors"
	"github.com/qt-konan/zeroiq-bot/memory"
)

// FormatVersion identifies the snapshot file layout. Bump on breaking
// changes so older files remain loadable.
const FormatVersion = 1

// Record is one exported question/answer pair.
type Record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// File is the on-disk snapshot shape.
type File struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Records    []Record  `json:"records"`
}

// Writer implements memory.Exporter by serializing the full entry set to
// a JSON file at a fixed path. Writes are atomic (temp file + rename) so
// a crash mid-export never leaves a torn snapshot.
type Writer struct {
	path   string
	logger *zap.SugaredLogger
}

// NewWriter creates a snapshot writer targeting path.
func NewWriter(path string, logger *zap.SugaredLogger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Path returns the snapshot file location.
func (w *Writer) Path() string {
	return w.path
}

// Export writes all entries as an indented JSON snapshot.
func (w *Writer) Export(_ context.Context, entries []memory.Entry) error {
	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record{Question: e.Question, Answer: e.Answer}
	}

	file := File{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC(),
		Records:    records,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.WrapExport(err, "marshal snapshot")
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".snapshot-*.json")
	if err != nil {
		return errors.WrapExport(err, "create snapshot temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapExport(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapExport(err, "close snapshot temp file")
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return errors.WrapExport(err, "replace snapshot")
	}

	if w.logger != nil {
		w.logger.Debugw("Snapshot written", "path", w.path, "records", len(records))
	}
	return nil
}

// Read loads a snapshot file. It accepts the current versioned format and
// the legacy bare-map form ({"question": "answer", ...}) produced by
// earlier revisions of the bot.
func Read(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot %s", path)
	}

	var file File
	if err := json.Unmarshal(data, &file); err == nil && file.Version > 0 {
		return file.Records, nil
	}

	// Legacy form: a flat question -> answer map with no version field
	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, errors.Wrapf(err, "parse snapshot %s", path)
	}

	records := make([]Record, 0, len(legacy))
	for question, answer := range legacy {
		records = append(records, Record{Question: question, Answer: answer})
	}
	return records, nil
}
