// Package backup exports the whole data set to a JSON document and
// restores it from one.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
)

// FormatVersion is the document version this package writes and accepts.
const FormatVersion = 1

// Document is the backup file layout.
type Document struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Data       *model.Dataset `json:"data"`
}

// Store is the part of the store the codec reads and replaces.
type Store interface {
	Snapshot(ctx context.Context) (*model.Dataset, error)
	ReplaceAll(ctx context.Context, data model.Dataset) error
	ClearAll(ctx context.Context) error
}

// Codec exports, imports and resets the store's contents.
type Codec struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewCodec creates a Codec over store.
func NewCodec(store Store, logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{store: store, logger: logger, now: time.Now}
}

// FileName returns the suggested backup file name for the day of now.
func FileName(now time.Time) string {
	return fmt.Sprintf("tutor-scheduler-backup-%s.json", now.UTC().Format(model.DateLayout))
}

// Export writes the complete data set to w as an indented JSON document.
func (c *Codec) Export(ctx context.Context, w io.Writer) (Result, error) {
	data, err := c.store.Snapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	if data.Students == nil {
		data.Students = []model.Student{}
	}
	if data.Lessons == nil {
		data.Lessons = []model.Lesson{}
	}

	doc := Document{
		Version:    FormatVersion,
		ExportedAt: c.now().UTC(),
		Data:       data,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return Result{}, fmt.Errorf("encoding backup: %w", err)
	}

	res := resultOf(data)
	c.logger.Info("backup exported",
		zap.Int("students", res.Students),
		zap.Int("lessons", res.Lessons),
	)
	return res, nil
}

// Decode reads and validates a backup document without touching the store.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &model.FormatError{Reason: "malformed JSON", Err: err}
	}
	if doc.Version == 0 {
		return nil, &model.FormatError{Reason: "missing version"}
	}
	if doc.Version != FormatVersion {
		return nil, &model.FormatError{Reason: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	if doc.Data == nil {
		return nil, &model.FormatError{Reason: "missing data"}
	}
	return &doc, nil
}

// Import replaces the store's contents with the document read from r.
// An invalid document is rejected before anything is deleted.
func (c *Codec) Import(ctx context.Context, r io.Reader) (Result, error) {
	doc, err := Decode(r)
	if err != nil {
		c.logger.Warn("backup rejected", zap.Error(err))
		return Result{}, err
	}

	if err := c.store.ReplaceAll(ctx, *doc.Data); err != nil {
		c.logger.Error("backup import failed", zap.Error(err))
		return Result{}, err
	}

	res := resultOf(doc.Data)
	c.logger.Info("backup imported",
		zap.Int("students", res.Students),
		zap.Int("lessons", res.Lessons),
		zap.Time("exported_at", doc.ExportedAt),
	)
	return res, nil
}

// Reset deletes every student, lesson and the settings record.
func (c *Codec) Reset(ctx context.Context) error {
	if err := c.store.ClearAll(ctx); err != nil {
		return err
	}
	c.logger.Warn("all data cleared")
	return nil
}

// Result counts the records an export or import carried.
type Result struct {
	Students int
	Lessons  int
	Settings bool
}

func resultOf(data *model.Dataset) Result {
	return Result{
		Students: len(data.Students),
		Lessons:  len(data.Lessons),
		Settings: data.Settings != nil,
	}
}

// Message renders the import confirmation shown to the user.
func (r Result) Message() string {
	return fmt.Sprintf("Импортировано: %s, %s",
		plural.WithNumber(r.Students, plural.Students),
		plural.WithNumber(r.Lessons, plural.Lessons),
	)
}
