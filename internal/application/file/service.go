package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sheetboard-api/internal/domain"
	"github.com/sheetboard-api/internal/pkg/id"
	"go.uber.org/zap"
)

// Workbook formats the spreadsheet reader understands.
var allowedExt = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	OwnerID     string
}

type Service interface {
	RecordUpload(ctx context.Context, input UploadInput) (*domain.UploadedFile, error)
	ListOwned(ctx context.Context, ownerID string) ([]domain.UploadedFile, error)
	ParseStored(ctx context.Context, ownerID, fileID string) ([]domain.Row, error)
	Summarize(ctx context.Context, ownerID, fileID, labelKey, valueKey string) (*domain.SheetSummary, error)
}

type fileStore interface {
	Put(ctx context.Context, f *domain.UploadedFile) error
	Get(ctx context.Context, fileID string) (*domain.UploadedFile, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.UploadedFile, error)
}

type objectStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

type sheetReader interface {
	ReadFirstSheet(r io.Reader) (*domain.Sheet, error)
}

type service struct {
	files   fileStore
	objects objectStore
	sheets  sheetReader
	log     *zap.Logger
	now     func() time.Time
}

type ServiceDeps struct {
	FileRepo fileStore
	Objects  objectStore
	Sheets   sheetReader
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		files:   deps.FileRepo,
		objects: deps.Objects,
		sheets:  deps.Sheets,
		log:     deps.Logger,
		now:     deps.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RecordUpload stores the payload under a generated name and records its metadata.
func (s *service) RecordUpload(ctx context.Context, input UploadInput) (*domain.UploadedFile, error) {
	if input.Reader == nil || input.Filename == "" {
		return nil, fmt.Errorf("no file uploaded: %w", domain.ErrBadRequest)
	}
	original := path.Base(strings.ReplaceAll(input.Filename, `\`, "/"))
	ext := strings.ToLower(path.Ext(original))
	if !allowedExt[ext] {
		return nil, fmt.Errorf("unsupported file type %q: %w", ext, domain.ErrBadRequest)
	}

	stored := uuid.NewString() + ext
	cr := &countingReader{r: input.Reader}
	if err := s.objects.Save(ctx, stored, cr, input.ContentType); err != nil {
		return nil, err
	}

	f := &domain.UploadedFile{
		FileID:       id.New(),
		OwnerID:      input.OwnerID,
		StoredName:   stored,
		OriginalName: original,
		Size:         cr.n,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.files.Put(ctx, f); err != nil {
		// Detached so a cancelled request still cleans up the stored bytes.
		if rmErr := s.objects.Remove(context.WithoutCancel(ctx), stored); rmErr != nil {
			s.log.Error("orphaned upload", zap.String("key", stored), zap.Error(rmErr))
		}
		return nil, err
	}
	s.log.Info("file uploaded",
		zap.String("file_id", f.FileID),
		zap.String("user_id", f.OwnerID),
		zap.Int64("size", f.Size),
	)
	return f, nil
}

// ListOwned returns the owner's files, most recent first.
func (s *service) ListOwned(ctx context.Context, ownerID string) ([]domain.UploadedFile, error) {
	files, err := s.files.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].UploadedAt.After(files[j].UploadedAt)
		}
		return files[i].FileID > files[j].FileID
	})
	return files, nil
}

func (s *service) ParseStored(ctx context.Context, ownerID, fileID string) ([]domain.Row, error) {
	sheet, err := s.load(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}
	return sheet.Rows, nil
}

// Summarize aggregates valueKey over the parsed rows, labelling extremes with labelKey.
// Empty keys default to the first and second columns. Values that are not
// numeric count as zero.
func (s *service) Summarize(ctx context.Context, ownerID, fileID, labelKey, valueKey string) (*domain.SheetSummary, error) {
	sheet, err := s.load(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}
	if labelKey == "" && len(sheet.Headers) > 0 {
		labelKey = sheet.Headers[0]
	}
	if valueKey == "" {
		if len(sheet.Headers) < 2 {
			return nil, fmt.Errorf("sheet needs two columns to summarize: %w", domain.ErrBadRequest)
		}
		valueKey = sheet.Headers[1]
	}
	for _, k := range []string{labelKey, valueKey} {
		if !contains(sheet.Headers, k) {
			return nil, fmt.Errorf("unknown column %q: %w", k, domain.ErrBadRequest)
		}
	}
	return summarize(sheet, labelKey, valueKey), nil
}

// load resolves fileID for ownerID and parses the stored bytes. A file owned by
// someone else is reported as missing.
func (s *service) load(ctx context.Context, ownerID, fileID string) (*domain.Sheet, error) {
	if fileID == "" {
		return nil, fmt.Errorf("missing file id: %w", domain.ErrBadRequest)
	}
	f, err := s.files.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if f.OwnerID != ownerID {
		s.log.Warn("cross-tenant file access", zap.String("file_id", fileID), zap.String("user_id", ownerID))
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}

	rc, err := s.objects.Open(ctx, f.StoredName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sheet, err := s.sheets.ReadFirstSheet(rc)
	if err != nil {
		s.log.Warn("spreadsheet parse failed", zap.String("file_id", fileID), zap.Error(err))
		return nil, err
	}
	return sheet, nil
}

func summarize(sheet *domain.Sheet, labelKey, valueKey string) *domain.SheetSummary {
	sum := &domain.SheetSummary{
		Columns:  sheet.Headers,
		LabelKey: labelKey,
		ValueKey: valueKey,
		Count:    len(sheet.Rows),
	}
	for i, row := range sheet.Rows {
		v := numeric(row[valueKey])
		sum.Sum += v
		if i == 0 || v > sum.Max {
			sum.Max, sum.MaxLabel = v, row[labelKey]
		}
		if i == 0 || v < sum.Min {
			sum.Min, sum.MinLabel = v, row[labelKey]
		}
	}
	if sum.Count > 0 {
		sum.Average = math.Round(sum.Sum/float64(sum.Count)*100) / 100
	}
	return sum
}

func numeric(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n
		}
	}
	return 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
