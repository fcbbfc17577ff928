package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/task"
)

// RequestSubmitter accepts a completed draft and returns the new request id.
type RequestSubmitter interface {
	Submit(ctx context.Context, draft models.RequestDraft, total int) (string, error)
}

type requestIDMinter interface {
	NextID() string
}

// SimulatedSubmitter accepts every draft after a fixed delay. The minted id is not
// added to the request collection.
type SimulatedSubmitter struct {
	ids    requestIDMinter
	delay  time.Duration
	logger *zap.Logger
}

// NewSimulatedSubmitter constructs a submitter.
func NewSimulatedSubmitter(ids requestIDMinter, delay time.Duration, logger *zap.Logger) *SimulatedSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedSubmitter{ids: ids, delay: delay, logger: logger}
}

// Submit waits for the configured delay, honouring ctx, then mints an id.
func (s *SimulatedSubmitter) Submit(ctx context.Context, draft models.RequestDraft, total int) (string, error) {
	return task.Simulated(s.delay, func(ctx context.Context) (string, error) {
		id := s.ids.NextID()
		s.logger.Info("request submitted",
			zap.String("request_id", id),
			zap.String("student_id", draft.StudentID),
			zap.String("issue_type", string(draft.IssueType)),
			zap.String("delivery_method", string(draft.DeliveryMethod)),
			zap.Int("total", total),
		)
		return id, nil
	})(ctx)
}

// PhotoReader turns an uploaded file into a displayable photo handle.
type PhotoReader interface {
	Read(ctx context.Context, r io.Reader) (string, error)
}

// SimulatedPhotoReader checks that the upload is an image and returns a fixed
// placeholder URL. Nothing is stored.
type SimulatedPhotoReader struct {
	maxBytes    int64
	placeholder string
	delay       time.Duration
}

// NewSimulatedPhotoReader constructs a photo reader.
func NewSimulatedPhotoReader(maxBytes int64, placeholder string, delay time.Duration) *SimulatedPhotoReader {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &SimulatedPhotoReader{maxBytes: maxBytes, placeholder: placeholder, delay: delay}
}

// Read consumes r and returns the placeholder handle.
func (p *SimulatedPhotoReader) Read(ctx context.Context, r io.Reader) (string, error) {
	return task.Simulated(p.delay, func(ctx context.Context) (string, error) {
		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(r, p.maxBytes+1))
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read photo")
		}
		if n == 0 {
			return "", appErrors.Validation("validation failed", map[string]string{"photo": "Photo is required"})
		}
		if n > p.maxBytes {
			return "", appErrors.Validation("validation failed", map[string]string{
				"photo": fmt.Sprintf("Photo must be at most %d bytes", p.maxBytes),
			})
		}
		mtype := mimetype.Detect(buf.Bytes())
		if !strings.HasPrefix(mtype.String(), "image/") {
			return "", appErrors.Validation("validation failed", map[string]string{
				"photo": fmt.Sprintf("Photo must be an image, got %s", mtype.String()),
			})
		}
		return p.placeholder, nil
	})(ctx)
}
