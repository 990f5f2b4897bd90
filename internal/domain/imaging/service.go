package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/domain/worklog"
	"github.com/medrec/medrec/internal/platform/objectstore"
)

var (
	ErrNotFound   = errors.New("image not found")
	ErrValidation = errors.New("invalid image data")
)

type Service struct {
	repo   Repository
	store  objectstore.ObjectStore
	audit  worklog.Appender
	logger zerolog.Logger
}

func NewService(repo Repository, store objectstore.ObjectStore, audit worklog.Appender, logger zerolog.Logger) *Service {
	return &Service{repo: repo, store: store, audit: audit, logger: logger}
}

type UploadInput struct {
	PatientID   int64
	ImageType   string
	UploadedBy  int64
	FileName    string
	FileSize    int64
	ContentType string
	Content     io.Reader
}

// objectKey namespaces uploads by patient and modality. The timestamp prefix
// keeps repeated uploads of the same file name from colliding.
func objectKey(patientID int64, imageType, fileName string, now time.Time) string {
	return fmt.Sprintf("patient_%d/%s/%s_%s", patientID, imageType, now.Format("20060102_150405"), fileName)
}

// Upload stores the object first and the metadata row second. A metadata
// failure after a successful store leaves the object orphaned; there is no
// compensation step.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*MedicalImage, string, error) {
	if in.PatientID <= 0 {
		return nil, "", fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if !ValidImageType(in.ImageType) {
		return nil, "", fmt.Errorf("%w: unknown image type %q", ErrValidation, in.ImageType)
	}
	if in.UploadedBy <= 0 {
		return nil, "", fmt.Errorf("%w: uploaded_by is required", ErrValidation)
	}
	if in.FileName == "" {
		return nil, "", fmt.Errorf("%w: a file is required", ErrValidation)
	}

	key := objectKey(in.PatientID, in.ImageType, in.FileName, time.Now().UTC())
	url, err := s.store.Put(ctx, key, in.Content, in.FileSize, in.ContentType)
	if err != nil {
		return nil, "", fmt.Errorf("storing image object: %w", err)
	}

	img := &MedicalImage{
		PatientID:  in.PatientID,
		ImageType:  in.ImageType,
		UploadedBy: in.UploadedBy,
		ImgURL:     url,
		FileName:   in.FileName,
		FileSize:   in.FileSize,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		return nil, "", err
	}

	presigned, err := s.store.PresignedURL(ctx, key, objectstore.DefaultURLExpiry)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("presigning upload response url failed")
		presigned = ""
	}

	action := fmt.Sprintf("Uploaded %s image %d for patient %d", img.ImageType, img.ImageID, img.PatientID)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, img.UploadedBy, action), img.UploadedBy, action)
	return img, presigned, nil
}

func (s *Service) GetImage(ctx context.Context, id int64) (*MedicalImage, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListImages(ctx context.Context) ([]*MedicalImage, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*MedicalImage, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// PresignedURL issues a fresh time-limited link for the stored object.
func (s *Service) PresignedURL(ctx context.Context, id int64, expiry time.Duration) (string, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = objectstore.DefaultURLExpiry
	}
	return s.store.PresignedURL(ctx, s.store.KeyFromURL(img.ImgURL), expiry)
}

// Delete removes the stored object before the metadata row. A missing object
// is tolerated so a previously half-deleted image can still be cleaned up.
func (s *Service) Delete(ctx context.Context, id int64) error {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, s.store.KeyFromURL(img.ImgURL)); err != nil &&
		!errors.Is(err, objectstore.ErrObjectNotFound) {
		return fmt.Errorf("removing image object: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	action := fmt.Sprintf("Deleted image %d for patient %d", id, img.PatientID)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, img.UploadedBy, action), img.UploadedBy, action)
	return nil
}
