package imaging

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/objectstore"
)

// -- Mocks --

type mockRepo struct {
	items      map[int64]*MedicalImage
	nextID     int64
	failCreate bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[int64]*MedicalImage{}, nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, img *MedicalImage) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	img.ImageID = m.nextID
	m.nextID++
	img.UploadedAt = time.Now().UTC()
	m.items[img.ImageID] = img
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*MedicalImage, error) {
	img, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return img, nil
}

func (m *mockRepo) List(_ context.Context) ([]*MedicalImage, error) {
	var out []*MedicalImage
	for _, img := range m.items {
		out = append(out, img)
	}
	return out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64) ([]*MedicalImage, error) {
	var out []*MedicalImage
	for _, img := range m.items {
		if img.PatientID == patientID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type recordingAppender struct {
	actors []int64
	fail   bool
}

func (a *recordingAppender) Append(_ context.Context, actorID int64, _ string) error {
	if a.fail {
		return errors.New("log store unavailable")
	}
	a.actors = append(a.actors, actorID)
	return nil
}

func newTestService(repo *mockRepo, audit *recordingAppender) (*Service, *objectstore.InMemoryStore) {
	store := objectstore.NewInMemoryStore()
	return NewService(repo, store, audit, zerolog.Nop()), store
}

func upload(t *testing.T, svc *Service) *MedicalImage {
	t.Helper()
	content := "fake dicom bytes"
	img, _, err := svc.Upload(context.Background(), UploadInput{
		PatientID:   7,
		ImageType:   TypeXRay,
		UploadedBy:  3,
		FileName:    "chest.png",
		FileSize:    int64(len(content)),
		ContentType: "image/png",
		Content:     strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return img
}

// -- Tests --

func TestUpload(t *testing.T) {
	repo := newMockRepo()
	audit := &recordingAppender{}
	svc, store := newTestService(repo, audit)

	img := upload(t, svc)
	if img.ImageID == 0 {
		t.Fatal("expected an id")
	}

	key := store.KeyFromURL(img.ImgURL)
	if !strings.HasPrefix(key, "patient_7/xray/") || !strings.HasSuffix(key, "_chest.png") {
		t.Errorf("unexpected object key %q", key)
	}
	data, ok := store.Get(key)
	if !ok {
		t.Fatal("object not stored")
	}
	if string(data) != "fake dicom bytes" {
		t.Error("stored content differs")
	}
	if len(audit.actors) != 1 || audit.actors[0] != 3 {
		t.Errorf("expected uploader as audit actor, got %v", audit.actors)
	}
}

func TestUpload_Validation(t *testing.T) {
	svc, _ := newTestService(newMockRepo(), &recordingAppender{})

	_, _, err := svc.Upload(context.Background(), UploadInput{
		PatientID: 7, ImageType: "hologram", UploadedBy: 3, FileName: "a.png",
		Content: strings.NewReader("x"),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown image type, got %v", err)
	}
	_, _, err = svc.Upload(context.Background(), UploadInput{
		PatientID: 0, ImageType: TypeMRI, UploadedBy: 3, FileName: "a.png",
		Content: strings.NewReader("x"),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing patient, got %v", err)
	}
}

func TestUpload_MetadataFailureLeavesObject(t *testing.T) {
	repo := newMockRepo()
	repo.failCreate = true
	svc, store := newTestService(repo, &recordingAppender{})

	_, _, err := svc.Upload(context.Background(), UploadInput{
		PatientID: 7, ImageType: TypeXRay, UploadedBy: 3, FileName: "chest.png",
		FileSize: 4, Content: strings.NewReader("data"),
	})
	if err == nil {
		t.Fatal("expected metadata failure to surface")
	}
	// The orphaned object is not compensated away.
	if store.Len() != 1 {
		t.Errorf("expected the stored object to remain, got %d objects", store.Len())
	}
}

func TestPresignedURL(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, &recordingAppender{})
	img := upload(t, svc)

	url, err := svc.PresignedURL(context.Background(), img.ImageID, 90*time.Second)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "expires=90") {
		t.Errorf("expected expiry in url, got %q", url)
	}

	// Zero expiry falls back to the default hour.
	url, err = svc.PresignedURL(context.Background(), img.ImageID, 0)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "expires=3600") {
		t.Errorf("expected default expiry, got %q", url)
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	audit := &recordingAppender{}
	svc, store := newTestService(repo, audit)
	img := upload(t, svc)
	key := store.KeyFromURL(img.ImgURL)

	if err := svc.Delete(context.Background(), img.ImageID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Get(key); ok {
		t.Error("object should be removed")
	}
	if _, ok := repo.items[img.ImageID]; ok {
		t.Error("row should be removed")
	}
	if err := svc.Delete(context.Background(), img.ImageID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUploadSurvivesAuditFailure(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, &recordingAppender{fail: true})

	img := upload(t, svc)
	if _, ok := repo.items[img.ImageID]; !ok {
		t.Fatal("upload should persist despite audit failure")
	}
}
