package imaging

import "time"

// Image types.
const (
	TypeXRay       = "xray"
	TypeMRI        = "mri"
	TypeCT         = "ct"
	TypeUltrasound = "ultrasound"
	TypeOther      = "other"
)

func ValidImageType(t string) bool {
	switch t {
	case TypeXRay, TypeMRI, TypeCT, TypeUltrasound, TypeOther:
		return true
	}
	return false
}

// MedicalImage is the metadata row for an object held in the image store.
// ImgURL is the stored object location, not a browser-usable link; clients
// fetch a presigned URL separately.
type MedicalImage struct {
	ImageID    int64     `db:"image_id" json:"image_id"`
	PatientID  int64     `db:"patient_id" json:"patient_id"`
	ImageType  string    `db:"image_type" json:"image_type"`
	UploadedBy int64     `db:"uploaded_by" json:"uploaded_by"`
	ImgURL     string    `db:"img_url" json:"img_url"`
	FileName   string    `db:"file_name" json:"file_name"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}
