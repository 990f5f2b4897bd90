package imaging

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const imageCols = `image_id, patient_id, image_type, uploaded_by, img_url, file_name, file_size, uploaded_at`

func scanImage(row pgx.Row) (*MedicalImage, error) {
	var m MedicalImage
	err := row.Scan(&m.ImageID, &m.PatientID, &m.ImageType, &m.UploadedBy,
		&m.ImgURL, &m.FileName, &m.FileSize, &m.UploadedAt)
	return &m, err
}

func collectImages(rows pgx.Rows) ([]*MedicalImage, error) {
	defer rows.Close()
	var items []*MedicalImage
	for rows.Next() {
		m, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *RepoPG) Create(ctx context.Context, img *MedicalImage) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medical_images (patient_id, image_type, uploaded_by, img_url, file_name, file_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING image_id, uploaded_at`,
		img.PatientID, img.ImageType, img.UploadedBy, img.ImgURL, img.FileName, img.FileSize,
	).Scan(&img.ImageID, &img.UploadedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*MedicalImage, error) {
	m, err := scanImage(r.pool.QueryRow(ctx,
		`SELECT `+imageCols+` FROM medical_images WHERE image_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *RepoPG) List(ctx context.Context) ([]*MedicalImage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+imageCols+` FROM medical_images ORDER BY image_id`)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

func (r *RepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*MedicalImage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+imageCols+` FROM medical_images WHERE patient_id = $1 ORDER BY image_id`, patientID)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

func (r *RepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_images WHERE image_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
