package image

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanImage(row pgx.Row) (*UserImage, error) {
	var img UserImage

	err := row.Scan(
		&img.ID,
		&img.UserID,
		&img.Image,
		&img.Filename,
		&img.ContentType,
		&img.Size,
		&img.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}

	return &img, nil
}

func (r *PgRepository) Create(ctx context.Context, img UserImage) (*UserImage, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_images (user_id, image, filename, content_type, size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, user_id, image, filename, content_type, size, uploaded_at
	`, img.UserID, img.Image, img.Filename, img.ContentType, img.Size)
	return scanImage(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id int64) (*UserImage, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, image, filename, content_type, size, uploaded_at
		FROM user_images
		WHERE id = $1
	`, id)
	return scanImage(row)
}

func (r *PgRepository) ListByUser(ctx context.Context, userID int64) ([]Info, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, filename, content_type, size, uploaded_at
		FROM user_images
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.UserID, &info.Filename, &info.ContentType, &info.Size, &info.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, info)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM user_images
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
