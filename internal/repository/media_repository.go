package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workhub/marketplace-backend/internal/models"
)

// ErrMediaNotFound возвращается, когда файл не найден.
var ErrMediaNotFound = errors.New("media file not found")

// MediaRepository отвечает за метаданные загруженных файлов.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository создаёт экземпляр репозитория.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create сохраняет метаданные файла.
func (r *MediaRepository) Create(ctx context.Context, media *models.MediaFile) error {
	query := `
		INSERT INTO media_files (user_id, file_path, file_type, file_size, is_public)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		media.UserID, media.FilePath, media.FileType, media.FileSize, media.IsPublic,
	).Scan(&media.ID, &media.CreatedAt); err != nil {
		return fmt.Errorf("media repository: create %w", err)
	}

	return nil
}

// GetByID возвращает метаданные файла.
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var media models.MediaFile
	query := `
		SELECT id, user_id, file_path, file_type, file_size, is_public, created_at
		FROM media_files
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &media, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("media repository: get by id %w", err)
	}

	return &media, nil
}

// Delete удаляет метаданные файла, проверяя владельца.
func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.MediaFile, error) {
	var media models.MediaFile
	query := `
		DELETE FROM media_files
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, file_path, file_type, file_size, is_public, created_at
	`
	if err := r.db.GetContext(ctx, &media, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("media repository: delete %w", err)
	}

	return &media, nil
}
