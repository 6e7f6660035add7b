package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayraw/internal/domain"
)

var (
	ErrBannerNotFound = errors.New("banner not found")
)

// BannerRepository defines the interface for promotional banner data access.
type BannerRepository interface {
	Create(ctx context.Context, banner *domain.Banner) error
	Update(ctx context.Context, banner *domain.Banner) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Banner, error)
}

type bannerRepository struct {
	db *sql.DB
}

// NewBannerRepository creates a new instance of BannerRepository
func NewBannerRepository(db *sql.DB) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) Create(ctx context.Context, banner *domain.Banner) error {
	query := `
		INSERT INTO banners (title, description, image_url, link)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, banner.Title, banner.Description, banner.ImageURL, banner.Link).Scan(&banner.ID)
	if err != nil {
		return fmt.Errorf("failed to create banner: %w", err)
	}

	return nil
}

func (r *bannerRepository) Update(ctx context.Context, banner *domain.Banner) error {
	query := `UPDATE banners SET title = $2, description = $3, image_url = $4, link = $5 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, banner.ID, banner.Title, banner.Description, banner.ImageURL, banner.Link)
	if err != nil {
		return fmt.Errorf("failed to update banner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBannerNotFound
	}

	return nil
}

func (r *bannerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete banner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBannerNotFound
	}

	return nil
}

func (r *bannerRepository) List(ctx context.Context) ([]*domain.Banner, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, description, image_url, link FROM banners ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	banners := []*domain.Banner{}
	for rows.Next() {
		banner := &domain.Banner{}
		if err := rows.Scan(&banner.ID, &banner.Title, &banner.Description, &banner.ImageURL, &banner.Link); err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, banner)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banners: %w", err)
	}

	return banners, nil
}
