package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// ReviewRepository persists reviews and keeps the product rating aggregate in step.
type ReviewRepository interface {
	CreateWithRating(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	DeleteWithRating(ctx context.Context, review *domain.Review) error
}

type reviewRepository struct {
	db DB
}

// NewReviewRepository instantiates repository.
func NewReviewRepository(db DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const refreshRatingQuery = `
        UPDATE products p
        SET average_rating = COALESCE(s.avg, 0), rating_count = s.cnt, updated_at = NOW()
        FROM (SELECT AVG(rating)::float8 AS avg, COUNT(*) AS cnt FROM reviews WHERE product_id=$1) s
        WHERE p.id=$1`

// CreateWithRating inserts the review and recomputes the product rating in one transaction.
func (r *reviewRepository) CreateWithRating(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insert = `
        INSERT INTO reviews (product_id, user_id, content, rating)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		review.ProductID,
		review.UserID,
		review.Content,
		review.Rating,
	).Scan(&review.ID, &review.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, refreshRatingQuery, review.ProductID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	const query = `
        SELECT r.id, r.product_id, r.user_id, u.name, r.content, r.rating, r.created_at
        FROM reviews r JOIN users u ON u.id = r.user_id
        WHERE r.id=$1`
	var review domain.Review
	if err := scanReview(r.db.QueryRow(ctx, query, id), &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	const query = `
        SELECT r.id, r.product_id, r.user_id, u.name, r.content, r.rating, r.created_at
        FROM reviews r JOIN users u ON u.id = r.user_id
        WHERE r.product_id=$1
        ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var review domain.Review
		if err := scanReview(rows, &review); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// DeleteWithRating removes the review and recomputes the product rating in one transaction.
func (r *reviewRepository) DeleteWithRating(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, review.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if _, err := tx.Exec(ctx, refreshRatingQuery, review.ProductID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanReview(row pgx.Row, review *domain.Review) error {
	return row.Scan(
		&review.ID,
		&review.ProductID,
		&review.UserID,
		&review.UserName,
		&review.Content,
		&review.Rating,
		&review.CreatedAt,
	)
}
