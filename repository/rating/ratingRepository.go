package ratingrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sharekori/model"
)

// ItemReview is a rating of an item as shown on its public page, with
// the renter who left it.
type ItemReview struct {
	Stars        int     `json:"stars"`
	Comment      *string `json:"comment"`
	ReviewerName string  `json:"reviewer_name"`
}

type Repo interface {
	// RentalForRating fetches the renter and end date of a request.
	RentalForRating(ctx context.Context, rentalID int64) (renterID int64, endDate time.Time, found bool, err error)
	Insert(ctx context.Context, rt *model.Rating) error
	ByRental(ctx context.Context, rentalID int64) (*model.Rating, error)
	ByItem(ctx context.Context, itemID int64) ([]ItemReview, error)
	// AverageForOwner aggregates ratings across rentals of the owner's
	// items. avg is nil when there are none.
	AverageForOwner(ctx context.Context, ownerID int64) (avg *float64, count int64, err error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) RentalForRating(ctx context.Context, rentalID int64) (int64, time.Time, bool, error) {
	const q = `
		SELECT renter_id, end_date
		FROM rental_requests
		WHERE id = $1`
	var renter int64
	var end time.Time
	err := r.db.QueryRowContext(ctx, q, rentalID).Scan(&renter, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, false, nil
	}
	if err != nil {
		return 0, time.Time{}, false, err
	}
	return renter, end, true, nil
}

func (r *repo) Insert(ctx context.Context, rt *model.Rating) error {
	// ratings.rental_id is UNIQUE; the duplicate case surfaces as a
	// constraint violation mapped by the service.
	const q = `
		INSERT INTO ratings (rental_id, rating, comment)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, rt.RentalID, rt.Rating, rt.Comment).
		Scan(&rt.ID, &rt.CreatedAt)
}

func (r *repo) ByRental(ctx context.Context, rentalID int64) (*model.Rating, error) {
	const q = `
		SELECT id, rental_id, rating, comment, created_at
		FROM ratings
		WHERE rental_id = $1`
	rt := &model.Rating{}
	err := r.db.QueryRowContext(ctx, q, rentalID).
		Scan(&rt.ID, &rt.RentalID, &rt.Rating, &rt.Comment, &rt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *repo) ByItem(ctx context.Context, itemID int64) ([]ItemReview, error) {
	const q = `
		SELECT rt.rating, rt.comment, u.name
		FROM ratings rt
		JOIN rental_requests rr ON rr.id = rt.rental_id
		JOIN users u ON u.id = rr.renter_id
		WHERE rr.item_id = $1
		ORDER BY rt.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemReview
	for rows.Next() {
		var rv ItemReview
		if err := rows.Scan(&rv.Stars, &rv.Comment, &rv.ReviewerName); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *repo) AverageForOwner(ctx context.Context, ownerID int64) (*float64, int64, error) {
	const q = `
		SELECT AVG(rt.rating)::float8, COUNT(*)
		FROM ratings rt
		JOIN rental_requests rr ON rr.id = rt.rental_id
		JOIN items i ON i.id = rr.item_id
		WHERE i.owner_id = $1`
	var avg sql.NullFloat64
	var count int64
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&avg, &count); err != nil {
		return nil, 0, err
	}
	if !avg.Valid {
		return nil, 0, nil
	}
	return &avg.Float64, count, nil
}
