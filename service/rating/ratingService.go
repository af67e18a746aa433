package rating

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"sharekori/model"
	ratingrepo "sharekori/repository/rating"
)

// errors used by controllers

type ErrCode string

const (
	ErrRentalNotFound ErrCode = "RENTAL_NOT_FOUND"
	ErrNotRenter      ErrCode = "NOT_RENTER"
	ErrNotCompleted   ErrCode = "RENTAL_NOT_COMPLETED"
	ErrInvalidRating  ErrCode = "INVALID_RATING"
	ErrDuplicate      ErrCode = "DUPLICATE_RATING"
	ErrNotFound       ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Average distinguishes "no ratings yet" (nil) from a zero score.
type Average struct {
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int64    `json:"rating_count"`
}

type ItemReview = ratingrepo.ItemReview

type Repo interface {
	RentalForRating(ctx context.Context, rentalID int64) (renterID int64, endDate time.Time, found bool, err error)
	Insert(ctx context.Context, rt *model.Rating) error
	ByRental(ctx context.Context, rentalID int64) (*model.Rating, error)
	ByItem(ctx context.Context, itemID int64) ([]ItemReview, error)
	AverageForOwner(ctx context.Context, ownerID int64) (avg *float64, count int64, err error)
}

type Service interface {
	// Submit records the single rating a renter may leave once the
	// rental's end date has passed.
	Submit(ctx context.Context, raterID, rentalID int64, stars int, comment string) (*model.Rating, error)
	ByRental(ctx context.Context, rentalID int64) (*model.Rating, error)
	// ItemReviews lists an item's ratings with reviewer names, newest
	// first.
	ItemReviews(ctx context.Context, itemID int64) ([]ItemReview, error)
	OwnerAverage(ctx context.Context, ownerID int64) (*Average, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) Submit(ctx context.Context, raterID, rentalID int64, stars int, comment string) (*model.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, makeErr(ErrInvalidRating)
	}

	renterID, endDate, found, err := s.r.RentalForRating(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, makeErr(ErrRentalNotFound)
	}
	if renterID != raterID {
		return nil, makeErr(ErrNotRenter)
	}
	if !endDate.Before(s.now()) {
		return nil, makeErr(ErrNotCompleted)
	}

	rt := &model.Rating{RentalID: rentalID, Rating: stars}
	if c := strings.TrimSpace(comment); c != "" {
		rt.Comment = &c
	}

	if err := s.r.Insert(ctx, rt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, makeErr(ErrDuplicate)
		}
		return nil, err
	}
	return rt, nil
}

func (s *service) ByRental(ctx context.Context, rentalID int64) (*model.Rating, error) {
	rt, err := s.r.ByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, makeErr(ErrNotFound)
	}
	return rt, nil
}

func (s *service) ItemReviews(ctx context.Context, itemID int64) ([]ItemReview, error) {
	return s.r.ByItem(ctx, itemID)
}

func (s *service) OwnerAverage(ctx context.Context, ownerID int64) (*Average, error) {
	avg, count, err := s.r.AverageForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &Average{AverageRating: avg, RatingCount: count}, nil
}
