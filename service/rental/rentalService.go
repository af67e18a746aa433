package rental

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sharekori/model"
	rentalrepo "sharekori/repository/rental"
)

// errors used by controllers

type ErrCode string

const (
	ErrItemNotFound ErrCode = "ITEM_NOT_FOUND"
	ErrOwnItem      ErrCode = "OWN_ITEM"
	ErrDateConflict ErrCode = "DATE_CONFLICT"
	ErrInvalidRange ErrCode = "INVALID_RANGE"
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrNotOwner     ErrCode = "NOT_OWNER"
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

// dto

// RangeOut is a booked range as sent to clients, dates YYYY-MM-DD.
type RangeOut struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Availability struct {
	Available bool       `json:"available"`
	Conflicts []RangeOut `json:"conflicts"`
}

type RentalView = rentalrepo.RentalView
type RequestView = rentalrepo.RequestView

type Repo interface {
	LockItemOwner(ctx context.Context, tx *sql.Tx, itemID int64) (int64, error)
	RangesTx(ctx context.Context, tx *sql.Tx, itemID int64) ([]rentalrepo.Range, error)
	Ranges(ctx context.Context, itemID int64) ([]rentalrepo.Range, error)
	Insert(ctx context.Context, tx *sql.Tx, itemID, renterID int64, start, end time.Time) (int64, error)

	RequestOwner(ctx context.Context, requestID int64) (ownerID int64, found bool, err error)
	SetDelivered(ctx context.Context, requestID int64) (*model.RentalRequest, error)

	MyRentals(ctx context.Context, renterID int64) ([]RentalView, error)
	MyRequests(ctx context.Context, renterID int64) ([]RequestView, error)
	ItemRequests(ctx context.Context, ownerID int64) ([]RequestView, error)
	CountCompleted(ctx context.Context, renterID, ownerID int64, now time.Time) (int64, error)
}

type Service interface {
	// Create books [start, end] for renterID, rejecting overlaps with
	// existing requests on the same item. Returns the new request id.
	Create(ctx context.Context, renterID, itemID int64, start, end time.Time) (int64, error)

	// Check reports whether [start, end] is free and which booked
	// ranges collide with it. Read-only.
	Check(ctx context.Context, itemID int64, start, end time.Time) (*Availability, error)

	// Availability lists all booked ranges, ascending by start date.
	Availability(ctx context.Context, itemID int64) ([]RangeOut, error)

	// MarkDelivered flips a request to delivered and returns the
	// updated record. Owner-only, idempotent.
	MarkDelivered(ctx context.Context, ownerID, requestID int64) (*model.RentalRequest, error)

	MyRentals(ctx context.Context, renterID int64) ([]RentalView, error)
	MyRequests(ctx context.Context, renterID int64) ([]RequestView, error)
	ItemRequests(ctx context.Context, ownerID int64) ([]RequestView, error)

	// CanRate reports whether renterID has at least one completed
	// rental from ownerID.
	CanRate(ctx context.Context, renterID, ownerID int64) (bool, error)
}

// ----- Service implementation -----

type service struct {
	// inTx runs fn inside one transaction, committing on nil and
	// rolling back on error.
	inTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
	r    Repo
	now  func() time.Time
}

func New(db *sql.DB, r Repo) Service {
	return &service{
		inTx: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return err
			}
			if err := fn(tx); err != nil {
				_ = tx.Rollback()
				return err
			}
			return tx.Commit()
		},
		r:   r,
		now: time.Now,
	}
}

// overlaps is the inclusive day-granularity test: [aS,aE] touches [bS,bE]
// when aS <= bE and aE >= bS. Adjacent ranges ([10,15] and [16,20]) do
// not overlap.
func overlaps(aS, aE, bS, bE time.Time) bool {
	return !aS.After(bE) && !aE.Before(bS)
}

func conflictsIn(booked []rentalrepo.Range, start, end time.Time) []rentalrepo.Range {
	var out []rentalrepo.Range
	for _, rg := range booked {
		if overlaps(start, end, rg.Start, rg.End) {
			out = append(out, rg)
		}
	}
	return out
}

func toRangeOut(rs []rentalrepo.Range) []RangeOut {
	out := make([]RangeOut, 0, len(rs))
	for _, rg := range rs {
		out = append(out, RangeOut{
			StartDate: rg.Start.Format(time.DateOnly),
			EndDate:   rg.End.Format(time.DateOnly),
		})
	}
	return out
}

func (s *service) Create(ctx context.Context, renterID, itemID int64, start, end time.Time) (int64, error) {
	if !start.Before(end) {
		return 0, makeErr(ErrInvalidRange)
	}

	// Conflict check and insert share one transaction. The FOR UPDATE
	// on the item row serializes concurrent bookings per item, so two
	// overlapping requests cannot both pass the check.
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ownerID, err := s.r.LockItemOwner(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrItemNotFound)
			}
			return err
		}
		if ownerID == renterID {
			return makeErr(ErrOwnItem)
		}

		booked, err := s.r.RangesTx(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if len(conflictsIn(booked, start, end)) > 0 {
			return makeErr(ErrDateConflict)
		}

		id, err = s.r.Insert(ctx, tx, itemID, renterID, start, end)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *service) Check(ctx context.Context, itemID int64, start, end time.Time) (*Availability, error) {
	if !start.Before(end) {
		return nil, makeErr(ErrInvalidRange)
	}
	booked, err := s.r.Ranges(ctx, itemID)
	if err != nil {
		return nil, err
	}
	conflicts := conflictsIn(booked, start, end)
	return &Availability{
		Available: len(conflicts) == 0,
		Conflicts: toRangeOut(conflicts),
	}, nil
}

func (s *service) Availability(ctx context.Context, itemID int64) ([]RangeOut, error) {
	booked, err := s.r.Ranges(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return toRangeOut(booked), nil
}

func (s *service) MarkDelivered(ctx context.Context, ownerID, requestID int64) (*model.RentalRequest, error) {
	owner, found, err := s.r.RequestOwner(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, makeErr(ErrNotFound)
	}
	if owner != ownerID {
		return nil, makeErr(ErrNotOwner)
	}
	return s.r.SetDelivered(ctx, requestID)
}

func (s *service) MyRentals(ctx context.Context, renterID int64) ([]RentalView, error) {
	return s.r.MyRentals(ctx, renterID)
}

func (s *service) MyRequests(ctx context.Context, renterID int64) ([]RequestView, error) {
	return s.r.MyRequests(ctx, renterID)
}

func (s *service) ItemRequests(ctx context.Context, ownerID int64) ([]RequestView, error) {
	return s.r.ItemRequests(ctx, ownerID)
}

func (s *service) CanRate(ctx context.Context, renterID, ownerID int64) (bool, error) {
	n, err := s.r.CountCompleted(ctx, renterID, ownerID, s.now())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
