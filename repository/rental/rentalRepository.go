package rentalrepo

import (
	"context"
	"database/sql"
	"time"

	"sharekori/model"
)

// Range is a booked [start, end] interval, day granularity inclusive.
type Range struct {
	Start time.Time
	End   time.Time
}

// RentalView is a request joined with item and owner, for the renter's
// "my rentals" listing. Dates are pre-formatted YYYY-MM-DD.
type RentalView struct {
	RentalID        int64   `json:"rental_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	ItemID          int64   `json:"item_id"`
	Title           string  `json:"title"`
	ItemDescription string  `json:"item_description"`
	RentPerDay      float64 `json:"rent_per_day"`
	ItemCondition   string  `json:"item_condition"`
	Category        string  `json:"category"`
	Location        string  `json:"location"`
	ImageURL        *string `json:"image_url"`
	OwnerID         int64   `json:"owner_id"`
	OwnerName       string  `json:"owner_name"`
}

// RequestView adds delivery state and contact info. Used for both the
// renter's requests and the owner's incoming requests; Counterparty* is
// the owner for the former and the renter for the latter.
type RequestView struct {
	RequestID        int64   `json:"request_id"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	DeliveredStatus  string  `json:"delivered_status"`
	ItemID           int64   `json:"item_id"`
	Title            string  `json:"title"`
	ItemDescription  string  `json:"item_description"`
	RentPerDay       float64 `json:"rent_per_day"`
	ItemCondition    string  `json:"item_condition"`
	Category         string  `json:"category"`
	Location         string  `json:"location"`
	ImageURL         *string `json:"image_url"`
	CounterpartyID   int64   `json:"counterparty_id"`
	CounterpartyName string  `json:"counterparty_name"`
	RenterPhone      *string `json:"renter_phone"`
}

type Repo interface {
	// LockItemOwner locks the item row, serializing concurrent bookings
	// on the same item within a transaction. sql.ErrNoRows when absent.
	LockItemOwner(ctx context.Context, tx *sql.Tx, itemID int64) (int64, error)
	RangesTx(ctx context.Context, tx *sql.Tx, itemID int64) ([]Range, error)
	Ranges(ctx context.Context, itemID int64) ([]Range, error)
	Insert(ctx context.Context, tx *sql.Tx, itemID, renterID int64, start, end time.Time) (int64, error)

	RequestOwner(ctx context.Context, requestID int64) (ownerID int64, found bool, err error)
	SetDelivered(ctx context.Context, requestID int64) (*model.RentalRequest, error)

	MyRentals(ctx context.Context, renterID int64) ([]RentalView, error)
	MyRequests(ctx context.Context, renterID int64) ([]RequestView, error)
	ItemRequests(ctx context.Context, ownerID int64) ([]RequestView, error)
	CountCompleted(ctx context.Context, renterID, ownerID int64, now time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) LockItemOwner(ctx context.Context, tx *sql.Tx, itemID int64) (int64, error) {
	const q = `
		SELECT owner_id
		FROM items
		WHERE id = $1
		FOR UPDATE`
	var owner int64
	err := tx.QueryRowContext(ctx, q, itemID).Scan(&owner)
	return owner, err
}

const rangesQuery = `
		SELECT start_date, end_date
		FROM rental_requests
		WHERE item_id = $1
		ORDER BY start_date ASC`

func (r *repo) RangesTx(ctx context.Context, tx *sql.Tx, itemID int64) ([]Range, error) {
	rows, err := tx.QueryContext(ctx, rangesQuery, itemID)
	if err != nil {
		return nil, err
	}
	return scanRanges(rows)
}

func (r *repo) Ranges(ctx context.Context, itemID int64) ([]Range, error) {
	rows, err := r.db.QueryContext(ctx, rangesQuery, itemID)
	if err != nil {
		return nil, err
	}
	return scanRanges(rows)
}

func scanRanges(rows *sql.Rows) ([]Range, error) {
	defer rows.Close()
	var out []Range
	for rows.Next() {
		var rg Range
		if err := rows.Scan(&rg.Start, &rg.End); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, itemID, renterID int64, start, end time.Time) (int64, error) {
	const q = `
		INSERT INTO rental_requests (item_id, renter_id, start_date, end_date, delivered_status)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, itemID, renterID, start, end).Scan(&id)
	return id, err
}

func (r *repo) RequestOwner(ctx context.Context, requestID int64) (int64, bool, error) {
	const q = `
		SELECT i.owner_id
		FROM rental_requests r
		JOIN items i ON i.id = r.item_id
		WHERE r.id = $1`
	var owner int64
	err := r.db.QueryRowContext(ctx, q, requestID).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return owner, true, nil
}

func (r *repo) SetDelivered(ctx context.Context, requestID int64) (*model.RentalRequest, error) {
	// Idempotent: re-running leaves the row in the same state.
	const q = `
		UPDATE rental_requests
		SET delivered_status = TRUE
		WHERE id = $1
		RETURNING id, item_id, renter_id, start_date, end_date, delivered_status, created_at`
	req := &model.RentalRequest{}
	var delivered bool
	err := r.db.QueryRowContext(ctx, q, requestID).Scan(
		&req.ID, &req.ItemID, &req.RenterID, &req.StartDate, &req.EndDate,
		&delivered, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.DeliveredStatus = model.DeliveryPending
	if delivered {
		req.DeliveredStatus = model.DeliveryDelivered
	}
	return req, nil
}

func (r *repo) MyRentals(ctx context.Context, renterID int64) ([]RentalView, error) {
	const q = `
		SELECT
			r.id AS rental_id,
			to_char(r.start_date, 'YYYY-MM-DD') AS start_date,
			to_char(r.end_date, 'YYYY-MM-DD') AS end_date,
			i.id AS item_id,
			i.title,
			i.item_description,
			i.rent_per_day,
			i.item_condition,
			i.category,
			i.location,
			i.image_url,
			u.id AS owner_id,
			u.name AS owner_name
		FROM rental_requests r
		JOIN items i ON i.id = r.item_id
		JOIN users u ON u.id = i.owner_id
		WHERE r.renter_id = $1
		ORDER BY r.start_date DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, renterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RentalView
	for rows.Next() {
		var v RentalView
		if err := rows.Scan(
			&v.RentalID, &v.StartDate, &v.EndDate, &v.ItemID, &v.Title,
			&v.ItemDescription, &v.RentPerDay, &v.ItemCondition, &v.Category,
			&v.Location, &v.ImageURL, &v.OwnerID, &v.OwnerName,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repo) MyRequests(ctx context.Context, renterID int64) ([]RequestView, error) {
	const q = `
		SELECT
			r.id AS request_id,
			to_char(r.start_date, 'YYYY-MM-DD') AS start_date,
			to_char(r.end_date, 'YYYY-MM-DD') AS end_date,
			CASE WHEN r.delivered_status THEN 'delivered' ELSE 'pending' END AS delivered_status,
			i.id AS item_id,
			i.title,
			i.item_description,
			i.rent_per_day,
			i.item_condition,
			i.category,
			i.location,
			i.image_url,
			u.id,
			u.name,
			renter.phone_number AS renter_phone
		FROM rental_requests r
		JOIN items i ON i.id = r.item_id
		JOIN users u ON u.id = i.owner_id
		JOIN users renter ON renter.id = r.renter_id
		WHERE r.renter_id = $1
		ORDER BY r.start_date DESC`
	return r.queryRequestViews(ctx, q, renterID)
}

func (r *repo) ItemRequests(ctx context.Context, ownerID int64) ([]RequestView, error) {
	const q = `
		SELECT
			r.id AS request_id,
			to_char(r.start_date, 'YYYY-MM-DD') AS start_date,
			to_char(r.end_date, 'YYYY-MM-DD') AS end_date,
			CASE WHEN r.delivered_status THEN 'delivered' ELSE 'pending' END AS delivered_status,
			i.id AS item_id,
			i.title,
			i.item_description,
			i.rent_per_day,
			i.item_condition,
			i.category,
			i.location,
			i.image_url,
			renter.id,
			renter.name,
			renter.phone_number AS renter_phone
		FROM rental_requests r
		JOIN items i ON i.id = r.item_id
		JOIN users renter ON renter.id = r.renter_id
		WHERE i.owner_id = $1
		ORDER BY r.start_date DESC`
	return r.queryRequestViews(ctx, q, ownerID)
}

func (r *repo) queryRequestViews(ctx context.Context, q string, arg int64) ([]RequestView, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RequestView
	for rows.Next() {
		var v RequestView
		if err := rows.Scan(
			&v.RequestID, &v.StartDate, &v.EndDate, &v.DeliveredStatus,
			&v.ItemID, &v.Title, &v.ItemDescription, &v.RentPerDay,
			&v.ItemCondition, &v.Category, &v.Location, &v.ImageURL,
			&v.CounterpartyID, &v.CounterpartyName, &v.RenterPhone,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repo) CountCompleted(ctx context.Context, renterID, ownerID int64, now time.Time) (int64, error) {
	const q = `
		SELECT COUNT(*)
		FROM rental_requests r
		JOIN items i ON i.id = r.item_id
		WHERE r.renter_id = $1
		  AND i.owner_id = $2
		  AND r.end_date < $3`
	var n int64
	err := r.db.QueryRowContext(ctx, q, renterID, ownerID, now).Scan(&n)
	return n, err
}
