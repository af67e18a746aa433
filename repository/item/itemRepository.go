package itemrepo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"sharekori/model"
)

type Repo interface {
	Insert(ctx context.Context, it *model.Item) (int64, error)
	ByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.ItemDetail, error)
	ImageAndOwner(ctx context.Context, id int64) (image *string, ownerID int64, found bool, err error)
	Delete(ctx context.Context, id int64) (bool, error)
	Featured(ctx context.Context, limit int) ([]model.Item, error)
	Search(ctx context.Context, keyword, category, condition string) ([]model.Item, error)
	ListImageRefs(ctx context.Context) ([]string, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const itemCols = `id, owner_id, title, item_description, rent_per_day, item_condition, category, location, image_url, created_at`

func (r *repo) Insert(ctx context.Context, it *model.Item) (int64, error) {
	const q = `
		INSERT INTO items (owner_id, title, item_description, rent_per_day, item_condition, category, location, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		it.OwnerID, it.Title, it.ItemDescription, it.RentPerDay,
		it.ItemCondition, it.Category, it.Location, it.ImageURL,
	).Scan(&id)
	return id, err
}

func (r *repo) ByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemCols+`
		FROM items
		WHERE owner_id = $1
		ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.ItemDetail, error) {
	const q = `
		SELECT i.id, i.owner_id, i.title, i.item_description, i.rent_per_day,
		       i.item_condition, i.category, i.location, i.image_url, i.created_at,
		       u.name AS owner_name,
		       (SELECT AVG(rt.rating)::float8
		          FROM ratings rt
		          JOIN rental_requests rr ON rr.id = rt.rental_id
		          JOIN items oi ON oi.id = rr.item_id
		         WHERE oi.owner_id = i.owner_id) AS owner_average_rating,
		       (SELECT COUNT(*)
		          FROM ratings rt
		          JOIN rental_requests rr ON rr.id = rt.rental_id
		          JOIN items oi ON oi.id = rr.item_id
		         WHERE oi.owner_id = i.owner_id) AS owner_rating_count
		FROM items i
		JOIN users u ON u.id = i.owner_id
		WHERE i.id = $1`
	d := &model.ItemDetail{}
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.ItemDescription, &d.RentPerDay,
		&d.ItemCondition, &d.Category, &d.Location, &d.ImageURL, &d.CreatedAt,
		&d.OwnerName, &avg, &d.OwnerRatingCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		d.OwnerAverageRating = &avg.Float64
	}
	return d, nil
}

func (r *repo) ImageAndOwner(ctx context.Context, id int64) (*string, int64, bool, error) {
	var img *string
	var owner int64
	err := r.db.QueryRowContext(ctx,
		`SELECT image_url, owner_id FROM items WHERE id = $1`, id,
	).Scan(&img, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	return img, owner, true, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Featured(ctx context.Context, limit int) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemCols+`
		FROM items
		ORDER BY random()
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *repo) Search(ctx context.Context, keyword, category, condition string) ([]model.Item, error) {
	q := `SELECT ` + itemCols + ` FROM items WHERE 1=1`
	var args []any
	if keyword != "" {
		args = append(args, "%"+keyword+"%")
		q += ` AND title ILIKE $` + strconv.Itoa(len(args))
	}
	if category != "" {
		args = append(args, category)
		q += ` AND category = $` + strconv.Itoa(len(args))
	}
	if condition != "" {
		args = append(args, condition)
		q += ` AND item_condition = $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *repo) ListImageRefs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT image_url FROM items WHERE image_url IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(ref))
	}
	return out, rows.Err()
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()
	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(
			&it.ID, &it.OwnerID, &it.Title, &it.ItemDescription, &it.RentPerDay,
			&it.ItemCondition, &it.Category, &it.Location, &it.ImageURL, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
