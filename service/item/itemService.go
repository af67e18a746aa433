package item

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"sharekori/model"
	"sharekori/util/imagestore"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrNotOwner ErrCode = "NOT_OWNER"
	ErrBadImage ErrCode = "BAD_IMAGE"
	ErrNoImage  ErrCode = "NO_IMAGE"
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

type CreateItem struct {
	Title       string
	Description string
	RentPerDay  float64
	Condition   string
	Category    string
	Location    string
}

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

// Images is the file side of a listing (disk-backed imagestore).
type Images interface {
	Save(r io.Reader) (string, error)
	Remove(name string) error
	List() ([]string, error)
	Path(name string) string
	ModTime(name string) (time.Time, error)
}

const featuredLimit = 18

type Service interface {
	// Create stores the optional image and inserts the listing. image
	// may be nil.
	Create(ctx context.Context, ownerID int64, in CreateItem, image io.Reader) (int64, error)
	Mine(ctx context.Context, ownerID int64) ([]model.Item, error)
	// Delete removes the caller's listing; the image file goes
	// best-effort afterwards.
	Delete(ctx context.Context, callerID, id int64) error
	Featured(ctx context.Context) ([]model.Item, error)
	Search(ctx context.Context, keyword, category, condition string) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.ItemDetail, error)
	// ImagePath resolves the on-disk path of a listing's image.
	ImagePath(ctx context.Context, id int64) (string, error)
}

type service struct {
	r    Repo
	imgs Images
	log  *slog.Logger
}

func New(r Repo, imgs Images, log *slog.Logger) Service {
	return &service{r: r, imgs: imgs, log: log}
}

func (s *service) Create(ctx context.Context, ownerID int64, in CreateItem, image io.Reader) (int64, error) {
	cond := in.Condition
	if cond == "" {
		cond = "Used"
	}

	var imageRef *string
	if image != nil {
		name, err := s.imgs.Save(image)
		if err != nil {
			if errors.Is(err, imagestore.ErrNotImage) {
				return 0, makeErr(ErrBadImage)
			}
			return 0, err
		}
		imageRef = &name
	}

	it := &model.Item{
		OwnerID:         ownerID,
		Title:           in.Title,
		ItemDescription: in.Description,
		RentPerDay:      in.RentPerDay,
		ItemCondition:   cond,
		Category:        in.Category,
		Location:        in.Location,
		ImageURL:        imageRef,
	}
	id, err := s.r.Insert(ctx, it)
	if err != nil {
		if imageRef != nil {
			if rmErr := s.imgs.Remove(*imageRef); rmErr != nil {
				s.log.Warn("orphan image left after failed insert", "file", *imageRef, "err", rmErr)
			}
		}
		return 0, err
	}
	return id, nil
}

func (s *service) Mine(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return s.r.ByOwner(ctx, ownerID)
}

func (s *service) Delete(ctx context.Context, callerID, id int64) error {
	image, ownerID, found, err := s.r.ImageAndOwner(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return makeErr(ErrNotFound)
	}
	if ownerID != callerID {
		return makeErr(ErrNotOwner)
	}

	deleted, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return makeErr(ErrNotFound)
	}

	// Fire-and-forget: a leftover file is picked up by the sweeper.
	if image != nil {
		if err := s.imgs.Remove(*image); err != nil {
			s.log.Warn("failed to delete image file", "file", *image, "err", err)
		}
	}
	return nil
}

func (s *service) Featured(ctx context.Context) ([]model.Item, error) {
	return s.r.Featured(ctx, featuredLimit)
}

func (s *service) Search(ctx context.Context, keyword, category, condition string) ([]model.Item, error) {
	return s.r.Search(ctx, keyword, category, condition)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.ItemDetail, error) {
	d, err := s.r.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, makeErr(ErrNotFound)
	}
	return d, nil
}

func (s *service) ImagePath(ctx context.Context, id int64) (string, error) {
	image, _, found, err := s.r.ImageAndOwner(ctx, id)
	if err != nil {
		return "", err
	}
	if !found {
		return "", makeErr(ErrNotFound)
	}
	if image == nil {
		return "", makeErr(ErrNoImage)
	}
	return s.imgs.Path(*image), nil
}
