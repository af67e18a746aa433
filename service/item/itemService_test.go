package item

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sharekori/model"
	"sharekori/util/imagestore"
)

type mockRepo struct {
	insertFn        func(ctx context.Context, it *model.Item) (int64, error)
	byOwnerFn       func(ctx context.Context, ownerID int64) ([]model.Item, error)
	detailFn        func(ctx context.Context, id int64) (*model.ItemDetail, error)
	imageAndOwnerFn func(ctx context.Context, id int64) (*string, int64, bool, error)
	deleteFn        func(ctx context.Context, id int64) (bool, error)
	listImageRefsFn func(ctx context.Context) ([]string, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Insert(ctx context.Context, it *model.Item) (int64, error) {
	return m.insertFn(ctx, it)
}
func (m *mockRepo) ByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return m.byOwnerFn(ctx, ownerID)
}
func (m *mockRepo) Detail(ctx context.Context, id int64) (*model.ItemDetail, error) {
	return m.detailFn(ctx, id)
}
func (m *mockRepo) ImageAndOwner(ctx context.Context, id int64) (*string, int64, bool, error) {
	return m.imageAndOwnerFn(ctx, id)
}
func (m *mockRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return m.deleteFn(ctx, id)
}
func (m *mockRepo) Featured(ctx context.Context, limit int) ([]model.Item, error) {
	return nil, nil
}
func (m *mockRepo) Search(ctx context.Context, keyword, category, condition string) ([]model.Item, error) {
	return nil, nil
}
func (m *mockRepo) ListImageRefs(ctx context.Context) ([]string, error) {
	return m.listImageRefsFn(ctx)
}

type mockImages struct {
	saved    []string
	removed  []string
	files    []string
	saveErr  error
	modTimes map[string]time.Time
}

var _ Images = (*mockImages)(nil)

func (m *mockImages) Save(r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	name := "img-1.png"
	m.saved = append(m.saved, name)
	return name, nil
}
func (m *mockImages) Remove(name string) error {
	m.removed = append(m.removed, name)
	return nil
}
func (m *mockImages) List() ([]string, error) { return m.files, nil }
func (m *mockImages) Path(name string) string { return "/tmp/" + name }
func (m *mockImages) ModTime(name string) (time.Time, error) {
	if mt, ok := m.modTimes[name]; ok {
		return mt, nil
	}
	return time.Now().Add(-24 * time.Hour), nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreate_DefaultsCondition(t *testing.T) {
	var inserted *model.Item
	m := &mockRepo{
		insertFn: func(ctx context.Context, it *model.Item) (int64, error) {
			inserted = it
			return 3, nil
		},
	}
	svc := New(m, &mockImages{}, discard())

	id, err := svc.Create(context.Background(), 1, CreateItem{
		Title:      "Drill",
		RentPerDay: 12,
		Category:   "Tools",
		Location:   "Dhaka",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), id)
	require.Equal(t, "Used", inserted.ItemCondition)
	require.Nil(t, inserted.ImageURL)
}

func TestCreate_WithImage(t *testing.T) {
	imgs := &mockImages{}
	m := &mockRepo{
		insertFn: func(ctx context.Context, it *model.Item) (int64, error) {
			require.NotNil(t, it.ImageURL)
			return 4, nil
		},
	}
	svc := New(m, imgs, discard())

	_, err := svc.Create(context.Background(), 1, CreateItem{Title: "Tent"}, strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Len(t, imgs.saved, 1)
}

func TestCreate_BadImage(t *testing.T) {
	imgs := &mockImages{saveErr: imagestore.ErrNotImage}
	svc := New(&mockRepo{}, imgs, discard())

	_, err := svc.Create(context.Background(), 1, CreateItem{Title: "Tent"}, strings.NewReader("exe"))
	require.Equal(t, ErrBadImage, Code(err))
}

func TestCreate_InsertFailureRemovesImage(t *testing.T) {
	imgs := &mockImages{}
	m := &mockRepo{
		insertFn: func(ctx context.Context, it *model.Item) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	svc := New(m, imgs, discard())

	_, err := svc.Create(context.Background(), 1, CreateItem{Title: "Tent"}, strings.NewReader("png"))
	require.Error(t, err)
	require.Equal(t, []string{"img-1.png"}, imgs.removed)
}

func TestDelete_NotFound(t *testing.T) {
	m := &mockRepo{
		imageAndOwnerFn: func(ctx context.Context, id int64) (*string, int64, bool, error) {
			return nil, 0, false, nil
		},
	}
	svc := New(m, &mockImages{}, discard())

	err := svc.Delete(context.Background(), 1, 99)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestDelete_NotOwner(t *testing.T) {
	m := &mockRepo{
		imageAndOwnerFn: func(ctx context.Context, id int64) (*string, int64, bool, error) {
			return nil, 7, true, nil
		},
	}
	svc := New(m, &mockImages{}, discard())

	err := svc.Delete(context.Background(), 8, 1)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestDelete_RemovesImageFile(t *testing.T) {
	img := "old.png"
	imgs := &mockImages{}
	m := &mockRepo{
		imageAndOwnerFn: func(ctx context.Context, id int64) (*string, int64, bool, error) {
			return &img, 7, true, nil
		},
		deleteFn: func(ctx context.Context, id int64) (bool, error) { return true, nil },
	}
	svc := New(m, imgs, discard())

	err := svc.Delete(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"old.png"}, imgs.removed)
}

func TestSweepOrphans(t *testing.T) {
	imgs := &mockImages{files: []string{"a.png", "b.png", "c.png"}}
	m := &mockRepo{
		listImageRefsFn: func(ctx context.Context) ([]string, error) {
			return []string{"b.png"}, nil
		},
	}
	sw := NewSweeper(m, imgs, discard())

	n, err := sw.SweepOrphans(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.ElementsMatch(t, []string{"a.png", "c.png"}, imgs.removed)
}

func TestSweepOrphans_KeepsFreshFiles(t *testing.T) {
	// an unreferenced file just written by an in-flight create must
	// survive the sweep
	imgs := &mockImages{
		files: []string{"fresh.png", "stale.png"},
		modTimes: map[string]time.Time{
			"fresh.png": time.Now(),
			"stale.png": time.Now().Add(-2 * time.Hour),
		},
	}
	m := &mockRepo{
		listImageRefsFn: func(ctx context.Context) ([]string, error) {
			return nil, nil
		},
	}
	sw := NewSweeper(m, imgs, discard())

	n, err := sw.SweepOrphans(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []string{"stale.png"}, imgs.removed)
}
