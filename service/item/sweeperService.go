package item

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes upload files no item row references anymore, catching
// leftovers from failed inserts and best-effort deletes.
type Sweeper interface {
	SweepOrphans(ctx context.Context) (int, error)
	Run(ctx context.Context, every time.Duration)
}

// Files younger than this are left alone: Create writes the image file
// before the row insert commits, so a fresh file can look orphaned
// while its item is still in flight.
const sweepGrace = time.Hour

type sweeper struct {
	r    Repo
	imgs Images
	log  *slog.Logger
	now  func() time.Time
}

func NewSweeper(r Repo, imgs Images, log *slog.Logger) Sweeper {
	return &sweeper{r: r, imgs: imgs, log: log, now: time.Now}
}

func (s *sweeper) SweepOrphans(ctx context.Context) (int, error) {
	refs, err := s.r.ListImageRefs(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		referenced[ref] = struct{}{}
	}

	files, err := s.imgs.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if _, ok := referenced[f]; ok {
			continue
		}
		mt, err := s.imgs.ModTime(f)
		if err != nil {
			s.log.Warn("sweep: failed to stat file", "file", f, "err", err)
			continue
		}
		if s.now().Sub(mt) < sweepGrace {
			continue
		}
		if err := s.imgs.Remove(f); err != nil {
			s.log.Warn("sweep: failed to remove orphan", "file", f, "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *sweeper) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.SweepOrphans(ctx)
			if err != nil {
				s.log.Error("image sweep failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Info("image sweep removed orphans", "count", n)
			}
		}
	}
}
