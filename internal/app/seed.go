package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"mall_admin/internal/domain"
)

// SeedDocument references shops and categories by name so that it can be
// applied to any store regardless of the ids it hands out.
type SeedDocument struct {
	Shops []struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	} `json:"shops"`
	Commercials []struct {
		Shop  string `json:"shop"`
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"commercials"`
	Rooms []struct {
		RoomID int64  `json:"roomId"`
		Shop   string `json:"shop"`
	} `json:"rooms"`
}

type SeedResult struct {
	ShopsCreated  int
	ShopsExisting int
	Commercials   int
	RoomsAssigned int
}

func ParseSeed(raw []byte) (SeedDocument, error) {
	var doc SeedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode seed document: %w", err)
	}
	return doc, nil
}

type Seeder struct {
	cmds    *MallService
	repo    domain.MallRepository
	workers int
}

func NewSeeder(cmds *MallService, repo domain.MallRepository, workers int) *Seeder {
	if workers <= 0 {
		workers = 1
	}
	return &Seeder{cmds: cmds, repo: repo, workers: workers}
}

// Apply creates shops one by one so ids follow document order, then adds
// commercials and room assignments through a bounded worker pool. Shops that
// already exist are reused.
func (s *Seeder) Apply(ctx context.Context, doc SeedDocument) (SeedResult, error) {
	var res SeedResult

	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	catByName := make(map[string]int64, len(cats))
	for _, c := range cats {
		catByName[strings.ToLower(c.Name)] = c.ID
	}

	shopIDs, err := s.existingShops(ctx)
	if err != nil {
		return res, err
	}
	for _, sh := range doc.Shops {
		name := strings.TrimSpace(sh.Name)
		if _, ok := shopIDs[name]; ok {
			res.ShopsExisting++
			continue
		}
		catID, ok := catByName[strings.ToLower(strings.TrimSpace(sh.Category))]
		if !ok {
			return res, fmt.Errorf("shop %q: category %q: %w", sh.Name, sh.Category, domain.ErrNotFound)
		}
		created, err := s.cmds.AddShop(ctx, name, catID)
		if errors.Is(err, domain.ErrConflict) {
			// created by someone else since the listing above
			if shopIDs, err = s.existingShops(ctx); err != nil {
				return res, err
			}
			if _, ok := shopIDs[name]; ok {
				res.ShopsExisting++
				continue
			}
			return res, fmt.Errorf("shop %q: %w", sh.Name, domain.ErrConflict)
		}
		if err != nil {
			return res, err
		}
		shopIDs[created.Name] = created.ID
		res.ShopsCreated++
	}

	resolve := func(name string) (int64, error) {
		id, ok := shopIDs[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("shop %q: %w", name, domain.ErrNotFound)
		}
		return id, nil
	}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(s.workers))
	g, gctx := errgroup.WithContext(ctx)
	spawn := func(fn func(ctx context.Context) error) error {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(gctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			return fn(gctx)
		})
		return nil
	}

	for _, c := range doc.Commercials {
		c := c
		shopID, err := resolve(c.Shop)
		if err != nil {
			_ = g.Wait()
			return res, err
		}
		if err := spawn(func(ctx context.Context) error {
			if _, err := s.cmds.AddCommercial(ctx, shopID, c.Title, c.Body); err != nil {
				return err
			}
			mu.Lock()
			res.Commercials++
			mu.Unlock()
			return nil
		}); err != nil {
			break
		}
	}
	for _, rm := range doc.Rooms {
		rm := rm
		shopID, err := resolve(rm.Shop)
		if err != nil {
			_ = g.Wait()
			return res, err
		}
		if err := spawn(func(ctx context.Context) error {
			if _, err := s.cmds.AssignRoom(ctx, rm.RoomID, shopID); err != nil {
				return err
			}
			mu.Lock()
			res.RoomsAssigned++
			mu.Unlock()
			return nil
		}); err != nil {
			break
		}
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	log.Info().
		Int("shops_created", res.ShopsCreated).
		Int("shops_existing", res.ShopsExisting).
		Int("commercials", res.Commercials).
		Int("rooms", res.RoomsAssigned).
		Msg("seed applied")
	return res, nil
}

func (s *Seeder) existingShops(ctx context.Context) (map[string]int64, error) {
	shops, err := s.repo.ListShops(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	out := make(map[string]int64, len(shops))
	for _, sh := range shops {
		out[sh.Name] = sh.ID
	}
	return out, nil
}
