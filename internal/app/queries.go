package app

import (
	"context"
	"fmt"
	"time"

	"mall_admin/internal/domain"
)

const (
	keyShops       = "shops:list"
	keyCategories  = "categories:list"
	keyCommercials = "commercials:list"
	keyShopRooms   = "shoprooms:list"
	keyLayout      = "map:layout"
)

func shopKey(id int64) string              { return fmt.Sprintf("shop:%d", id) }
func categoryKey(id int64) string          { return fmt.Sprintf("category:%d", id) }
func commercialKey(id int64) string        { return fmt.Sprintf("commercial:%d", id) }
func commercialsByShopKey(id int64) string { return fmt.Sprintf("commercials:shop:%d", id) }

type QueryService struct {
	repo     domain.MallRepository
	layout   domain.LayoutSource
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.MallRepository, l domain.LayoutSource, c domain.Cache, ttl time.Duration) *QueryService {
	if c == nil {
		c = NopCache{}
	}
	return &QueryService{repo: r, layout: l, cache: c, cacheTTL: ttl}
}

// cached reads key into a T, falling back to load and populating the cache on a miss.
// Cache errors are treated as misses.
func cached[T any](ctx context.Context, s *QueryService, key string, load func() (T, error)) (T, error) {
	var v T
	if ok, err := s.cache.Get(ctx, key, &v); ok && err == nil {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	return v, nil
}

func (s *QueryService) ListShops(ctx context.Context) ([]domain.Shop, error) {
	return cached(ctx, s, keyShops, func() ([]domain.Shop, error) {
		shops, err := s.repo.ListShops(ctx)
		return nonNil(shops), err
	})
}

func (s *QueryService) GetShop(ctx context.Context, id int64) (domain.Shop, error) {
	return cached(ctx, s, shopKey(id), func() (domain.Shop, error) { return s.repo.GetShop(ctx, id) })
}

func (s *QueryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cached(ctx, s, keyCategories, func() ([]domain.Category, error) {
		cs, err := s.repo.ListCategories(ctx)
		return nonNil(cs), err
	})
}

func (s *QueryService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return cached(ctx, s, categoryKey(id), func() (domain.Category, error) { return s.repo.GetCategory(ctx, id) })
}

// ListCommercials returns every commercial, or only those of shopID when it is
// positive. Filtering by an unknown shop is ErrNotFound.
func (s *QueryService) ListCommercials(ctx context.Context, shopID int64) ([]domain.Commercial, error) {
	key := keyCommercials
	if shopID > 0 {
		key = commercialsByShopKey(shopID)
	}
	return cached(ctx, s, key, func() ([]domain.Commercial, error) {
		if shopID > 0 {
			if _, err := s.repo.GetShop(ctx, shopID); err != nil {
				return nil, fmt.Errorf("shop %d: %w", shopID, err)
			}
		}
		cs, err := s.repo.ListCommercials(ctx, shopID)
		return nonNil(cs), err
	})
}

func (s *QueryService) GetCommercial(ctx context.Context, id int64) (domain.Commercial, error) {
	return cached(ctx, s, commercialKey(id), func() (domain.Commercial, error) { return s.repo.GetCommercial(ctx, id) })
}

func (s *QueryService) ListShopRooms(ctx context.Context) ([]domain.ShopRoom, error) {
	return cached(ctx, s, keyShopRooms, func() ([]domain.ShopRoom, error) {
		srs, err := s.repo.ListShopRooms(ctx)
		return nonNil(srs), err
	})
}

func (s *QueryService) Layout(ctx context.Context) (domain.Layout, error) {
	return cached(ctx, s, keyLayout, func() (domain.Layout, error) { return s.layout.Layout(ctx) })
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// NopCache is used when no Redis is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, any, int) error    { return nil }
func (NopCache) Del(context.Context, ...string) error           { return nil }
