package app_test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"mall_admin/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	categories  []domain.Category
	shops       map[int64]domain.Shop
	commercials map[int64]domain.Commercial
	rooms       map[int64]int64
	shopReads   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories:  []domain.Category{{ID: 1, Name: "Entertainment"}, {ID: 2, Name: "Food/Drink"}},
		shops:       map[int64]domain.Shop{},
		commercials: map[int64]domain.Commercial{},
		rooms:       map[int64]int64{},
	}
}

func (f *fakeRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeRepo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (f *fakeRepo) InsertShop(ctx context.Context, s domain.Shop) (domain.Shop, error) {
	var max int64
	for id, existing := range f.shops {
		if existing.Name == s.Name {
			return domain.Shop{}, domain.ErrConflict
		}
		if id > max {
			max = id
		}
	}
	s.ID = max + 1
	f.shops[s.ID] = s
	return s, nil
}

func (f *fakeRepo) DeleteShop(ctx context.Context, id int64) error {
	if _, ok := f.shops[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.shops, id)
	for cid, c := range f.commercials {
		if c.ShopID == id {
			delete(f.commercials, cid)
		}
	}
	for rid, sid := range f.rooms {
		if sid == id {
			delete(f.rooms, rid)
		}
	}
	return nil
}

func (f *fakeRepo) GetShop(ctx context.Context, id int64) (domain.Shop, error) {
	f.shopReads++
	s, ok := f.shops[id]
	if !ok {
		return domain.Shop{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) ListShops(ctx context.Context) ([]domain.Shop, error) {
	var out []domain.Shop
	for _, s := range f.shops {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) InsertCommercial(ctx context.Context, c domain.Commercial) (domain.Commercial, error) {
	var max int64
	for id := range f.commercials {
		if id > max {
			max = id
		}
	}
	c.ID = max + 1
	f.commercials[c.ID] = c
	return c, nil
}

func (f *fakeRepo) DeleteCommercial(ctx context.Context, id int64) error {
	if _, ok := f.commercials[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.commercials, id)
	return nil
}

func (f *fakeRepo) GetCommercial(ctx context.Context, id int64) (domain.Commercial, error) {
	c, ok := f.commercials[id]
	if !ok {
		return domain.Commercial{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) ListCommercials(ctx context.Context, shopID int64) ([]domain.Commercial, error) {
	var out []domain.Commercial
	for _, c := range f.commercials {
		if shopID > 0 && c.ShopID != shopID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) UpsertShopRoom(ctx context.Context, sr domain.ShopRoom) error {
	f.rooms[sr.RoomID] = sr.ShopID
	return nil
}

func (f *fakeRepo) DeleteShopRoom(ctx context.Context, roomID int64) error {
	if _, ok := f.rooms[roomID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rooms, roomID)
	return nil
}

func (f *fakeRepo) ListShopRooms(ctx context.Context) ([]domain.ShopRoom, error) {
	var out []domain.ShopRoom
	for rid, sid := range f.rooms {
		out = append(out, domain.ShopRoom{RoomID: rid, ShopID: sid})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out, nil
}

type fakeLayout struct{ l domain.Layout }

func (f fakeLayout) Layout(ctx context.Context) (domain.Layout, error) { return f.l, nil }

// fakeCache stores JSON so values round-trip the way they would through Redis.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
		c.dels = append(c.dels, k)
	}
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *fakeNotifier) Broadcast(ev domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *fakeNotifier) last() domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return domain.Event{}
	}
	return n.events[len(n.events)-1]
}
