// Package jsonfile keeps mall data as flat JSON files in a directory. Each
// mutation rewrites the affected file wholesale.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mall_admin/internal/domain"
)

const (
	categoriesFile  = "categories.json"
	shopsFile       = "shops.json"
	commercialsFile = "commercials.json"
	shopRoomsFile   = "shop-rooms.json"
)

// DefaultCategories is written when the data directory has no categories file.
var DefaultCategories = []domain.Category{
	{ID: 1, Name: "None"},
	{ID: 2, Name: "Entertainment"},
	{ID: 3, Name: "Food/Drink"},
	{ID: 4, Name: "Clothes"},
	{ID: 5, Name: "Electronics"},
	{ID: 6, Name: "Services"},
}

var rename = os.Rename

type Store struct {
	dir string
	mu  sync.RWMutex
}

// Open prepares dir, creating it and the categories file if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{dir: dir}
	if _, err := os.Stat(s.path(categoriesFile)); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(categoriesFile, DefaultCategories); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// read decodes name into dst; a missing file leaves dst empty.
func (s *Store) read(name string, dst any) error {
	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces name atomically via a temp file and rename.
func (s *Store) write(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cs []domain.Category
	if err := s.read(categoriesFile, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	cs, err := s.ListCategories(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	for _, c := range cs {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (s *Store) InsertShop(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var shops []domain.Shop
	if err := s.read(shopsFile, &shops); err != nil {
		return domain.Shop{}, err
	}
	for _, existing := range shops {
		if existing.Name == shop.Name {
			return domain.Shop{}, fmt.Errorf("shop %q already exists: %w", shop.Name, domain.ErrConflict)
		}
	}
	shop.ID = domain.MaxID(shops, func(s domain.Shop) int64 { return s.ID }) + 1
	shops = append(shops, shop)
	if err := s.write(shopsFile, shops); err != nil {
		return domain.Shop{}, err
	}
	return shop, nil
}

// DeleteShop writes shops.json first so a failure part way leaves only
// orphaned rows, never a shop without its commercials. Calling it again for
// the same id removes those leftovers and still reports ErrNotFound.
func (s *Store) DeleteShop(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var shops []domain.Shop
	if err := s.read(shopsFile, &shops); err != nil {
		return err
	}
	var rooms []domain.ShopRoom
	if err := s.read(shopRoomsFile, &rooms); err != nil {
		return err
	}
	var commercials []domain.Commercial
	if err := s.read(commercialsFile, &commercials); err != nil {
		return err
	}
	kept, removed := without(shops, func(sh domain.Shop) bool { return sh.ID == id })
	rooms, roomsRemoved := without(rooms, func(sr domain.ShopRoom) bool { return sr.ShopID == id })
	commercials, commercialsRemoved := without(commercials, func(c domain.Commercial) bool { return c.ShopID == id })

	if removed > 0 {
		if err := s.write(shopsFile, kept); err != nil {
			return err
		}
	}
	if commercialsRemoved > 0 {
		if err := s.write(commercialsFile, commercials); err != nil {
			return err
		}
	}
	if roomsRemoved > 0 {
		if err := s.write(shopRoomsFile, rooms); err != nil {
			return err
		}
	}
	if removed == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetShop(ctx context.Context, id int64) (domain.Shop, error) {
	shops, err := s.ListShops(ctx)
	if err != nil {
		return domain.Shop{}, err
	}
	for _, sh := range shops {
		if sh.ID == id {
			return sh, nil
		}
	}
	return domain.Shop{}, domain.ErrNotFound
}

func (s *Store) ListShops(ctx context.Context) ([]domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var shops []domain.Shop
	if err := s.read(shopsFile, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

func (s *Store) InsertCommercial(ctx context.Context, c domain.Commercial) (domain.Commercial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cs []domain.Commercial
	if err := s.read(commercialsFile, &cs); err != nil {
		return domain.Commercial{}, err
	}
	c.ID = domain.MaxID(cs, func(c domain.Commercial) int64 { return c.ID }) + 1
	cs = append(cs, c)
	if err := s.write(commercialsFile, cs); err != nil {
		return domain.Commercial{}, err
	}
	return c, nil
}

func (s *Store) DeleteCommercial(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cs []domain.Commercial
	if err := s.read(commercialsFile, &cs); err != nil {
		return err
	}
	kept, removed := without(cs, func(c domain.Commercial) bool { return c.ID == id })
	if removed == 0 {
		return domain.ErrNotFound
	}
	return s.write(commercialsFile, kept)
}

func (s *Store) GetCommercial(ctx context.Context, id int64) (domain.Commercial, error) {
	cs, err := s.ListCommercials(ctx, 0)
	if err != nil {
		return domain.Commercial{}, err
	}
	for _, c := range cs {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Commercial{}, domain.ErrNotFound
}

func (s *Store) ListCommercials(ctx context.Context, shopID int64) ([]domain.Commercial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cs []domain.Commercial
	if err := s.read(commercialsFile, &cs); err != nil {
		return nil, err
	}
	if shopID <= 0 {
		return cs, nil
	}
	var out []domain.Commercial
	for _, c := range cs {
		if c.ShopID == shopID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) UpsertShopRoom(ctx context.Context, sr domain.ShopRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rooms []domain.ShopRoom
	if err := s.read(shopRoomsFile, &rooms); err != nil {
		return err
	}
	rooms, _ = without(rooms, func(r domain.ShopRoom) bool { return r.RoomID == sr.RoomID })
	rooms = append(rooms, sr)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomID < rooms[j].RoomID })
	return s.write(shopRoomsFile, rooms)
}

func (s *Store) DeleteShopRoom(ctx context.Context, roomID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rooms []domain.ShopRoom
	if err := s.read(shopRoomsFile, &rooms); err != nil {
		return err
	}
	kept, removed := without(rooms, func(r domain.ShopRoom) bool { return r.RoomID == roomID })
	if removed == 0 {
		return domain.ErrNotFound
	}
	return s.write(shopRoomsFile, kept)
}

func (s *Store) ListShopRooms(ctx context.Context) ([]domain.ShopRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rooms []domain.ShopRoom
	if err := s.read(shopRoomsFile, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// without returns items minus those matching drop, and how many were dropped.
// The result is never nil so files always hold a JSON array.
func without[T any](items []T, drop func(T) bool) ([]T, int) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}
