package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"mall_admin/internal/domain"
)

// DateLayout is the DD/MM/YYYY format used for DateAdded fields.
const DateLayout = "02/01/2006"

type MallService struct {
	repo   domain.MallRepository
	layout domain.LayoutSource
	cache  domain.Cache
	notify domain.Notifier
	now    func() time.Time
}

func NewMallService(r domain.MallRepository, l domain.LayoutSource, c domain.Cache, n domain.Notifier) *MallService {
	if c == nil {
		c = NopCache{}
	}
	if n == nil {
		n = nopNotifier{}
	}
	return &MallService{repo: r, layout: l, cache: c, notify: n, now: time.Now}
}

// WithClock overrides the clock used for DateAdded stamps.
func (s *MallService) WithClock(now func() time.Time) *MallService {
	s.now = now
	return s
}

func (s *MallService) today() string { return s.now().Format(DateLayout) }

func (s *MallService) AddShop(ctx context.Context, name string, categoryID int64) (domain.Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Shop{}, fmt.Errorf("shop name is required: %w", domain.ErrInvalid)
	}
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return domain.Shop{}, fmt.Errorf("category %d: %w", categoryID, err)
	}
	shop, err := s.repo.InsertShop(ctx, domain.Shop{Name: name, CategoryID: categoryID, DateAdded: s.today()})
	if err != nil {
		return domain.Shop{}, fmt.Errorf("add shop %q: %w", name, err)
	}
	s.invalidate(ctx, keyShops)
	s.notify.Broadcast(domain.Event{Type: domain.EventShopAdd, ShopID: shop.ID})
	log.Info().Int64("shop_id", shop.ID).Str("name", shop.Name).Msg("shop added")
	return shop, nil
}

// DeleteShop removes the shop and every commercial and room assignment that refers to it.
func (s *MallService) DeleteShop(ctx context.Context, id int64) error {
	// collected before the cascade so their cache entries can be dropped
	owned, err := s.repo.ListCommercials(ctx, id)
	if err != nil {
		return fmt.Errorf("list commercials of shop %d: %w", id, err)
	}
	if err := s.repo.DeleteShop(ctx, id); err != nil {
		return fmt.Errorf("delete shop %d: %w", id, err)
	}
	keys := []string{keyShops, shopKey(id), keyShopRooms, keyCommercials, commercialsByShopKey(id)}
	for _, c := range owned {
		keys = append(keys, commercialKey(c.ID))
	}
	s.invalidate(ctx, keys...)
	s.notify.Broadcast(domain.Event{Type: domain.EventShopDelete, ShopID: id})
	log.Info().Int64("shop_id", id).Int("commercials_removed", len(owned)).Msg("shop deleted")
	return nil
}

func (s *MallService) AddCommercial(ctx context.Context, shopID int64, title, body string) (domain.Commercial, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Commercial{}, fmt.Errorf("commercial title is required: %w", domain.ErrInvalid)
	}
	if _, err := s.repo.GetShop(ctx, shopID); err != nil {
		return domain.Commercial{}, fmt.Errorf("shop %d: %w", shopID, err)
	}
	c, err := s.repo.InsertCommercial(ctx, domain.Commercial{
		ShopID:    shopID,
		Title:     title,
		Body:      body,
		DateAdded: s.today(),
	})
	if err != nil {
		return domain.Commercial{}, fmt.Errorf("add commercial: %w", err)
	}
	s.invalidate(ctx, keyCommercials, commercialsByShopKey(shopID))
	s.notify.Broadcast(domain.Event{Type: domain.EventCommercialAdd, ShopID: shopID, CommercialID: c.ID})
	return c, nil
}

func (s *MallService) DeleteCommercial(ctx context.Context, id int64) error {
	c, err := s.repo.GetCommercial(ctx, id)
	if err != nil {
		return fmt.Errorf("commercial %d: %w", id, err)
	}
	if err := s.repo.DeleteCommercial(ctx, id); err != nil {
		return fmt.Errorf("delete commercial %d: %w", id, err)
	}
	s.invalidate(ctx, keyCommercials, commercialKey(id), commercialsByShopKey(c.ShopID))
	s.notify.Broadcast(domain.Event{Type: domain.EventCommercialDelete, ShopID: c.ShopID, CommercialID: id})
	return nil
}

// AssignRoom puts shopID into roomID, replacing whatever shop held the room before.
func (s *MallService) AssignRoom(ctx context.Context, roomID, shopID int64) (domain.ShopRoom, error) {
	l, err := s.layout.Layout(ctx)
	if err != nil {
		return domain.ShopRoom{}, fmt.Errorf("load layout: %w", err)
	}
	if _, ok := l.Room(roomID); !ok {
		return domain.ShopRoom{}, fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}
	if _, err := s.repo.GetShop(ctx, shopID); err != nil {
		return domain.ShopRoom{}, fmt.Errorf("shop %d: %w", shopID, err)
	}
	sr := domain.ShopRoom{RoomID: roomID, ShopID: shopID}
	if err := s.repo.UpsertShopRoom(ctx, sr); err != nil {
		return domain.ShopRoom{}, fmt.Errorf("assign room %d: %w", roomID, err)
	}
	s.invalidate(ctx, keyShopRooms)
	s.notify.Broadcast(domain.Event{Type: domain.EventRoomUpdate, RoomID: roomID, ShopID: shopID})
	return sr, nil
}

func (s *MallService) UnassignRoom(ctx context.Context, roomID int64) error {
	if err := s.repo.DeleteShopRoom(ctx, roomID); err != nil {
		return fmt.Errorf("unassign room %d: %w", roomID, err)
	}
	s.invalidate(ctx, keyShopRooms)
	s.notify.Broadcast(domain.Event{Type: domain.EventRoomRemove, RoomID: roomID})
	return nil
}

func (s *MallService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(domain.Event) {}
