package domain

import "context"

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
}

type ShopRepository interface {
	// InsertShop assigns the next id and DateAdded is taken from s.
	// Returns ErrConflict when a shop with the same name exists.
	InsertShop(ctx context.Context, s Shop) (Shop, error)
	// DeleteShop removes the shop together with its commercials and room assignments.
	DeleteShop(ctx context.Context, id int64) error
	GetShop(ctx context.Context, id int64) (Shop, error)
	ListShops(ctx context.Context) ([]Shop, error)
}

type CommercialRepository interface {
	InsertCommercial(ctx context.Context, c Commercial) (Commercial, error)
	DeleteCommercial(ctx context.Context, id int64) error
	GetCommercial(ctx context.Context, id int64) (Commercial, error)
	// ListCommercials filters by shop when shopID > 0.
	ListCommercials(ctx context.Context, shopID int64) ([]Commercial, error)
}

type ShopRoomRepository interface {
	// UpsertShopRoom replaces any existing assignment for the room.
	UpsertShopRoom(ctx context.Context, sr ShopRoom) error
	DeleteShopRoom(ctx context.Context, roomID int64) error
	ListShopRooms(ctx context.Context) ([]ShopRoom, error)
}

type MallRepository interface {
	CategoryRepository
	ShopRepository
	CommercialRepository
	ShopRoomRepository
}

type LayoutSource interface {
	Layout(ctx context.Context) (Layout, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
}

// Notifier pushes change events to connected dashboards.
type Notifier interface {
	Broadcast(ev Event)
}

const (
	EventRoomUpdate       = "RoomUpdate"
	EventRoomRemove       = "RoomRemove"
	EventShopAdd          = "ShopAdd"
	EventShopDelete       = "ShopDelete"
	EventCommercialAdd    = "CommercialAdd"
	EventCommercialDelete = "CommercialDelete"
)

// Event is sent to clients as a flat JSON object, e.g. {"type":"RoomUpdate","roomId":3,"shopId":1}.
type Event struct {
	Type         string `json:"type"`
	RoomID       int64  `json:"roomId,omitempty"`
	ShopID       int64  `json:"shopId,omitempty"`
	CommercialID int64  `json:"commercialId,omitempty"`
}
