package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	server "mall_admin/internal/adapters/http_server"
	"mall_admin/internal/adapters/notify"
	redisad "mall_admin/internal/adapters/redis"
	"mall_admin/internal/app"
	"mall_admin/internal/domain"
	"mall_admin/internal/layout"
	"mall_admin/internal/storage/jsonfile"
)

// stack wires the API the same way cmd/api does, minus the listener.
func stack(t *testing.T) (*httptest.Server, *notify.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store, err := jsonfile.Open(t.TempDir())
	require.NoError(t, err)
	floor, err := layout.Load("")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	hub := notify.NewHub()
	go hub.Run(ctx)

	srv := server.New(server.Options{WriteRPS: 100})
	srv.MountHandlers(&server.Handlers{
		Q:  app.NewQueryService(store, floor, cache, time.Minute),
		C:  app.NewMallService(store, floor, cache, hub),
		WS: hub.Handler(nil),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, hub
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev domain.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestMallFlow_BroadcastsToDashboards(t *testing.T) {
	ts, hub := stack(t)

	// dashboards connect either on /ws or on the bare root
	a := dial(t, ts, "/ws")
	b := dial(t, ts, "/")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	res := call(t, ts, http.MethodPost, "/api/shops/add", map[string]any{"name": "Game", "categoryId": 2})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var shop domain.Shop
	require.NoError(t, json.NewDecoder(res.Body).Decode(&shop))
	require.Equal(t, int64(1), shop.ID)

	for _, c := range []*websocket.Conn{a, b} {
		ev := readEvent(t, c)
		require.Equal(t, domain.EventShopAdd, ev.Type)
		require.Equal(t, int64(1), ev.ShopID)
	}

	res = call(t, ts, http.MethodPost, "/api/map/add", map[string]any{"roomId": 3, "shopId": shop.ID})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	for _, c := range []*websocket.Conn{a, b} {
		ev := readEvent(t, c)
		require.Equal(t, domain.EventRoomUpdate, ev.Type)
		require.Equal(t, int64(3), ev.RoomID)
	}

	res = call(t, ts, http.MethodGet, "/api/map/shop-room-list", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var rooms []domain.ShopRoom
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rooms))
	require.Equal(t, []domain.ShopRoom{{RoomID: 3, ShopID: 1}}, rooms)

	// deleting the shop clears its room, and the cached list must follow
	res = call(t, ts, http.MethodDelete, "/api/shops/remove", map[string]any{"id": shop.ID})
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	ev := readEvent(t, a)
	require.Equal(t, domain.EventShopDelete, ev.Type)

	res = call(t, ts, http.MethodGet, "/api/map/shop-room-list", nil)
	rooms = nil
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rooms))
	require.Empty(t, rooms)
}

func TestMallFlow_PingPong(t *testing.T) {
	ts, _ := stack(t)
	conn := dial(t, ts, "/ws")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	ev := readEvent(t, conn)
	require.Equal(t, "pong", ev.Type)
}
