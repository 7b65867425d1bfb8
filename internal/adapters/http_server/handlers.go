// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"mall_admin/internal/app"
	"mall_admin/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.MallService
	// WS serves the dashboard notification socket.
	WS http.Handler
	// StaticDir, when set, is served at / for the editor and dashboard pages.
	StaticDir string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// pages are the front-end entry points that all load index.html.
// "/commerical-editor" keeps old bookmarks working.
var pages = []string{"/shop-editor", "/commercial-editor", "/commerical-editor", "/map-editor", "/dashboard"}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(api chi.Router) {
		api.Use(Timeout(s.opts.RequestTimeout))
		api.Use(WriteLimit(s.opts.WriteRPS))

		api.Route("/categories", func(r chi.Router) {
			r.Get("/list", h.listCategories)
			r.Get("/get", h.getCategory)
		})
		api.Route("/shops", func(r chi.Router) {
			r.Get("/list", h.listShops)
			r.Get("/get", h.getShop)
			r.Post("/add", h.addShop)
			r.Delete("/remove", h.removeShop)
		})
		api.Route("/commercials", func(r chi.Router) {
			r.Get("/list", h.listCommercials)
			r.Get("/get", h.getCommercial)
			r.Post("/add", h.addCommercial)
			r.Delete("/remove", h.removeCommercial)
		})
		api.Route("/map", func(r chi.Router) {
			r.Get("/layout", h.getLayout)
			r.Get("/shop-room-list", h.listShopRooms)
			r.Post("/add", h.assignRoom)
			r.Delete("/remove", h.unassignRoom)
		})
	})

	if h.WS != nil {
		s.mux.Handle("/ws", h.WS)
	}
	s.mux.Handle("/*", h.root())
}

// root serves the websocket on / for dashboards that connect to the bare host,
// and static pages otherwise.
func (h *Handlers) root() http.Handler {
	var static http.Handler = http.NotFoundHandler()
	index := ""
	if h.StaticDir != "" {
		static = http.FileServer(http.Dir(h.StaticDir))
		index = filepath.Join(h.StaticDir, "index.html")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.WS != nil && websocket.IsWebSocketUpgrade(r) {
			h.WS.ServeHTTP(w, r)
			return
		}
		if index != "" {
			for _, p := range pages {
				if r.URL.Path == p {
					if _, err := os.Stat(index); err == nil {
						http.ServeFile(w, r, index)
						return
					}
				}
			}
		}
		static.ServeHTTP(w, r)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrInvalid):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v with an ETag, short-circuiting to 304 when the client has it.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// etagMatches applies the weak comparison of If-None-Match: "*" or any
// listed tag equal to etag once W/ prefixes are dropped.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

// queryID parses a required positive ?name= parameter, writing a 400 on failure.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// ---- categories ----

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Q.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Q.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, c)
}

// ---- shops ----

func (h *Handlers) listShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.Q.ListShops(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, shops)
}

func (h *Handlers) getShop(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}
	shop, err := h.Q.GetShop(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, shop)
}

func (h *Handlers) addShop(w http.ResponseWriter, r *http.Request) {
	var req addShopRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	shop, err := h.C.AddShop(r.Context(), req.Name, req.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, shop)
}

func (h *Handlers) removeShop(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.C.DeleteShop(r.Context(), req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- commercials ----

func (h *Handlers) listCommercials(w http.ResponseWriter, r *http.Request) {
	var shopID int64
	if r.URL.Query().Has("shopId") {
		id, ok := queryID(w, r, "shopId")
		if !ok {
			return
		}
		shopID = id
	}
	cs, err := h.Q.ListCommercials(r.Context(), shopID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) getCommercial(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Q.GetCommercial(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, c)
}

func (h *Handlers) addCommercial(w http.ResponseWriter, r *http.Request) {
	var req addCommercialRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	c, err := h.C.AddCommercial(r.Context(), req.ShopID, req.Title, req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) removeCommercial(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.C.DeleteCommercial(r.Context(), req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- map ----

func (h *Handlers) getLayout(w http.ResponseWriter, r *http.Request) {
	l, err := h.Q.Layout(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, l)
}

func (h *Handlers) listShopRooms(w http.ResponseWriter, r *http.Request) {
	srs, err := h.Q.ListShopRooms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, srs)
}

func (h *Handlers) assignRoom(w http.ResponseWriter, r *http.Request) {
	var req assignRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	sr, err := h.C.AssignRoom(r.Context(), req.RoomID, req.ShopID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sr)
}

func (h *Handlers) unassignRoom(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.C.UnassignRoom(r.Context(), req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
