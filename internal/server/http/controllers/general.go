package controllers

import (
	"io"
	"net/http"

	"github.com/MagicGod/shly/internal/itemstore"
	"github.com/MagicGod/shly/internal/runtime"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

const maxImportBytes = 8 << 20

// GeneralController handles health and the admin item endpoints.
type GeneralController struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, logger logpkg.Logger) *GeneralController {
	return &GeneralController{rt: rt, logger: logger}
}

// RegisterRoutes registers general routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Health checks (/v1/healthz)
// - Item listing and import (/v1/items)
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/items", c.handleItems)
}

// handleHealth returns 200 {"status":"ok"} if the store is readable and 503
// otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (c *GeneralController) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.handleListItems(w, r)
	case http.MethodPost:
		c.handleImportItems(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleListItems lists stored items, optionally capped by ?limit=N.
func (c *GeneralController) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := c.rt.Store().ListAll(r.Context())
	if err != nil {
		c.logger.Warn("list items failed", logpkg.Err(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	total := len(items)
	if limit := parseLimit(r.URL.Query().Get("limit")); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := itemsResp{Items: make([]itemJSON, 0, len(items)), Total: total}
	for _, it := range items {
		out.Items = append(out.Items, itemJSON{Key: it.Key, Label: it.Label, Retired: c.rt.Engine().Retired(it.Key)})
	}
	writeJSON(w, out)
}

// handleImportItems adds items from a text list body ("url | label" lines).
// Keys already present are left untouched.
func (c *GeneralController) handleImportItems(w http.ResponseWriter, r *http.Request) {
	items, err := itemstore.ParseList(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item list")
		return
	}
	if err := c.rt.Store().Put(r.Context(), items); err != nil {
		c.logger.Error("import items failed", logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to import items")
		return
	}
	c.logger.Info("items imported", logpkg.Int("count", len(items)))
	writeJSONStatus(w, http.StatusCreated, importResp{Imported: len(items)})
}
