package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/niksmo/salesops/internal/core/port"
)

// GET v1/products (200 OK, 400 Bad request)
// GET v1/products/search?q=&limit= (200 OK, 400 Bad request, 503 Service unavailable)
// GET|PUT|DELETE v1/products/{id} (200 OK, 204 No content, 404 Not found)
// GET v1/brands, v1/categories, v1/sub_categories (200 OK)

type CatalogueHandler struct {
	lister   port.CatalogueLister
	editor   port.ProductsEditor
	searcher port.ProductsSearcher
}

func RegisterCatalogue(
	mux *http.ServeMux,
	lister port.CatalogueLister,
	editor port.ProductsEditor,
	searcher port.ProductsSearcher,
) {
	h := CatalogueHandler{lister, editor, searcher}
	mux.HandleFunc("GET /v1/products", h.ListProducts)
	mux.HandleFunc("GET /v1/products/search", h.SearchProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("PUT /v1/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /v1/products/{id}", h.DeleteProduct)
	mux.HandleFunc("GET /v1/brands", h.ListBrands)
	mux.HandleFunc("GET /v1/categories", h.ListCategories)
	mux.HandleFunc("GET /v1/sub_categories", h.ListSubCategories)
}

func (h CatalogueHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.ListProducts"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	q, err := parseCatalogueQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Warn("invalid query", "err", err)
		return
	}

	page, err := h.lister.ListCatalogue(r.Context(), q)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, fromCataloguePage(page))
}

func (h CatalogueHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.SearchProducts"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	values := r.URL.Query()
	limit, err := intParam(values, "limit")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ps, err := h.searcher.SearchProducts(r.Context(), values.Get("q"), limit)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, ProductList{fromProducts(ps)})
}

func (h CatalogueHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.GetProduct"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	p, err := h.editor.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, fromProduct(p))
}

func (h CatalogueHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.UpdateProduct"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	var patch ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	id := r.PathValue("id")
	err := h.editor.UpdateProduct(r.Context(), id, patch.toDomain())
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("product updated", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogueHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.DeleteProduct"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	id := r.PathValue("id")
	if err := h.editor.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("product deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogueHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.ListBrands"
	h.writeValues(w, r, op, h.lister.ListBrands)
}

func (h CatalogueHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.ListCategories"
	h.writeValues(w, r, op, h.lister.ListCategories)
}

func (h CatalogueHandler) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogueHandler.ListSubCategories"
	h.writeValues(w, r, op, h.lister.ListSubCategories)
}

func (CatalogueHandler) writeValues(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	list func(ctx context.Context) ([]string, error),
) {
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	vs, err := list(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, ValueList{vs})
}

// POST v1/webhooks/item JSON {"item": {...}} (202 Accepted, 400 Bad request)

type WebhooksHandler struct {
	accepter port.ItemAccepter
}

func RegisterWebhooks(mux *http.ServeMux, accepter port.ItemAccepter) {
	h := WebhooksHandler{accepter}
	mux.HandleFunc("POST /v1/webhooks/item", h.PostItem)
}

func (h WebhooksHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "WebhooksHandler.PostItem"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	var body ItemWebhook
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.accepter.AcceptItem(r.Context(), body.Item.toDomain()); err != nil {
		writeError(w, log, err)
		return
	}

	writeAccepted(w, log)
}

// POST v1/catalogue/exclusions JSON {"name": string, "hidden": bool} (202 Accepted, 400 Bad request)
// GET v1/catalogue/exclusions?name= (200 OK, 400 Bad request)

type ExclusionsHandler struct {
	setter port.ExclusionSetter
	getter port.ExclusionGetter
}

func RegisterExclusions(
	mux *http.ServeMux, setter port.ExclusionSetter, getter port.ExclusionGetter,
) {
	h := ExclusionsHandler{setter, getter}
	mux.HandleFunc("POST /v1/catalogue/exclusions", h.PostExclusion)
	mux.HandleFunc("GET /v1/catalogue/exclusions", h.GetExclusion)
}

func (h ExclusionsHandler) PostExclusion(w http.ResponseWriter, r *http.Request) {
	const op = "ExclusionsHandler.PostExclusion"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	var req ExclusionRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.setter.SetExclusion(r.Context(), req.Name, req.Hidden); err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("exclusion accepted", "name", req.Name, "hidden", req.Hidden)
	writeAccepted(w, log)
}

func (h ExclusionsHandler) GetExclusion(w http.ResponseWriter, r *http.Request) {
	const op = "ExclusionsHandler.GetExclusion"
	log := slog.With("op", op, "requestID", requestIDFrom(r.Context()))

	rule, err := h.getter.GetExclusion(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, ExclusionRule{
		GroupKey: rule.GroupKey,
		Hidden:   rule.Hidden,
	})
}

func RegisterHealth(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func parseCatalogueQuery(r *http.Request) (domain.CatalogueQuery, error) {
	values := r.URL.Query()

	q := domain.CatalogueQuery{
		Role:        r.Header.Get(roleHeader),
		Brand:       values.Get("brand"),
		Category:    values.Get("category"),
		SubCategory: values.Get("sub_category"),
		Search:      values.Get("search"),
		Status:      values.Get("status"),
		Stock:       domain.StockFilter(values.Get("stock")),
		SortBy:      domain.SortMode(values.Get("sort_by")),
	}

	switch q.Role {
	case "":
		q.Role = domain.RoleSalesperson
	case domain.RoleAdmin, domain.RoleSalesperson:
	default:
		return q, fmt.Errorf("unknown role %q", q.Role)
	}

	var err error
	if q.Page, err = intParam(values, "page"); err != nil {
		return q, err
	}
	if q.PerPage, err = intParam(values, "per_page"); err != nil {
		return q, err
	}
	if q.NewArrivals, err = boolParam(values, "new_arrivals"); err != nil {
		return q, err
	}
	if q.MissingInfo, err = boolParam(values, "missing_info"); err != nil {
		return q, err
	}
	if q.GroupByName, err = boolParam(values, "group_by_name"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(values url.Values, name string) (int, error) {
	v := values.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

func boolParam(values url.Values, name string) (bool, error) {
	v := values.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, v)
	}
	return b, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func writeAccepted(w http.ResponseWriter, log *slog.Logger) {
	w.WriteHeader(http.StatusAccepted)
	if _, err := w.Write([]byte("Accepted")); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrPageOutOfRange):
		http.Error(w, "page number out of range", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrInvalidItem):
		http.Error(w, "invalid request", http.StatusBadRequest)
		log.Warn("invalid request", "err", err)
	case errors.Is(err, domain.ErrEmptyPatch):
		http.Error(w, "no fields to update", http.StatusBadRequest)
	case errors.Is(err, domain.ErrDisabled):
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		log.Warn("component is disabled", "err", err)
	default:
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		log.Error("request failed", "err", err)
	}
}
