package transport

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
	"github.com/andresguaman0621/precios/pkg/catalog/domain/service"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/export"
	"github.com/andresguaman0621/precios/pkg/common/clock"
)

//go:embed templates/*.html
var templates embed.FS

const (
	productKey = "codigo"
	seafoodKey = "id"
)

type Handler struct {
	productos     service.CatalogService[*model.Product]
	mariscos      service.CatalogService[*model.Seafood]
	productExport *export.Exporter[*model.Product]
	seafoodExport *export.Exporter[*model.Seafood]
	pages         *template.Template
}

type productosPage struct {
	Productos  []*model.Product
	Categorias []string
}

type mariscosPage struct {
	Mariscos []*model.Seafood
}

type priceRequest struct {
	Codigo       *model.Literal `json:"codigo"`
	ID           *model.Literal `json:"id"`
	PrecioActual model.Price    `json:"precio_actual"`
}

// update reads the identifier from the catalog's own key only.
func (r priceRequest) update(key string) (service.PriceUpdate, error) {
	identifier := r.ID
	if key == productKey {
		identifier = r.Codigo
	}
	if identifier == nil {
		return service.PriceUpdate{}, errors.Errorf("%s is required", key)
	}
	return service.PriceUpdate{Identifier: identifier.String(), Price: r.PrecioActual}, nil
}

func NewHandler(
	productos service.CatalogService[*model.Product],
	mariscos service.CatalogService[*model.Seafood],
	clk clock.Clock,
) (*Handler, error) {
	pages, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	return &Handler{
		productos:     productos,
		mariscos:      mariscos,
		productExport: export.NewExporter(export.ProductLayout(), clk),
		seafoodExport: export.NewExporter(export.SeafoodLayout(), clk),
		pages:         pages,
	}, nil
}

func Router(h *Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", h.productosPageHandler).Methods(http.MethodGet)
	r.HandleFunc("/mariscos", h.mariscosPageHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/productos", queryHandler(h.productos, productFilter)).Methods(http.MethodGet)
	s.HandleFunc("/guardar_precio", updatePriceHandler(h.productos, productKey)).Methods(http.MethodPost)
	s.HandleFunc("/guardar_todos", updatePricesHandler(h.productos, productKey)).Methods(http.MethodPost)
	s.HandleFunc("/nueva_toma", newRoundHandler(h.productos)).Methods(http.MethodPost)
	s.HandleFunc("/export_excel", exportHandler(h.productos, h.productExport, productFilter)).Methods(http.MethodGet)

	s.HandleFunc("/mariscos", queryHandler(h.mariscos, seafoodFilter)).Methods(http.MethodGet)
	s.HandleFunc("/mariscos/guardar_precio", updatePriceHandler(h.mariscos, seafoodKey)).Methods(http.MethodPost)
	s.HandleFunc("/mariscos/guardar_todos", updatePricesHandler(h.mariscos, seafoodKey)).Methods(http.MethodPost)
	s.HandleFunc("/mariscos/nueva_toma", newRoundHandler(h.mariscos)).Methods(http.MethodPost)
	s.HandleFunc("/mariscos/export_excel", exportHandler(h.mariscos, h.seafoodExport, seafoodFilter)).Methods(http.MethodGet)

	return requestIDMiddleware(logMiddleware(r))
}

func productFilter(q url.Values) model.Filter {
	return model.Filter{
		Category: q.Get("categoria"),
		Code:     q.Get("codigo"),
		Name:     q.Get("nombre"),
	}
}

func seafoodFilter(q url.Values) model.Filter {
	return model.Filter{
		Code: q.Get("id"),
		Name: q.Get("nombre"),
	}
}

func (h *Handler) productosPageHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.productos.Query(r.Context(), model.Filter{})
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	h.render(w, r, "productos.html", productosPage{
		Productos:  records,
		Categorias: model.Categories(records),
	})
}

func (h *Handler) mariscosPageHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.mariscos.Query(r.Context(), model.Filter{})
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	h.render(w, r, "mariscos.html", mariscosPage{Mariscos: records})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		writeInternalError(w, r, errors.Wrapf(err, "render %s", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Error("write page")
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryHandler[T model.Record](svc service.CatalogService[T], filter func(url.Values) model.Filter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.Query(r.Context(), filter(r.URL.Query()))
		if err != nil {
			writeInternalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func updatePriceHandler[T model.Record](svc service.CatalogService[T], key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		u, err := req.update(key)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if err := svc.UpdatePrice(r.Context(), u.Identifier, u.Price); err != nil {
			writeInternalError(w, r, err)
			return
		}
		writeSuccess(w)
	}
}

func updatePricesHandler[T model.Record](svc service.CatalogService[T], key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqs []priceRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		updates := make([]service.PriceUpdate, 0, len(reqs))
		for i, req := range reqs {
			u, err := req.update(key)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("item %d: %s", i, err))
				return
			}
			updates = append(updates, u)
		}
		if err := svc.UpdatePrices(r.Context(), updates); err != nil {
			writeInternalError(w, r, err)
			return
		}
		writeSuccess(w)
	}
}

func newRoundHandler[T model.Record](svc service.CatalogService[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.StartNewRound(r.Context()); err != nil {
			writeInternalError(w, r, err)
			return
		}
		writeSuccess(w)
	}
}

func exportHandler[T model.Record](
	svc service.CatalogService[T],
	exporter *export.Exporter[T],
	filter func(url.Values) model.Filter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.Query(r.Context(), filter(r.URL.Query()))
		if err != nil {
			writeInternalError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := exporter.Write(&buf, records); err != nil {
			writeInternalError(w, r, err)
			return
		}

		fileName := exporter.FileName()
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			log.WithError(err).WithField("file", fileName).Error("write spreadsheet")
		}
	}
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.WithError(err).WithFields(log.Fields{
		"url":       r.URL,
		"requestID": RequestIDFromContext(r.Context()),
	}).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error", "")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("write response")
	}
}
