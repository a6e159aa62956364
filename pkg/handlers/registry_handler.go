package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/apperrors"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/services"
)

// RegistryHandler exposes the brand registry engine over HTTP. The upload,
// enrichment-computation, and task-queue surfaces live in sibling services;
// this handler only fronts the engine's own operations.
type RegistryHandler struct {
	ingest        services.IngestService
	query         services.QueryService
	priority      services.PriorityService
	consolidation services.ConsolidationService
	enrichment    services.EnrichmentService
	admin         services.AdminService
	feed          services.FeedService
	logger        *zap.Logger
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(
	ingest services.IngestService,
	query services.QueryService,
	priority services.PriorityService,
	consolidation services.ConsolidationService,
	enrichment services.EnrichmentService,
	admin services.AdminService,
	feed services.FeedService,
	logger *zap.Logger,
) *RegistryHandler {
	return &RegistryHandler{
		ingest:        ingest,
		query:         query,
		priority:      priority,
		consolidation: consolidation,
		enrichment:    enrichment,
		admin:         admin,
		feed:          feed,
		logger:        logger.Named("registry-handler"),
	}
}

// RegisterRoutes registers the registry routes on the given mux.
func (h *RegistryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest", h.Ingest)
	mux.HandleFunc("POST /api/brands/query", h.Query)
	mux.HandleFunc("GET /api/brands/facets", h.Facets)
	mux.HandleFunc("GET /api/brands/{name}", h.GetBrand)
	mux.HandleFunc("PUT /api/brands/{name}/enrichment", h.UpdateEnrichment)
	mux.HandleFunc("DELETE /api/brands/{name}/enrichment", h.ClearEnrichment)
	mux.HandleFunc("GET /api/queue", h.Queue)
	mux.HandleFunc("POST /api/consolidate", h.Consolidate)
	mux.HandleFunc("POST /api/admin/reset", h.Reset)
	mux.HandleFunc("POST /api/admin/repair-importers", h.RepairImporters)
	mux.HandleFunc("POST /api/registry/importers", h.LoadImporters)
	mux.HandleFunc("POST /api/registry/producers/{registry}", h.LoadProducers)
}

// Ingest handles POST /api/ingest with a JSON array of filing records.
func (h *RegistryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var records []*models.IngestRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	stats, err := h.ingest.ProcessBatch(r.Context(), records)
	if err != nil {
		h.logger.Error("Batch ingestion failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "ingest_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, stats)
}

// Query handles POST /api/brands/query with a filter request body.
func (h *RegistryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req services.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	page, err := h.query.Query(r.Context(), &req)
	if err != nil {
		h.logger.Error("Brand query failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, page)
}

// Facets handles GET /api/brands/facets.
func (h *RegistryHandler) Facets(w http.ResponseWriter, r *http.Request) {
	counts, err := h.query.FacetCounts(r.Context())
	if err != nil {
		h.logger.Error("Facet count failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "facets_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, counts)
}

// GetBrand handles GET /api/brands/{name}.
func (h *RegistryHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	brand, err := h.query.GetBrand(r.Context(), name)
	if err != nil {
		h.logger.Error("Brand lookup failed", zap.String("brand", name), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "lookup_failed", err.Error())
		return
	}
	if brand == nil {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "brand not found")
		return
	}
	_ = WriteJSON(w, http.StatusOK, brand)
}

// UpdateEnrichment handles PUT /api/brands/{name}/enrichment with an opaque
// payload body.
func (h *RegistryHandler) UpdateEnrichment(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	if err := h.enrichment.Update(r.Context(), name, payload); err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "enrichment_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearEnrichment handles DELETE /api/brands/{name}/enrichment.
func (h *RegistryHandler) ClearEnrichment(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.enrichment.Clear(r.Context(), name); err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "enrichment_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Queue handles GET /api/queue?tier=N&exclude_enriched=true.
func (h *RegistryHandler) Queue(w http.ResponseWriter, r *http.Request) {
	tier := 1
	switch r.URL.Query().Get("tier") {
	case "", "1":
	case "2":
		tier = 2
	case "3":
		tier = 3
	case "4":
		tier = 4
	case "5":
		tier = 5
	default:
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_tier", "tier must be 1-5")
		return
	}
	excludeEnriched := strings.EqualFold(r.URL.Query().Get("exclude_enriched"), "true")

	queue, err := h.priority.EnrichmentQueue(r.Context(), tier, excludeEnriched)
	if err != nil {
		h.logger.Error("Queue build failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "queue_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"tier":       tier,
		"tier_label": services.TierLabel(tier),
		"entries":    queue,
	})
}

// ConsolidateRequest is the body of POST /api/consolidate.
type ConsolidateRequest struct {
	Canonical string   `json:"canonical"`
	Members   []string `json:"members"`
}

// Consolidate handles POST /api/consolidate.
func (h *RegistryHandler) Consolidate(w http.ResponseWriter, r *http.Request) {
	var req ConsolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	result := h.consolidation.Consolidate(r.Context(), req.Canonical, req.Members)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	_ = WriteJSON(w, status, result)
}

// Reset handles POST /api/admin/reset.
func (h *RegistryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.ResetRegistry(r.Context()); err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "reset_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadImporters handles POST /api/registry/importers with a JSON array of
// importer registry rows.
func (h *RegistryHandler) LoadImporters(w http.ResponseWriter, r *http.Request) {
	var records []*models.ImporterRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	count, err := h.feed.LoadImporters(r.Context(), records)
	if err != nil {
		h.logger.Error("Importer feed load failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "feed_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]int{"written": count})
}

// LoadProducers handles POST /api/registry/producers/{registry} where
// registry is "spirit" or "wine".
func (h *RegistryHandler) LoadProducers(w http.ResponseWriter, r *http.Request) {
	registry := models.ProducerRegistry(r.PathValue("registry"))

	var records []*models.ProducerRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	count, err := h.feed.LoadProducers(r.Context(), registry, records)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownRegistry) {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_registry", err.Error())
			return
		}
		h.logger.Error("Producer feed load failed",
			zap.String("registry", string(registry)), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "feed_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]int{"written": count})
}

// RepairImporters handles POST /api/admin/repair-importers.
func (h *RegistryHandler) RepairImporters(w http.ResponseWriter, r *http.Request) {
	moved, err := h.admin.RepairImporterClassifications(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "repair_failed", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]int{"moved": moved})
}
