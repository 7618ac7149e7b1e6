package httppresentation

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/leafy-market/leafy-backend/internal/application/catalog"
	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
)

// handleListBatches serves both surfaces: admins get the raw collection, while
// everyone else gets the derived catalog with search, status filter and sort
// applied from the query string.
func (h *Handler) handleListBatches(c *gin.Context) {
	ctx := c.Request.Context()

	if actorFrom(c).IsAdmin() && c.Query("view") != "catalog" {
		batches, err := h.catalog.List(ctx)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		out := make([]batchResponse, 0, len(batches))
		for _, b := range batches {
			out = append(out, toBatchResponse(b))
		}
		c.JSON(http.StatusOK, out)
		return
	}

	term := c.Query("search")
	rawStatus := c.Query("status")
	rawSort := c.Query("sort")

	var (
		entries []dombatch.DisplayEntry
		err     error
	)
	if term == "" && rawStatus == "" && rawSort == "" {
		// No presentation knobs requested: serve the catalog in store order.
		entries, err = h.catalog.Visible(ctx)
	} else {
		status := dombatch.StatusFilter(rawStatus)
		if rawStatus == "" {
			status = dombatch.FilterAll
		}
		sortKey := dombatch.SortKey(rawSort)
		if rawSort == "" {
			sortKey = dombatch.SortNewest
		}
		entries, err = h.catalog.Search(ctx, term, status, sortKey)
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}

	out := make([]catalogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toCatalogEntryResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

// handleCreateBatch adds one batch with a store-assigned id, for admin tooling
// that does not want to resubmit the whole collection.
func (h *Handler) handleCreateBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	planted, err := req.plantDate()
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	created, err := h.catalog.Create(c.Request.Context(), actorFrom(c), req.Name, planted, req.Quantity)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "batch": toBatchResponse(created)})
}

// handleReplaceBatches swaps the whole collection for the admin-supplied one,
// keeping the frontend's save-everything contract.
func (h *Handler) handleReplaceBatches(c *gin.Context) {
	var reqs []batchRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	inputs := make([]appcatalog.BatchInput, 0, len(reqs))
	for _, r := range reqs {
		planted, err := r.plantDate()
		if err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		inputs = append(inputs, appcatalog.BatchInput{
			ID:           r.ID,
			Name:         r.Name,
			PlantDate:    planted,
			Quantity:     r.Quantity,
			Stock:        r.Stock,
			ReadyForSale: r.ReadyForSale,
		})
	}

	if err := h.catalog.ReplaceAll(c.Request.Context(), actorFrom(c), inputs); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(inputs)})
}

func (h *Handler) handleDeleteBatch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, dombatch.ErrInvalidID)
		return
	}

	deleted, err := h.catalog.Delete(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "batch": toBatchResponse(deleted)})
}
