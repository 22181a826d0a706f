package filterserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	filtermapper "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/http/mapper"
	filtersapp "github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	filterstypes "github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
)

// FilterSessionAPI exposes filter sessions over HTTP.
type FilterSessionAPI struct {
	service filtersapp.Port
}

// NewFilterSessionAPI creates a FilterSessionAPI backed by the provided service.
func NewFilterSessionAPI(service filtersapp.Port) FilterSessionAPI {
	return FilterSessionAPI{service: service}
}

// Post /v1/filter-sessions
// Mount a filter screen
func (api *FilterSessionAPI) OpenSession(c *gin.Context) {
	var payload filtermapper.OpenSession
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, err := filtermapper.ToOpenInput(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	snapshot, err := api.service.Open(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, filtermapper.FromSnapshot(snapshot))
}

// Get /v1/filter-sessions/:sessionId
// Read a filter session
func (api *FilterSessionAPI) GetSession(c *gin.Context) {
	snapshot, err := api.service.Get(c.Request.Context(), sessionRef(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, filtermapper.FromSnapshot(snapshot))
}

// Delete /v1/filter-sessions/:sessionId
// Close a filter session
func (api *FilterSessionAPI) CloseSession(c *gin.Context) {
	if err := api.service.Close(c.Request.Context(), sessionRef(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/filter-sessions/:sessionId/toggle
// Select or deselect one option
func (api *FilterSessionAPI) ToggleOption(c *gin.Context) {
	var payload filtermapper.Toggle
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, err := filtermapper.ToToggleInput(c.Param("sessionId"), payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	snapshot, err := api.service.Toggle(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, filtermapper.FromSnapshot(snapshot))
}

// Put /v1/filter-sessions/:sessionId/age-ranges/:bucketId/age
// Type a specific age in an age range
func (api *FilterSessionAPI) SetSpecificAge(c *gin.Context) {
	bucketID, ok := parseIDParam(c, "bucketId")
	if !ok {
		return
	}
	var payload filtermapper.SpecificAge
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	snapshot, err := api.service.SetSpecificAge(c.Request.Context(), filterstypes.SpecificAgeInput{
		SessionRef: sessionRef(c),
		AgeRangeID: bucketID,
		Text:       payload.Age,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, filtermapper.FromSnapshot(snapshot))
}

// Post /v1/filter-sessions/:sessionId/favorites/toggle
// Flip the only favorites filter
func (api *FilterSessionAPI) ToggleOnlyFavorites(c *gin.Context) {
	snapshot, err := api.service.ToggleOnlyFavorites(c.Request.Context(), sessionRef(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, filtermapper.FromSnapshot(snapshot))
}

// Post /v1/filter-sessions/:sessionId/search
// Search pets by name
func (api *FilterSessionAPI) Search(c *gin.Context) {
	var payload filtermapper.Search
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	snapshot, err := api.service.Search(c.Request.Context(), filterstypes.SearchInput{
		SessionRef: sessionRef(c),
		Text:       payload.Text,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, filtermapper.FromSnapshot(snapshot))
}

// Post /v1/filter-sessions/:sessionId/clear
// Reset every filter
func (api *FilterSessionAPI) Clear(c *gin.Context) {
	snapshot, err := api.service.Clear(c.Request.Context(), sessionRef(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, filtermapper.FromSnapshot(snapshot))
}

// Post /v1/filter-sessions/:sessionId/commit
// Persist the active filters
func (api *FilterSessionAPI) Commit(c *gin.Context) {
	result, err := api.service.Commit(c.Request.Context(), sessionRef(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, filtermapper.FromCommit(result))
}

func sessionRef(c *gin.Context) filterstypes.SessionRef {
	return filterstypes.SessionRef{SessionID: c.Param("sessionId")}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}
