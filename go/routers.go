package filterserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine. Middleware must be attached to
// the engine before calling it.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers served by the router.
type ApiHandleFunctions struct {
	// Routes for the FilterSessionAPI part of the API
	FilterSessionAPI FilterSessionAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"OpenSession",
			http.MethodPost,
			"/v1/filter-sessions",
			handleFunctions.FilterSessionAPI.OpenSession,
		},
		{
			"GetSession",
			http.MethodGet,
			"/v1/filter-sessions/:sessionId",
			handleFunctions.FilterSessionAPI.GetSession,
		},
		{
			"CloseSession",
			http.MethodDelete,
			"/v1/filter-sessions/:sessionId",
			handleFunctions.FilterSessionAPI.CloseSession,
		},
		{
			"ToggleOption",
			http.MethodPost,
			"/v1/filter-sessions/:sessionId/toggle",
			handleFunctions.FilterSessionAPI.ToggleOption,
		},
		{
			"SetSpecificAge",
			http.MethodPut,
			"/v1/filter-sessions/:sessionId/age-ranges/:bucketId/age",
			handleFunctions.FilterSessionAPI.SetSpecificAge,
		},
		{
			"ToggleOnlyFavorites",
			http.MethodPost,
			"/v1/filter-sessions/:sessionId/favorites/toggle",
			handleFunctions.FilterSessionAPI.ToggleOnlyFavorites,
		},
		{
			"Search",
			http.MethodPost,
			"/v1/filter-sessions/:sessionId/search",
			handleFunctions.FilterSessionAPI.Search,
		},
		{
			"Clear",
			http.MethodPost,
			"/v1/filter-sessions/:sessionId/clear",
			handleFunctions.FilterSessionAPI.Clear,
		},
		{
			"Commit",
			http.MethodPost,
			"/v1/filter-sessions/:sessionId/commit",
			handleFunctions.FilterSessionAPI.Commit,
		},
	}
}
