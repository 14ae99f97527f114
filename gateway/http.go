package gateway

import (
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"room-relay/domain"
	"room-relay/errors"
	"room-relay/search"
	"room-relay/services"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/lo"
)

type RoomsResponse struct {
	Connections []RoomDTO `json:"connections"`
}

type HistoryResponse struct {
	RoomID   string       `json:"roomId"`
	Messages []MessageDTO `json:"messages"`
}

type HitDTO struct {
	RoomID  string  `json:"roomId"`
	Name    string  `json:"name"`
	Message string  `json:"message"`
	Lang    string  `json:"lang"`
	Score   float64 `json:"score"`
}

type SearchResponse struct {
	RoomID string   `json:"roomId"`
	Query  string   `json:"query"`
	Hits   []HitDTO `json:"hits"`
}

type handler struct {
	service services.IRelayService
}

func httpErrorHandler(e *echo.Echo, log *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		var httpErr *echo.HTTPError
		if goerrors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
			log.Debug(err.Error(), "method", c.Request().Method, "path", c.Path())
		} else {
			log.Error(err.Error(), "method", c.Request().Method, "path", c.Path())
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

// NewHTTPServer exposes the websocket, the query API and, when staticDir is
// set, a single page application with index fallback.
func NewHTTPServer(log *slog.Logger, service services.IRelayService, gateway *Gateway, staticDir string) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = httpErrorHandler(router, log)
	router.Use(middleware.Recover())
	router.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: []string{"*"}}))

	h := handler{service: service}
	router.GET("/socket", gateway.Serve)
	api := router.Group("/api")
	api.GET("/rooms", h.listRooms)
	api.GET("/chat/:roomId", h.history)
	api.GET("/chat/:roomId/search", h.search)
	api.POST("/peers/:peerId/disconnect", h.peerDisconnected)

	if staticDir != "" {
		router.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return strings.HasPrefix(path, "/api/") || path == "/socket"
			},
			Root:  staticDir,
			HTML5: true,
		}))
	}
	return router
}

func (h handler) listRooms(c echo.Context) error {
	rooms, err := h.service.ListRooms(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, RoomsResponse{Connections: lo.Map(rooms, func(r domain.Room, _ int) RoomDTO {
		return ToRoomDTO(r)
	})})
}

func (h handler) history(c echo.Context) error {
	roomID := c.Param("roomId")
	messages, err := h.service.History(c.Request().Context(), domain.RoomID(roomID))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, HistoryResponse{
		RoomID:   roomID,
		Messages: lo.Map(messages, func(m domain.ChatMessage, _ int) MessageDTO { return ToMessageDTO(m) }),
	})
}

func (h handler) search(c echo.Context) error {
	roomID := c.Param("roomId")
	query := c.QueryParam("q")
	limit := search.DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
		}
		limit = parsed
	}

	hits, err := h.service.Search(c.Request().Context(), domain.RoomID(roomID), query, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, SearchResponse{
		RoomID: roomID,
		Query:  query,
		Hits: lo.Map(hits, func(hit search.Hit, _ int) HitDTO {
			return HitDTO{RoomID: string(hit.RoomID), Name: hit.Name, Message: hit.Message, Lang: hit.Lang, Score: hit.Score}
		}),
	})
}

func (h handler) peerDisconnected(c echo.Context) error {
	if err := h.service.PeerDisconnected(c.Request().Context(), domain.PeerID(c.Param("peerId"))); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func toHTTPError(err error) error {
	switch {
	case goerrors.Is(err, errors.ErrUnknownRoom):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case goerrors.Is(err, errors.ErrInvalidPayload):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case goerrors.Is(err, errors.ErrSearchDisabled):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}
