package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pureplay/pkg/auth"
	"pureplay/pkg/response"
	"pureplay/pkg/videos"
)

type VideoHandler struct {
	videos *videos.Service
}

func NewVideoHandler(svc *videos.Service) *VideoHandler {
	return &VideoHandler{videos: svc}
}

type addVideoRequest struct {
	YTVUrl string `json:"YTVUrl" binding:"required"`
}

func (h *VideoHandler) Add(c *gin.Context) {
	caller, ok := auth.FromGin(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "missing auth context")
		return
	}

	var req addVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "url is empty")
		return
	}

	video, err := h.videos.Add(c.Request.Context(), caller, req.YTVUrl)
	if err != nil {
		h.fail(c, caller.Email, "add video", err)
		return
	}
	response.OK(c, video)
}

func (h *VideoHandler) GetAll(c *gin.Context) {
	caller, ok := auth.FromGin(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "missing auth context")
		return
	}

	list, err := h.videos.List(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, caller.Email, "list videos", err)
		return
	}
	response.OK(c, list)
}

func (h *VideoHandler) GetByID(c *gin.Context) {
	caller, ok := auth.FromGin(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "missing auth context")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	video, err := h.videos.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		h.fail(c, caller.Email, "get video", err)
		return
	}
	response.OK(c, video)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	caller, ok := auth.FromGin(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "missing auth context")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.videos.Delete(c.Request.Context(), caller, id); err != nil {
		h.fail(c, caller.Email, "delete video", err)
		return
	}
	response.OK(c, "deleted successfully")
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid video id")
		return 0, false
	}
	return uint(id), true
}

// fail maps service errors onto the envelope. Unexpected errors become 500s
// rather than being folded into success responses.
func (h *VideoHandler) fail(c *gin.Context, email, op string, err error) {
	switch {
	case errors.Is(err, videos.ErrInvalidURL),
		errors.Is(err, videos.ErrDuplicateVideo),
		errors.Is(err, videos.ErrMetadataFetch):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, videos.ErrUserNotFound),
		errors.Is(err, videos.ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	default:
		slog.Error(op+" failed", "email", email, "err", err)
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
