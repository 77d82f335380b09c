package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openparish/parishboard/services"
	"github.com/openparish/parishboard/utils"
)

// envelope mirrors the standard response wrapper for cached payloads.
type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func wrap(data interface{}) envelope {
	return envelope{Code: 0, Message: "success", Data: data}
}

// serviceError translates the service error taxonomy into HTTP
// responses. Validation and authorization keep their specific messages;
// persistence failures only ever surface the caller-supplied generic
// message, with the internal error logged.
func serviceError(ctx *gin.Context, err error, code int, generic string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
	case errors.Is(err, services.ErrSelfDelete):
		utils.Error(ctx, http.StatusBadRequest, 40050, services.ErrSelfDelete.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.Error(ctx, http.StatusForbidden, 40301, services.ErrUnauthorized.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, services.ErrNotFound.Error())
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("%s: %v", generic, err)
		}
		utils.Error(ctx, http.StatusInternalServerError, code, generic)
	}
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
