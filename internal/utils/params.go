package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func uintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(name + " not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("invalid " + name)
	}

	return uint(id), nil
}

func GetBoardID(ctx *gin.Context) (uint, error) {
	return uintParam(ctx, "board_id")
}

func GetListID(ctx *gin.Context) (uint, error) {
	return uintParam(ctx, "list_id")
}

func GetCardID(ctx *gin.Context) (uint, error) {
	return uintParam(ctx, "card_id")
}

func GetNewListID(ctx *gin.Context) (uint, error) {
	return uintParam(ctx, "new_list_id")
}
