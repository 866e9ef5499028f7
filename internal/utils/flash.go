package utils

import (
	"net/http"
	"net/url"

	"github.com/corkboard-dev/corkboard/internal/types"
	"github.com/gin-gonic/gin"
)

// SetFlash stores a one-shot notice in a short-lived cookie so it survives the
// redirect that follows a form post.
func SetFlash(ctx *gin.Context, message string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.FlashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// TakeFlash returns the pending notice, if any, and clears the cookie.
func TakeFlash(ctx *gin.Context) string {
	cookie, err := ctx.Cookie(types.FlashCookieName)

	if err != nil || cookie == "" {
		return ""
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	message, err := url.QueryUnescape(cookie)

	if err != nil {
		return ""
	}

	return message
}
