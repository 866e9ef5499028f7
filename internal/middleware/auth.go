package middleware

import (
	"net/http"
	"strings"

	"github.com/corkboard-dev/corkboard/db"
	"github.com/corkboard-dev/corkboard/internal/auth"
	"github.com/corkboard-dev/corkboard/internal/models"
	"github.com/corkboard-dev/corkboard/internal/types"
	"github.com/corkboard-dev/corkboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// sessionToken pulls the signed token from the session cookie, falling back to
// an Authorization: Bearer header for non-browser clients.
func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(types.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := ctx.GetHeader("Authorization")

	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

func resolveSession(ctx *gin.Context) (types.AuthenticatedUser, bool) {
	tokenString := sessionToken(ctx)

	if tokenString == "" {
		return types.AuthenticatedUser{}, false
	}

	token, err := auth.VerifyJWT(tokenString)

	if err != nil || !token.Valid {
		return types.AuthenticatedUser{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return types.AuthenticatedUser{}, false
	}

	userIDFloat, ok := claims["user_id"].(float64)

	if !ok {
		return types.AuthenticatedUser{}, false
	}

	userID := uint(userIDFloat)

	var user models.User

	if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return types.AuthenticatedUser{}, false
	}

	return types.AuthenticatedUser{ID: user.ID, Username: user.Username}, true
}

// RequireSession protects API-style routes: missing or invalid sessions get a
// 401 JSON body.
func RequireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := resolveSession(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

// RequireSessionPage protects page-flow routes: missing or invalid sessions
// get a flash notice and a redirect to the login view.
func RequireSessionPage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := resolveSession(ctx)

		if !ok {
			utils.SetFlash(ctx, "Please log in to continue.")
			ctx.Redirect(http.StatusSeeOther, "/login")
			ctx.Abort()
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}
