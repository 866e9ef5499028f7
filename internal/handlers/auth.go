package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/corkboard-dev/corkboard/db"
	"github.com/corkboard-dev/corkboard/internal/auth"
	"github.com/corkboard-dev/corkboard/internal/models"
	"github.com/corkboard-dev/corkboard/internal/types"
	"github.com/corkboard-dev/corkboard/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	Domain = os.Getenv("DOMAIN")
)

func setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Home redirects to the login view; the client routes logged-in users onward.
func Home(ctx *gin.Context) {
	ctx.Redirect(http.StatusSeeOther, "/login")
}

// RegisterPage returns the data the registration view needs.
func RegisterPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"notice": utils.TakeFlash(ctx)})
}

// LoginPage returns the data the login view needs.
func LoginPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"notice": utils.TakeFlash(ctx)})
}

func Register(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	password := ctx.PostForm("password")

	if username == "" || password == "" {
		utils.SetFlash(ctx, "Username and password are required.")
		ctx.Redirect(http.StatusSeeOther, "/register")
		return
	}

	var existingUser models.User

	err := db.DB.Where("username = ?", username).First(&existingUser).Error

	if err == nil {
		utils.SetFlash(ctx, "Username already exists!")
		ctx.Redirect(http.StatusSeeOther, "/register")
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Username:     username,
		PasswordHash: string(passwordHash),
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	utils.SetFlash(ctx, "Registration successful! Please login.")
	ctx.Redirect(http.StatusSeeOther, "/login")
}

func Login(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	password := ctx.PostForm("password")

	if username == "" || password == "" {
		utils.SetFlash(ctx, "Invalid credentials!")
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	}

	var existingUser models.User

	err := db.DB.Where("username = ?", username).First(&existingUser).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same message as a bad password; never reveal whether the
			// username exists.
			utils.SetFlash(ctx, "Invalid credentials!")
			ctx.Redirect(http.StatusSeeOther, "/login")
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(password))

	if err != nil {
		utils.SetFlash(ctx, "Invalid credentials!")
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	}

	token, err := auth.GenerateJWT(existingUser.ID, existingUser.Username)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token, 60*60*24*7)
	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func Logout(ctx *gin.Context) {
	setSessionCookie(ctx, "", -1)
	utils.SetFlash(ctx, "You have been logged out.")
	ctx.Redirect(http.StatusSeeOther, "/login")
}

// Me returns the session user; the client uses it to label chat messages.
func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       currentUser.ID,
			Username: currentUser.Username,
		},
	})
}
