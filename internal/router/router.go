package router

import (
	"time"

	"github.com/corkboard-dev/corkboard/internal/handlers"
	"github.com/corkboard-dev/corkboard/internal/middleware"
	"github.com/corkboard-dev/corkboard/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/api/health", handlers.HealthCheck)

	// Auth pages and session lifecycle
	r.GET("/", handlers.Home)
	r.GET("/register", handlers.RegisterPage)
	r.POST("/register", handlers.Register)
	r.GET("/login", handlers.LoginPage)
	r.POST("/login", handlers.Login)
	r.GET("/logout", middleware.RequireSessionPage(), handlers.Logout)
	r.GET("/me", middleware.RequireSession(), handlers.Me)

	// Page-flow routes: unauthenticated requests redirect to /login.
	pages := r.Group("/", middleware.RequireSessionPage())
	{
		pages.GET("/dashboard", handlers.Dashboard)
		pages.POST("/create_board", handlers.CreateBoard)
		pages.POST("/update_board/:board_id", handlers.UpdateBoard)
		pages.POST("/delete_board/:board_id", handlers.DeleteBoard)
		pages.GET("/board/:board_id", handlers.ViewBoard)
		pages.POST("/add_collaborator/:board_id", handlers.AddCollaborator)

		pages.POST("/add_list/:board_id", handlers.AddList)
		pages.POST("/update_list/:list_id", handlers.UpdateList)
		pages.POST("/delete_list/:list_id", handlers.DeleteList)

		pages.POST("/add_card/:list_id", handlers.AddCard)
		pages.POST("/update_card/:card_id", handlers.UpdateCard)
		pages.POST("/delete_card/:card_id", handlers.DeleteCard)
	}

	// API-style routes: unauthenticated requests get 401 JSON.
	r.POST("/move_card/:card_id/:new_list_id", middleware.RequireSession(), handlers.MoveCard)
	r.POST("/upload", middleware.RequireSession(), handlers.Upload)
	r.GET("/uploads/:filename", handlers.ServeUpload)

	r.GET("/ws", middleware.RequireSession(), handlers.WebSocket)

	return r
}
