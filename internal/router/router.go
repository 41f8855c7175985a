package router

import (
	"net/http"

	"votemate/internal/handlers"
	"votemate/internal/middleware"
	"votemate/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the services the routes are served from.
type Deps struct {
	Auth           *services.AuthService
	Polls          *services.PollService
	AllowedOrigins []string
	SecureCookie   bool
}

// New builds the engine with the middleware chain and every route.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(d.AllowedOrigins))
	r.Use(middleware.LoadIdentity(d.Auth))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Auth, d.SecureCookie)
	pollHandler := handlers.NewPollHandler(d.Polls)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "voteMate backend is up and running")
	})

	// 用户 (Users)
	user := r.Group("/user")
	{
		user.POST("/register", authHandler.Register)
		user.POST("/login", authHandler.Login)
		user.POST("/logout", authHandler.Logout)
		user.GET("/me", middleware.AuthRequired(), authHandler.Me)
	}

	// 投票 (Polls)
	api := r.Group("/api")
	api.GET("/polls", pollHandler.List)

	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/create-poll", pollHandler.Create)
		authorized.GET("/poll/:id", pollHandler.Get)
		authorized.POST("/poll/:id/vote", pollHandler.Vote)
		authorized.GET("/my-polls", pollHandler.Mine)
		authorized.GET("/voted-polls", pollHandler.Voted)
		authorized.DELETE("/delete-poll/:id", pollHandler.Delete)
	}
}
