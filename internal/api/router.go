package api

import (
	"github.com/gin-gonic/gin"

	"github.com/truedezigner/notch/internal/auth"
	"github.com/truedezigner/notch/internal/config"
	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/handlers"
)

func SetupRouter(db *database.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	sessions := auth.NewManager(db, cfg.ServiceToken, cfg.SessionDays)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, sessions)
	userHandler := handlers.NewUserHandler(db)
	listHandler := handlers.NewListHandler(db)
	todoHandler := handlers.NewTodoHandler(db)
	noteHandler := handlers.NewNoteHandler(db)
	outboxHandler := handlers.NewOutboxHandler(db)

	router.GET("/health", authHandler.Health)

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/admin/bootstrap", authHandler.Bootstrap)

		// Anonymous share-token access
		api.GET("/public/notes/:token", noteHandler.PublicGetNote)
		api.PATCH("/public/notes/:token", noteHandler.PublicPatchNote)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(auth.Middleware(sessions))
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/users", userHandler.GetUsers)
		protected.POST("/admin/users", userHandler.CreateUser)

		lists := protected.Group("/lists")
		{
			lists.GET("", listHandler.GetLists)
			lists.POST("", listHandler.CreateList)
			lists.DELETE("/:id", listHandler.DeleteList)
		}

		todos := protected.Group("/todos")
		{
			todos.GET("", todoHandler.GetTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.GET("/:id", todoHandler.GetTodo)
			todos.PATCH("/:id", todoHandler.PatchTodo)
			todos.DELETE("/:id", todoHandler.DeleteTodo)
			todos.DELETE("/:id/purge", todoHandler.PurgeTodo)
			todos.POST("/:id/restore", todoHandler.RestoreTodo)
		}

		groups := protected.Group("/note-groups")
		{
			groups.GET("", noteHandler.GetGroups)
			groups.POST("", noteHandler.CreateGroup)
			groups.PATCH("/:id", noteHandler.PatchGroup)
		}

		notes := protected.Group("/notes")
		{
			notes.GET("", noteHandler.GetNotes)
			notes.POST("", noteHandler.CreateNote)
			notes.GET("/:id", noteHandler.GetNote)
			notes.PATCH("/:id", noteHandler.PatchNote)
			notes.DELETE("/:id", noteHandler.DeleteNote)
			notes.POST("/:id/restore", noteHandler.RestoreNote)
			notes.POST("/:id/share", noteHandler.ShareNote)
		}

		protected.GET("/notifications", outboxHandler.GetNotifications)
	}

	return router
}
