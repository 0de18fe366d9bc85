package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MiguelSerea/taskmanagement/internal/handlers"
	"github.com/MiguelSerea/taskmanagement/internal/managers"
	"github.com/MiguelSerea/taskmanagement/internal/middleware"
	"github.com/MiguelSerea/taskmanagement/internal/schemas"
	"github.com/MiguelSerea/taskmanagement/internal/utils"
)

const (
	apiName    = "TaskManagement Account API"
	apiVersion = "1.0.0"
)

// InitRouter wires every route of the account service.
func InitRouter(databaseMgr managers.DatabaseMgr, tokenMgr managers.TokenMgr,
	resetMgr managers.ResetTokenMgr, mailMgr managers.MailMgr, frontendURL string) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router)

	router.GET("/", func(c *gin.Context) {
		utils.WriteAndLogResponse(c, &schemas.MetadataDTO{ApiVersion: apiVersion, ApiName: apiName}, http.StatusOK)
	})

	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c.Request.Context()); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusServiceUnavailable, err)
			return
		}
		utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "ok"}, http.StatusOK)
	})

	userHdl := handlers.NewUserHandler(databaseMgr, tokenMgr, resetMgr, mailMgr, frontendURL)

	api := router.Group("/api")
	api.POST("/register", middleware.ValidateAndSanitizeStruct(&schemas.RegistrationRequest{}), userHdl.RegisterUser)
	api.POST("/login", middleware.ValidateAndSanitizeStruct(&schemas.LoginRequest{}), userHdl.LoginUser)
	api.POST("/password-reset", middleware.ValidateAndSanitizeStruct(&schemas.PasswordResetRequest{}), userHdl.RequestPasswordReset)
	api.POST("/password-reset-confirm", middleware.ValidateAndSanitizeStruct(&schemas.PasswordResetConfirmRequest{}), userHdl.ConfirmPasswordReset)
	api.POST("/check-username", middleware.ValidateAndSanitizeStruct(&schemas.UsernameAvailabilityRequest{}), userHdl.CheckUsername)
	api.GET("/profile", middleware.RequireAuth(databaseMgr, tokenMgr), userHdl.GetProfile)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Platform"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}
