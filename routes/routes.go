package routes

import (
	"pickup/controllers"
	"pickup/middleware"
	"pickup/services/geocode"
	utils "pickup/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, geocoder *geocode.Client) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/signup", controllers.SignUp(db))

	api.POST("/login", controllers.Login(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.PATCH("/changepassword", controllers.ChangePassword(db))

		authentication.GET("/profile", controllers.GetOwnProfile(db))

		authentication.PATCH("/profile", controllers.UpdateProfile(db))

		authentication.GET("/users", controllers.SearchPlayers(db))

		authentication.GET("/users/:username", controllers.GetPlayerProfile(db))

		authentication.POST("/parks", controllers.AddPark(db, geocoder))

		authentication.GET("/parks", controllers.SearchParks(db))

		authentication.POST("/parks/:park_id/favorite", controllers.FavoritePark(db))

		authentication.DELETE("/parks/:park_id/favorite", controllers.UnfavoritePark(db))

		authentication.POST("/parks/:park_id/schedule", controllers.CreateEvent(db))

		authentication.GET("/parks/:park_id/schedule", controllers.ListParkSchedule(db))

		authentication.POST("/schedule/:event_id/signup", controllers.JoinEvent(db))

		authentication.DELETE("/schedule/:event_id/signup", controllers.LeaveEvent(db))

		authentication.GET("/schedule/:event_id/attendees", controllers.ListAttendees(db))

		authentication.GET("/messages", controllers.ListConversations(db))

		authentication.GET("/messages/:username", controllers.GetThread(db))

		authentication.POST("/messages/:username", controllers.SendMessage(db))
	}
}
