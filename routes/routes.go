package routes

import (
	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/controllers"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://admin.shynne.app",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.GET("/:id/washes", controllers.GetCustomerWashes)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Service routes
		services := api.Group("/services")
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id", controllers.UpdateService)
			services.DELETE("/:id", controllers.DeleteService)
		}

		// Wash routes
		washes := api.Group("/washes")
		{
			washes.POST("", controllers.CreateWash)
			washes.GET("", controllers.GetWashes)
			washes.GET("/:id", controllers.GetWash)
			washes.PUT("/:id", controllers.UpdateWash)
			washes.DELETE("/:id", controllers.DeleteWash)
		}

		// Daily free-wash draw routes
		draw := api.Group("/draw")
		{
			draw.GET("/candidates", controllers.GetDrawCandidates)
			draw.GET("/winner", controllers.GetDrawWinner)
			draw.POST("", controllers.RunDraw)
			draw.POST("/approve", controllers.ApproveWinner)
			draw.POST("/reschedule", controllers.RescheduleWinner)
			draw.POST("/winners/:id/revoke", controllers.RevokeWinner)
			draw.POST("/winners/:id/notify", controllers.NotifyWinner)
		}

		// Promotion routes
		promotions := api.Group("/promotions")
		{
			promotions.GET("", controllers.GetPromotions)
			promotions.PUT("/:id", controllers.UpdatePromotion)
		}

		// Featured vehicle routes
		featured := api.Group("/featured")
		{
			featured.POST("", controllers.AddFeaturedVehicle)
			featured.GET("", controllers.GetFeaturedVehicles)
			featured.DELETE("/:id", controllers.DeleteFeaturedVehicle)
		}

		// Settings routes (owner only)
		settings := api.Group("/settings", utils.OwnerOnly())
		{
			settings.GET("", controllers.GetSettings)
			settings.PUT("", controllers.UpdateSettings)
		}

		// Staff routes (owner only)
		staff := api.Group("/staff", utils.OwnerOnly())
		{
			staff.GET("", controllers.GetStaff)
			staff.POST("", controllers.AddStaff)
			staff.PUT("/:id", controllers.UpdateStaff)
			staff.DELETE("/:id", controllers.DeleteStaff)
		}

		// Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports/monthly", reportController.GetMonthlyReport)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
