package api

import (
	"net/http"

	"coachapp/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	clientService service.ClientService,
	exerciseService service.ExerciseService,
	dietService service.DietService,
	dietTemplateService service.DietTemplateService,
	workoutTemplateService service.WorkoutTemplateService,
) {
	authHandler := NewAuthHandler(authService)
	clientHandler := NewClientHandler(clientService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	dietHandler := NewDietHandler(dietService)
	templateHandler := NewTemplateHandler(dietTemplateService, workoutTemplateService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		clientGroup := protected.Group("/clients")
		{
			clientGroup.POST("", clientHandler.CreateClient)
			clientGroup.GET("", clientHandler.ListClients)
			clientGroup.GET("/stats", clientHandler.ClientStats)
			clientGroup.GET("/:id", clientHandler.GetClient)
			clientGroup.PUT("/:id", clientHandler.UpdateClient)
			clientGroup.DELETE("/:id", clientHandler.DeleteClient)
			clientGroup.POST("/:id/tags", clientHandler.AddClientTags)
			clientGroup.POST("/:id/photo/upload-url", clientHandler.RequestPhotoUpload)
			clientGroup.POST("/:id/photo/confirm", clientHandler.ConfirmPhotoUpload)
			clientGroup.GET("/:id/photo", clientHandler.GetPhotoDownloadURL)
			clientGroup.GET("/:id/diet-plans", dietHandler.ListClientPlans)
		}

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/stats", exerciseHandler.ExerciseStats)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:id/duplicate", exerciseHandler.DuplicateExercise)
			exerciseGroup.POST("/:id/use", exerciseHandler.MarkExerciseUsed)
			exerciseGroup.POST("/:id/video/upload-url", exerciseHandler.RequestVideoUpload)
			exerciseGroup.POST("/:id/video/confirm", exerciseHandler.ConfirmVideoUpload)
			exerciseGroup.GET("/:id/video", exerciseHandler.GetVideoDownloadURL)
		}

		dietGroup := protected.Group("/diet-plans")
		{
			dietGroup.POST("", dietHandler.CreatePlan)
			dietGroup.GET("", dietHandler.ListPlans)
			dietGroup.GET("/stats", dietHandler.PlanStats)
			dietGroup.GET("/:id", dietHandler.GetPlan)
			dietGroup.PUT("/:id", dietHandler.UpdatePlan)
			dietGroup.DELETE("/:id", dietHandler.DeletePlan)
			dietGroup.POST("/:id/tracking", dietHandler.AddTracking)
			dietGroup.PUT("/:id/tracking/:entryId", dietHandler.UpdateTracking)
			dietGroup.DELETE("/:id/tracking/:entryId", dietHandler.DeleteTracking)
			dietGroup.PUT("/:id/status", dietHandler.SetPlanStatus)
			dietGroup.PUT("/:id/weight", dietHandler.SetPlanWeight)
		}

		dietTplGroup := protected.Group("/diet-templates")
		{
			dietTplGroup.POST("", templateHandler.CreateDietTemplate)
			dietTplGroup.GET("", templateHandler.ListDietTemplates)
			dietTplGroup.GET("/stats", templateHandler.DietTemplateStats)
			dietTplGroup.GET("/:id", templateHandler.GetDietTemplate)
			dietTplGroup.PUT("/:id", templateHandler.UpdateDietTemplate)
			dietTplGroup.DELETE("/:id", templateHandler.DeleteDietTemplate)
			dietTplGroup.POST("/:id/duplicate", templateHandler.DuplicateDietTemplate)
			dietTplGroup.POST("/:id/rate", templateHandler.RateDietTemplate)
			dietTplGroup.POST("/:id/favorite", templateHandler.ToggleDietTemplateFavorite)
			dietTplGroup.PUT("/:id/visibility", templateHandler.SetDietTemplateVisibility)
		}

		workoutTplGroup := protected.Group("/workout-templates")
		{
			workoutTplGroup.POST("", templateHandler.CreateWorkoutTemplate)
			workoutTplGroup.GET("", templateHandler.ListWorkoutTemplates)
			workoutTplGroup.GET("/stats", templateHandler.WorkoutTemplateStats)
			workoutTplGroup.GET("/:id", templateHandler.GetWorkoutTemplate)
			workoutTplGroup.PUT("/:id", templateHandler.UpdateWorkoutTemplate)
			workoutTplGroup.DELETE("/:id", templateHandler.DeleteWorkoutTemplate)
			workoutTplGroup.POST("/:id/duplicate", templateHandler.DuplicateWorkoutTemplate)
			workoutTplGroup.POST("/:id/rate", templateHandler.RateWorkoutTemplate)
			workoutTplGroup.POST("/:id/favorite", templateHandler.ToggleWorkoutTemplateFavorite)
			workoutTplGroup.PUT("/:id/visibility", templateHandler.SetWorkoutTemplateVisibility)
		}
	}
}
