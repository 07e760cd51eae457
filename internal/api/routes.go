package api

import (
	"net/http"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/stream"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	profileService service.ProfileService,
	exerciseService service.ExerciseService,
	workoutService service.WorkoutService,
	sessionService service.WorkoutSessionService,
	hub *stream.Hub, // nil disables the stream endpoint
) {
	authHandler := NewAuthHandler(authService)
	profileHandler := NewProfileHandler(profileService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	workoutHandler := NewWorkoutHandler(workoutService)
	sessionHandler := NewSessionHandler(sessionService, hub)

	authMiddleware := AuthMiddleware(jwtSecret)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Profile Routes ---
		profileGroup := protected.Group("/profile")
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.UpdateProfile)
			profileGroup.POST("/avatar/upload-url", profileHandler.RequestAvatarUpload)
			profileGroup.PUT("/avatar", profileHandler.ConfirmAvatar)
		}

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			// Users may submit; their exercises stay hidden until an admin approves them
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.PUT("/:id", adminOnly, exerciseHandler.UpdateExercise)
			exerciseGroup.PUT("/:id/approve", adminOnly, exerciseHandler.ApproveExercise)
			exerciseGroup.DELETE("/:id", adminOnly, exerciseHandler.DeleteExercise)
		}

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
		}

		// --- Workout Session Routes ---
		sessionGroup := protected.Group("/workout-sessions")
		{
			sessionGroup.POST("/start", sessionHandler.StartSession)
			sessionGroup.GET("/active", sessionHandler.GetActiveSession)
			sessionGroup.GET("/stats", sessionHandler.GetStats)
			sessionGroup.GET("", sessionHandler.ListSessions)

			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.PATCH("/:id", sessionHandler.AnnotateSession)
			sessionGroup.DELETE("/:id", sessionHandler.DeleteSession)
			sessionGroup.GET("/:id/stream", sessionHandler.StreamSession)

			sessionGroup.PUT("/:id/exercise-progress", sessionHandler.LogExerciseProgress)
			sessionGroup.PUT("/:id/complete-exercise", sessionHandler.CompleteExercise)
			sessionGroup.PUT("/:id/pause", sessionHandler.PauseSession)
			sessionGroup.PUT("/:id/resume", sessionHandler.ResumeSession)
			sessionGroup.PUT("/:id/complete", sessionHandler.CompleteSession)
			sessionGroup.PUT("/:id/stop", sessionHandler.StopSession)
		}
	}
}
