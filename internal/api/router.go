package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/isdelr/recipe-api-be/internal/api/handlers"
	"github.com/isdelr/recipe-api-be/internal/auth"
	"github.com/isdelr/recipe-api-be/internal/metrics"
	"github.com/isdelr/recipe-api-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	userService services.UserServiceProvider,
	tokenService services.TokenServiceProvider,
	recipeService services.RecipeServiceProvider,
	tagService services.AttributeServiceProvider,
	ingredientService services.AttributeServiceProvider,
	collector *metrics.Collector,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(collector.Middleware)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokenService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	tagHandler := handlers.NewTagHandler(tagService)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)

	requireAuth := auth.TokenMiddleware(tokenService)
	tokenLimiter := NewRateLimiter(rate.Limit(1), 10)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// Public user endpoints
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.With(tokenLimiter.Middleware).Post("/token", userHandler.Token)

			r.Route("/me", func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", userHandler.GetMe)
				r.Patch("/", userHandler.UpdateMe)
			})
		})

		// REST API endpoints for recipes
		r.Route("/recipes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", recipeHandler.GetAll)
			r.Post("/", recipeHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recipeHandler.Get)
				r.Put("/", recipeHandler.Put)
				r.Patch("/", recipeHandler.Patch)
				r.Delete("/", recipeHandler.Delete)
				r.Post("/upload-image", recipeHandler.UploadImage)
			})
		})

		// Tags and ingredients share the same shape
		r.Route("/tags", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", tagHandler.GetAll)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tagHandler.Get)
				r.Patch("/", tagHandler.Patch)
				r.Delete("/", tagHandler.Delete)
			})
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", ingredientHandler.GetAll)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ingredientHandler.Get)
				r.Patch("/", ingredientHandler.Patch)
				r.Delete("/", ingredientHandler.Delete)
			})
		})
	})

	return r
}
