package api

import (
	"fmt"
	"log"
	"net/http"

	_ "github.com/notmine/community-server/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/notmine/community-server/internal/api/handlers"
	"github.com/notmine/community-server/internal/api/middleware"
	"github.com/notmine/community-server/internal/config"
	"github.com/rs/cors"
)

func SetupRouter() http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	// requireAuth gates a single route on a valid session cookie.
	requireAuth := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("POST /sign-up", handlers.RegisterUser)
	authMux.HandleFunc("POST /login", handlers.LoginUser)
	authMux.HandleFunc("/google/login", handlers.HandleGoogleLogin)
	authMux.HandleFunc("/google/callback", handlers.HandleGoogleCallback)
	authMux.HandleFunc("POST /forgot-password", handlers.ForgotPassword)
	authMux.HandleFunc("POST /reset-password", handlers.ResetPassword)
	authMux.Handle("GET /session", requireAuth(handlers.GetSession))
	authMux.Handle("POST /logout", requireAuth(handlers.Logout))
	authMux.Handle("PATCH /password", requireAuth(handlers.UpdatePassword))

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// Forum reads are public; every write requires a signed-in identity.
	forumMux := http.NewServeMux()
	forumMux.HandleFunc("GET /listing", handlers.GetListing)
	forumMux.HandleFunc("GET /categories", handlers.ListCategories)
	forumMux.HandleFunc("GET /topics", handlers.ListTopics)
	forumMux.HandleFunc("GET /topics/{id}", handlers.GetTopic)
	forumMux.HandleFunc("GET /topics/{id}/replies", handlers.ListReplies)
	forumMux.Handle("POST /topics", requireAuth(handlers.CreateTopic))
	forumMux.Handle("POST /topics/{id}/replies", requireAuth(handlers.CreateReply))
	forumMux.Handle("PATCH /replies/{id}", requireAuth(handlers.UpdateReply))
	forumMux.Handle("DELETE /replies/{id}", requireAuth(handlers.DeleteReply))

	mainMux.Handle("/api/v1/forum/",
		http.StripPrefix("/api/v1/forum", forumMux),
	)

	// ---------- PROTECTED ROUTES ----------
	profileMux := http.NewServeMux()
	profileMux.HandleFunc("GET /profile", handlers.GetProfile)
	profileMux.HandleFunc("PATCH /profile", handlers.UpdateProfile)
	profileMux.HandleFunc("POST /profile/avatar/presign", handlers.PresignAvatar)
	profileMux.HandleFunc("POST /profile/avatar/confirm", handlers.ConfirmAvatar)

	mainMux.Handle("/api/v1/profile",
		http.StripPrefix("/api/v1", middleware.AuthMiddleware(profileMux)),
	)
	mainMux.Handle("/api/v1/profile/",
		http.StripPrefix("/api/v1", middleware.AuthMiddleware(profileMux)),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
