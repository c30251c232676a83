package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"example.com/feedapp/internal/images"
	"example.com/feedapp/internal/logger"
	"example.com/feedapp/internal/middleware"
	"example.com/feedapp/internal/password"
	"example.com/feedapp/internal/realtime"
	"example.com/feedapp/internal/store"
	"example.com/feedapp/internal/token"
)

type Server struct {
	store  store.StoreInterface
	tokens *token.Service
	events realtime.Emitter
	hasher password.Hasher
	images *images.Store
}

var logg = logger.New()

// Run starts the HTTP server with JWT-protected routes, the realtime
// broadcast endpoint and graceful shutdown. The broadcast hub is
// created here so its lifecycle is bound to the network listener.
func Run(ctx context.Context, st store.StoreInterface, tokens *token.Service, imgs *images.Store, addr string) {
	hub := realtime.New()
	realtime.Register(hub)
	defer hub.Close()

	s := &Server{
		store:  st,
		tokens: tokens,
		events: hub,
		hasher: password.NewBcryptHasher(password.DefaultCost),
		images: imgs,
	}

	srv := &http.Server{
		Addr:        addr,
		Handler:     s.router(hub),
		ReadTimeout: 10 * time.Second, // prevent slowloris attacks
	}

	// --- Start server in a goroutine ---
	go func() {
		logg.Info("server", "Starting HTTP server on "+addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}

// router wires every route. ws is the realtime endpoint handler; it is
// optional so handler tests can run without a live hub.
func (s *Server) router(ws http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsHeaders)

	authed := middleware.Auth(s.tokens)

	// Credential flows
	r.Handle("/auth/signup", http.HandlerFunc(s.signupHandler)).Methods(http.MethodPut)
	r.Handle("/auth/login", http.HandlerFunc(s.loginHandler)).Methods(http.MethodPost)
	r.Handle("/auth/status", authed(http.HandlerFunc(s.getStatusHandler))).Methods(http.MethodGet)
	r.Handle("/auth/status", authed(http.HandlerFunc(s.updateStatusHandler))).Methods(http.MethodPatch)

	// Feed mutation pipeline
	r.Handle("/feed/posts", http.HandlerFunc(s.getPostsHandler)).Methods(http.MethodGet)
	r.Handle("/feed/post", authed(http.HandlerFunc(s.createPostHandler))).Methods(http.MethodPost)
	r.Handle("/feed/post/{postID}", http.HandlerFunc(s.getPostHandler)).Methods(http.MethodGet)
	r.Handle("/feed/post/{postID}", authed(http.HandlerFunc(s.updatePostHandler))).Methods(http.MethodPut)
	r.Handle("/feed/post/{postID}", authed(http.HandlerFunc(s.deletePostHandler))).Methods(http.MethodDelete)

	// Realtime event stream
	if ws != nil {
		r.Handle("/socket", ws)
	}

	// Stored images
	if s.images != nil {
		r.PathPrefix("/images/").Handler(
			http.StripPrefix("/images/", http.FileServer(http.Dir(s.images.Dir()))))
	}

	return r
}

// corsHeaders mirrors the access-control policy of the original
// deployment: any origin, the methods the API serves, JSON + bearer
// auth headers.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next.ServeHTTP(w, r)
	})
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
