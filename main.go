package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"prism-studio-server/modules/common/config"
	"prism-studio-server/modules/common/gemini"
	"prism-studio-server/modules/common/httputil"
	"prism-studio-server/modules/common/storage"
	"prism-studio-server/modules/modelagent"
	"prism-studio-server/modules/scenario"
	"prism-studio-server/modules/session"
	"prism-studio-server/modules/texture"
	"prism-studio-server/modules/whitelabel"
)

// healthCheck - liveness endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "prism-studio-server",
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// optional Redis snapshot store for websocket status recovery
	store := session.ConnectStore(cfg)
	sessions := session.NewManager(store)
	sessions.StartCleanupRoutine(5*time.Minute, 2*time.Hour)

	// shared collaborators
	objectStore := storage.NewSupabaseStore()
	generator := gemini.NewGenerator(context.Background())

	// one handler per workflow
	whiteLabelHandler := whitelabel.NewHandler(sessions)
	modelAgentHandler := modelagent.NewHandler(sessions, objectStoreOrNil(objectStore))
	scenarioHandler := scenario.NewHandler(sessions, generatorOrNil(generator))
	textureHandler := texture.NewHandler(sessions, generatorOrNil(generator))

	r := mux.NewRouter()
	r.Use(httputil.EnableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", sessions.HandleWebSocket)

	r.HandleFunc("/functions/v1/white-label-process", whiteLabelHandler.HandleProcess).Methods("POST", "OPTIONS")
	r.HandleFunc("/functions/v1/model-agent-process", modelAgentHandler.HandleProcess).Methods("POST", "OPTIONS")
	r.HandleFunc("/functions/v1/scenario-engine-process", scenarioHandler.HandleProcess).Methods("POST", "OPTIONS")
	r.HandleFunc("/functions/v1/texture-master-process", textureHandler.HandleProcess).Methods("POST", "OPTIONS")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Prism Studio Server starting on port %s", cfg.Port)
		log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
		log.Printf("📡 Status socket: ws://localhost:%s/ws?session=<id>", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Shutdown error: %v", err)
	}
	log.Println("👋 Server stopped")
}

// objectStoreOrNil - a nil *SupabaseStore must become a nil interface, not a
// typed nil, so staged delivery reports remediation correctly
func objectStoreOrNil(s *storage.SupabaseStore) storage.ObjectStore {
	if s == nil {
		return nil
	}
	return s
}

// generatorOrNil - same typed-nil guard for the Gemini generator
func generatorOrNil(g *gemini.GeminiGenerator) gemini.Generator {
	if g == nil {
		return nil
	}
	return g
}
