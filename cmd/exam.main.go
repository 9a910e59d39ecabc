package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-service/internal/config"
	"exam-service/internal/handler"
	"exam-service/internal/middleware"
	"exam-service/internal/registry"
	"exam-service/internal/repository"
	"exam-service/internal/router"
	admissionuc "exam-service/internal/usecase/admission"
	sessionuc "exam-service/internal/usecase/session"
	"exam-service/pkg/cache"
	"exam-service/pkg/jwtutil"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.Load()

	// db connection
	dbpool, err := pgxpool.New(context.Background(), cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer dbpool.Close()

	// redis, shared by the rate limiter and the dashboard cache
	sessionCache := cache.NewCache([]string{cfg.RedisAddr}, cfg.RedisPass, false)
	defer sessionCache.Close()

	// exam center registry, immutable after load
	reg, err := registry.Load(cfg.CentersFile, cfg.IsProduction())
	if err != nil {
		log.Fatalf("load exam centers: %v", err)
	}
	log.Printf("loaded %d exam center(s)", reg.Len())

	// identity resolver
	verifier, err := jwtutil.NewVerifierFromConfig(jwtutil.JWTConfig{
		PubPath:  cfg.JWTPubKeyFile,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		log.Fatalf("load jwt public key: %v", err)
	}
	auth := middleware.NewAuthMiddleware(verifier)

	// repos & usecases
	sessionRepo := repository.NewSessionRepo(dbpool)
	auditRepo := repository.NewAuditRepo(dbpool)
	sessionUC := sessionuc.NewUsecase(sessionRepo, cfg.ExamDuration)
	admissionUC := admissionuc.NewUsecase(reg, auditRepo)

	sessionHandler := handler.NewSessionHandler(sessionUC, sessionCache)
	admissionHandler := handler.NewAdmissionHandler(admissionUC)

	r := router.New(sessionHandler, admissionHandler, auth, sessionCache)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	// run server in goroutine
	go func() {
		log.Printf("Exam session server listening on %s (exam duration %s)", cfg.HTTPAddr, cfg.ExamDuration)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
}
