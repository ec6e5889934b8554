package api

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"
	"github.com/redis/go-redis/v9"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/internal/config"
	"github.com/opptakhq/opptak/internal/db"
	"github.com/opptakhq/opptak/internal/jobs"
	"github.com/opptakhq/opptak/internal/repository/sqlite"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, cache *redis.Client, queue *jobs.Repository) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, nil)

	sentinels := admission.Sentinels{
		ElectionCommittee: cfg.Admission.ElectionCommitteeID,
		MainBoard:         cfg.Admission.MainBoardID,
	}
	resolver := admission.NewResolver(repo, cache, cfg.MembershipTTL, nil)

	var formSchema *jsonschema.Schema
	if cfg.SubmissionSchema != "" {
		formSchema = &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(cfg.SubmissionSchema), formSchema); err != nil {
			return nil, fmt.Errorf("parse submission schema: %w", err)
		}
	}

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	applicationsHandler := NewApplicationsHandler(repo, repo, repo, resolver, sentinels, queue, formSchema)
	adminHandler := NewAdminHandler(repo, repo, repo, repo, resolver, sentinels)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Applications endpoints
	apiV1.HandleFunc("/applications", applicationsHandler.SubmitApplication).Methods("POST")
	apiV1.HandleFunc("/applications", applicationsHandler.ListApplications).Methods("GET")
	apiV1.HandleFunc("/applications/{id}", applicationsHandler.GetApplication).Methods("GET")
	apiV1.HandleFunc("/applications/{id}/statuses/{committee}", applicationsHandler.UpdateStatus).Methods("PUT")

	// Admin endpoints
	apiV1.HandleFunc("/admin/wipe", adminHandler.Wipe).Methods("POST")
	apiV1.HandleFunc("/admin/admission-periods", adminHandler.CreateAdmissionPeriod).Methods("POST")

	return r, nil
}
