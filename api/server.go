package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"nscollab/service"
)

// Services groups the Demoday services exposed over HTTP
type Services struct {
	Events      service.EventService
	Angels      service.AngelService
	Pitches     service.PitchService
	Investments service.InvestmentService
	Results     service.ResultsService
}

type handler struct {
	services Services
}

// NewRouter builds the HTTP surface of the Demoday service
func NewRouter(services Services, identity IdentityProvider, allowedOrigins []string) http.Handler {
	h := &handler{services: services}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware)

	router.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	demoday := router.PathPrefix("/api/demoday").Subrouter()
	demoday.Use(authMiddleware(identity))

	demoday.HandleFunc("/events/{month:[0-9]{4}-[0-9]{2}}", h.getEventForMonth).Methods(http.MethodGet)
	demoday.HandleFunc("/events/{id:[0-9]+}/start", h.startPitching).Methods(http.MethodPost)
	demoday.HandleFunc("/events/{id:[0-9]+}/details", h.updateDetails).Methods(http.MethodPut)
	demoday.HandleFunc("/events/{id:[0-9]+}/angels", h.registerAngel).Methods(http.MethodPost)
	demoday.HandleFunc("/events/{id:[0-9]+}/balance", h.getBalance).Methods(http.MethodGet)
	demoday.HandleFunc("/events/{id:[0-9]+}/history", h.getHistory).Methods(http.MethodGet)
	demoday.HandleFunc("/events/{id:[0-9]+}/pitches", h.listPitches).Methods(http.MethodGet)
	demoday.HandleFunc("/events/{id:[0-9]+}/pitches", h.submitPitch).Methods(http.MethodPost)
	demoday.HandleFunc("/pitches/{id:[0-9]+}", h.cancelPitch).Methods(http.MethodDelete)
	demoday.HandleFunc("/events/{id:[0-9]+}/investments", h.listInvestments).Methods(http.MethodGet)
	demoday.HandleFunc("/events/{id:[0-9]+}/investments", h.invest).Methods(http.MethodPost)
	demoday.HandleFunc("/events/{id:[0-9]+}/results", h.getResults).Methods(http.MethodGet)
	demoday.HandleFunc("/events/{id:[0-9]+}/results", h.calculateResults).Methods(http.MethodPost)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	})

	return corsMiddleware.Handler(router)
}
