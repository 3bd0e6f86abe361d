package http

import (
	"net/http"

	"medray-api/internal/delivery/http/handler"
	"medray-api/internal/delivery/http/middleware"
	"medray-api/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router             *mux.Router
	log                *logrus.Logger
	healthHandler      *handler.HealthHandler
	authHandler        *handler.AuthHandler
	userHandler        *handler.UserHandler
	appointmentHandler *handler.AppointmentHandler
	rayHandler         *handler.RayHandler
	doctorHandler      *handler.DoctorHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	log *logrus.Logger,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	appointmentHandler *handler.AppointmentHandler,
	rayHandler *handler.RayHandler,
	doctorHandler *handler.DoctorHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		log:                log,
		healthHandler:      healthHandler,
		authHandler:        authHandler,
		userHandler:        userHandler,
		appointmentHandler: appointmentHandler,
		rayHandler:         rayHandler,
		doctorHandler:      doctorHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Use(middleware.Recovery(r.log))
	r.router.Use(middleware.RequestLogger(r.log))
	r.router.Use(r.corsMiddleware.Handle)

	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	// Preflight requests only need the CORS headers.
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {})

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.healthHandler.Check).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)
	api.HandleFunc("/forgot-password", r.authHandler.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/verify-reset-code", r.authHandler.VerifyResetCode).Methods(http.MethodPost)
	api.HandleFunc("/reset-password", r.authHandler.ResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/appointments/available", r.appointmentHandler.AvailableSlots).Methods(http.MethodGet)

	// Authenticated routes
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/dashboard", r.userHandler.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/me", r.userHandler.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/me", r.userHandler.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/doctors", r.userHandler.ListDoctors).Methods(http.MethodGet)

	protected.HandleFunc("/appointments", r.appointmentHandler.Book).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/my", r.appointmentHandler.MyAppointment).Methods(http.MethodGet)

	protected.HandleFunc("/rays", r.rayHandler.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/rays", r.rayHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/rays/{id}", r.rayHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/rays/{id}", r.rayHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/rays/{id}/image", r.rayHandler.Image).Methods(http.MethodGet)

	// Doctor routes
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)

	doctor.HandleFunc("/patients", r.doctorHandler.ListPatients).Methods(http.MethodGet)
	doctor.HandleFunc("/patients/status", r.doctorHandler.SetPatientStatus).Methods(http.MethodPost)
	doctor.HandleFunc("/patients/{id}/notes", r.doctorHandler.PatientNotes).Methods(http.MethodGet)
	doctor.HandleFunc("/notes", r.doctorHandler.CreateNote).Methods(http.MethodPost)
	doctor.HandleFunc("/notes/{id}", r.doctorHandler.UpdateNote).Methods(http.MethodPut)
	doctor.HandleFunc("/notes/{id}", r.doctorHandler.DeleteNote).Methods(http.MethodDelete)
	doctor.HandleFunc("/rays/{id}/ai", r.doctorHandler.RayAI).Methods(http.MethodGet)
	doctor.HandleFunc("/rays/{id}/image", r.doctorHandler.RayImage).Methods(http.MethodGet)

	return r.router
}
