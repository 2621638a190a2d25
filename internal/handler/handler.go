package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sigcr-dev/rehab-manager/backend/internal/config"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/sigcr-dev/rehab-manager/backend/internal/notifier"
	"github.com/sigcr-dev/rehab-manager/backend/internal/repository"
	"github.com/sigcr-dev/rehab-manager/backend/internal/scheduler"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	dispatcher  *notifier.Dispatcher
	engine      *scheduler.Engine
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	es := es.New()
	uni := ut.New(es, es)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	dispatcher := notifier.NewDispatcher(cfg, repo, notifCh)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		dispatcher:  dispatcher,
		engine:      scheduler.New(repo, repo, dispatcher),
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// autenticacion
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// todo lo demas requiere sesion iniciada
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.With(h.myInfo).Get("/me", h.GetMyInfo)

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrador})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrador})).Get("/", h.GetAllUsers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrador})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrador})).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/patients", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrador, domain.RoleMedico})).Post("/", h.CreatePatient)
			r.Get("/", h.GetAllPatients)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.patientInfo)
				r.Get("/", h.GetPatient)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrador, domain.RoleMedico})).Patch("/", h.UpdatePatient)
				r.Get("/notifications", h.GetPatientNotifications)

				// nucleo de planificacion: solo los medicos mutan
				// planes y cronogramas
				r.Route("/treatment-plans", func(r chi.Router) {
					r.With(h.RequiredRole([]domain.Role{domain.RoleMedico})).Post("/", h.CreateTreatmentPlan)
					r.Get("/", h.GetTreatmentPlansForPatient)
					r.Get("/active", h.GetActiveTreatmentPlan)
				})
				r.Route("/schedule", func(r chi.Router) {
					r.Get("/week", h.GetWeekSessions)
					r.With(h.RequiredRole([]domain.Role{domain.RoleMedico})).Post("/week", h.PlanWeek)
				})
			})
		})

		r.Route("/treatment-plans", func(r chi.Router) {
			r.Get("/active", h.GetAllActiveTreatmentPlans)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.treatmentPlan)
				r.Get("/", h.GetTreatmentPlan)
				r.With(h.RequiredRole([]domain.Role{domain.RoleMedico})).Patch("/", h.UpdateTreatmentPlan)
				r.With(h.RequiredRole([]domain.Role{domain.RoleMedico})).Patch("/status", h.UpdateTreatmentPlanStatus)
				r.With(h.RequiredRole([]domain.Role{domain.RoleMedico})).Delete("/", h.DeleteTreatmentPlan)
			})
		})

		r.Route("/therapists/{therapistID}", func(r chi.Router) {
			r.Get("/agenda", h.GetTherapistAgenda)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.GetMyNotifications)
			r.Get("/unread-count", h.CountMyUnreadNotifications)
			r.Post("/read-all", h.MarkAllNotificationsRead)
			r.Post("/{id}/read", h.MarkNotificationRead)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrador})).Delete("/old", h.CleanupOldNotifications)
		})
	})
}
