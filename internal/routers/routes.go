package routers

import (
	"github.com/go-chi/chi/v5"

	"joblink/api/internal/handlers"
	"joblink/api/internal/middleware"
	"joblink/api/internal/models"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UserHandler
	Jobs         *handlers.JobHandler
	Applications *handlers.ApplicationHandler
	Assessments  *handlers.AssessmentHandler
	Shortlists   *handlers.ShortlistHandler
	Matcher      *handlers.MatcherHandler
	Resume       *handlers.ResumeHandler
}

// Register mounts the whole API surface behind the identity gate.
// Public catalog reads carry no gate; every mutating route names its
// allowed roles explicitly.
func Register(r *chi.Mux, gate *middleware.Gate, h *Handlers) {
	anyUser := gate.RequireRoles()
	jobSeeker := gate.RequireRoles(models.RoleJobSeeker)
	employer := gate.RequireRoles(models.RoleEmployer)
	employerOrAdmin := gate.RequireRoles(models.RoleEmployer, models.RoleAdmin)

	r.Get("/healthz", h.Health.HealthzHandler)
	r.Get("/readyz", h.Health.ReadyzHandler)

	r.Route("/api/user", func(r chi.Router) {
		r.With(gate.AllowSignup()).Post("/signup", h.Users.CompleteSignupHandler)
		r.With(anyUser).Get("/profile", h.Users.GetProfileHandler)
		r.With(anyUser).Put("/profile", h.Users.UpdateProfileHandler)
		r.With(anyUser).Delete("/account", h.Users.DeleteAccountHandler)
	})

	r.Route("/api/job", func(r chi.Router) {
		r.Get("/", h.Jobs.ListJobsHandler)
		r.Get("/search", h.Jobs.SearchHandler)
		r.Get("/counts", h.Jobs.CountByTypeHandler)
		r.Get("/facets/{field}", h.Jobs.FacetsHandler)
		r.With(employer).Get("/mine", h.Jobs.ListMyJobsHandler)
		r.With(employer).Post("/create", h.Jobs.CreateJobHandler)
		r.Get("/{id}", h.Jobs.GetJobHandler)
		r.Get("/{id}/questions", h.Jobs.QuestionsHandler)
		r.With(employer).Put("/{id}", h.Jobs.UpdateJobHandler)
		r.With(employer).Delete("/{id}", h.Jobs.DeleteJobHandler)
	})

	r.Route("/api/application", func(r chi.Router) {
		r.With(jobSeeker).Post("/apply", h.Applications.ApplyHandler)
		r.With(jobSeeker).Put("/save", h.Applications.SaveHandler)
		r.With(jobSeeker).Put("/submit", h.Applications.SubmitHandler)
		r.With(jobSeeker).Delete("/withdraw/{id}", h.Applications.WithdrawHandler)
		r.With(anyUser).Get("/mine", h.Applications.GetMineHandler)
		r.With(employer).Get("/dashboard", h.Applications.DashboardHandler)
		r.With(employer).Get("/job/{jobId}", h.Applications.GetApplicantsHandler)
		r.With(gate.RequireRoles(models.RoleEmployer, models.RoleJobSeeker)).
			Put("/status", h.Applications.UpdateStatusHandler)
		r.With(anyUser).Get("/{id}/deadline", h.Applications.GetDeadlineHandler)
		r.With(employer).Put("/deadline", h.Applications.SetDeadlineHandler)
		r.With(anyUser).Get("/{id}", h.Applications.GetOneHandler)
	})

	r.Route("/api/assessment", func(r chi.Router) {
		r.With(jobSeeker).Post("/send", h.Assessments.SendHandler)
		r.With(jobSeeker).Get("/status", h.Assessments.StatusHandler)
		r.With(jobSeeker).Post("/submit", h.Assessments.SubmitSolutionHandler)
		r.With(jobSeeker).Get("/task/{applicationId}/{taskId}", h.Assessments.GetTaskHandler)
		r.With(jobSeeker).Get("/statuses/{applicationId}", h.Assessments.GetTaskStatusesHandler)
		r.With(employerOrAdmin).Post("/create", h.Assessments.CreateAssessmentHandler)
		r.With(employerOrAdmin).Get("/", h.Assessments.ListAssessmentsHandler)
	})

	r.Route("/api/shortlist", func(r chi.Router) {
		r.With(anyUser).Get("/jobs", h.Shortlists.GetHandler)
		r.With(jobSeeker).Put("/addjob", h.Shortlists.AddJobHandler)
		r.With(jobSeeker).Delete("/removejob", h.Shortlists.RemoveJobHandler)
	})

	r.With(jobSeeker).Get("/api/matcher/recommend-jobs", h.Matcher.RecommendHandler)
	r.With(jobSeeker).Post("/api/chat", h.Resume.ParseHandler)
}
