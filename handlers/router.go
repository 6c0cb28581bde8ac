package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/learnify/backend/middleware"
	"github.com/learnify/backend/models"
)

// Routes bundles everything NewRouter mounts.
type Routes struct {
	Courses        *CoursesHandler
	Instructor     *InstructorHandler
	Uploads        *UploadHandler
	Users          *UsersHandler
	Webhook        http.Handler
	AddUserWebhook http.Handler
	DB             *DBHandler
	Pages          http.Handler
	Metrics        http.Handler

	// Middleware runs outermost, in order, before the guard.
	Middleware []func(http.Handler) http.Handler
	Guard      func(http.Handler) http.Handler
	// Limit throttles webhook deliveries and course creation. Optional.
	Limit func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func NewRouter(rt Routes) chi.Router {
	limit := rt.Limit
	if limit == nil {
		limit = passthrough
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	for _, m := range rt.Middleware {
		r.Use(m)
	}
	r.Use(chimw.Recoverer)
	r.Use(rt.Guard)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/db", rt.DB.Status)
		r.Post("/user/update", rt.Users.Update)
		r.With(limit).Method(http.MethodPost, "/webhook", rt.Webhook)
		r.With(limit).Method(http.MethodPost, "/webhooks/addUser", rt.AddUserWebhook)

		r.Get("/courses", rt.Courses.List)
		r.With(limit).Post("/courses/create", rt.Courses.Create)
		r.Get("/courses/{id}", rt.Courses.ByInstructor)
		r.Get("/courses/{id}/thumbnail", rt.Courses.Thumbnail)

		r.Route("/instructor", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))
			r.Post("/uploads", rt.Uploads.Upload)

			r.Get("/courses/{courseId}", rt.Instructor.GetCourse)
			r.Put("/courses/{courseId}", rt.Instructor.UpdateCourse)
			r.Get("/courses/{courseId}/content", rt.Instructor.Outline)
			r.Post("/courses/{courseId}/sections", rt.Instructor.AddSection)
			r.Patch("/courses/{courseId}/sections/{sectionId}", rt.Instructor.RenameSection)
			r.Delete("/courses/{courseId}/sections/{sectionId}", rt.Instructor.DeleteSection)
			r.Post("/courses/{courseId}/sections/{sectionId}/move", rt.Instructor.MoveSection)

			r.Post("/sections/{sectionId}/lectures", rt.Instructor.AddLecture)
			r.Patch("/sections/{sectionId}/lectures/{lectureId}", rt.Instructor.UpdateLecture)
			r.Delete("/sections/{sectionId}/lectures/{lectureId}", rt.Instructor.DeleteLecture)
			r.Post("/sections/{sectionId}/lectures/{lectureId}/move", rt.Instructor.MoveLecture)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.Method != http.MethodGet {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		rt.Pages.ServeHTTP(w, r)
	})
	return r
}
