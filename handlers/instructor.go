package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/models"
	"github.com/learnify/backend/service"
)

// InstructorHandler serves the course editor and content organizer.
// Every route checks ownership of the course before touching it.
type InstructorHandler struct {
	Catalog *service.CatalogService
	Content *service.ContentService
	Actors  ActorResolver
	Log     *logger.Logger
}

type titleRequest struct {
	Title string `json:"title"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// authorizeCourse resolves the caller and checks ownership of {courseId}.
func (h *InstructorHandler) authorizeCourse(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	actor, err := actorFrom(r, h.Actors)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return nil, false
	}
	course, err := h.Content.Authorize(r.Context(), actor, chi.URLParam(r, "courseId"))
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return nil, false
	}
	return course, true
}

func (h *InstructorHandler) authorizeSection(w http.ResponseWriter, r *http.Request) (*models.Section, bool) {
	actor, err := actorFrom(r, h.Actors)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return nil, false
	}
	sec, err := h.Content.AuthorizeSection(r.Context(), actor, chi.URLParam(r, "sectionId"))
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return nil, false
	}
	return sec, true
}

// GetCourse handles GET /api/instructor/courses/{courseId}.
func (h *InstructorHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, ok := h.authorizeCourse(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// UpdateCourse handles PUT /api/instructor/courses/{courseId}.
func (h *InstructorHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r, h.Actors)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	var upd models.CourseUpdate
	if !decode(w, r, &upd) {
		return
	}
	course, err := h.Catalog.UpdateCourse(r.Context(), actor, chi.URLParam(r, "courseId"), upd)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// Outline handles GET /api/instructor/courses/{courseId}/content.
func (h *InstructorHandler) Outline(w http.ResponseWriter, r *http.Request) {
	course, ok := h.authorizeCourse(w, r)
	if !ok {
		return
	}
	outline, err := h.Content.Outline(r.Context(), course.ID)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"course": course, "sections": outline})
}

func (h *InstructorHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	course, ok := h.authorizeCourse(w, r)
	if !ok {
		return
	}
	var req titleRequest
	if !decode(w, r, &req) {
		return
	}
	sec, err := h.Content.AddSection(r.Context(), course.ID, req.Title)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sec)
}

func (h *InstructorHandler) RenameSection(w http.ResponseWriter, r *http.Request) {
	course, ok := h.authorizeCourse(w, r)
	if !ok {
		return
	}
	var req titleRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Content.RenameSection(r.Context(), course.ID, chi.URLParam(r, "sectionId"), req.Title); err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "section updated"})
}

func (h *InstructorHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	course, ok := h.authorizeCourse(w, r)
	if !ok {
		return
	}
	if err := h.Content.DeleteSection(r.Context(), course.ID, chi.URLParam(r, "sectionId")); err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "section deleted"})
}

func (h *InstructorHandler) MoveSection(w http.ResponseWriter, r *http.Request) {
	course, ok := h.authorizeCourse(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	dir, err := models.ParseDirection(req.Direction)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	sections, err := h.Content.MoveSection(r.Context(), course.ID, chi.URLParam(r, "sectionId"), dir)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sections": sections})
}

func (h *InstructorHandler) AddLecture(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.authorizeSection(w, r)
	if !ok {
		return
	}
	var in models.LectureInput
	if !decode(w, r, &in) {
		return
	}
	lecture, err := h.Content.AddLecture(r.Context(), sec.ID, in)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lecture)
}

func (h *InstructorHandler) UpdateLecture(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.authorizeSection(w, r)
	if !ok {
		return
	}
	var in models.LectureInput
	if !decode(w, r, &in) {
		return
	}
	lecture, err := h.Content.UpdateLecture(r.Context(), sec.ID, chi.URLParam(r, "lectureId"), in)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lecture)
}

func (h *InstructorHandler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.authorizeSection(w, r)
	if !ok {
		return
	}
	if err := h.Content.DeleteLecture(r.Context(), sec.ID, chi.URLParam(r, "lectureId")); err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "lecture deleted"})
}

func (h *InstructorHandler) MoveLecture(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.authorizeSection(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	dir, err := models.ParseDirection(req.Direction)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	lectures, err := h.Content.MoveLecture(r.Context(), sec.ID, chi.URLParam(r, "lectureId"), dir)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lectures": lectures})
}
