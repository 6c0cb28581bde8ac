package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/metrics"
	"github.com/learnify/backend/models"
	"github.com/learnify/backend/service"
)

const thumbnailURLExpiry = 15 * time.Minute

type CoursesHandler struct {
	Catalog  *service.CatalogService
	Media    service.MediaStore // nil when S3 is not configured
	Metrics  metrics.Recorder
	Log      *logger.Logger
	MaxBytes int64
}

type CreateCourseResponse struct {
	Message  string `json:"message"`
	CourseID string `json:"courseId"`
}

// List handles GET /api/courses, optionally filtered by ?instructorId=.
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.CourseFilter{InstructorID: strings.TrimSpace(r.URL.Query().Get("instructorId"))}
	courses, err := h.Catalog.ListCourses(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": nonNil(courses)})
}

// ByInstructor handles GET /api/courses/{id} and returns a bare array.
func (h *CoursesHandler) ByInstructor(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Catalog.CoursesByInstructor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(courses))
}

func nonNil(c []models.Course) []models.Course {
	if c == nil {
		return []models.Course{}
	}
	return c
}

// Create handles POST /api/courses/create with a JSON body or a multipart form
// carrying the thumbnail file.
func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.createMultipart(w, r)
		return
	}

	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	in, err := req.input()
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	h.create(w, r, in, "")
}

func (h *CoursesHandler) create(w http.ResponseWriter, r *http.Request, in models.CourseInput, uploadedKey string) {
	course, err := h.Catalog.CreateCourse(r.Context(), in)
	if err != nil {
		if uploadedKey != "" {
			if derr := h.Media.Delete(r.Context(), uploadedKey); derr != nil {
				h.Log.Warn("orphaned thumbnail not removed", "key", uploadedKey, "error", derr)
			}
		}
		writeServiceError(w, h.Log, r, err)
		return
	}
	h.Metrics.RecordCourseCreated()
	h.Log.Info("course created", "course", course.ID, "slug", course.Slug, "instructor", course.InstructorID)
	writeJSON(w, http.StatusCreated, CreateCourseResponse{Message: "course created successfully", CourseID: course.ID})
}

// createCourseRequest keeps price and tags raw so a wrong JSON type gets a
// field-specific message instead of a generic decode error.
type createCourseRequest struct {
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Thumbnail    string          `json:"thumbnail"`
	Language     string          `json:"language"`
	Level        string          `json:"level"`
	CategoryID   string          `json:"categoryId"`
	InstructorID string          `json:"instructorId"`
	Price        json.RawMessage `json:"price"`
	Tags         json.RawMessage `json:"tags"`
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func (req *createCourseRequest) input() (models.CourseInput, error) {
	in := models.CourseInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		Thumbnail:    req.Thumbnail,
		Language:     req.Language,
		Level:        req.Level,
		CategoryID:   req.CategoryID,
		InstructorID: req.InstructorID,
	}
	if !isNull(req.Price) {
		var p float64
		if err := json.Unmarshal(req.Price, &p); err != nil {
			return in, models.Validation("price must be a non-negative number")
		}
		in.Price = &p
	}
	if !isNull(req.Tags) {
		if err := json.Unmarshal(req.Tags, &in.Tags); err != nil {
			return in, models.Validation("tags must be an array")
		}
	}
	return in, nil
}

func (h *CoursesHandler) createMultipart(w http.ResponseWriter, r *http.Request) {
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		file, header, err = r.FormFile("file")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing thumbnail file")
		return
	}
	defer file.Close()

	form := r.MultipartForm.Value
	get := func(k string) string {
		if v := form[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	in := models.CourseInput{
		Title:        get("title"),
		Slug:         get("slug"),
		Description:  get("description"),
		Language:     get("language"),
		Level:        get("level"),
		CategoryID:   get("categoryId"),
		InstructorID: get("instructorId"),
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if p := get("price"); p != "" {
		price, err := strconv.ParseFloat(p, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "price must be a non-negative number")
			return
		}
		in.Price = &price
	}
	for _, v := range form["tags"] {
		in.Tags = append(in.Tags, strings.Split(v, ",")...)
	}
	// The file is not stored yet; validate everything else first.
	in.Thumbnail = header.Filename
	if _, err := in.Validate(); err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !service.AllowedMedia(service.PrefixThumbnails, contentType) {
		writeError(w, http.StatusBadRequest, "thumbnail must be a jpeg, png, webp or gif image")
		return
	}
	slug, err := h.Catalog.SlugFor(r.Context(), in.Title, in.Slug)
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	if h.Media == nil {
		writeError(w, http.StatusServiceUnavailable, "upload not configured (missing S3)")
		return
	}
	body, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	key, err := h.Media.Upload(r.Context(), service.PrefixThumbnails, header.Filename, bytes.NewReader(body), contentType)
	if err != nil {
		h.Log.Error("thumbnail upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload to storage")
		return
	}
	in.Slug = slug
	in.Thumbnail = key
	h.create(w, r, in, key)
}

// Thumbnail handles GET /api/courses/{id}/thumbnail by redirecting to the image.
func (h *CoursesHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	course, err := h.Catalog.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	ref := course.ThumbnailRef
	switch {
	case service.IsObjectKey(ref):
		if h.Media == nil {
			writeError(w, http.StatusServiceUnavailable, "download not configured")
			return
		}
		url, err := h.Media.PresignedGetURL(r.Context(), ref, thumbnailURLExpiry)
		if err != nil {
			h.Log.Error("presign failed", "key", ref, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to generate thumbnail url")
			return
		}
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		http.Redirect(w, r, ref, http.StatusTemporaryRedirect)
	default:
		writeError(w, http.StatusNotFound, "thumbnail not found")
	}
}
