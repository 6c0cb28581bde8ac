package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/learnify/backend/models"
)

func createCourse(t *testing.T, e *env, title string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/courses/create", "tok-instructor", courseBody(title))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	var resp CreateCourseResponse
	decodeBody(t, w, &resp)
	return resp.CourseID
}

func TestContentOrganizer(t *testing.T) {
	e := newEnv(t)
	courseID := createCourse(t, e, "Organized")
	base := "/api/instructor/courses/" + courseID

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		w := e.do(http.MethodPost, base+"/sections", "tok-instructor", map[string]string{"title": title})
		if w.Code != http.StatusCreated {
			t.Fatalf("add section: %d %s", w.Code, w.Body)
		}
		var sec models.Section
		decodeBody(t, w, &sec)
		ids = append(ids, sec.ID)
	}

	w := e.do(http.MethodPost, "/api/instructor/sections/"+ids[0]+"/lectures", "tok-instructor", map[string]interface{}{"title": "Welcome", "type": "document", "duration": 3})
	if w.Code != http.StatusCreated {
		t.Fatalf("add lecture: %d %s", w.Code, w.Body)
	}
	var lec models.Lecture
	decodeBody(t, w, &lec)
	if lec.Type != models.LecturePDF || lec.Order != 0 {
		t.Errorf("lecture = %+v", lec)
	}

	w = e.do(http.MethodPost, base+"/sections/"+ids[2]+"/move", "tok-instructor", map[string]string{"direction": "up"})
	if w.Code != http.StatusOK {
		t.Fatalf("move: %d %s", w.Code, w.Body)
	}
	w = e.do(http.MethodPost, base+"/sections/"+ids[0]+"/move", "tok-instructor", map[string]string{"direction": "sideways"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad direction: %d", w.Code)
	}

	w = e.do(http.MethodDelete, base+"/sections/"+ids[0], "tok-instructor", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body)
	}

	w = e.do(http.MethodGet, base+"/content", "tok-instructor", nil)
	var outline struct {
		Sections []models.SectionOutline `json:"sections"`
	}
	decodeBody(t, w, &outline)
	if len(outline.Sections) != 2 {
		t.Fatalf("sections = %+v", outline.Sections)
	}
	if outline.Sections[0].ID != ids[2] || outline.Sections[1].ID != ids[1] {
		t.Errorf("order = %s, %s", outline.Sections[0].Title, outline.Sections[1].Title)
	}
	for i, s := range outline.Sections {
		if s.Order != i {
			t.Errorf("%s order = %d, want %d", s.Title, s.Order, i)
		}
	}
	orphans, _ := e.store.LecturesBySection(context.Background(), ids[0])
	if len(orphans) != 0 {
		t.Error("lectures of deleted section remain")
	}
}

func TestInstructorOwnership(t *testing.T) {
	e := newEnv(t)
	courseID := createCourse(t, e, "Mine")
	base := "/api/instructor/courses/" + courseID

	if w := e.do(http.MethodPost, base+"/sections", "tok-other", map[string]string{"title": "x"}); w.Code != http.StatusForbidden {
		t.Errorf("other instructor: %d", w.Code)
	}
	if w := e.do(http.MethodGet, base, "tok-student", nil); w.Code != http.StatusForbidden {
		t.Errorf("student: %d", w.Code)
	}
	if w := e.do(http.MethodGet, base, "tok-admin", nil); w.Code != http.StatusOK {
		t.Errorf("admin: %d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/instructor/courses/missing", "tok-instructor", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing course: %d", w.Code)
	}

	w := e.do(http.MethodPut, base, "tok-instructor", map[string]interface{}{"title": "Mine, revised", "price": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body)
	}
	var c models.Course
	decodeBody(t, w, &c)
	if c.Title != "Mine, revised" || c.Price != 5 || c.Slug != "mine" {
		t.Errorf("updated = %+v", c)
	}
	if w := e.do(http.MethodPut, base, "tok-instructor", map[string]interface{}{"level": "expert"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad level: %d", w.Code)
	}
}

func TestLectureEditing(t *testing.T) {
	e := newEnv(t)
	courseID := createCourse(t, e, "Lectures")
	w := e.do(http.MethodPost, "/api/instructor/courses/"+courseID+"/sections", "tok-instructor", map[string]string{"title": "S"})
	var sec models.Section
	decodeBody(t, w, &sec)
	base := "/api/instructor/sections/" + sec.ID + "/lectures"

	var lecs []models.Lecture
	for _, title := range []string{"a", "b"} {
		w := e.do(http.MethodPost, base, "tok-instructor", map[string]string{"title": title})
		var l models.Lecture
		decodeBody(t, w, &l)
		lecs = append(lecs, l)
	}

	w = e.do(http.MethodPatch, base+"/"+lecs[0].ID, "tok-instructor", map[string]interface{}{"isPreview": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body)
	}
	w = e.do(http.MethodPost, base+"/"+lecs[1].ID+"/move", "tok-instructor", map[string]string{"direction": "up"})
	var moved struct {
		Lectures []models.Lecture `json:"lectures"`
	}
	decodeBody(t, w, &moved)
	if len(moved.Lectures) != 2 || moved.Lectures[0].ID != lecs[1].ID {
		t.Errorf("moved = %+v", moved.Lectures)
	}
	if w := e.do(http.MethodPost, base, "tok-other", map[string]string{"title": "x"}); w.Code != http.StatusForbidden {
		t.Errorf("other instructor: %d", w.Code)
	}
	if w := e.do(http.MethodDelete, base+"/"+lecs[0].ID, "tok-instructor", nil); w.Code != http.StatusOK {
		t.Errorf("delete: %d", w.Code)
	}
	if w := e.do(http.MethodDelete, base+"/"+lecs[0].ID, "tok-instructor", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: %d", w.Code)
	}
}

func TestLectureUpload(t *testing.T) {
	e := newEnv(t)
	upload := func(token, filename, contentType string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, _ := mw.CreatePart(h)
		part.Write([]byte("data"))
		mw.Close()
		r := httptest.NewRequest(http.MethodPost, "/api/instructor/uploads", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())
		r.Header.Set("Authorization", "Bearer "+token)
		return e.serve(r)
	}

	w := upload("tok-instructor", "intro.mp4", "application/octet-stream")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	var resp UploadResponse
	decodeBody(t, w, &resp)
	if !strings.HasPrefix(resp.ContentRef, "lectures/") || e.media.objects[resp.ContentRef] != "video/mp4" {
		t.Errorf("resp = %+v objects = %v", resp, e.media.objects)
	}
	if w := upload("tok-instructor", "evil.sh", "text/x-sh"); w.Code != http.StatusBadRequest {
		t.Errorf("script upload: %d", w.Code)
	}
	if w := upload("tok-student", "a.pdf", "application/pdf"); w.Code != http.StatusForbidden {
		t.Errorf("student upload: %d", w.Code)
	}
}
