package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/services"
)

// stubProfileSvc implements ProfileService with canned results.
type stubProfileSvc struct {
	createErr error
	profile   *domain.Profile
	getErr    error
	consent   *domain.ConsentRecord
}

func (s *stubProfileSvc) Create(_ context.Context, p *domain.Profile) error {
	if s.createErr != nil {
		return s.createErr
	}
	p.ID = "p-1"
	return nil
}

func (s *stubProfileSvc) Get(context.Context, string) (*domain.Profile, error) {
	return s.profile, s.getErr
}

func (s *stubProfileSvc) Update(_ context.Context, _ string, _ map[string]any) (*domain.Profile, error) {
	return s.profile, s.getErr
}

func (s *stubProfileSvc) SetConsent(context.Context, string, string, bool, string) (*domain.ConsentRecord, error) {
	return s.consent, nil
}

func (s *stubProfileSvc) Consents(context.Context, string) ([]domain.ConsentRecord, error) {
	if s.consent == nil {
		return nil, nil
	}
	return []domain.ConsentRecord{*s.consent}, nil
}

// stubCoachSvc implements CoachService with canned results.
type stubCoachSvc struct {
	chatRes *services.ChatResult
	chatErr error
	meal    *domain.MealLog
	mealErr error
}

func (s *stubCoachSvc) Chat(context.Context, string, string) (*services.ChatResult, error) {
	return s.chatRes, s.chatErr
}

func (s *stubCoachSvc) AnalyzeMealPhoto(context.Context, string, string) (*domain.MealLog, error) {
	return s.meal, s.mealErr
}

func newAPIRouter(p ProfileService, co CoachService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(p, co, nil, nil, nil)
	r := gin.New()
	r.POST("/profile", h.CreateProfile)
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
	r.PUT("/consent", h.SetConsent)
	r.POST("/chat", h.Chat)
	r.POST("/photo-analysis", h.AnalyzePhoto)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	return body.Code
}

func TestCreateProfile(t *testing.T) {
	r := newAPIRouter(&stubProfileSvc{}, &stubCoachSvc{})

	w := doJSON(t, r, http.MethodPost, "/profile", `{"name":"Alex","height_cm":180}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var p domain.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if p.UserID != "user123" || p.Name != "Alex" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestCreateProfile_ValidationAndConflict(t *testing.T) {
	r := newAPIRouter(&stubProfileSvc{createErr: services.ErrProfileExists}, &stubCoachSvc{})

	w := doJSON(t, r, http.MethodPost, "/profile", `{"height_cm":180}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/profile", `{"name":"Alex"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", w.Code)
	}
	if code := errCode(t, w); code != ErrCodeConflict {
		t.Fatalf("code = %q, want %q", code, ErrCodeConflict)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	r := newAPIRouter(&stubProfileSvc{getErr: services.ErrProfileNotFound}, &stubCoachSvc{})

	w := doJSON(t, r, http.MethodGet, "/profile", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if code := errCode(t, w); code != ErrCodeNotFound {
		t.Fatalf("code = %q", code)
	}
}

func TestUpdateProfile_RejectsEmptyPatch(t *testing.T) {
	r := newAPIRouter(&stubProfileSvc{profile: &domain.Profile{UserID: "user123"}}, &stubCoachSvc{})

	w := doJSON(t, r, http.MethodPut, "/profile", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an empty patch", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/profile", `{"name":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a blank name", w.Code)
	}
}

func TestSetConsent_RequiresGrantedField(t *testing.T) {
	svc := &stubProfileSvc{consent: &domain.ConsentRecord{UserID: "user123", ConsentType: domain.ConsentOpenAIProcessing, Granted: true}}
	r := newAPIRouter(svc, &stubCoachSvc{})

	w := doJSON(t, r, http.MethodPut, "/consent", `{"consent_type":"openai_processing"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when granted is absent", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/consent", `{"consent_type":"openai_processing","granted":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for an explicit withdrawal", w.Code)
	}
}

func TestChat_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty", services.ErrEmptyMessage, http.StatusBadRequest, ErrCodeBadRequest},
		{"too long", services.ErrMessageTooLong, http.StatusBadRequest, ErrCodeBadRequest},
		{"no consent", services.ErrConsentRequired, http.StatusForbidden, ErrCodeConsentRequired},
		{"llm down", services.ErrCoachUnavailable, http.StatusBadGateway, ErrCodeChatFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeChatFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAPIRouter(&stubProfileSvc{}, &stubCoachSvc{chatErr: tc.err})
			w := doJSON(t, r, http.MethodPost, "/chat", `{"message":"hello"}`)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if code := errCode(t, w); code != tc.wantCode {
				t.Fatalf("code = %q, want %q", code, tc.wantCode)
			}
		})
	}
}

func TestChat_Success(t *testing.T) {
	co := &stubCoachSvc{chatRes: &services.ChatResult{InteractionID: "i-1", Reply: "You got this."}}
	r := newAPIRouter(&stubProfileSvc{}, co)

	w := doJSON(t, r, http.MethodPost, "/chat", `{"message":"rough day"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var res services.ChatResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if res.Reply != "You got this." {
		t.Fatalf("reply = %q", res.Reply)
	}
}

func TestAnalyzePhoto(t *testing.T) {
	co := &stubCoachSvc{meal: &domain.MealLog{ID: "m-1", Description: "grilled chicken salad", Calories: 430}}
	r := newAPIRouter(&stubProfileSvc{}, co)

	w := doJSON(t, r, http.MethodPost, "/photo-analysis", `{"image_url":"https://cdn.example.com/m.jpg"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/photo-analysis", `{"image_url":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a blank url", w.Code)
	}
}

func TestUserID_HeaderFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := userID(c); got != "demo-user" {
		t.Fatalf("userID = %q, want the demo fallback", got)
	}

	c.Request.Header.Set("X-User-ID", "abc")
	if got := userID(c); got != "abc" {
		t.Fatalf("userID = %q, want the header value", got)
	}

	c.Set("userID", "from-auth")
	if got := userID(c); got != "from-auth" {
		t.Fatalf("userID = %q, auth context wins over the header", got)
	}
}

func TestPaginate(t *testing.T) {
	p := paginate(2, 20, 45)
	if p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
	p = paginate(3, 20, 45)
	if p.HasNext {
		t.Fatalf("last page must not report has_next: %+v", p)
	}
	p = paginate(1, 20, 0)
	if p.TotalPages != 0 || p.HasNext {
		t.Fatalf("empty set pagination = %+v", p)
	}
}
