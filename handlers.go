package main

// handlers.go is the HTTP side: login/logout, public reads and the admin procedures.

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// formOverhead is the room left for text fields and multipart framing on top
// of the largest accepted file.
const formOverhead = 1 << 20

type Server struct {
	portfolio *Portfolio
	idp       IdentityProvider
	issuer    *TokenProvider
	guard     *Guard
	metrics   *Metrics
	cfg       Config
	log       zerolog.Logger
}

func NewServer(portfolio *Portfolio, idp IdentityProvider, issuer *TokenProvider, guard *Guard, metrics *Metrics, cfg Config, log zerolog.Logger) *Server {
	return &Server{
		portfolio: portfolio,
		idp:       idp,
		issuer:    issuer,
		guard:     guard,
		metrics:   metrics,
		cfg:       cfg,
		log:       log.With().Str("component", "http").Logger(),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.Login)
	mux.HandleFunc("POST /api/logout", s.Logout)
	mux.HandleFunc("POST /api/identity/token", s.IdentityToken)

	mux.HandleFunc("GET /api/skills", s.GetSkills)
	mux.HandleFunc("GET /api/skills/grouped", s.GetGroupedSkills)
	mux.HandleFunc("GET /api/projects", s.GetProjects)
	mux.HandleFunc("GET /api/articles", s.GetArticles)
	mux.HandleFunc("GET /api/resume", s.GetResume)

	mux.HandleFunc("POST /api/admin/skills", s.UpsertSkill)
	mux.HandleFunc("POST /api/admin/skills/{id}", s.UpsertSkill)
	mux.HandleFunc("DELETE /api/admin/skills/{id}", s.DeleteSkill)
	mux.HandleFunc("POST /api/admin/projects", s.UpsertProject)
	mux.HandleFunc("POST /api/admin/projects/{id}", s.UpsertProject)
	mux.HandleFunc("DELETE /api/admin/projects/{id}", s.DeleteProject)
	mux.HandleFunc("POST /api/admin/articles", s.UpsertArticle)
	mux.HandleFunc("POST /api/admin/articles/{id}", s.UpsertArticle)
	mux.HandleFunc("DELETE /api/admin/articles/{id}", s.DeleteArticle)
	mux.HandleFunc("POST /api/admin/resume", s.UpsertResume)
	mux.HandleFunc("GET /api/admin/overview", s.GetOverview)
	mux.HandleFunc("GET /api/admin/cleanup-failures", s.GetCleanupFailures)

	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s.withSession(s.logRequests(mux))
}

// withSession carries the session cookie into the request context, where the
// admin guard looks for it.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
			r = r.WithContext(WithSessionToken(r.Context(), c.Value))
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, res Result) {
	writeJSON(w, res.HTTPStatus(), res)
}

// Login exchanges an identity provider ID token for the session cookie.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var loginData struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginData); err != nil || loginData.IDToken == "" {
		writeJSON(w, http.StatusBadRequest, Result{Message: "Invalid token"})
		return
	}

	id, err := s.idp.VerifyIDToken(r.Context(), loginData.IDToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("login with invalid id token")
		writeJSON(w, http.StatusUnauthorized, Result{Message: "Invalid token"})
		return
	}
	if !s.guard.IsAdmin(id) {
		writeJSON(w, http.StatusUnauthorized, Result{Message: "Unauthorized"})
		return
	}

	session, err := s.idp.CreateSessionCookie(r.Context(), loginData.IDToken, sessionTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("error creating session cookie")
		writeJSON(w, http.StatusUnauthorized, Result{Message: "Invalid token"})
		return
	}

	http.SetCookie(w, s.cookie(sessionCookieName, session, int(sessionTTL.Seconds())))
	http.SetCookie(w, s.cookie(userIDCookieName, id.UID, int(sessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, Result{Success: true, Token: session})
}

// Logout revokes the session and clears both cookies.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		if _, err := s.idp.VerifySessionCookie(r.Context(), c.Value, true); err != nil {
			s.log.Warn().Err(err).Msg("sign out with invalid session")
			writeJSON(w, http.StatusInternalServerError, Result{Status: http.StatusInternalServerError, Message: "Something went wrong"})
			return
		}
		if err := s.idp.RevokeSession(r.Context(), c.Value); err != nil {
			s.log.Error().Err(err).Msg("error revoking session")
			writeJSON(w, http.StatusInternalServerError, Result{Status: http.StatusInternalServerError, Message: "Something went wrong"})
			return
		}
		http.SetCookie(w, s.cookie(sessionCookieName, "", -1))
		http.SetCookie(w, s.cookie(userIDCookieName, "", -1))
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Status: http.StatusOK, Message: "Signed out successfully"})
}

func (s *Server) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: http.SameSiteStrictMode,
	}
}

// IdentityToken is the built-in identity provider's sign-in: the admin's
// password against the configured bcrypt hash, answered with an ID token for
// /api/login.
func (s *Server) IdentityToken(w http.ResponseWriter, r *http.Request) {
	if s.issuer == nil || s.cfg.AdminPasswordHash == "" {
		http.Error(w, "Password sign-in is disabled", http.StatusNotFound)
		return
	}

	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if credentials.Email != s.cfg.AdminEmail {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(credentials.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	idToken, err := s.issuer.IssueIDToken(credentials.Email, credentials.Email)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"idToken": idToken})
}

func (s *Server) GetSkills(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.portfolio.FetchSkills(r.Context()))
}

func (s *Server) GetGroupedSkills(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.portfolio.GroupedSkills(r.Context())
	s.writeList(w, "skills", grouped, err)
}

func (s *Server) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.portfolio.ListProjects(r.Context())
	s.writeList(w, "projects", projects, err)
}

func (s *Server) GetArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.portfolio.ListArticles(r.Context())
	s.writeList(w, "articles", articles, err)
}

func (s *Server) GetResume(w http.ResponseWriter, r *http.Request) {
	resumes, err := s.portfolio.ListResumes(r.Context())
	if err == nil && len(resumes) == 0 {
		writeJSON(w, http.StatusNotFound, Result{Message: "No Resume Found"})
		return
	}
	if err != nil {
		s.writeList(w, "resume", nil, err)
		return
	}
	s.writeList(w, "resume", resumes[0], nil)
}

func (s *Server) writeList(w http.ResponseWriter, what string, data any, err error) {
	if err != nil {
		s.log.Error().Err(err).Str("collection", what).Msg("error fetching")
		writeJSON(w, http.StatusInternalServerError, Result{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Data: data})
}

func (s *Server) UpsertSkill(w http.ResponseWriter, r *http.Request) {
	if !s.admitForm(w, r, "upsert_skill") {
		return
	}
	in, err := skillForm(r, s.cfg.MaxUploadBytes)
	if err != nil {
		s.formError(w, r, "upsert_skill", err)
		return
	}
	writeResult(w, s.portfolio.UpsertSkill(r.Context(), r.PathValue("id"), in))
}

func (s *Server) UpsertProject(w http.ResponseWriter, r *http.Request) {
	if !s.admitForm(w, r, "upsert_project") {
		return
	}
	in, err := projectForm(r, s.cfg.MaxUploadBytes)
	if err != nil {
		s.formError(w, r, "upsert_project", err)
		return
	}
	writeResult(w, s.portfolio.UpsertProject(r.Context(), r.PathValue("id"), in))
}

func (s *Server) UpsertArticle(w http.ResponseWriter, r *http.Request) {
	if !s.admitForm(w, r, "upsert_article") {
		return
	}
	in, err := articleForm(r, s.cfg.MaxUploadBytes)
	if err != nil {
		s.formError(w, r, "upsert_article", err)
		return
	}
	writeResult(w, s.portfolio.UpsertArticle(r.Context(), r.PathValue("id"), in))
}

func (s *Server) UpsertResume(w http.ResponseWriter, r *http.Request) {
	if !s.admitForm(w, r, "upsert_resume") {
		return
	}
	file, err := resumeForm(r, s.cfg.MaxUploadBytes)
	if err != nil {
		s.formError(w, r, "upsert_resume", err)
		return
	}
	writeResult(w, s.portfolio.UpsertResume(r.Context(), file))
}

// admitForm checks the session before any of the body is read and caps the
// body for the form parser. It answers the request itself when it returns false.
func (s *Server) admitForm(w http.ResponseWriter, r *http.Request, op string) bool {
	if _, err := s.guard.Authorize(r.Context()); err != nil {
		writeResult(w, s.portfolio.fail(op, err))
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)
	return true
}

// formError answers a form that could not be read. The guard still goes
// first, so anonymous callers learn nothing about the form.
func (s *Server) formError(w http.ResponseWriter, r *http.Request, op string, err error) {
	writeResult(w, s.portfolio.guarded(r.Context(), op, "", func(context.Context) (Result, error) {
		return Result{}, err
	}))
}

func (s *Server) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.portfolio.DeleteSkill(r.Context(), r.PathValue("id")))
}

func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.portfolio.DeleteProject(r.Context(), r.PathValue("id")))
}

func (s *Server) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.portfolio.DeleteArticle(r.Context(), r.PathValue("id")))
}

func (s *Server) GetOverview(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.portfolio.Overview(r.Context()))
}

func (s *Server) GetCleanupFailures(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.portfolio.CleanupFailures(r.Context()))
}
