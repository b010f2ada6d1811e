package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tailless/api/internal/ai"
	"tailless/api/internal/auth"
	"tailless/api/internal/media"
	"tailless/api/internal/search"
	"tailless/api/internal/util"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	media      *media.Store
}

func NewHTTPServer(service *Service, corsOrigin string, mediaStore *media.Store) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, media: mediaStore}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"backend": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["backend"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Auth routes (no session required)
	if r.Method == http.MethodGet && r.URL.Path == "/api/auth/signin" {
		url, err := s.service.SignIn(r.Context())
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "로그인 페이지로 이동합니다.", map[string]any{"url": url})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/auth/callback" {
		state := strings.TrimSpace(r.URL.Query().Get("state"))
		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if state == "" || code == "" {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		session, err := s.service.HandleCallback(r.Context(), state, code)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "로그인에 성공했습니다.", sessionPayload(session))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"userId":        session.UserID,
			"userName":      session.UserName,
			"userEmail":     session.UserEmail,
			"userImage":     session.UserImage,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		session, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "세션이 갱신되었습니다.", sessionPayload(session))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeSuccess(w, "로그아웃했습니다.", nil)
		return
	}

	parts := splitPath(r.URL.Path)

	// Public reads
	if r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "api" && parts[1] == "users" {
		user, err := s.service.GetUser(r.Context(), parts[2])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "사용자 정보를 성공적으로 조회했습니다.", userPayload(user))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/spaces" {
		title := strings.TrimSpace(r.URL.Query().Get("title"))
		tags := queryList(r, "tags")
		contributors := queryList(r, "contributors")
		spaces, err := s.service.ListSpaces(r.Context(), title, tags, contributors)
		if err != nil {
			s.fail(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(spaces))
		for _, space := range spaces {
			payload = append(payload, spacePayload(space))
		}
		writeSuccess(w, "Space 목록을 성공적으로 조회했습니다.", payload)
		return
	}

	if r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "api" && parts[1] == "spaces" {
		space, err := s.service.GetSpace(r.Context(), parts[2])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "Space를 성공적으로 조회했습니다.", spacePayload(space))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/moments" {
		title := strings.TrimSpace(r.URL.Query().Get("title"))
		author := strings.TrimSpace(r.URL.Query().Get("author"))
		moments, err := s.service.ListMoments(r.Context(), title, author)
		if err != nil {
			s.fail(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(moments))
		for _, moment := range moments {
			payload = append(payload, momentPayload(moment))
		}
		writeSuccess(w, "Moment 목록을 성공적으로 조회했습니다.", payload)
		return
	}

	if r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "api" && parts[1] == "moments" {
		moment, err := s.service.GetMoment(r.Context(), parts[2])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "Moment를 성공적으로 조회했습니다.", momentPayload(moment))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		filterType := strings.TrimSpace(r.URL.Query().Get("type"))
		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeFailure(w, http.StatusBadRequest, msgBadInput)
				return
			}
			limit = parsed
		}
		offset := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeFailure(w, http.StatusBadRequest, msgBadInput)
				return
			}
			offset = parsed
		}

		payload := s.service.Search(search.Query{
			Text:       q,
			FilterType: search.ResultType(filterType),
			Limit:      limit,
			Offset:     offset,
		})
		writeSuccess(w, "검색 결과를 성공적으로 조회했습니다.", payload)
		return
	}

	// Everything below requires a session.
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/users" {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		users, err := s.service.ListUsers(r.Context(), name, email)
		if err != nil {
			s.fail(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(users))
		for _, user := range users {
			payload = append(payload, userPayload(user))
		}
		writeSuccess(w, "사용자 목록을 성공적으로 조회했습니다.", payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/spaces" {
		var body CreateSpaceInput
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		space, err := s.service.CreateSpace(r.Context(), session, body)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "Space가 성공적으로 생성되었습니다.", spacePayload(space))
		return
	}

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "spaces" {
		s.handleSpace(w, r, session, parts[2], parts[3:])
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/moments" {
		var body CreateMomentInput
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		moment, err := s.service.CreateMoment(r.Context(), session, body)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "Moment가 성공적으로 생성되었습니다.", momentPayload(moment))
		return
	}

	if len(parts) == 3 && parts[0] == "api" && parts[1] == "moments" {
		s.handleMoment(w, r, session, parts[2])
		return
	}

	if len(parts) == 3 && parts[0] == "api" && parts[1] == "ai" {
		s.handleAI(w, r, parts[2])
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/media" {
		s.handleMediaUpload(w, r)
		return
	}

	writeFailure(w, http.StatusNotFound, msgBadInput)
}

func (s *HTTPServer) handleSpace(w http.ResponseWriter, r *http.Request, session Session, spaceID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodPatch, http.MethodPut:
			var body UpdateSpaceInput
			if err := decodeBody(r, &body); err != nil {
				writeFailure(w, http.StatusBadRequest, msgBadInput)
				return
			}
			space, err := s.service.UpdateSpace(r.Context(), session, spaceID, body)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, "Space가 성공적으로 업데이트되었습니다.", spacePayload(space))
			return
		case http.MethodDelete:
			if err := s.service.DeleteSpace(r.Context(), session, spaceID); err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, "Space가 성공적으로 삭제되었습니다.", nil)
			return
		}
		writeFailure(w, http.StatusMethodNotAllowed, msgBadInput)
		return
	}

	switch rest[0] {
	case "moments":
		if r.Method == http.MethodPost && len(rest) == 1 {
			var body struct {
				MomentID string `json:"momentId"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeFailure(w, http.StatusBadRequest, msgBadInput)
				return
			}
			space, err := s.service.AddMomentToSpace(r.Context(), session, spaceID, body.MomentID)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, "Moment가 성공적으로 추가되었습니다.", spacePayload(space))
			return
		}
		if r.Method == http.MethodDelete && len(rest) == 2 {
			space, err := s.service.RemoveMomentFromSpace(r.Context(), session, spaceID, rest[1])
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, "Moment가 성공적으로 제거되었습니다.", spacePayload(space))
			return
		}
	case "contributors":
		if r.Method == http.MethodPost && len(rest) == 1 {
			var body struct {
				UserID string `json:"userId"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeFailure(w, http.StatusBadRequest, msgBadInput)
				return
			}
			space, err := s.service.AddContributor(r.Context(), session, spaceID, body.UserID)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, "새로운 Contributor가 성공적으로 추가되었습니다.", spacePayload(space))
			return
		}
		if r.Method == http.MethodDelete && len(rest) == 1 {
			space, err := s.service.RemoveContributor(r.Context(), session, spaceID)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, "Contributor에서 성공적으로 제거되었습니다.", spacePayload(space))
			return
		}
	case "tags":
		if len(rest) == 2 && rest[1] == "all" && r.Method == http.MethodDelete {
			space, err := s.service.DeleteAllTags(r.Context(), session, spaceID)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, "모든 태그가 성공적으로 삭제되었습니다.", spacePayload(space))
			return
		}
		if len(rest) == 1 {
			var body struct {
				Tags []string `json:"tags"`
			}
			switch r.Method {
			case http.MethodPost:
				if err := decodeBody(r, &body); err != nil {
					writeFailure(w, http.StatusBadRequest, msgBadInput)
					return
				}
				space, err := s.service.AddTags(r.Context(), session, spaceID, body.Tags)
				if err != nil {
					s.fail(w, err)
					return
				}
				writeSuccess(w, "태그가 성공적으로 추가되었습니다.", spacePayload(space))
				return
			case http.MethodDelete:
				if err := decodeBody(r, &body); err != nil {
					writeFailure(w, http.StatusBadRequest, msgBadInput)
					return
				}
				space, err := s.service.DeleteTags(r.Context(), session, spaceID, body.Tags)
				if err != nil {
					s.fail(w, err)
					return
				}
				writeSuccess(w, "태그가 성공적으로 삭제되었습니다.", spacePayload(space))
				return
			}
		}
	}

	writeFailure(w, http.StatusNotFound, msgBadInput)
}

func (s *HTTPServer) handleMoment(w http.ResponseWriter, r *http.Request, session Session, momentID string) {
	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var body UpdateMomentInput
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		moment, err := s.service.UpdateMoment(r.Context(), session, momentID, body)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "Moment가 성공적으로 업데이트되었습니다.", momentPayload(moment))
		return
	case http.MethodDelete:
		if err := s.service.DeleteMoment(r.Context(), session, momentID); err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "Moment가 성공적으로 삭제되었습니다.", nil)
		return
	}
	writeFailure(w, http.StatusMethodNotAllowed, msgBadInput)
}

func (s *HTTPServer) handleAI(w http.ResponseWriter, r *http.Request, operation string) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, msgBadInput)
		return
	}

	switch operation {
	case "recommend":
		var body struct {
			Content string `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		recommendations, err := s.service.RecommendSpaces(r.Context(), body.Content)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "Space 추천 결과입니다.", map[string]any{"recommendations": recommendations})
		return

	case "text":
		var body struct {
			Content string    `json:"content"`
			Action  ai.Action `json:"action"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		text, err := s.service.RunAction(r.Context(), body.Action, body.Content)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "텍스트를 성공적으로 생성했습니다.", map[string]any{"text": text})
		return

	case "generate":
		var body TextGenerationInput
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		text, err := s.service.GenerateText(r.Context(), body)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "텍스트를 성공적으로 생성했습니다.", map[string]any{"text": text})
		return

	case "tags":
		var body struct {
			Content string       `json:"content"`
			Model   ai.ModelTier `json:"model"`
			Min     int          `json:"min"`
			Max     int          `json:"max"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		tags, err := s.service.GenerateTags(r.Context(), body.Content, ai.TagOptions{
			Model: body.Model,
			Min:   body.Min,
			Max:   body.Max,
		})
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "태그를 성공적으로 추출했습니다.", map[string]any{"tags": tags})
		return

	case "similarity":
		var body struct {
			Content string       `json:"content"`
			Target  string       `json:"target"`
			Model   ai.ModelTier `json:"model"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		similarity, err := s.service.Similarity(r.Context(), body.Content, body.Target, body.Model)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "유사도를 성공적으로 계산했습니다.", map[string]any{"similarity": similarity})
		return

	case "similarities":
		var body struct {
			Content []string     `json:"content"`
			Target  []string     `json:"target"`
			Model   ai.ModelTier `json:"model"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		similarities, err := s.service.Similarities(r.Context(), body.Content, body.Target, body.Model)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "유사도를 성공적으로 계산했습니다.", map[string]any{"similarities": similarities})
		return

	case "keywords":
		var body struct {
			Content string `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgBadInput)
			return
		}
		keywords, err := s.service.ExtractKeywords(r.Context(), body.Content)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, "키워드를 성공적으로 추출했습니다.", map[string]any{"keywords": keywords})
		return
	}

	writeFailure(w, http.StatusNotFound, msgBadInput)
}

func (s *HTTPServer) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeFailure(w, http.StatusServiceUnavailable, msgUnexpected)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, msgBadInput)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !media.AllowedImageType(contentType) {
		writeFailure(w, http.StatusBadRequest, msgBadInput)
		return
	}

	name := util.NewID("img")
	if ext := extensionFor(contentType); ext != "" {
		name += ext
	}
	url, err := s.media.Put(r.Context(), name, contentType, file, header.Size)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeSuccess(w, "이미지가 성공적으로 업로드되었습니다.", map[string]any{"url": url})
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeFailure(w, http.StatusUnauthorized, msgUnauthorized)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		writeFailure(w, http.StatusUnauthorized, msgUnauthorized)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeSuccess renders the uniform success envelope.
func writeSuccess(w http.ResponseWriter, message string, data any) {
	response := map[string]any{
		"status":  http.StatusOK,
		"message": message,
	}
	if data != nil {
		response["data"] = data
	}
	writeJSON(w, http.StatusOK, response)
}

// writeFailure renders the uniform failure envelope.
func writeFailure(w http.ResponseWriter, status int, messages ...string) {
	writeJSON(w, status, map[string]any{
		"status":        status,
		"errorMessages": messages,
	})
}

func (s *HTTPServer) fail(w http.ResponseWriter, err error) {
	status, messages := mapError(err)
	writeFailure(w, status, messages...)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func queryList(r *http.Request, key string) []string {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func mapError(err error) (int, []string) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Messages
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, []string{msgUnauthorized}
	}
	return http.StatusInternalServerError, []string{msgUnexpected}
}
