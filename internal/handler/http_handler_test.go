package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Abhishekshinde12/Conv-AI/internal/analytics"
	"github.com/Abhishekshinde12/Conv-AI/internal/cache"
	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/internal/repository"
	"github.com/Abhishekshinde12/Conv-AI/internal/service"
	"github.com/Abhishekshinde12/Conv-AI/pkg/jwt"
	"github.com/Abhishekshinde12/Conv-AI/pkg/middleware"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.UserModel{},
		&domain.ConversationModel{},
		&domain.MessageModel{},
	))

	return db
}

func seedUser(t *testing.T, repo repository.UserRepository, first, last, role string) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:     fmt.Sprintf("%s.%s.%s@example.com", first, last, uuid.New().String()[:8]),
		FirstName: first,
		LastName:  last,
		Role:      role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// nopCache misses on every read.
type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]domain.Message, error) {
	return nil, cache.ErrCacheMiss
}
func (nopCache) Set(context.Context, string, []domain.Message, time.Duration) error { return nil }
func (nopCache) Invalidate(context.Context, string) error                           { return nil }
func (nopCache) Close() error                                                       { return nil }

// fakeSummarizer returns a canned report or a fixed error.
type fakeSummarizer struct {
	report *analytics.Report
	err    error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ []analytics.TranscriptEntry) (*analytics.Report, error) {
	return f.report, f.err
}

type httpFixture struct {
	router        *gin.Engine
	tokens        *jwt.Manager
	users         repository.UserRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	summarizer    *fakeSummarizer
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)
	users := repository.NewGormUserRepository(db)
	conversations := repository.NewGormConversationRepository(db)
	messages := repository.NewGormMessageRepository(db)

	tokens := jwt.NewManager("test-secret", "auth-service")
	summarizer := &fakeSummarizer{}

	h := NewHandler(
		service.NewDirectoryService(users, conversations),
		service.NewHistoryService(conversations, messages, nopCache{}, time.Minute),
		summarizer,
		middleware.NewAuthMiddleware(tokens),
	)

	router := gin.New()
	h.RegisterRoutes(router)

	return &httpFixture{
		router:        router,
		tokens:        tokens,
		users:         users,
		conversations: conversations,
		messages:      messages,
		summarizer:    summarizer,
	}
}

func (f *httpFixture) token(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := f.tokens.Sign(jwt.Claims{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}, time.Minute)
	require.NoError(t, err)
	return token
}

func (f *httpFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RequiresAuth(t *testing.T) {
	f := newHTTPFixture(t)

	for _, path := range []string{
		"/chat/get_conversation_id/someone",
		"/chat/get_connected_users/someone",
		"/api/v1/conversations/conv-1/messages",
	} {
		rec := f.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := f.do(t, http.MethodPost, "/api/v1/analytics", "", `{"messages":[]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_GetConversationID(t *testing.T) {
	f := newHTTPFixture(t)
	customer := seedUser(t, f.users, "Carla", "Customer", domain.RoleCustomer)
	seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)
	token := f.token(t, customer)

	rec := f.do(t, http.MethodGet, "/chat/get_conversation_id/"+customer.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var first map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.NotEmpty(t, first["conversation_id"])

	// Asking again resolves to the same conversation.
	rec = f.do(t, http.MethodGet, "/chat/get_conversation_id/"+customer.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var second map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first["conversation_id"], second["conversation_id"])
}

func TestHandler_GetConversationID_CustomerNotFound(t *testing.T) {
	f := newHTTPFixture(t)
	rep := seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)

	rec := f.do(t, http.MethodGet, "/chat/get_conversation_id/missing", f.token(t, rep), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Customer not found"}`, rec.Body.String())
}

func TestHandler_GetConversationID_NoRepresentative(t *testing.T) {
	f := newHTTPFixture(t)
	customer := seedUser(t, f.users, "Carla", "Customer", domain.RoleCustomer)

	rec := f.do(t, http.MethodGet, "/chat/get_conversation_id/"+customer.ID, f.token(t, customer), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "No Representative available"}`, rec.Body.String())
}

func TestHandler_GetConnectedUsers(t *testing.T) {
	f := newHTTPFixture(t)
	customer := seedUser(t, f.users, "Carla", "Customer", domain.RoleCustomer)
	rep := seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)
	token := f.token(t, rep)

	rec := f.do(t, http.MethodGet, "/chat/get_connected_users/"+rep.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	_, err := f.conversations.GetOrCreate(context.Background(), customer.ID, rep.ID)
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/chat/get_connected_users/"+rep.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []domain.ConversationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Carla Customer", summaries[0].UserName)
}

func TestHandler_GetConnectedUsers_NotFound(t *testing.T) {
	f := newHTTPFixture(t)
	customer := seedUser(t, f.users, "Carla", "Customer", domain.RoleCustomer)

	// Unknown id and a user who is not a representative both 404.
	for _, id := range []string{"missing", customer.ID} {
		rec := f.do(t, http.MethodGet, "/chat/get_connected_users/"+id, f.token(t, customer), "")
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.JSONEq(t, `{"error": "Representative not found"}`, rec.Body.String())
	}
}

func TestHandler_GetTranscript(t *testing.T) {
	f := newHTTPFixture(t)
	customer := seedUser(t, f.users, "Carla", "Customer", domain.RoleCustomer)
	rep := seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)
	token := f.token(t, rep)

	conv, err := f.conversations.GetOrCreate(context.Background(), customer.ID, rep.ID)
	require.NoError(t, err)

	for _, text := range []string{"hello", "hi there"} {
		_, err := f.messages.Create(context.Background(), conv.ID, customer.ID, text)
		require.NoError(t, err)
	}

	rec := f.do(t, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []domain.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Text)
	assert.Equal(t, "hi there", messages[1].Text)
}

func TestHandler_GetTranscript_NotFound(t *testing.T) {
	f := newHTTPFixture(t)
	rep := seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)

	rec := f.do(t, http.MethodGet, "/api/v1/conversations/missing/messages", f.token(t, rep), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Conversation not found"}`, rec.Body.String())
}

func TestHandler_Analytics(t *testing.T) {
	f := newHTTPFixture(t)
	rep := seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)
	token := f.token(t, rep)

	f.summarizer.report = &analytics.Report{
		Summary:   "Customer asked about a car loan.",
		Sentiment: "neutral",
		LoanType:  "car loan",
		LeadType:  "warm",
		Rationale: "Interested but undecided.",
	}

	body := `{"messages": [{"sender": "Carla Customer", "text": "car loan?"}]}`
	rec := f.do(t, http.MethodPost, "/api/v1/analytics", token, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var report analytics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, *f.summarizer.report, report)
}

func TestHandler_Analytics_EmptyMessages(t *testing.T) {
	f := newHTTPFixture(t)
	rep := seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)
	token := f.token(t, rep)

	for _, body := range []string{`{"messages": []}`, `{}`, `not json`} {
		rec := f.do(t, http.MethodPost, "/api/v1/analytics", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error": "Messages are required"}`, rec.Body.String())
	}
}

func TestHandler_Analytics_UpstreamFailure(t *testing.T) {
	f := newHTTPFixture(t)
	rep := seedUser(t, f.users, "Rita", "Rep", domain.RoleRepresentative)

	f.summarizer.err = fmt.Errorf("analytics request failed with status 429")

	body := `{"messages": [{"sender": "Carla Customer", "text": "hello"}]}`
	rec := f.do(t, http.MethodPost, "/api/v1/analytics", f.token(t, rep), body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "status 429")
}

func TestHandler_Health(t *testing.T) {
	f := newHTTPFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
