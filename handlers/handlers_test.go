package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
)

type mockVaultService struct {
	createFn func(req models.CreateVaultRequest) (*models.VaultInfo, error)
	getFn    func(vaultID string) (*models.VaultInfo, error)
	deleteFn func(vaultID string) error
}

func (m *mockVaultService) Create(_ context.Context, req models.CreateVaultRequest) (*models.VaultInfo, error) {
	return m.createFn(req)
}
func (m *mockVaultService) List(_ context.Context) ([]models.VaultInfo, error) {
	return []models.VaultInfo{}, nil
}
func (m *mockVaultService) Get(_ context.Context, vaultID string) (*models.VaultInfo, error) {
	return m.getFn(vaultID)
}
func (m *mockVaultService) Delete(_ context.Context, vaultID string) error {
	return m.deleteFn(vaultID)
}
func (m *mockVaultService) Exists(_ context.Context, _ string) error { return nil }

type mockDocumentService struct {
	ingestFn func(req models.IngestRequest) (string, error)
	deleteFn func(documentID string) error
}

func (m *mockDocumentService) Ingest(_ context.Context, req models.IngestRequest) (string, error) {
	return m.ingestFn(req)
}
func (m *mockDocumentService) List(_ context.Context, _ *string, limit, offset int) (*models.DocumentListResponse, error) {
	return &models.DocumentListResponse{Documents: []models.DocumentInfo{}, Limit: limit, Offset: offset}, nil
}
func (m *mockDocumentService) Get(_ context.Context, documentID string) (*models.DocumentInfo, error) {
	return nil, errs.NotFound("document", documentID)
}
func (m *mockDocumentService) Delete(_ context.Context, documentID string) error {
	return m.deleteFn(documentID)
}

type mockAgentService struct {
	createFn func(req models.CreateAgentRequest) (*models.Agent, error)
	deleteFn func(agentID string) error
}

func (m *mockAgentService) Create(_ context.Context, req models.CreateAgentRequest) (*models.Agent, error) {
	return m.createFn(req)
}
func (m *mockAgentService) List(_ context.Context, _ *string) ([]models.Agent, error) {
	return []models.Agent{}, nil
}
func (m *mockAgentService) Get(_ context.Context, agentID string) (*models.Agent, error) {
	return nil, errs.NotFound("agent", agentID)
}
func (m *mockAgentService) Delete(_ context.Context, agentID string) error {
	return m.deleteFn(agentID)
}

type mockChatService struct {
	chatFn func(req models.ChatRequest) (*models.ChatResponse, error)
}

func (m *mockChatService) Chat(_ context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	return m.chatFn(req)
}

type testRouter struct {
	vaults    *mockVaultService
	documents *mockDocumentService
	agents    *mockAgentService
	chat      *mockChatService
	engine    *gin.Engine
}

func newTestRouter() *testRouter {
	gin.SetMode(gin.TestMode)

	tr := &testRouter{
		vaults:    &mockVaultService{},
		documents: &mockDocumentService{},
		agents:    &mockAgentService{},
		chat:      &mockChatService{},
	}

	vaultHandlers := NewVaultHandlers(tr.vaults)
	documentHandlers := NewDocumentHandlers(tr.documents)
	agentHandlers := NewAgentHandlers(tr.agents)
	chatHandlers := NewChatHandlers(tr.chat)

	engine := gin.New()
	engine.POST("/vaults", vaultHandlers.CreateVault)
	engine.GET("/vaults", vaultHandlers.ListVaults)
	engine.GET("/vaults/:vault_id", vaultHandlers.GetVault)
	engine.DELETE("/vaults/:vault_id", vaultHandlers.DeleteVault)
	engine.POST("/ingest", documentHandlers.IngestDocument)
	engine.GET("/documents", documentHandlers.ListDocuments)
	engine.GET("/documents/:document_id", documentHandlers.GetDocument)
	engine.DELETE("/documents/:document_id", documentHandlers.DeleteDocument)
	engine.POST("/agents", agentHandlers.CreateAgent)
	engine.DELETE("/agents/:agent_id", agentHandlers.DeleteAgent)
	engine.POST("/chat", chatHandlers.Chat)

	tr.engine = engine
	return tr
}

func (tr *testRouter) do(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	tr.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateVaultCreated(t *testing.T) {
	tr := newTestRouter()
	tr.vaults.createFn = func(req models.CreateVaultRequest) (*models.VaultInfo, error) {
		return &models.VaultInfo{VaultID: "v-1", Name: req.Name}, nil
	}

	rec := tr.do(t, http.MethodPost, "/vaults", map[string]string{"name": "kb"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "v-1", body["vault_id"])
	assert.Equal(t, "kb", body["name"])
}

func TestCreateVaultDuplicateConflict(t *testing.T) {
	tr := newTestRouter()
	tr.vaults.createFn = func(req models.CreateVaultRequest) (*models.VaultInfo, error) {
		return nil, errs.Conflict("vault with name %q already exists", req.Name)
	}

	rec := tr.do(t, http.MethodPost, "/vaults", map[string]string{"name": "kb"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "CONFLICT", body["code"])
	assert.Equal(t, "conflict", body["detail"])
	assert.Contains(t, body["error"], "kb")
}

func TestCreateVaultMalformedBody(t *testing.T) {
	tr := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/vaults", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	tr.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, rec)["code"])
}

func TestGetVaultNotFound(t *testing.T) {
	tr := newTestRouter()
	tr.vaults.getFn = func(vaultID string) (*models.VaultInfo, error) {
		return nil, errs.NotFound("vault", vaultID)
	}

	rec := tr.do(t, http.MethodGet, "/vaults/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "VAULT_NOT_FOUND", body["code"])
	assert.Equal(t, "not_found", body["detail"])
	assert.Contains(t, body["error"], "missing")
}

func TestDeleteVaultResponseShape(t *testing.T) {
	tr := newTestRouter()
	tr.vaults.deleteFn = func(vaultID string) error { return nil }

	rec := tr.do(t, http.MethodDelete, "/vaults/v-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "v-1", body["vault_id"])
	assert.Equal(t, "deleted", body["status"])
}

func TestIngestSuccess(t *testing.T) {
	tr := newTestRouter()
	tr.documents.ingestFn = func(req models.IngestRequest) (string, error) {
		assert.Equal(t, "some text", req.Text)
		return "doc-1", nil
	}

	rec := tr.do(t, http.MethodPost, "/ingest", map[string]string{"text": "some text"})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "doc-1", body["document_id"])
	assert.Equal(t, "indexed", body["status"])
}

func TestIngestEmptyTextUnprocessable(t *testing.T) {
	tr := newTestRouter()
	tr.documents.ingestFn = func(req models.IngestRequest) (string, error) {
		return "", errs.Validation("document text must not be empty")
	}

	rec := tr.do(t, http.MethodPost, "/ingest", map[string]string{"text": ""})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, rec)["code"])
}

func TestListDocumentsBadPagination(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(t, http.MethodGet, "/documents?limit=nope", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = tr.do(t, http.MethodGet, "/documents?offset=-3", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteDocumentResponseShape(t *testing.T) {
	tr := newTestRouter()
	tr.documents.deleteFn = func(documentID string) error { return nil }

	rec := tr.do(t, http.MethodDelete, "/documents/doc-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "doc-1", body["document_id"])
	assert.Contains(t, body["message"], "doc-1")
}

func TestDeleteAgentResponseShape(t *testing.T) {
	tr := newTestRouter()
	tr.agents.deleteFn = func(agentID string) error { return nil }

	rec := tr.do(t, http.MethodDelete, "/agents/a-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
}

func TestCreateAgentUnknownVault(t *testing.T) {
	tr := newTestRouter()
	tr.agents.createFn = func(req models.CreateAgentRequest) (*models.Agent, error) {
		return nil, errs.NotFound("vault", req.VaultID)
	}

	rec := tr.do(t, http.MethodPost, "/agents", map[string]string{
		"name": "support", "vault_id": "missing", "system_prompt": "be helpful",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "VAULT_NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestChatProviderFailureIsBadGateway(t *testing.T) {
	tr := newTestRouter()
	tr.chat.chatFn = func(req models.ChatRequest) (*models.ChatResponse, error) {
		return nil, errs.ProviderUnavailable(fmt.Errorf("exhausted retries"))
	}

	rec := tr.do(t, http.MethodPost, "/chat", map[string]string{
		"session_id": "s1", "message": "hi",
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "PROVIDER_UNAVAILABLE", decodeBody(t, rec)["code"])
}

func TestChatStoreFailureIsServiceUnavailable(t *testing.T) {
	tr := newTestRouter()
	tr.chat.chatFn = func(req models.ChatRequest) (*models.ChatResponse, error) {
		return nil, errs.StoreUnavailable(fmt.Errorf("connection refused"))
	}

	rec := tr.do(t, http.MethodPost, "/chat", map[string]string{
		"session_id": "s1", "message": "hi",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "STORE_UNAVAILABLE", body["code"])
	assert.NotEmpty(t, body["correlation_id"])
	// Cause stays server-side
	assert.NotContains(t, body["error"], "connection refused")
}

func TestChatTimeoutIsGatewayTimeout(t *testing.T) {
	tr := newTestRouter()
	tr.chat.chatFn = func(req models.ChatRequest) (*models.ChatResponse, error) {
		return nil, errs.Timeout("provider call aborted")
	}

	rec := tr.do(t, http.MethodPost, "/chat", map[string]string{
		"session_id": "s1", "message": "hi",
	})

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestExpiredDeadlineInStoreCallIsGatewayTimeout(t *testing.T) {
	tr := newTestRouter()
	tr.vaults.getFn = func(vaultID string) (*models.VaultInfo, error) {
		return nil, errs.StoreUnavailable(fmt.Errorf("get vault: %w", context.DeadlineExceeded))
	}

	rec := tr.do(t, http.MethodGet, "/vaults/v-1", nil)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "TIMEOUT", body["code"])
	assert.Equal(t, "timeout", body["detail"])
	assert.NotEmpty(t, body["correlation_id"])
}

func TestChatUntypedErrorIsInternal(t *testing.T) {
	tr := newTestRouter()
	tr.chat.chatFn = func(req models.ChatRequest) (*models.ChatResponse, error) {
		return nil, fmt.Errorf("something unexpected: secret dsn")
	}

	rec := tr.do(t, http.MethodPost, "/chat", map[string]string{
		"session_id": "s1", "message": "hi",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotEmpty(t, body["correlation_id"])
	assert.NotContains(t, body["error"], "secret dsn")
}

func TestChatSuccessPassthrough(t *testing.T) {
	tr := newTestRouter()
	tr.chat.chatFn = func(req models.ChatRequest) (*models.ChatResponse, error) {
		return &models.ChatResponse{
			SessionID: req.SessionID,
			Answer:    "hello there",
			Sources: []models.Source{
				{DocumentID: "doc-1", Snippet: "snip", Score: 0.88},
			},
		}, nil
	}

	rec := tr.do(t, http.MethodPost, "/chat", map[string]string{
		"session_id": "s1", "message": "hi",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "s1", body["session_id"])
	assert.Equal(t, "hello there", body["answer"])
	sources := body["sources"].([]interface{})
	require.Len(t, sources, 1)
}
