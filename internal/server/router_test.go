package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/billbuster/billbuster/internal/auth"
	"github.com/billbuster/billbuster/internal/ledger"
	"github.com/billbuster/billbuster/internal/notify"
	"github.com/billbuster/billbuster/internal/observability"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/service"
	"github.com/billbuster/billbuster/internal/storage/sqlite"
	"github.com/billbuster/billbuster/pkg/logging"
)

const testSecret = "router-test-secret"

type stubRecognizer struct{ text string }

func (r *stubRecognizer) Recognize(_ context.Context, _ []byte, _ string) (string, error) {
	return r.text, nil
}

type stubQueue struct{}

func (stubQueue) EnqueueReminderDispatch(context.Context, string) error { return nil }

type stubSender struct{}

func (stubSender) Send(context.Context, notify.Message) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := logging.New("pretty")
	cache := ledger.NewCache(nil, 0)
	workflow := reminder.NewWorkflow(store, stubQueue{}, stubSender{}, logger)

	router := NewRouter(Deps{
		Bills:    service.NewBillService(store, &stubRecognizer{text: "Coffee 4.50\nBagel $3.25"}, cache, logger),
		Groups:   service.NewGroupService(store, cache, workflow, logger),
		Workflow: workflow,
		Store:    store,
		Verifier: auth.NewVerifier(testSecret),
		Metrics:  observability.New(),
		Logger:   logger,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func bearerToken(t *testing.T, memberID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, method, url, memberID string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if memberID != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken(t, memberID))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthzIsPublic(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresAuth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/groups")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestScanEndpoint(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/scan", bytes.NewReader([]byte("fake-image")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "alice"))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out scanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Items, 2)
	require.Equal(t, "Coffee", out.Items[0].Name)
}

func TestBillAndBalanceFlow(t *testing.T) {
	server := newTestServer(t)

	// alice creates a group with bob.
	resp := doJSON(t, http.MethodPost, server.URL+"/api/groups", "alice", map[string]interface{}{
		"name":    "brunch club",
		"members": []string{"bob"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var group struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&group))
	require.NotEmpty(t, group.ID)

	// alice saves a bill split between both members.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/groups/"+group.ID+"/bills", "alice", map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Brunch", "price": "30.00"},
		},
		"assignments": []map[string]interface{}{
			{"item_index": 0, "assignees": []string{"alice", "bob"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved struct {
		Bill struct {
			ID string `json:"id"`
		} `json:"bill"`
		Shares map[string]string `json:"shares"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	require.Equal(t, "15", saved.Shares["bob"])

	// bob reads the balances.
	resp = doJSON(t, http.MethodGet, server.URL+"/api/groups/"+group.ID+"/balances", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balances struct {
		Balances map[string]string `json:"balances"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balances))
	require.Equal(t, "-15", balances.Balances["bob"])

	// An outsider cannot.
	resp = doJSON(t, http.MethodGet, server.URL+"/api/groups/"+group.ID+"/balances", "mallory", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// bob settles up and the pair nets to zero.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/groups/"+group.ID+"/settlements", "bob", map[string]interface{}{
		"from_member_id": "bob",
		"to_member_id":   "alice",
		"amount":         "15.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/groups/"+group.ID+"/balances", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balances.Balances = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balances))
	require.Equal(t, "0", balances.Balances["bob"])
}

func TestReminderEndpointValidation(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/groups", "alice", map[string]interface{}{
		"name":    "apartment",
		"members": []string{"bob"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var group struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&group))

	// No debt exists yet, so the reminder target is invalid.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/reminders", "alice", map[string]interface{}{
		"group_id":     group.ID,
		"recipient_id": "bob",
		"amount":       "10.00",
		"message":      "pay up",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
