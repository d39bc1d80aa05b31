package handlers_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/todoapi/internal/models"
)

// stubESTransport serves a canned search response and records the request
// body so tests can assert on the query the client sends.
type stubESTransport struct {
	lastBody string
	payload  string
}

func (s *stubESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		req.Body.Close()
		s.lastBody = string(data)
	}

	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(s.payload)),
	}, nil
}

func newStubESClient(t *testing.T, payload string) (*elasticsearch.Client, *stubESTransport) {
	t.Helper()

	tr := &stubESTransport{payload: payload}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch.test:9200"},
		Transport: tr,
	})
	require.NoError(t, err)
	return client, tr
}

func TestSearchRequiresQuery(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "alice")
	token, _ := app.login(t, "alice", "secretpass123")

	rec := app.request(t, http.MethodGet, "/api/todos/search", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchFiltersByOwnerInQuery(t *testing.T) {
	payload := `{"hits":{"total":{"value":2},"hits":[` +
		`{"_source":{"id":1,"user_id":1,"title":"buy milk","description":"two bottles"}},` +
		`{"_source":{"id":2,"user_id":1,"title":"milk run"}}]}}`
	client, tr := newStubESClient(t, payload)
	app := newTestAppWithES(t, client)

	app.register(t, "alice")
	token, _ := app.login(t, "alice", "secretpass123")

	var alice models.User
	require.NoError(t, app.db.Where("username = ?", "alice").First(&alice).Error)
	require.Equal(t, uint(1), alice.ID)

	rec := app.request(t, http.MethodGet, "/api/todos/search?q=milk", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["total"])
	todos, ok := body["todos"].([]interface{})
	require.True(t, ok)
	assert.Len(t, todos, 2)
	assert.Contains(t, rec.Body.String(), "buy milk")

	// The ownership constraint rides inside the query itself.
	assert.Contains(t, tr.lastBody, `"multi_match"`)
	assert.Contains(t, tr.lastBody, `"term":{"user_id":1}`)
}

func TestSearchWindowClamps(t *testing.T) {
	payload := `{"hits":{"total":{"value":0},"hits":[]}}`
	client, tr := newStubESClient(t, payload)
	app := newTestAppWithES(t, client)

	app.register(t, "alice")
	token, _ := app.login(t, "alice", "secretpass123")

	rec := app.request(t, http.MethodGet, "/api/todos/search?q=milk&page=3&size=500", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	// size 500 clamps to the default; page 3 starts after two full pages.
	assert.Contains(t, tr.lastBody, `"from":20`)
	assert.Contains(t, tr.lastBody, `"size":10`)
}
