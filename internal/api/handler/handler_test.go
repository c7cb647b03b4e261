package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/internal/cypher"
	"github.com/maraichr/catalograph/internal/graph"
	"github.com/maraichr/catalograph/internal/graph/graphtest"
	"github.com/maraichr/catalograph/internal/history"
	"github.com/maraichr/catalograph/internal/lineage"
	"github.com/maraichr/catalograph/internal/query"
	"github.com/maraichr/catalograph/pkg/apierr"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testGraph() *graphtest.Memory {
	return graphtest.New().
		AddTable("CUSTOMER_MASTER", "Main customer information table").
		AddColumn("CUSTOMER_MASTER", "customer_id", "VARCHAR(20)", "CDE_00145").
		AddRegion("CUSTOMER_MASTER", "NAM").
		AddTable("DEPOSIT_SUMMARY", "Summary of customer deposits").
		AddTable("FINAL_REPORT", "Consolidated reporting table").
		Loads("CUSTOMER_MASTER", "DEPOSIT_SUMMARY").
		Loads("DEPOSIT_SUMMARY", "FINAL_REPORT").
		Joins("CUSTOMER_MASTER", "DEPOSIT_SUMMARY", "customer_id").
		SetCount("Client", 3)
}

func testRouter(mem *graphtest.Memory, q QueryService, hist history.Store) http.Handler {
	logger := discardLogger()
	schema := NewSchemaHandler(logger, catalog.NewService(mem, logger))
	lin := NewLineageHandler(logger, lineage.NewTraverser(mem, logger))
	qh := NewQueryHandler(logger, q)
	hh := NewHistoryHandler(logger, hist)

	r := chi.NewRouter()
	r.Get("/api/schema/tables", schema.Tables)
	r.Get("/api/schema/table/{name}", schema.Table)
	r.Get("/api/search/tables", schema.Search)
	r.Get("/api/stats", schema.Stats)
	r.Get("/api/lineage/{table}", lin.Get)
	r.Post("/api/ask", qh.Ask)
	r.Post("/api/query/cypher", qh.Cypher)
	r.Get("/api/history", hh.List)
	r.Delete("/api/history", hh.Clear)
	r.Get("/api/history/{id}", hh.Get)
	r.Delete("/api/history/{id}", hh.Delete)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.ErrorBody {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Error
}

type stubQuery struct {
	answer  *query.Answer
	results []map[string]any
	err     error
}

func (s *stubQuery) Ask(context.Context, string) (*query.Answer, error) { return s.answer, s.err }

func (s *stubQuery) Run(context.Context, string) ([]map[string]any, error) { return s.results, s.err }

func decodeJSONBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func TestSchemaHandler_Tables(t *testing.T) {
	w := do(t, testRouter(testGraph(), &stubQuery{}, history.NewMemoryStore()), http.MethodGet, "/api/schema/tables", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tables []catalog.TableSummary `json:"tables"`
		Count  int                    `json:"count"`
	}
	decodeJSONBody(t, w, &resp)
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Tables, 3)
}

func TestSchemaHandler_Table(t *testing.T) {
	h := testRouter(testGraph(), &stubQuery{}, history.NewMemoryStore())

	w := do(t, h, http.MethodGet, "/api/schema/table/CUSTOMER_MASTER", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail catalog.TableDetail
	decodeJSONBody(t, w, &detail)
	require.Len(t, detail.Columns, 1)
	assert.True(t, detail.Columns[0].IsCDE)
	assert.Equal(t, []string{"NAM"}, detail.Regions)

	w = do(t, h, http.MethodGet, "/api/schema/table/NOPE", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apierr.CodeTableNotFound, body.Code)
	assert.Equal(t, "Table 'NOPE' not found", body.Message, "message should echo the table name")
}

func TestSchemaHandler_Search(t *testing.T) {
	h := testRouter(testGraph(), &stubQuery{}, history.NewMemoryStore())

	tests := []struct {
		q    string
		want int
	}{
		{"", 3},
		{"DEPOSIT", 1},
		{"deposit", 1},
		{"customer", 2},
		{"zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			w := do(t, h, http.MethodGet, "/api/search/tables?q="+tt.q, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var resp struct {
				Count int `json:"count"`
			}
			decodeJSONBody(t, w, &resp)
			assert.Equal(t, tt.want, resp.Count)
		})
	}
}

func TestSchemaHandler_Stats(t *testing.T) {
	w := do(t, testRouter(testGraph(), &stubQuery{}, history.NewMemoryStore()), http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats map[string]int64 `json:"stats"`
	}
	decodeJSONBody(t, w, &resp)
	assert.Equal(t, int64(3), resp.Stats["tables"])
	assert.Equal(t, int64(3), resp.Stats["clients"])
	assert.Equal(t, int64(0), resp.Stats["loans"])
	assert.Len(t, resp.Stats, len(catalog.StatCategories))
}

func TestSchemaHandler_StoreUnavailable(t *testing.T) {
	storeErr := &graph.StoreError{Kind: graph.ErrStoreUnavailable, Cause: errors.New("connection refused")}
	mem := testGraph().FailOn(graph.ListTables, storeErr)

	w := do(t, testRouter(mem, &stubQuery{}, history.NewMemoryStore()), http.MethodGet, "/api/schema/tables", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierr.CodeStoreUnavailable, decodeError(t, w).Code)
}

func TestLineageHandler_Get(t *testing.T) {
	h := testRouter(testGraph(), &stubQuery{}, history.NewMemoryStore())

	w := do(t, h, http.MethodGet, "/api/lineage/CUSTOMER_MASTER", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Nodes     []lineage.Node     `json:"nodes"`
		Edges     []lineage.Edge     `json:"edges"`
		Positions []lineage.Position `json:"positions"`
	}
	decodeJSONBody(t, w, &resp)

	// Default depth 2 reaches FINAL_REPORT.
	require.Len(t, resp.Nodes, 3)
	assert.Equal(t, lineage.RoleCenter, resp.Nodes[0].Type)
	assert.Len(t, resp.Edges, 3, "parallel JOINS kept")
	assert.Len(t, resp.Positions, len(resp.Nodes))
}

func TestLineageHandler_Errors(t *testing.T) {
	h := testRouter(testGraph(), &stubQuery{}, history.NewMemoryStore())

	tests := []struct {
		name   string
		target string
		status int
		code   apierr.Code
		field  string
	}{
		{"unknown table", "/api/lineage/NOPE?depth=1", http.StatusNotFound, apierr.CodeTableNotFound, ""},
		{"depth too small", "/api/lineage/CUSTOMER_MASTER?depth=0", http.StatusBadRequest, apierr.CodeInvalidDepth, "depth"},
		{"depth too large", "/api/lineage/CUSTOMER_MASTER?depth=6", http.StatusBadRequest, apierr.CodeInvalidDepth, "depth"},
		{"depth not a number", "/api/lineage/CUSTOMER_MASTER?depth=two", http.StatusBadRequest, apierr.CodeInvalidDepth, "depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.field, body.Field)
		})
	}
}

func TestQueryHandler_Ask(t *testing.T) {
	answer := &query.Answer{Explanation: "x", CypherQuery: "MATCH (n) RETURN n", Results: []map[string]any{}}
	h := testRouter(testGraph(), &stubQuery{answer: answer}, history.NewMemoryStore())

	w := do(t, h, http.MethodPost, "/api/ask", map[string]string{"question": "list tables"})
	require.Equal(t, http.StatusOK, w.Code)
	var got query.Answer
	decodeJSONBody(t, w, &got)
	assert.Equal(t, answer.CypherQuery, got.CypherQuery)
}

func TestQueryHandler_AskErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		err    error
		status int
		code   apierr.Code
	}{
		{"invalid body", "not json", nil, http.StatusBadRequest, apierr.CodeInvalidRequestBody},
		{"blank question", map[string]string{"question": "  "}, nil, http.StatusBadRequest, apierr.CodeQuestionRequired},
		{"intent failure", map[string]string{"question": "q"}, errors.Join(query.ErrIntent, errors.New("429")), http.StatusBadGateway, apierr.CodeIntentFailed},
		{"rejected query", map[string]string{"question": "q"}, cypher.ErrWriteClause, http.StatusBadRequest, apierr.CodeQueryRejected},
		{"query error", map[string]string{"question": "q"}, &graph.StoreError{Kind: graph.ErrQuery, Cause: errors.New("Invalid input")}, http.StatusBadRequest, apierr.CodeQueryFailed},
		{"store unavailable", map[string]string{"question": "q"}, &graph.StoreError{Kind: graph.ErrStoreUnavailable, Cause: errors.New("connection refused")}, http.StatusServiceUnavailable, apierr.CodeStoreUnavailable},
		{"timeout", map[string]string{"question": "q"}, context.DeadlineExceeded, http.StatusGatewayTimeout, apierr.CodeQueryTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testRouter(testGraph(), &stubQuery{err: tt.err}, history.NewMemoryStore())
			w := do(t, h, http.MethodPost, "/api/ask", tt.body)
			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestQueryHandler_Cypher(t *testing.T) {
	h := testRouter(testGraph(), &stubQuery{results: []map[string]any{{"count": 6}}}, history.NewMemoryStore())

	w := do(t, h, http.MethodPost, "/api/query/cypher", map[string]string{"cypher": "MATCH (t:Table) RETURN count(t) AS count"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool             `json:"success"`
		Results []map[string]any `json:"results"`
		Count   int              `json:"count"`
	}
	decodeJSONBody(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)

	w = do(t, h, http.MethodPost, "/api/query/cypher", map[string]string{"cypher": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apierr.CodeCypherRequired, body.Code)
	assert.Equal(t, "cypher", body.Field)
}

func TestQueryHandler_QueryErrorCarriesStoreMessage(t *testing.T) {
	storeErr := &graph.StoreError{Kind: graph.ErrQuery, Cause: errors.New("Variable `x` not defined")}
	h := testRouter(testGraph(), &stubQuery{err: storeErr}, history.NewMemoryStore())

	w := do(t, h, http.MethodPost, "/api/query/cypher", map[string]string{"cypher": "RETURN x"})
	assert.Equal(t, "Variable `x` not defined", decodeError(t, w).Detail)
}

func TestHistoryHandler(t *testing.T) {
	hist := history.NewMemoryStore()
	ctx := context.Background()
	a, err := hist.Save(ctx, history.Entry{Question: "count clients", CypherQuery: "MATCH (c:Client) RETURN count(c)"})
	require.NoError(t, err)
	_, err = hist.Save(ctx, history.Entry{Question: "list regions"})
	require.NoError(t, err)
	h := testRouter(testGraph(), &stubQuery{}, hist)

	w := do(t, h, http.MethodGet, "/api/history?q=CLIENT", nil)
	var list struct {
		Entries []history.Entry `json:"entries"`
		Count   int             `json:"count"`
	}
	decodeJSONBody(t, w, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, a.ID, list.Entries[0].ID)

	w = do(t, h, http.MethodGet, "/api/history/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/api/history/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/history/"+a.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierr.CodeHistoryNotFound, decodeError(t, w).Code)

	w = do(t, h, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	entries, err := hist.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type stubPinger struct{ err error }

func (p stubPinger) Verify(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	ready := NewHealthHandler(stubPinger{}, "1.0.0")
	w := httptest.NewRecorder()
	ready.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := NewHealthHandler(stubPinger{err: errors.New("refused")}, "1.0.0")
	w = httptest.NewRecorder()
	down.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	down.Root(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var root map[string]string
	decodeJSONBody(t, w, &root)
	assert.Equal(t, "healthy", root["status"])
	assert.Equal(t, "1.0.0", root["version"])
}
