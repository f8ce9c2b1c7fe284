package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeTransport answers like an Elasticsearch node.
type fakeTransport struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: req.Method, Path: req.URL.Path, Body: body})
	f.mu.Unlock()

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	respBody := f.body
	if respBody == "" {
		respBody = "{}"
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(respBody)),
		Request:    req,
	}, nil
}

func (f *fakeTransport) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestIndex(t *testing.T, ft *fakeTransport) *Index {
	t.Helper()
	es, err := NewClient("http://es.test:9200", "", "", ft)
	require.NoError(t, err)
	return NewIndex(es, "")
}

func TestIndex_Put(t *testing.T) {
	ft := &fakeTransport{body: `{"result":"created"}`}
	idx := newTestIndex(t, ft)

	err := idx.Put(context.Background(), models.ProductView{ID: 7, Name: "Stoneware Vase", Price: decimal.RequireFromString("72.5")})
	require.NoError(t, err)

	req := ft.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/products/_doc/7", req.Path)
	assert.Contains(t, req.Body, `"name":"Stoneware Vase"`)
}

func TestIndex_DeleteMissingIsFine(t *testing.T) {
	ft := &fakeTransport{status: http.StatusNotFound, body: `{"result":"not_found"}`}
	idx := newTestIndex(t, ft)

	require.NoError(t, idx.Delete(context.Background(), 3))
	assert.Equal(t, "/products/_doc/3", ft.last().Path)
}

func TestIndex_Search(t *testing.T) {
	ft := &fakeTransport{body: `{"hits":{"total":{"value":2},"hits":[
		{"_source":{"id":1,"name":"Silver Necklace","price":"89.99","artisan_name":"Emma Johnson"}},
		{"_source":{"id":3,"name":"Beaded Bracelet Set","price":"45.99"}}
	]}}`}
	idx := newTestIndex(t, ft)

	total, items, err := idx.Search(context.Background(), "necklace", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Emma Johnson", items[0].ArtisanName)
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("45.99")))

	req := ft.last()
	assert.Equal(t, "/products/_search", req.Path)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.EqualValues(t, 10, body["size"])
}

func TestIndex_SearchError(t *testing.T) {
	ft := &fakeTransport{status: http.StatusInternalServerError, body: `{"error":"boom"}`}
	idx := newTestIndex(t, ft)

	_, _, err := idx.Search(context.Background(), "x", 0, 10)
	assert.Error(t, err)
}
