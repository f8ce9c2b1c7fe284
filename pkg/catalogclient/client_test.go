package catalogclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": success}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestListProducts_SendsFilters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/products", r.URL.Path)
		gotQuery = r.URL.RawQuery
		writeEnvelope(w, http.StatusOK, true, "", []map[string]any{
			{"id": 1, "name": "Clay Vase", "price": "45.99", "artisan_id": 2, "category_id": 3, "artisan_name": "Ana"},
			{"id": 4, "name": "Bowl", "price": 12.5, "artisan_id": 2, "category_id": 3},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	products, err := c.ListProducts(context.Background(), Filter{ArtisanID: 2, CategoryID: 3})
	require.NoError(t, err)

	assert.Equal(t, "artisan_id=2&category_id=3", gotQuery)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("45.99")))
	assert.Equal(t, "Ana", products[0].ArtisanName)
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("12.5")))
}

func TestListProducts_NoFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeEnvelope(w, http.StatusOK, true, "", []any{})
	}))
	defer srv.Close()

	products, err := NewClient(srv.URL).ListProducts(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetArtisan_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, false, "Artisan with ID 9 not found", nil)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetArtisan(context.Background(), 9)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Artisan with ID 9 not found", apiErr.Message)
	assert.True(t, IsNotFound(err))
}

func TestDo_NonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListCategories(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).ListArtisans(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCreateProduct_ForwardsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		ck, err := r.Cookie("accessToken")
		if assert.NoError(t, err) {
			assert.Equal(t, "tok", ck.Value)
		}

		var in map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Mug", in["name"])
		assert.NotContains(t, in, "image_url")

		writeEnvelope(w, http.StatusCreated, true, "Product created", map[string]any{"id": 7, "name": "Mug", "price": "9.5"})
	}))
	defer srv.Close()

	name := "Mug"
	price := decimal.RequireFromString("9.5")
	p, err := NewClient(srv.URL).CreateProduct(context.Background(),
		ProductInput{Name: &name, Price: &price},
		[]*http.Cookie{{Name: "accessToken", Value: "tok"}},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
}

func TestDeleteProduct_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/products/3", r.URL.Path)
		writeEnvelope(w, http.StatusForbidden, false, "admin access required", nil)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteProduct(context.Background(), 3, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}
