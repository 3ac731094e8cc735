package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	models "pickup/models/postgres"
	"pickup/services/geocode"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parkForm() url.Values {
	return url.Values{
		"name":    {"Parky"},
		"street":  {"Parkstreet"},
		"city":    {"Parkville"},
		"state":   {"AZ"},
		"zipcode": {"12345"},
	}
}

func addPark(t *testing.T, router *gin.Engine, token string, form url.Values) uint {
	w := doRequest(router, http.MethodPost, "/auth/parks", form, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	park := body["park"].(map[string]interface{})
	return uint(park["park_id"].(float64))
}

func TestAddPark(t *testing.T) {
	router, db := newTestServer(t)
	token := registerPlayer(t, router, "Testuser", "test@example.com", "testpass123")

	t.Run("Add park successfully", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/parks", parkForm(), token)
		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		park := body["park"].(map[string]interface{})
		assert.Equal(t, "Parky", park["name"])
		assert.Equal(t, "Testuser", park["creator"])
	})

	t.Run("Add park with missing fields", func(t *testing.T) {
		form := parkForm()
		form.Set("city", "")
		w := doRequest(router, http.MethodPost, "/auth/parks", form, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "All fields are required.", decodeBody(t, w)["error"])
	})

	t.Run("Add park with bad state code", func(t *testing.T) {
		form := parkForm()
		form.Set("name", "Elsewhere Park")
		form.Set("state", "ZZ")
		w := doRequest(router, http.MethodPost, "/auth/parks", form, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid state code.", decodeBody(t, w)["error"])
	})

	t.Run("Add park with bad zip code", func(t *testing.T) {
		for _, zip := range []string{"1234", "123456", "abcde", "12345-67"} {
			form := parkForm()
			form.Set("name", "Zip Park")
			form.Set("zipcode", zip)
			w := doRequest(router, http.MethodPost, "/auth/parks", form, token)
			assert.Equal(t, http.StatusBadRequest, w.Code, "zip %q", zip)
			assert.Equal(t, "Invalid zip code.", decodeBody(t, w)["error"])
		}
	})

	t.Run("Five plus four zip is accepted", func(t *testing.T) {
		form := parkForm()
		form.Set("name", "Long Zip Park")
		form.Set("zipcode", "12345-6789")
		w := doRequest(router, http.MethodPost, "/auth/parks", form, token)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Duplicate park is rejected", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/parks", parkForm(), token)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "A park with this address already exists.", decodeBody(t, w)["error"])

		// Exactly one Parky row exists
		var count int64
		require.NoError(t, db.Model(&models.Park{}).Where("name = ?", "Parky").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestAddParkWithGeocoder(t *testing.T) {
	// Fake geocoding service: "1 River Rd" is normalized to "1 River
	// Road", anything else is echoed back as already canonical.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		street := r.URL.Query().Get("street")
		if street == "1 River Rd" {
			street = "1 River Road"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"matches": []map[string]string{{
				"street":  street,
				"city":    r.URL.Query().Get("city"),
				"state":   r.URL.Query().Get("state"),
				"zipcode": r.URL.Query().Get("zip"),
			}},
		})
	}))
	t.Cleanup(server.Close)

	t.Setenv("GEOCODER_API_KEY", "test-key")
	t.Setenv("GEOCODER_URL", server.URL)
	geocoder := geocode.NewFromEnv(nil)
	require.NotNil(t, geocoder)

	router, db := newTestServerWithGeocoder(t, geocoder)
	token := registerPlayer(t, router, "Testuser", "test@example.com", "testpass123")

	form := parkForm()
	form.Set("street", "1 River Rd")

	t.Run("Near match asks for confirmation", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/parks", form, token)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, "Address needs confirmation.", body["error"])
		suggested := body["suggested"].(map[string]interface{})
		assert.Equal(t, "1 River Road", suggested["street"])

		// Nothing was stored
		var count int64
		require.NoError(t, db.Model(&models.Park{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Confirmed resubmission stores the canonical address", func(t *testing.T) {
		confirmed := parkForm()
		confirmed.Set("street", "1 River Rd")
		confirmed.Set("confirm", "true")
		w := doRequest(router, http.MethodPost, "/auth/parks", confirmed, token)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var park models.Park
		require.NoError(t, db.Where("name = ?", "Parky").First(&park).Error)
		assert.Equal(t, "1 River Road", park.Street)
		assert.NotEmpty(t, park.Geocoded)
	})

	t.Run("Exact match needs no confirmation", func(t *testing.T) {
		exact := parkForm()
		exact.Set("name", "Exact Park")
		w := doRequest(router, http.MethodPost, "/auth/parks", exact, token)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var park models.Park
		require.NoError(t, db.Where("name = ?", "Exact Park").First(&park).Error)
		assert.Equal(t, "Parkstreet", park.Street)
		assert.NotEmpty(t, park.Geocoded)
	})
}

func TestFavoritePark(t *testing.T) {
	router, _ := newTestServer(t)
	token := registerPlayer(t, router, "fan", "fan@example.com", "parksrule")
	parkID := addPark(t, router, token, parkForm())
	favoritePath := fmt.Sprintf("/auth/parks/%d/favorite", parkID)

	t.Run("Favorite a park", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, favoritePath, nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Favoriting twice is rejected", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, favoritePath, nil, token)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Park is already in your favorites.", decodeBody(t, w)["error"])
	})

	t.Run("Unfavorite removes the row", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, favoritePath, nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unfavoriting again is an error", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, favoritePath, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Park is not in your favorites.", decodeBody(t, w)["error"])
	})

	t.Run("Favoriting an unknown park", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/parks/9999/favorite", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSearchParks(t *testing.T) {
	router, _ := newTestServer(t)
	token := registerPlayer(t, router, "fan", "fan@example.com", "parksrule")

	riversideForm := parkForm()
	riversideForm.Set("name", "Riverside Park")
	riversideForm.Set("street", "1 River Rd")
	riversideID := addPark(t, router, token, riversideForm)

	lakesideForm := parkForm()
	lakesideForm.Set("name", "Lakeside Park")
	lakesideForm.Set("street", "2 Lake Ave")
	addPark(t, router, token, lakesideForm)

	w := doRequest(router, http.MethodPost,
		fmt.Sprintf("/auth/parks/%d/favorite", riversideID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	names := func(entries []interface{}) []string {
		result := make([]string, len(entries))
		for i, entry := range entries {
			result[i] = entry.(map[string]interface{})["name"].(string)
		}
		return result
	}

	t.Run("Search partitions by favorite", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/auth/parks?q=Park", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, []string{"Riverside Park"}, names(body["favorite_parks"].([]interface{})))
		assert.Equal(t, []string{"Lakeside Park"}, names(body["other_parks"].([]interface{})))
	})

	t.Run("Search with no match", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/auth/parks?q=Mountain", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Empty(t, body["favorite_parks"])
		assert.Empty(t, body["other_parks"])
	})

	t.Run("No search returns favorites only", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/auth/parks", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, []string{"Riverside Park"}, names(body["favorite_parks"].([]interface{})))
		assert.Empty(t, body["other_parks"])
	})

	t.Run("Empty query matches everything", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/auth/parks?q=", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Len(t, body["favorite_parks"], 1)
		assert.Len(t, body["other_parks"], 1)
	})
}
