package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutfitLifecycle(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "stylist")
	jacket := ts.createPost(t, user.ID)
	boots := ts.createPost(t, user.ID)

	resp := ts.request(t, http.MethodPost, "/api/outfits", token, map[string]interface{}{
		"name":  "Autumn layers",
		"items": []map[string]interface{}{{"postId": jacket.ID}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Autumn layers", body["name"])
	assert.Len(t, body["items"], 1)

	resp = ts.request(t, http.MethodPost, "/api/outfits/1/items", token, map[string]interface{}{
		"postId": boots.ID,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Adding the same post twice conflicts.
	resp = ts.request(t, http.MethodPost, "/api/outfits/1/items", token, map[string]interface{}{
		"postId": boots.ID,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.request(t, http.MethodGet, "/api/outfits/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Len(t, body["items"], 2)

	resp = ts.request(t, http.MethodPut, "/api/outfits/1", token, map[string]interface{}{
		"name": "Winter layers",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Winter layers", body["name"])
	assert.Len(t, body["items"], 2, "rename leaves items alone")

	resp = ts.request(t, http.MethodDelete, "/api/outfits/1/items/2", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.request(t, http.MethodGet, "/api/outfits", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	outfits := body["outfits"].([]interface{})
	require.Len(t, outfits, 1)
	assert.Len(t, outfits[0].(map[string]interface{})["items"], 1)

	resp = ts.request(t, http.MethodDelete, "/api/outfits/1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.request(t, http.MethodGet, "/api/outfits/1", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestOutfitValidation(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "stylist")

	resp := ts.request(t, http.MethodPost, "/api/outfits", token, map[string]interface{}{
		"items": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "name is required")
	_ = resp.Body.Close()

	resp = ts.request(t, http.MethodPost, "/api/outfits", token, map[string]interface{}{
		"name":  "Ghost outfit",
		"items": []map[string]interface{}{{"postId": 99}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "items must reference real listings")
	_ = resp.Body.Close()
}

func TestOutfitIsOwnerScoped(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.createUser(t, "owner")
	_, otherToken := ts.createUser(t, "other")
	post := ts.createPost(t, owner.ID)

	resp := ts.request(t, http.MethodPost, "/api/outfits", ownerToken, map[string]interface{}{
		"name":  "Private fit",
		"items": []map[string]interface{}{{"postId": post.ID}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Another user sees nothing, not even existence.
	resp = ts.request(t, http.MethodGet, "/api/outfits/1", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.request(t, http.MethodDelete, "/api/outfits/1", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
