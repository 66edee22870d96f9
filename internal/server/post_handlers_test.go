package server

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"gearswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostWithImages(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "seller")

	resp := ts.request(t, http.MethodPost, "/api/posts", token, map[string]interface{}{
		"price":        42.00,
		"description":  "Corduroy overshirt",
		"size":         "L",
		"category":     "tops",
		"clothingType": "shirt",
		"condition":    "good",
		"tags":         []string{"corduroy", "autumn"},
		"images":       []string{pngBase64(), pngBase64()},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Corduroy overshirt", body["description"])
	assert.Len(t, body["tags"], 2)
	assert.Len(t, body["images"], 2)

	var count int64
	ts.db.Model(&models.PostImage{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestCreatePostValidation(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "seller")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing fields", map[string]interface{}{"price": 10.0}},
		{"non-positive price", map[string]interface{}{
			"price": 0.0, "description": "d", "size": "M", "category": "c", "clothingType": "t",
		}},
		{"too many images", map[string]interface{}{
			"price": 10.0, "description": "d", "size": "M", "category": "c", "clothingType": "t",
			"images": []string{pngBase64(), pngBase64(), pngBase64(), pngBase64(), pngBase64(), pngBase64()},
		}},
		{"bad image payload", map[string]interface{}{
			"price": 10.0, "description": "d", "size": "M", "category": "c", "clothingType": "t",
			"images": []string{"aGVsbG8="},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.request(t, http.MethodPost, "/api/posts", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestGetPostsEnvelope(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "lister")
	for i := 0; i < 5; i++ {
		ts.createPost(t, user.ID)
	}

	resp := ts.request(t, http.MethodGet, "/api/posts?page=2&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 2, body["page_size"])
	assert.EqualValues(t, 5, body["total_posts"])
	assert.EqualValues(t, 3, body["total_pages"])
	assert.Len(t, body["posts"], 2)
}

func TestFilterPosts(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "filtering")
	ts.createPost(t, user.ID, func(p *models.Post) { p.ClothingType = "jacket"; p.Price = 80 })
	ts.createPost(t, user.ID, func(p *models.Post) { p.ClothingType = "shirt"; p.Price = 15 })

	resp := ts.request(t, http.MethodGet, "/api/posts/filter?clothingType=jacket", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total_posts"])

	resp = ts.request(t, http.MethodGet, "/api/posts/filter?maxPrice=20", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total_posts"])

	resp = ts.request(t, http.MethodGet, "/api/posts/filter?tag=vintage", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.EqualValues(t, 2, body["total_posts"])
}

func TestGetPostImageRawBytes(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "seller")
	post := ts.createPost(t, user.ID)
	image := &models.PostImage{PostID: post.ID, ImageData: pngBytes, ContentType: "image/png"}
	require.NoError(t, ts.db.Create(image).Error)

	resp := ts.request(t, http.MethodGet, "/api/posts/1/images/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, pngBytes, raw)
}

func TestUpdatePostSparseAndImages(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "editor")
	post := ts.createPost(t, user.ID)
	image := &models.PostImage{PostID: post.ID, ImageData: pngBytes, ContentType: "image/png"}
	require.NoError(t, ts.db.Create(image).Error)

	resp := ts.request(t, http.MethodPut, "/api/posts/1", token, map[string]interface{}{
		"price":          30.0,
		"removeImageIds": []uint{image.ID},
		"addImages":      []string{pngBase64()},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.EqualValues(t, 30, body["price"])
	assert.Equal(t, "Vintage denim jacket", body["description"])
	assert.Len(t, body["images"], 1)
}

func TestPostOwnershipEnforced(t *testing.T) {
	ts := newTestServer(t)
	owner, _ := ts.createUser(t, "owner")
	_, token := ts.createUser(t, "other")
	ts.createPost(t, owner.ID)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/posts/1"},
		{http.MethodDelete, "/api/posts/1"},
		{http.MethodPost, "/api/posts/1/sold"},
		{http.MethodPost, "/api/posts/1/images"},
	} {
		resp := ts.request(t, tc.method, tc.path, token, map[string]interface{}{})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, tc.method+" "+tc.path)
		_ = resp.Body.Close()
	}
}

func TestMarkPostSold(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "seller")
	ts.createPost(t, user.ID)

	resp := ts.request(t, http.MethodPost, "/api/posts/1/sold", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["isSold"])

	var post models.Post
	require.NoError(t, ts.db.First(&post, 1).Error)
	assert.True(t, post.IsSold)

	// Sold listings can be marked available again.
	resp = ts.request(t, http.MethodPost, "/api/posts/1/sold", token, map[string]interface{}{"sold": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
	require.NoError(t, ts.db.First(&post, 1).Error)
	assert.False(t, post.IsSold)
}

func TestAddPostImageCap(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "hoarder")
	post := ts.createPost(t, user.ID)
	for i := 0; i < 5; i++ {
		require.NoError(t, ts.db.Create(&models.PostImage{
			PostID: post.ID, ImageData: pngBytes, ContentType: "image/png",
		}).Error)
	}

	resp := ts.request(t, http.MethodPost, "/api/posts/1/images", token, map[string]string{
		"image": pngBase64(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "at most 5 images")
}

func TestGetPostsSurvivesImageLookupFailure(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "lister")
	ts.createPost(t, user.ID)

	// A broken image store degrades the listing to image-less, not a 500.
	require.NoError(t, ts.db.Migrator().DropTable(&models.PostImage{}))

	resp := ts.request(t, http.MethodGet, "/api/posts", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.NotContains(t, posts[0].(map[string]interface{}), "image")
}

func TestDeletePostCascades(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "remover")
	post := ts.createPost(t, user.ID)
	require.NoError(t, ts.db.Create(&models.PostImage{
		PostID: post.ID, ImageData: pngBytes, ContentType: "image/png",
	}).Error)

	resp := ts.request(t, http.MethodDelete, "/api/posts/1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var posts, images int64
	ts.db.Model(&models.Post{}).Count(&posts)
	ts.db.Model(&models.PostImage{}).Count(&images)
	assert.Zero(t, posts)
	assert.Zero(t, images)
}

func TestGetPostIncludesAllImages(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "viewer")
	post := ts.createPost(t, user.ID)
	for i := 0; i < 2; i++ {
		require.NoError(t, ts.db.Create(&models.PostImage{
			PostID: post.ID, ImageData: pngBytes, ContentType: "image/png",
		}).Error)
	}

	resp := ts.request(t, http.MethodGet, "/api/posts/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "viewer", body["username"])

	images := body["images"].([]interface{})
	require.Len(t, images, 2)
	data := images[0].(map[string]interface{})["data"].(string)
	assert.True(t, strings.HasPrefix(data, "data:image/png;base64,"))
}
