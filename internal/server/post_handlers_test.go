package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostAndFetch(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "ada", "ada@example.com")

	post := ts.createPost(t, cookie, "Street musicians at dusk", "40.7", "-74.0")
	require.NotEmpty(t, post["id"])
	assert.Equal(t, "Street musicians at dusk", post["title"])

	audioURL, _ := post["audio_url"].(string)
	require.True(t, strings.HasPrefix(audioURL, "/audio/"), "audio_url %q", audioURL)

	// The uploaded blob streams back from the audio endpoint.
	req := httptest.NewRequest(http.MethodGet, audioURL, nil)
	resp := ts.do(t, req)
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fake audio bytes", string(data))
	assert.Equal(t, "audio/webm", resp.Header.Get("Content-Type"))

	// Post detail includes the author and empty comments.
	req = httptest.NewRequest(http.MethodGet, "/api/posts/"+post["id"].(string), nil)
	resp = ts.do(t, req)
	var detail struct {
		Post struct {
			ID   string `json:"id"`
			User struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"post"`
		Comments []any `json:"comments"`
	}
	decodeBody(t, resp, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada", detail.Post.User.Username)
	assert.Empty(t, detail.Comments)
}

func TestCreatePostRejectsNonAudio(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "ada", "ada@example.com")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="audio"; filename="cat.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, _ = part.Write([]byte("png bytes"))
	require.NoError(t, w.WriteField("title", "not audio"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)

	resp := ts.do(t, req)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, ts.store.Len())
}

func TestCreatePostRequiresTitle(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "ada", "ada@example.com")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="audio"; filename="clip.webm"`},
		"Content-Type":        {"audio/webm"},
	})
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake audio bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)

	resp := ts.do(t, req)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleLike(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "ada", "ada@example.com")
	post := ts.createPost(t, cookie, "Rain on tin roof", "", "")
	postID := post["id"].(string)

	var result struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likes_count"`
	}

	req := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/like", nil)
	req.AddCookie(cookie)
	resp := ts.do(t, req)
	decodeBody(t, resp, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikesCount)

	req = httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/like", nil)
	req.AddCookie(cookie)
	resp = ts.do(t, req)
	decodeBody(t, resp, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.LikesCount)
}

func TestLikeUnknownPost(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "ada", "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/posts/no-such-post/like", nil)
	req.AddCookie(cookie)
	resp := ts.do(t, req)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComments(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "ada", "ada@example.com")
	post := ts.createPost(t, cookie, "Harbor foghorns", "", "")
	postID := post["id"].(string)

	body, _ := json.Marshal(map[string]string{"content": "I know this exact spot"})
	req := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	resp := ts.do(t, req)
	var created struct {
		Comment struct {
			ID      string `json:"id"`
			Content string `json:"content"`
			User    struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"comment"`
	}
	decodeBody(t, resp, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "I know this exact spot", created.Comment.Content)
	assert.Equal(t, "ada", created.Comment.User.Username)

	// Comments are publicly listable.
	req = httptest.NewRequest(http.MethodGet, "/api/posts/"+postID+"/comments", nil)
	resp = ts.do(t, req)
	var listed struct {
		Comments []struct {
			Content string `json:"content"`
		} `json:"comments"`
	}
	decodeBody(t, resp, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed.Comments, 1)

	// Blank comments are rejected.
	body, _ = json.Marshal(map[string]string{"content": "   "})
	req = httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	resp = ts.do(t, req)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTimelineAndMap(t *testing.T) {
	ts := newTestServer(t)
	ada := ts.register(t, "ada", "ada@example.com")
	bob := ts.register(t, "bob", "bob@example.com")
	eve := ts.register(t, "eve", "eve@example.com")

	ts.createPost(t, ada, "Ada geotagged", "51.5", "-0.12")
	ts.createPost(t, bob, "Bob no coords", "", "")
	ts.createPost(t, eve, "Eve geotagged", "48.85", "2.35")

	// Ada follows Bob but not Eve.
	req := httptest.NewRequest(http.MethodPost, "/api/profile/bob/follow", nil)
	req.AddCookie(ada)
	resp := ts.do(t, req)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/timeline", nil)
	req.AddCookie(ada)
	resp = ts.do(t, req)
	var timeline struct {
		Posts []struct {
			Title string `json:"title"`
		} `json:"posts"`
	}
	decodeBody(t, resp, &timeline)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	titles := make([]string, 0, len(timeline.Posts))
	for _, p := range timeline.Posts {
		titles = append(titles, p.Title)
	}
	assert.ElementsMatch(t, []string{"Ada geotagged", "Bob no coords"}, titles,
		"timeline holds own posts plus followees, not strangers")

	// The map shows only geotagged posts, from everyone.
	resp = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/map", nil))
	var mapped struct {
		Posts []struct {
			Title     string   `json:"title"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"posts"`
	}
	decodeBody(t, resp, &mapped)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, mapped.Posts, 2)
	for _, p := range mapped.Posts {
		assert.NotNil(t, p.Latitude)
		assert.NotNil(t, p.Longitude)
	}
}
