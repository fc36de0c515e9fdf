package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/badgedex/internal/model"
)

type fakeAPI struct {
	userStatus   int
	searchStatus int
	reposStatus  int
	requests     atomic.Int32
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "badgedex", r.Header.Get("User-Agent"))
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		fmt.Fprint(w, `{"login":"octo","name":"Octo Cat","avatar_url":"https://x/a.png","public_repos":8,"followers":1200}`)
	})
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		assert.Equal(t, "author:octo type:pr is:merged", r.URL.Query().Get("q"))
		if f.searchStatus != 0 {
			w.WriteHeader(f.searchStatus)
			return
		}
		fmt.Fprint(w, `{"total_count":17,"items":[]}`)
	})
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "owner", r.URL.Query().Get("type"))
		if f.reposStatus != 0 {
			w.WriteHeader(f.reposStatus)
			return
		}
		fmt.Fprint(w, `[{"stargazers_count":10},{"stargazers_count":5},{}]`)
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(append([]Option{WithBaseURL(srv.URL)}, opts...)...)
}

func TestFetchUserStats(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	got, err := c.FetchUserStats(context.Background(), " octo ")
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{
		Username:    "octo",
		DisplayName: "Octo Cat",
		AvatarURL:   "https://x/a.png",
		PublicRepos: 8,
		Followers:   1200,
		MergedPRs:   17,
		TotalStars:  15,
	}, got)
	assert.EqualValues(t, 3, api.requests.Load())
}

func TestFetchUserStatsNotFound(t *testing.T) {
	c := newTestClient(t, &fakeAPI{userStatus: http.StatusNotFound})
	_, err := c.FetchUserStats(context.Background(), "octo")
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, "User not found", UserMessage(err))
}

func TestFetchUserStatsProfileFailure(t *testing.T) {
	c := newTestClient(t, &fakeAPI{userStatus: http.StatusForbidden})
	_, err := c.FetchUserStats(context.Background(), "octo")
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, "Failed to fetch user profile", UserMessage(err))
}

func TestFetchUserStatsSearchFailureFailsFetch(t *testing.T) {
	c := newTestClient(t, &fakeAPI{searchStatus: http.StatusNotFound})
	_, err := c.FetchUserStats(context.Background(), "octo")
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.False(t, errors.Is(err, ErrUserNotFound))
}

func TestFetchUserStatsStarsDegradeToZero(t *testing.T) {
	c := newTestClient(t, &fakeAPI{reposStatus: http.StatusInternalServerError})
	got, err := c.FetchUserStats(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, 17, got.MergedPRs)
	assert.Equal(t, 0, got.TotalStars)
}

func TestFetchUserStatsInvalidLoginSkipsRequest(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)
	for _, name := range []string{"", "-octo", "octo-", "oc--to", "octo/../x", "a b"} {
		_, err := c.FetchUserStats(context.Background(), name)
		require.ErrorIs(t, err, ErrUserNotFound, name)
	}
	assert.EqualValues(t, 0, api.requests.Load())
}

func TestFetchUserStatsSendsToken(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken(" ghp_x "))
	_, err := c.FetchUserStats(context.Background(), "octo")
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, "Bearer ghp_x", auth.Load())
}

func TestValidLogin(t *testing.T) {
	assert.True(t, ValidLogin("a"))
	assert.True(t, ValidLogin("octo-cat"))
	assert.True(t, ValidLogin("A1b2"))
	assert.False(t, ValidLogin("octo_cat"))
	assert.False(t, ValidLogin("x123456789012345678901234567890123456789"))
}
