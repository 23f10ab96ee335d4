package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"profilereview/internal/session"
	"profilereview/pkg/domain"
)

var _ session.Transport = (*Client)(nil)

func TestInvokeFailsFastWithoutURL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	err = c.Invoke(context.Background(), http.MethodGet, "  ", nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoURL)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestInvokeSendsLanguageCredentialsAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case "/echo":
			assert.Equal(t, "ro", r.Header.Get("Accept-Language"))
			assert.Equal(t, "Bearer t0k", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			cookie, err := r.Cookie("sid")
			if assert.NoError(t, err) {
				assert.Equal(t, "abc", cookie.Value)
			}
			assert.Equal(t, "1", r.URL.Query().Get("page"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_ = json.NewEncoder(w).Encode(map[string]string{"got": body["name"]})
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithStaticToken("t0k"))
	require.NoError(t, err)
	require.NoError(t, c.Post(context.Background(), "/login", nil, nil))

	var out map[string]string
	err = c.Patch(context.Background(), "echo", map[string]string{"name": "Ana"}, map[string][]string{"page": {"1"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Ana", out["got"])
}

func TestInvokeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"profile locked"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	err = c.Delete(context.Background(), "api/v1/profiles/x/pending", nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
	assert.Equal(t, "profile locked", statusErr.Message)
	assert.Contains(t, statusErr.Error(), "409")
}

func TestLanguageOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en-GB", r.Header.Get("Accept-Language"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tag, err := ParseLanguage("en-GB")
	require.NoError(t, err)
	c, err := New(srv.URL, WithLanguage(tag), WithRateLimit(100, 1))
	require.NoError(t, err)
	require.NoError(t, c.Get(context.Background(), "x", nil, nil))

	_, err = ParseLanguage("not a tag!")
	assert.Error(t, err)
	assert.Equal(t, language.Romanian, DefaultLanguage)
}

func TestProfileOperations(t *testing.T) {
	const email = "ana@example.com"
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodGet:
			assert.Equal(t, "true", r.URL.Query().Get("diff"))
			_ = json.NewEncoder(w).Encode(domain.ProfileSpecification{
				ProfileHeader: domain.ProfileHeader{Email: email, FirstName: "Ana"},
				Skills:        []domain.Skill{{ID: "s1", Name: "Go", Area: "backend", ItemState: domain.TagPersisted}},
			})
		case r.Method == http.MethodPut:
			var records []domain.ChangeRecord
			require.NoError(t, json.NewDecoder(r.Body).Decode(&records))
			assert.NotNil(t, records)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPatch && r.URL.Path == "/api/v1/skills":
			assert.Equal(t, email, r.URL.Query().Get("email"))
			var args domain.AddSkillArgs
			require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
			_ = json.NewEncoder(w).Encode(domain.Skill{ID: "srv-1", Name: args.Name, Area: args.Area, ItemState: domain.TagPatched})
		case r.Method == http.MethodPatch:
			_ = json.NewEncoder(w).Encode(domain.ProjectExperienceTransport{ID: "srv-2", ItemState: domain.TagPatched})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	ctx := context.Background()

	spec, err := c.FetchSpecification(ctx, email, true)
	require.NoError(t, err)
	assert.Equal(t, "Ana", spec.FirstName)
	require.Len(t, spec.Skills, 1)

	require.NoError(t, c.SubmitChangeLog(ctx, email, nil))
	require.NoError(t, c.AcceptPending(ctx, email))
	require.NoError(t, c.DiscardPending(ctx, email))

	skill, err := c.AddSkill(ctx, email, domain.AddSkillArgs{Name: "Rust", Area: "systems"})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", skill.ID)

	entry, err := c.AddProjectEntry(ctx, email, domain.AddProjectArgs{ProjectID: "p"})
	require.NoError(t, err)
	assert.Equal(t, "srv-2", entry.ID)

	assert.Equal(t, []string{
		"GET /api/v1/profiles/ana@example.com/specification",
		"PUT /api/v1/profiles/ana@example.com/changes",
		"POST /api/v1/profiles/ana@example.com/accept",
		"DELETE /api/v1/profiles/ana@example.com/pending",
		"PATCH /api/v1/skills",
		"PATCH /api/v1/project-experience",
	}, calls)
}
