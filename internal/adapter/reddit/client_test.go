package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Username:     "NothingTechBot",
		Password:     "hunter2",
	}, clockwork.NewRealClock())
	client.oauthURL = server.URL + "/api/v1/access_token"
	client.apiURL = server.URL
	client.limiter = rate.NewLimiter(rate.Inf, 0)
	client.http.RetryMax = 0
	return client
}

func grantToken(w http.ResponseWriter) {
	fmt.Fprint(w, `{"access_token":"tok-1","expires_in":3600}`)
}

func TestTokenGrantSendsPasswordWithOTP(t *testing.T) {
	var form url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", user)
		require.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		grantToken(w)
	})
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"kind":"Listing","data":{"children":[]}}`)
	})

	client := testClient(t, mux)
	client.creds.OTP = "123456"

	var page thing
	require.NoError(t, client.get(context.Background(), "/api/info", nil, &page))
	require.Equal(t, "password", form.Get("grant_type"))
	require.Equal(t, "NothingTechBot", form.Get("username"))
	require.Equal(t, "hunter2:123456", form.Get("password"))
}

func TestTokenIsReusedUntilExpiry(t *testing.T) {
	var grants atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		grants.Add(1)
		grantToken(w)
	})
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"kind":"Listing","data":{"children":[]}}`)
	})

	client := testClient(t, mux)
	var page thing
	require.NoError(t, client.get(context.Background(), "/api/info", nil, &page))
	require.NoError(t, client.get(context.Background(), "/api/info", nil, &page))
	require.Equal(t, int32(1), grants.Load())
}

func TestWikiGetTranslatesMissingPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) { grantToken(w) })
	mux.HandleFunc("/r/nothingtech/wiki/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"reason":"PAGE_NOT_CREATED"}`, http.StatusNotFound)
	})

	wiki := NewWiki(testClient(t, mux), "nothingtech")
	_, _, err := wiki.Get(context.Background(), "leaderboard")
	require.ErrorIs(t, err, domain.ErrPageNotFound)
}

func TestWikiRoundTrip(t *testing.T) {
	var putForm url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) { grantToken(w) })
	mux.HandleFunc("/r/nothingtech/wiki/botconfig", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"content_md":"footer = beep","revision_date":1700000000}}`)
	})
	mux.HandleFunc("/r/nothingtech/api/wiki/edit", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		putForm = r.PostForm
		fmt.Fprint(w, `{}`)
	})

	wiki := NewWiki(testClient(t, mux), "nothingtech")

	content, revised, err := wiki.Get(context.Background(), "botconfig")
	require.NoError(t, err)
	require.Equal(t, "footer = beep", content)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), revised)

	require.NoError(t, wiki.Put(context.Background(), "botconfig", "footer = boop", "update"))
	require.Equal(t, "botconfig", putForm.Get("page"))
	require.Equal(t, "footer = boop", putForm.Get("content"))
	require.Equal(t, "update", putForm.Get("reason"))
}

func TestActionsReplyReportsAPIErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) { grantToken(w) })
	mux.HandleFunc("/api/comment", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "t1_abc", r.PostForm.Get("thing_id"))
		fmt.Fprint(w, `{"json":{"errors":[["RATELIMIT","try again","ratelimit"]]}}`)
	})

	actions := NewActions(testClient(t, mux), "nothingtech")
	err := actions.Reply(context.Background(), "t1_abc", "hello")
	require.ErrorContains(t, err, "RATELIMIT")
}

func TestActionsPostCommentStickyDistinguishes(t *testing.T) {
	var pinned url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) { grantToken(w) })
	mux.HandleFunc("/api/comment", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"new1","name":"t1_new1"}}]}}}`)
	})
	mux.HandleFunc("/api/distinguish", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		pinned = r.PostForm
		fmt.Fprint(w, `{}`)
	})

	actions := NewActions(testClient(t, mux), "nothingtech")
	require.NoError(t, actions.PostComment(context.Background(), "s1", "best answer", true))
	require.Equal(t, "t1_new1", pinned.Get("id"))
	require.Equal(t, "true", pinned.Get("sticky"))
}

func TestDirectoryModeratorsAreCached(t *testing.T) {
	var fetches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) { grantToken(w) })
	mux.HandleFunc("/r/nothingtech/about/moderators", func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		fmt.Fprint(w, `{"data":{"children":[{"name":"mod_one"},{"name":"mod_two"}]}}`)
	})

	dir := NewDirectory(testClient(t, mux))

	mods, err := dir.Moderators(context.Background(), "nothingtech")
	require.NoError(t, err)
	require.Contains(t, mods, "mod_one")

	_, err = dir.Moderators(context.Background(), "nothingtech")
	require.NoError(t, err)
	require.Equal(t, int32(1), fetches.Load())
}

func TestCommentFeedSkipsBacklogAndEnriches(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) { grantToken(w) })
	mux.HandleFunc("/r/nothingtech/comments", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			// backlog present before the bot started
			fmt.Fprint(w, `{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"old","name":"t1_old","author":"a","body":"old","parent_id":"t3_s1","link_id":"t3_s1","subreddit":"nothingtech"}}
			]}}`)
			return
		}
		fmt.Fprint(w, `{"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"id":"new","name":"t1_new","author":"op_user","body":"!thanks","parent_id":"t1_helper","link_id":"t3_s1","subreddit":"nothingtech"}},
			{"kind":"t1","data":{"id":"old","name":"t1_old","author":"a","body":"old","parent_id":"t3_s1","link_id":"t3_s1","subreddit":"nothingtech"}}
		]}}`)
	})
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "t1_helper,t3_s1", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"id":"helper","name":"t1_helper","author":"helper_user","body":"try this"}},
			{"kind":"t3","data":{"id":"s1","name":"t3_s1","author":"op_user","link_flair_text":"Support"}}
		]}}`)
	})

	feed := NewCommentFeed(testClient(t, mux), "nothingtech", FlairMapper{SupportText: "Support", SolvedText: "Solved"})
	feed.pollInterval = time.Millisecond

	ev, err := feed.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "new", ev.ID)
	require.Equal(t, "op_user", ev.Author)
	require.Equal(t, "helper_user", ev.ParentAuthor)
	require.Equal(t, "try this", ev.ParentBody)
	require.Equal(t, "op_user", ev.SubmissionAuthor)
	require.Equal(t, domain.FlairSupport, ev.SubmissionFlair)
}

func TestTreeWalksInlineAndMoreChildren(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) { grantToken(w) })
	mux.HandleFunc("/comments/s1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"s1"}}]}},
			{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"r1","name":"t1_r1","author":"op_user","body":"!thanks","parent_id":"t3_s1","link_id":"t3_s1",
					"replies":{"kind":"Listing","data":{"children":[
						{"kind":"more","data":{"children":["deep1"]}}
					]}}}}
			]}}]`)
	})
	mux.HandleFunc("/api/morechildren", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "t3_s1", r.PostForm.Get("link_id"))
		require.Equal(t, "deep1", r.PostForm.Get("children"))
		fmt.Fprint(w, `{"json":{"data":{"things":[
			{"kind":"t1","data":{"id":"deep1","name":"t1_deep1","author":"NothingTechBot","body":"Thanks registered for u/helper_user","parent_id":"t1_r1","link_id":"t3_s1"}}
		]}}}`)
	})

	trees := NewTrees(testClient(t, mux))
	roots, err := trees.Tree(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, "op_user", roots[0].Comment().Author)

	replies, err := roots[0].Replies(context.Background())
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, "Thanks registered for u/helper_user", replies[0].Comment().Body)
}

func TestListingOfToleratesEmptyReplies(t *testing.T) {
	for name, raw := range map[string]string{
		"empty string": `""`,
		"null":         `null`,
		"absent":       ``,
	} {
		t.Run(name, func(t *testing.T) {
			children, err := listingOf(json.RawMessage(raw))
			require.NoError(t, err)
			require.Empty(t, children)
		})
	}
}
