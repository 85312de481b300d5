package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// Wiki reads and replaces whole wiki documents of one subreddit.
type Wiki struct {
	client    *Client
	subreddit string
}

func NewWiki(client *Client, subreddit string) *Wiki {
	return &Wiki{client: client, subreddit: subreddit}
}

func (w *Wiki) Get(ctx context.Context, page string) (string, time.Time, error) {
	var resp struct {
		Data struct {
			ContentMD    string  `json:"content_md"`
			RevisionDate float64 `json:"revision_date"`
		} `json:"data"`
	}
	err := w.client.get(ctx, "/r/"+w.subreddit+"/wiki/"+page, nil, &resp)
	if IsStatus(err, http.StatusNotFound) {
		return "", time.Time{}, fmt.Errorf("wiki page %q: %w", page, domain.ErrPageNotFound)
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("fetching wiki page %q: %w", page, err)
	}
	revised := time.Unix(int64(resp.Data.RevisionDate), 0).UTC()
	return resp.Data.ContentMD, revised, nil
}

func (w *Wiki) Put(ctx context.Context, page, content, reason string) error {
	form := url.Values{}
	form.Set("page", page)
	form.Set("content", content)
	form.Set("reason", reason)
	if err := w.client.postForm(ctx, "/r/"+w.subreddit+"/api/wiki/edit", form, nil); err != nil {
		return fmt.Errorf("writing wiki page %q: %w", page, err)
	}
	return nil
}

// revisionProbeInterval spaces out Revised calls so per-event snapshot
// checks don't each cost an API request.
const revisionProbeInterval = 5 * time.Minute

// WikiPage adapts one named page of a Wiki to the alias dataset source
// interface, so the loader can hot-reload from it. Revision probes are
// cached to keep snapshot checks off the rate limiter.
type WikiPage struct {
	wiki *Wiki
	page string

	lastProbe   time.Time
	lastRevised time.Time
}

func NewWikiPage(wiki *Wiki, page string) *WikiPage {
	return &WikiPage{wiki: wiki, page: page}
}

func (p *WikiPage) Revised() (time.Time, error) {
	now := p.wiki.client.clock.Now()
	if !p.lastProbe.IsZero() && now.Sub(p.lastProbe) < revisionProbeInterval {
		return p.lastRevised, nil
	}
	_, revised, err := p.wiki.Get(context.Background(), p.page)
	if err != nil {
		return time.Time{}, err
	}
	p.lastProbe = now
	p.lastRevised = revised
	return revised, nil
}

func (p *WikiPage) Fetch() ([]byte, error) {
	content, _, err := p.wiki.Get(context.Background(), p.page)
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}
