package reddit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// moderatorCacheTTL bounds how stale the moderator set may get. Mod
// rosters change rarely; an hour of staleness is acceptable.
const moderatorCacheTTL = time.Hour

// Directory serves subreddit membership lookups: the moderator roster
// and per-user flair.
type Directory struct {
	client *Client

	mu        sync.Mutex
	mods      map[string]map[string]struct{}
	fetchedAt map[string]time.Time
}

func NewDirectory(client *Client) *Directory {
	return &Directory{
		client:    client,
		mods:      make(map[string]map[string]struct{}),
		fetchedAt: make(map[string]time.Time),
	}
}

// Moderators returns the subreddit's moderator set, cached for up to an
// hour.
func (d *Directory) Moderators(ctx context.Context, subreddit string) (map[string]struct{}, error) {
	d.mu.Lock()
	if mods, ok := d.mods[subreddit]; ok && d.client.clock.Now().Sub(d.fetchedAt[subreddit]) < moderatorCacheTTL {
		d.mu.Unlock()
		return mods, nil
	}
	d.mu.Unlock()

	var resp struct {
		Data struct {
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := d.client.get(ctx, "/r/"+subreddit+"/about/moderators", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching moderators of r/%s: %w", subreddit, err)
	}

	mods := make(map[string]struct{}, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		mods[child.Name] = struct{}{}
	}

	d.mu.Lock()
	d.mods[subreddit] = mods
	d.fetchedAt[subreddit] = d.client.clock.Now()
	d.mu.Unlock()
	return mods, nil
}

// UserFlair reads the user's current flair text in the subreddit. A
// user without flair yields the empty string.
func (d *Directory) UserFlair(ctx context.Context, subreddit, username string) (string, error) {
	var resp struct {
		Users []struct {
			User      string `json:"user"`
			FlairText string `json:"flair_text"`
		} `json:"users"`
	}
	query := url.Values{"name": {username}}
	if err := d.client.get(ctx, "/r/"+subreddit+"/api/flairlist", query, &resp); err != nil {
		return "", fmt.Errorf("fetching flair of u/%s: %w", username, err)
	}
	if len(resp.Users) == 0 {
		return "", nil
	}
	return resp.Users[0].FlairText, nil
}

// SetUserFlair replaces the user's flair text in the subreddit.
func (d *Directory) SetUserFlair(ctx context.Context, subreddit, username, label string) error {
	form := url.Values{}
	form.Set("name", username)
	form.Set("text", label)
	if err := d.client.postForm(ctx, "/r/"+subreddit+"/api/flair", form, nil); err != nil {
		return fmt.Errorf("setting flair of u/%s: %w", username, err)
	}
	return nil
}
