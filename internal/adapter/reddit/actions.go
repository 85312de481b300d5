package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Actions implements the write side of the platform collaborator.
type Actions struct {
	client    *Client
	subreddit string
}

func NewActions(client *Client, subreddit string) *Actions {
	return &Actions{client: client, subreddit: subreddit}
}

// commentResponse is the api_type=json envelope of /api/comment.
type commentResponse struct {
	JSON struct {
		Errors [][]json.RawMessage `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

func (r commentResponse) err() error {
	if len(r.JSON.Errors) == 0 {
		return nil
	}
	raw, _ := json.Marshal(r.JSON.Errors)
	return fmt.Errorf("comment rejected: %s", raw)
}

// Reply posts body as a child of the thing named by fullname.
func (a *Actions) Reply(ctx context.Context, fullname, body string) error {
	form := url.Values{}
	form.Set("thing_id", fullname)
	form.Set("text", body)

	var resp commentResponse
	if err := a.client.postForm(ctx, "/api/comment", form, &resp); err != nil {
		return err
	}
	return resp.err()
}

// SelectFlair applies the flair template to the submission.
func (a *Actions) SelectFlair(ctx context.Context, submissionID, flairTemplateID string) error {
	form := url.Values{}
	form.Set("link", "t3_"+submissionID)
	form.Set("flair_template_id", flairTemplateID)
	return a.client.postForm(ctx, "/r/"+a.subreddit+"/api/selectflair", form, nil)
}

// PostComment creates a new top-level comment on the submission. With
// sticky set, the comment is additionally distinguished and pinned,
// which requires the bot account to moderate the subreddit.
func (a *Actions) PostComment(ctx context.Context, submissionID, body string, sticky bool) error {
	form := url.Values{}
	form.Set("thing_id", "t3_"+submissionID)
	form.Set("text", body)

	var resp commentResponse
	if err := a.client.postForm(ctx, "/api/comment", form, &resp); err != nil {
		return err
	}
	if err := resp.err(); err != nil {
		return err
	}
	if !sticky {
		return nil
	}

	things := resp.JSON.Data.Things
	if len(things) == 0 {
		return fmt.Errorf("comment created but fullname missing from response")
	}
	var created commentData
	if err := json.Unmarshal(things[0].Data, &created); err != nil {
		return fmt.Errorf("decoding created comment: %w", err)
	}

	pin := url.Values{}
	pin.Set("id", created.Name)
	pin.Set("how", "yes")
	pin.Set("sticky", "true")
	return a.client.postForm(ctx, "/api/distinguish", pin, nil)
}
