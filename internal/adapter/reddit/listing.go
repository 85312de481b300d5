package reddit

import (
	"encoding/json"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// thing is the reddit envelope: a kind tag (t1 comment, t3 submission,
// more for collapsed children, Listing for pages) plus a kind-specific
// payload.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
	Before   string  `json:"before"`
	After    string  `json:"after"`
}

// commentData is the t1 payload, restricted to the fields the bot reads.
// Replies is either an empty string or a nested Listing, so it stays raw
// until someone walks the tree.
type commentData struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Author    string          `json:"author"`
	Body      string          `json:"body"`
	ParentID  string          `json:"parent_id"`
	LinkID    string          `json:"link_id"`
	Subreddit string          `json:"subreddit"`
	Replies   json.RawMessage `json:"replies"`
}

// submissionData is the t3 payload.
type submissionData struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Author        string `json:"author"`
	Title         string `json:"title"`
	SelfText      string `json:"selftext"`
	Subreddit     string `json:"subreddit"`
	LinkFlairText string `json:"link_flair_text"`
}

// moreData is the payload of a collapsed "load more comments" stub.
type moreData struct {
	Children []string `json:"children"`
}

func (c commentData) toComment() domain.Comment {
	return domain.Comment{
		ID:             c.ID,
		Author:         c.Author,
		Body:           c.Body,
		ParentFullname: c.ParentID,
		SubmissionID:   shortID(c.LinkID),
		Subreddit:      c.Subreddit,
	}
}

func (s submissionData) toSubmission(flair FlairMapper) domain.Submission {
	return domain.Submission{
		ID:        s.ID,
		Author:    s.Author,
		Title:     s.Title,
		Body:      s.SelfText,
		Subreddit: s.Subreddit,
		Flair:     flair.State(s.LinkFlairText),
	}
}

// listingOf decodes a Listing thing into its children.
func listingOf(raw json.RawMessage) ([]thing, error) {
	if len(raw) == 0 || string(raw) == `""` || string(raw) == "null" {
		return nil, nil
	}
	var t thing
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	var data listingData
	if err := json.Unmarshal(t.Data, &data); err != nil {
		return nil, err
	}
	return data.Children, nil
}

// shortID strips the t1_/t3_ type prefix from a fullname.
func shortID(fullname string) string {
	if len(fullname) > 3 && fullname[2] == '_' {
		return fullname[3:]
	}
	return fullname
}
