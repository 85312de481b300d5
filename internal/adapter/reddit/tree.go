package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// morechildrenBatch is the API's per-call ID cap.
const morechildrenBatch = 100

// Trees opens submission comment trees. Children are materialized
// lazily: the initial fetch returns whatever reddit inlined, and
// collapsed "load more" stubs are only resolved when a walk actually
// descends into them.
type Trees struct {
	client *Client
}

func NewTrees(client *Client) *Trees {
	return &Trees{client: client}
}

func (t *Trees) Tree(ctx context.Context, submissionID string) ([]domain.CommentNode, error) {
	// the endpoint returns a two-element array: the submission listing
	// and the comment listing
	var pages []thing
	query := url.Values{"limit": {"500"}}
	if err := t.client.get(ctx, "/comments/"+submissionID, query, &pages); err != nil {
		return nil, fmt.Errorf("fetching comment tree of %s: %w", submissionID, err)
	}
	if len(pages) < 2 {
		return nil, fmt.Errorf("comment tree of %s: unexpected response shape", submissionID)
	}

	var data listingData
	if err := json.Unmarshal(pages[1].Data, &data); err != nil {
		return nil, fmt.Errorf("decoding comment tree of %s: %w", submissionID, err)
	}
	return t.wrap(ctx, data.Children, "t3_"+submissionID, "t3_"+submissionID)
}

// wrap converts listing children into nodes, resolving any "more" stub
// found among them.
func (t *Trees) wrap(ctx context.Context, children []thing, linkFullname, parentFullname string) ([]domain.CommentNode, error) {
	var nodes []domain.CommentNode
	for _, child := range children {
		switch child.Kind {
		case "t1":
			var c commentData
			if err := json.Unmarshal(child.Data, &c); err != nil {
				return nil, fmt.Errorf("decoding tree comment: %w", err)
			}
			nodes = append(nodes, &lazyNode{trees: t, linkFullname: linkFullname, data: c})
		case "more":
			var more moreData
			if err := json.Unmarshal(child.Data, &more); err != nil {
				return nil, fmt.Errorf("decoding more stub: %w", err)
			}
			expanded, err := t.expandMore(ctx, linkFullname, parentFullname, more.Children)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, expanded...)
		}
	}
	return nodes, nil
}

// expandMore resolves collapsed children through /api/morechildren. The
// call returns a flat list, so the subtree is rebuilt from parent
// fullnames before nodes are handed back.
func (t *Trees) expandMore(ctx context.Context, linkFullname, parentFullname string, ids []string) ([]domain.CommentNode, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	byParent := make(map[string][]commentData)
	for start := 0; start < len(ids); start += morechildrenBatch {
		end := min(start+morechildrenBatch, len(ids))

		var resp struct {
			JSON struct {
				Data struct {
					Things []thing `json:"things"`
				} `json:"data"`
			} `json:"json"`
		}
		form := url.Values{}
		form.Set("link_id", linkFullname)
		form.Set("children", strings.Join(ids[start:end], ","))
		if err := t.client.postForm(ctx, "/api/morechildren", form, &resp); err != nil {
			return nil, fmt.Errorf("expanding comment tree: %w", err)
		}

		for _, item := range resp.JSON.Data.Things {
			if item.Kind != "t1" {
				continue
			}
			var c commentData
			if err := json.Unmarshal(item.Data, &c); err != nil {
				return nil, fmt.Errorf("decoding expanded comment: %w", err)
			}
			byParent[c.ParentID] = append(byParent[c.ParentID], c)
		}
	}

	direct := byParent[parentFullname]
	nodes := make([]domain.CommentNode, 0, len(direct))
	for _, c := range direct {
		nodes = append(nodes, &materializedNode{data: c, byParent: byParent})
	}
	return nodes, nil
}

// lazyNode wraps a comment whose replies came inlined in the tree fetch
// as raw JSON, decoded only when the walk descends.
type lazyNode struct {
	trees        *Trees
	linkFullname string
	data         commentData
}

func (n *lazyNode) Comment() domain.Comment { return n.data.toComment() }

func (n *lazyNode) Replies(ctx context.Context) ([]domain.CommentNode, error) {
	children, err := listingOf(n.data.Replies)
	if err != nil {
		return nil, fmt.Errorf("decoding replies of %s: %w", n.data.ID, err)
	}
	return n.trees.wrap(ctx, children, n.linkFullname, n.data.Name)
}

// materializedNode is a comment recovered from a morechildren expansion;
// its whole subtree is already resident in byParent.
type materializedNode struct {
	data     commentData
	byParent map[string][]commentData
}

func (n *materializedNode) Comment() domain.Comment { return n.data.toComment() }

func (n *materializedNode) Replies(context.Context) ([]domain.CommentNode, error) {
	direct := n.byParent[n.data.Name]
	nodes := make([]domain.CommentNode, 0, len(direct))
	for _, c := range direct {
		nodes = append(nodes, &materializedNode{data: c, byParent: n.byParent})
	}
	return nodes, nil
}
