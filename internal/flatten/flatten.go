// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flatten collapses nested conversation trees into flat per-author
// fragment lists and derives engagement metrics from them.
package flatten

import (
	"fmt"
	"sort"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

// sentinelAuthors are author values that mean the author is absent. Nodes
// with a sentinel author contribute no fragment, but their reply subtrees
// are still traversed for descendants' own fragments.
var sentinelAuthors = map[string]bool{
	"":          true,
	"[deleted]": true,
	"[removed]": true,
}

// Flatten collapses a batch of posts and their reply trees into a mapping
// from author to fragments. Authors whose every node was deleted do not
// appear as keys. Depths are recomputed during traversal: posts at 0, each
// reply one deeper than its parent, regardless of what the raw data claims.
func Flatten(posts []types.Post) map[string][]types.ContentFragment {
	contents := make(map[string][]types.ContentFragment)

	for _, post := range posts {
		if !sentinelAuthors[post.Author] {
			contents[post.Author] = append(contents[post.Author], types.ContentFragment{
				Author:            post.Author,
				Content:           fmt.Sprintf("Title: %s\n%s", post.Title, post.Text),
				Score:             post.Score,
				Depth:             0,
				ThreadID:          post.ID,
				Community:         post.Community,
				CommunityCategory: post.CommunityCategory,
			})
		}

		// Explicit worklist instead of recursion: pathological threads can
		// nest thousands of levels deep.
		type node struct {
			comment  types.Comment
			depth    int
			parentID string
		}
		stack := make([]node, 0, len(post.Comments))
		for i := len(post.Comments) - 1; i >= 0; i-- {
			stack = append(stack, node{post.Comments[i], 1, post.ID})
		}

		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !sentinelAuthors[n.comment.Author] {
				parent := n.comment.ParentID
				if parent == "" {
					parent = n.parentID
				}
				contents[n.comment.Author] = append(contents[n.comment.Author], types.ContentFragment{
					Author:            n.comment.Author,
					Content:           n.comment.Text,
					Score:             n.comment.Score,
					Depth:             n.depth,
					ParentID:          parent,
					ThreadID:          post.ID,
					Community:         post.Community,
					CommunityCategory: post.CommunityCategory,
				})
			}

			for i := len(n.comment.Replies) - 1; i >= 0; i-- {
				stack = append(stack, node{n.comment.Replies[i], n.depth + 1, n.comment.ID})
			}
		}
	}

	return contents
}

// Engagement aggregates one author's activity over a batch of fragments.
type Engagement struct {
	// NumComments is the total fragment count.
	NumComments int

	// AvgScore is the mean engagement score.
	AvgScore float64

	// MaxDepth is the deepest nesting level observed.
	MaxDepth int

	// ConversationCount is the number of distinct threads participated in.
	ConversationCount int

	// ParentInteractions is the number of replies to other nodes.
	ParentInteractions int

	// CommunityTypes is the sorted set of community categories seen.
	CommunityTypes []string
}

// Metrics computes engagement metrics for one author's fragment list.
// Aggregation is order-independent.
func Metrics(fragments []types.ContentFragment) Engagement {
	var eng Engagement
	if len(fragments) == 0 {
		return eng
	}

	threads := make(map[string]bool)
	categories := make(map[string]bool)
	total := 0

	for _, frag := range fragments {
		eng.NumComments++
		total += frag.Score
		if frag.Depth > eng.MaxDepth {
			eng.MaxDepth = frag.Depth
		}
		if frag.Depth > 0 {
			eng.ParentInteractions++
		}
		if frag.ThreadID != "" {
			threads[frag.ThreadID] = true
		}
		if frag.CommunityCategory != "" {
			categories[string(frag.CommunityCategory)] = true
		}
	}

	eng.AvgScore = float64(total) / float64(len(fragments))
	eng.ConversationCount = len(threads)
	for cat := range categories {
		eng.CommunityTypes = append(eng.CommunityTypes, cat)
	}
	sort.Strings(eng.CommunityTypes)

	return eng
}
