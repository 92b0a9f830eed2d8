// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the recruit-engine
// pipeline: raw forum documents, per-author content fragments, the fixed
// feature attribute catalog, user records, and stage configuration.
package types

// CommunityCategory classifies a source community by its dominant topic.
type CommunityCategory string

const (
	CategoryHealth CommunityCategory = "health"
	CategoryMoney  CommunityCategory = "money"
)

// Comment is one reply node in a conversation tree, as stored in raw batch
// files. Replies nest recursively; depth fields in raw data are advisory and
// recomputed during flattening.
type Comment struct {
	// ID is the forum-assigned comment identifier.
	ID string `json:"id"`

	// Author is the comment author's username. Empty, "[deleted]", and
	// "[removed]" are sentinel values for absent authors.
	Author string `json:"author"`

	// Text is the comment body.
	Text string `json:"text"`

	// Score is the net engagement score (upvotes minus downvotes).
	Score int `json:"score"`

	// ParentID identifies the parent post or comment.
	ParentID string `json:"parent_id"`

	// CreatedUTC is the creation time as a Unix timestamp.
	CreatedUTC float64 `json:"created_utc"`

	// Replies holds the nested reply tree under this comment.
	Replies []Comment `json:"replies"`
}

// Post is a top-level forum document together with its comment tree.
type Post struct {
	// ID is the forum-assigned post identifier.
	ID string `json:"id"`

	// Author is the post author's username; sentinel values as for Comment.
	Author string `json:"author"`

	// Title is the post title.
	Title string `json:"title"`

	// Text is the post body (may be empty for link posts).
	Text string `json:"text"`

	// Score is the net engagement score.
	Score int `json:"score"`

	// CreatedUTC is the creation time as a Unix timestamp.
	CreatedUTC float64 `json:"created_utc"`

	// Community is the source community identifier (e.g. "Fibromyalgia").
	Community string `json:"community"`

	// CommunityCategory classifies the community (health or money).
	CommunityCategory CommunityCategory `json:"community_category"`

	// Comments holds the post's top-level comments.
	Comments []Comment `json:"comments"`
}

// ContentFragment is one unit of authored text produced by flattening a
// conversation tree. Fragments are immutable once produced.
type ContentFragment struct {
	// Author is the fragment author's username.
	Author string `json:"author"`

	// Content is the authored text. Post fragments combine the title and
	// body as "Title: {title}\n{text}".
	Content string `json:"content"`

	// Score is the net engagement score of the source node.
	Score int `json:"score"`

	// Depth is the nesting depth: 0 for posts, parent depth + 1 for replies.
	Depth int `json:"depth"`

	// ParentID identifies the parent node. Empty for post fragments.
	ParentID string `json:"parent_id,omitempty"`

	// ThreadID identifies the root post of the conversation the fragment
	// belongs to.
	ThreadID string `json:"thread_id"`

	// Community is the source community identifier.
	Community string `json:"community"`

	// CommunityCategory classifies the source community.
	CommunityCategory CommunityCategory `json:"community_category"`
}
