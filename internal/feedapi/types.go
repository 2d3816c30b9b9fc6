package feedapi

import "time"

// FeedPath is the community feed endpoint, relative to the API base URL
const FeedPath = "/xrpc/social.coves.communityFeed.getCommunity"

// FeedResponse is the wire shape of a community feed page
type FeedResponse struct {
	Cursor *string         `json:"cursor,omitempty"`
	Feed   []*FeedViewPost `json:"feed"`
}

// FeedViewPost wraps a post with feed context
type FeedViewPost struct {
	Post *PostView `json:"post"`
}

// PostView is a post as rendered by the feed endpoint
type PostView struct {
	URI       string        `json:"uri"`
	CID       string        `json:"cid"`
	RKey      string        `json:"rkey"`
	Title     *string       `json:"title,omitempty"`
	Text      *string       `json:"text,omitempty"`
	Author    *AuthorView   `json:"author"`
	Community *CommunityRef `json:"community"`
	Stats     *PostStats    `json:"stats,omitempty"`
	Embed     *EmbedView    `json:"embed,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	IndexedAt time.Time     `json:"indexedAt"`
}

// AuthorView represents author information in post views
type AuthorView struct {
	DisplayName *string `json:"displayName,omitempty"`
	DID         string  `json:"did"`
	Handle      string  `json:"handle"`
}

// CommunityRef represents minimal community info in post views
type CommunityRef struct {
	DID    string `json:"did"`
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

// PostStats represents aggregated statistics
type PostStats struct {
	Upvotes      int `json:"upvotes"`
	Downvotes    int `json:"downvotes"`
	Score        int `json:"score"`
	CommentCount int `json:"commentCount"`
}

// EmbedView carries an external link attached to a post
type EmbedView struct {
	Type     string        `json:"$type"`
	External *ExternalView `json:"external,omitempty"`
}

// ExternalView is the linked page of an external embed
type ExternalView struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
	Thumb string `json:"thumb,omitempty"`
}

// ExternalEmbedType is the $type of an external link embed
const ExternalEmbedType = "social.coves.embed.external#view"
