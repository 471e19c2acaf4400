package listing

import "encoding/json"

// Reddit wrapper types. Fields are pointers where absence must be told
// apart from a zero value.
type listing struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type commentData struct {
	ID         *string         `json:"id"`
	Author     string          `json:"author"`
	Body       *string         `json:"body"`
	BodyHTML   string          `json:"body_html"`
	CreatedUTC *float64        `json:"created_utc"`
	Score      int             `json:"score"`
	ParentID   string          `json:"parent_id"`
	Replies    json.RawMessage `json:"replies"`
}

const (
	kindComment = "t1"
	kindPost    = "t3"
	kindListing = "Listing"
)
