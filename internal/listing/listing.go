// Package listing turns a raw comment listing into typed, depth-resolved
// comments. Each call to Parse is independent.
package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/render"
)

// Removed-content sentinels. Such comments are skipped but their replies
// are kept.
var sentinels = map[string]bool{
	"[deleted]": true,
	"[removed]": true,
}

// Result is the outcome of one parse.
type Result struct {
	PostID   string
	Title    string
	Comments []domain.Comment
	// Errors holds one *domain.ParseError per skipped malformed record.
	Errors []error
}

// node is one comment-kind record found during the walk.
type node struct {
	comment  domain.Comment
	parent   int    // structural parent index, -1 at listing top level
	parentID string // bare id from parent_id when it names a comment
	skipped  bool   // deleted, removed or malformed
	depth    int
}

type frame struct {
	raw    thing
	parent int
}

// Parse walks a listing payload. It accepts Reddit's [post, comments]
// array, a single Listing object, or a bare array of things; comments may
// be nested through "replies" or flat with parent_id linkage.
func Parse(raw []byte) (Result, error) {
	var res Result

	roots, err := topLevel(raw, &res)
	if err != nil {
		return res, err
	}

	// Iterative pre-order walk; children are pushed in reverse so that
	// document order is preserved.
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{raw: roots[i], parent: -1})
	}

	var nodes []node
	index := make(map[string]int)
	record := 0

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.raw.Kind != kindComment {
			if f.raw.Kind == "" {
				res.Errors = append(res.Errors, &domain.ParseError{Index: record, Reason: "missing kind"})
			}
			record++
			continue
		}

		var data commentData
		if err := json.Unmarshal(f.raw.Data, &data); err != nil {
			res.Errors = append(res.Errors, &domain.ParseError{Index: record, Reason: fmt.Sprintf("decoding comment: %v", err)})
			record++
			continue
		}

		n, perr := toNode(data, record)
		n.parent = f.parent
		if perr != nil {
			res.Errors = append(res.Errors, perr)
		}
		pos := len(nodes)
		nodes = append(nodes, n)
		if n.comment.ID != "" {
			if _, dup := index[n.comment.ID]; !dup {
				index[n.comment.ID] = pos
			}
		}
		record++

		children := replies(data.Replies)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{raw: children[i], parent: pos})
		}
	}

	resolveDepths(nodes, index)

	res.Comments = make([]domain.Comment, 0, len(nodes))
	for _, n := range nodes {
		if n.skipped {
			continue
		}
		c := n.comment
		c.Depth = n.depth
		res.Comments = append(res.Comments, c)
	}
	return res, nil
}

// topLevel finds the comment things at the top of the payload and records
// the post, if one is present.
func topLevel(raw []byte, res *Result) ([]thing, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &domain.ParseError{Index: -1, Reason: "empty listing"}
	}

	switch trimmed[0] {
	case '{':
		var l listing
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return nil, &domain.ParseError{Index: -1, Reason: fmt.Sprintf("decoding listing: %v", err)}
		}
		return takePost(l.Data.Children, res), nil

	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, &domain.ParseError{Index: -1, Reason: fmt.Sprintf("decoding listing: %v", err)}
		}
		var out []thing
		for _, e := range elems {
			var t thing
			if err := json.Unmarshal(e, &t); err != nil {
				out = append(out, thing{})
				continue
			}
			if t.Kind == kindListing {
				var l listing
				if err := json.Unmarshal(e, &l); err != nil {
					continue
				}
				out = append(out, takePost(l.Data.Children, res)...)
				continue
			}
			out = append(out, t)
		}
		return takePost(out, res), nil
	}
	return nil, &domain.ParseError{Index: -1, Reason: "listing is neither an object nor an array"}
}

// takePost strips t3 records, remembering the first as the thread's post.
func takePost(things []thing, res *Result) []thing {
	out := things[:0:0]
	for _, t := range things {
		if t.Kind != kindPost {
			out = append(out, t)
			continue
		}
		if res.PostID != "" {
			continue
		}
		var p postData
		if err := json.Unmarshal(t.Data, &p); err == nil {
			res.PostID = p.ID
			res.Title = p.Title
		}
	}
	return out
}

func toNode(d commentData, record int) (node, error) {
	n := node{parent: -1}
	if d.ID != nil {
		n.comment.ID = strings.TrimSpace(*d.ID)
	}
	if strings.HasPrefix(d.ParentID, "t1_") {
		n.parentID = strings.TrimPrefix(d.ParentID, "t1_")
		n.comment.ParentID = n.parentID
	}

	body, hasBody := "", false
	if d.Body != nil {
		body, hasBody = *d.Body, true
	} else if d.BodyHTML != "" {
		body, hasBody = render.HTMLToText(d.BodyHTML), true
	}

	var reason string
	switch {
	case n.comment.ID == "":
		reason = "missing id"
	case !hasBody:
		reason = "missing body"
	case d.CreatedUTC == nil:
		reason = "missing created_utc"
	}
	if reason != "" {
		n.skipped = true
		return n, &domain.ParseError{Index: record, ID: n.comment.ID, Reason: reason}
	}

	if sentinels[strings.TrimSpace(body)] {
		n.skipped = true
		return n, nil
	}

	author := strings.TrimSpace(d.Author)
	if author == "" {
		author = domain.DeletedAuthor
	}
	n.comment.Author = author
	n.comment.Body = body
	n.comment.CreatedAt = time.Unix(int64(*d.CreatedUTC), 0).UTC()
	n.comment.Score = d.Score
	return n, nil
}

// replies decodes the nested listing of a comment. Reddit sends an empty
// string when there are none.
func replies(raw json.RawMessage) []thing {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var l listing
	if err := json.Unmarshal(trimmed, &l); err != nil {
		return nil
	}
	return l.Data.Children
}

// resolveDepths assigns depth from the parent chain. A structural parent
// wins over parent_id. Children of a skipped node take the depth the
// skipped node would have had.
func resolveDepths(nodes []node, index map[string]int) {
	const unset = -1
	for i := range nodes {
		nodes[i].depth = unset
	}

	parentOf := func(i int) int {
		if p := nodes[i].parent; p >= 0 {
			return p
		}
		if nodes[i].parentID == "" {
			return -1
		}
		if p, ok := index[nodes[i].parentID]; ok && p != i {
			return p
		}
		return -1
	}

	var chain []int
	onChain := make(map[int]bool)
	for i := range nodes {
		if nodes[i].depth != unset {
			continue
		}
		chain = chain[:0]
		clear(onChain)

		cur := i
		base := 0
		for {
			chain = append(chain, cur)
			onChain[cur] = true
			p := parentOf(cur)
			if p < 0 || onChain[p] {
				base = 0
				break
			}
			if nodes[p].depth != unset {
				base = childDepth(nodes[p])
				break
			}
			cur = p
		}

		// chain runs child -> ancestor; assign from the ancestor down.
		depth := base
		for j := len(chain) - 1; j >= 0; j-- {
			n := &nodes[chain[j]]
			n.depth = depth
			depth = childDepth(*n)
		}
	}
}

func childDepth(parent node) int {
	if parent.skipped {
		return parent.depth
	}
	return parent.depth + 1
}
