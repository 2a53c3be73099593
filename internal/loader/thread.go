package loader

import (
	"sort"

	"github.com/inkwell/engage/internal/model"
)

// Thread is one comment with its resolved replies.
type Thread struct {
	Comment model.Comment
	Replies []Thread
}

// BuildThreads organizes a flat comment collection into rooted forests
// grouped by section id (empty key for content-level comments). A comment
// whose parent reference does not resolve within the collection is
// promoted to a root rather than dropped, so partially loaded threads
// still render. Every resolvable reply appears exactly once, under its
// parent.
func BuildThreads(comments []model.Comment) map[string][]Thread {
	present := make(map[string]bool, len(comments))
	for _, c := range comments {
		present[c.ID] = true
	}

	children := make(map[string][]model.Comment)
	var roots []model.Comment
	for _, c := range comments {
		if c.ParentID != "" && present[c.ParentID] {
			children[c.ParentID] = append(children[c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	for parent := range children {
		cs := children[parent]
		sort.SliceStable(cs, func(i, j int) bool {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		})
	}

	var build func(c model.Comment) Thread
	build = func(c model.Comment) Thread {
		t := Thread{Comment: c}
		for _, child := range children[c.ID] {
			t.Replies = append(t.Replies, build(child))
		}
		return t
	}

	out := make(map[string][]Thread)
	for _, root := range roots {
		out[root.SectionID] = append(out[root.SectionID], build(root))
	}
	return out
}
