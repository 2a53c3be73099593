package loader

import (
	"testing"
	"time"

	"github.com/inkwell/engage/internal/model"
)

func comment(id, parentID, sectionID string, createdAt time.Time) model.Comment {
	return model.Comment{
		ID:        id,
		ContentID: "c1",
		Text:      "text " + id,
		ParentID:  parentID,
		SectionID: sectionID,
		CreatedAt: createdAt,
	}
}

func TestBuildThreadsNestsResolvableReplies(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	threads := BuildThreads([]model.Comment{
		comment("1", "", "", base),
		comment("2", "1", "", base.Add(time.Minute)),
		comment("3", "99", "", base.Add(2*time.Minute)),
	})

	roots := threads[""]
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].Comment.ID != "1" || roots[1].Comment.ID != "3" {
		t.Fatalf("unexpected roots: %s, %s", roots[0].Comment.ID, roots[1].Comment.ID)
	}

	// 2 resolved under 1; 3's parent is not in the collection so it was
	// promoted rather than dropped.
	if len(roots[0].Replies) != 1 || roots[0].Replies[0].Comment.ID != "2" {
		t.Fatalf("expected comment 2 nested under 1, got %+v", roots[0].Replies)
	}
	if len(roots[1].Replies) != 0 {
		t.Fatalf("expected promoted orphan to have no replies, got %+v", roots[1].Replies)
	}
}

func TestBuildThreadsGroupsBySection(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	threads := BuildThreads([]model.Comment{
		comment("1", "", "", base),
		comment("2", "", "sec-a", base),
		comment("3", "2", "sec-a", base.Add(time.Minute)),
	})

	if len(threads[""]) != 1 {
		t.Fatalf("expected 1 content-level root, got %d", len(threads[""]))
	}
	secA := threads["sec-a"]
	if len(secA) != 1 || secA[0].Comment.ID != "2" {
		t.Fatalf("expected comment 2 rooting sec-a, got %+v", secA)
	}
	if len(secA[0].Replies) != 1 || secA[0].Replies[0].Comment.ID != "3" {
		t.Fatalf("expected comment 3 under 2, got %+v", secA[0].Replies)
	}
}

func TestBuildThreadsOrdersRepliesByCreation(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	threads := BuildThreads([]model.Comment{
		comment("1", "", "", base),
		comment("3", "1", "", base.Add(2*time.Minute)),
		comment("2", "1", "", base.Add(time.Minute)),
	})

	replies := threads[""][0].Replies
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	if replies[0].Comment.ID != "2" || replies[1].Comment.ID != "3" {
		t.Fatalf("expected replies sorted oldest first, got %s, %s",
			replies[0].Comment.ID, replies[1].Comment.ID)
	}
}

func TestBuildThreadsDeepNesting(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	threads := BuildThreads([]model.Comment{
		comment("1", "", "", base),
		comment("2", "1", "", base.Add(time.Minute)),
		comment("3", "2", "", base.Add(2*time.Minute)),
	})

	roots := threads[""]
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	mid := roots[0].Replies
	if len(mid) != 1 || mid[0].Comment.ID != "2" {
		t.Fatalf("expected 2 under 1, got %+v", mid)
	}
	leaf := mid[0].Replies
	if len(leaf) != 1 || leaf[0].Comment.ID != "3" {
		t.Fatalf("expected 3 under 2, got %+v", leaf)
	}
}

func TestBuildThreadsEmptyInput(t *testing.T) {
	threads := BuildThreads(nil)
	if len(threads) != 0 {
		t.Fatalf("expected empty forest, got %v", threads)
	}
}
