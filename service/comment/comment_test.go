package comment

import (
	"strings"
	"testing"
)

func TestCommentValidate(t *testing.T) {
	for _, c := range []*Comment{
		// Missing content.
		{
			OwnerID:   1,
			ProjectID: 2,
		},
		// Content too long.
		{
			Content:   strings.Repeat("x", ContentMax+1),
			OwnerID:   1,
			ProjectID: 2,
		},
		// Missing owner.
		{
			Content:   "Nice work.",
			ProjectID: 2,
		},
		// Missing project.
		{
			Content: "Nice work.",
			OwnerID: 1,
		},
	} {
		if err := c.Validate(); !IsInvalidComment(err) {
			t.Errorf("have %v, want %v", err, ErrInvalidComment)
		}
	}
}
