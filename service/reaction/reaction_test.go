package reaction

import (
	"testing"

	serr "github.com/jhlee0409/sidedish-sub001/error"
)

func TestReactionValidate(t *testing.T) {
	for _, r := range []*Reaction{
		// Missing owner.
		{
			ProjectID: 2,
			Type:      TypeLike,
		},
		// Missing project.
		{
			OwnerID: 1,
			Type:    TypeLike,
		},
		// Type out of range.
		{
			OwnerID:   1,
			ProjectID: 2,
		},
		{
			OwnerID:   1,
			ProjectID: 2,
			Type:      TypeIdea + 1,
		},
	} {
		if err := r.Validate(); !serr.IsInvalidReaction(err) {
			t.Errorf("have %v, want %v", err, serr.ErrInvalidReaction)
		}
	}
}
