package project

import (
	"strings"
	"testing"
)

func TestProjectValidate(t *testing.T) {
	for _, p := range []*Project{
		// Missing owner.
		{
			Name:       "exif-renamer",
			Visibility: VisibilityPublic,
		},
		// Missing name.
		{
			OwnerID:    1,
			Visibility: VisibilityPublic,
		},
		// Name too long.
		{
			Name:       strings.Repeat("x", NameMax+1),
			OwnerID:    1,
			Visibility: VisibilityPublic,
		},
		// Tagline too long.
		{
			Name:       "exif-renamer",
			OwnerID:    1,
			Tagline:    strings.Repeat("x", TaglineMax+1),
			Visibility: VisibilityPublic,
		},
		// Description too long.
		{
			Description: strings.Repeat("x", DescriptionMax+1),
			Name:        "exif-renamer",
			OwnerID:     1,
			Visibility:  VisibilityPublic,
		},
		// Too many tags.
		{
			Name:       "exif-renamer",
			OwnerID:    1,
			Tags:       strings.Split(strings.Repeat("t,", TagsMax+1), ","),
			Visibility: VisibilityPublic,
		},
		// Invalid repo url.
		{
			Name:       "exif-renamer",
			OwnerID:    1,
			RepoURL:    "not a url",
			Visibility: VisibilityPublic,
		},
		// Unsupported visibility.
		{
			Name:    "exif-renamer",
			OwnerID: 1,
		},
	} {
		if err := p.Validate(); !IsInvalidProject(err) {
			t.Errorf("have %v, want %v", err, ErrInvalidProject)
		}
	}
}

func TestListOwnerIDs(t *testing.T) {
	ps := List{
		{ID: 1, OwnerID: 3},
		{ID: 2, OwnerID: 5},
		{ID: 3, OwnerID: 3},
	}

	if have, want := len(ps.OwnerIDs()), 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
