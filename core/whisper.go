package core

import (
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/user"
	"github.com/jhlee0409/sidedish-sub001/service/whisper"
)

// WhisperFeed is a collection of whispers with their referenced senders.
type WhisperFeed struct {
	UserMap  user.Map
	Whispers whisper.List
}

// WhisperCreateFunc sends a private whisper to the owner of the project.
type WhisperCreateFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	input *whisper.Whisper,
) (*whisper.Whisper, error)

// WhisperCreate sends a private whisper to the owner of the project. Owners
// can't whisper to themselves.
func WhisperCreate(
	projects project.Service,
	whispers whisper.Service,
) WhisperCreateFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		input *whisper.Whisper,
	) (*whisper.Whisper, error) {
		p, err := projectExists(projects, ns, origin, projectID)
		if err != nil {
			return nil, err
		}

		if p.OwnerID == origin.UserID {
			return nil, wrapError(ErrInvalidEntity, "can't whisper to own project")
		}

		w := &whisper.Whisper{
			Content:   input.Content,
			ProjectID: projectID,
			SenderID:  origin.UserID,
		}

		if err := w.Validate(); err != nil {
			return nil, wrapError(ErrInvalidEntity, "%s", err)
		}

		return whispers.Put(ns, w)
	}
}

// WhisperDeleteFunc flags the whisper as deleted, project owner only.
type WhisperDeleteFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	whisperID uint64,
) error

// WhisperDelete flags the whisper as deleted, project owner only.
func WhisperDelete(
	projects project.Service,
	whispers whisper.Service,
) WhisperDeleteFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		whisperID uint64,
	) error {
		if err := constrainWhisperAccess(projects, ns, origin, projectID); err != nil {
			return err
		}

		ws, err := whispers.Query(ns, whisper.QueryOptions{
			ID: &whisperID,
			ProjectIDs: []uint64{
				projectID,
			},
		})
		if err != nil {
			return err
		}

		// A delete should be idempotent and always succeed.
		if len(ws) != 1 {
			return nil
		}

		ws[0].Deleted = true

		_, err = whispers.Put(ns, ws[0])
		return err
	}
}

// WhisperListFunc returns the whispers of the project, project owner only.
type WhisperListFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	opts whisper.QueryOptions,
) (*WhisperFeed, error)

// WhisperList returns the whispers of the project, project owner only.
func WhisperList(
	projects project.Service,
	users user.Service,
	whispers whisper.Service,
) WhisperListFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		opts whisper.QueryOptions,
	) (*WhisperFeed, error) {
		if err := constrainWhisperAccess(projects, ns, origin, projectID); err != nil {
			return nil, err
		}

		ws, err := whispers.Query(ns, whisper.QueryOptions{
			Before: opts.Before,
			Limit:  opts.Limit,
			ProjectIDs: []uint64{
				projectID,
			},
			Read: opts.Read,
		})
		if err != nil {
			return nil, err
		}

		um, err := user.MapFromIDs(users, ns, ws.SenderIDs()...)
		if err != nil {
			return nil, err
		}

		return &WhisperFeed{
			UserMap:  um,
			Whispers: ws,
		}, nil
	}
}

// WhisperReadFunc marks the whisper as read, project owner only.
type WhisperReadFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	whisperID uint64,
) (*whisper.Whisper, error)

// WhisperRead marks the whisper as read, project owner only.
func WhisperRead(
	projects project.Service,
	whispers whisper.Service,
) WhisperReadFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		whisperID uint64,
	) (*whisper.Whisper, error) {
		if err := constrainWhisperAccess(projects, ns, origin, projectID); err != nil {
			return nil, err
		}

		ws, err := whispers.Query(ns, whisper.QueryOptions{
			ID: &whisperID,
			ProjectIDs: []uint64{
				projectID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(ws) != 1 {
			return nil, ErrNotFound
		}

		w := ws[0]

		if w.Read {
			return w, nil
		}

		w.Read = true

		return whispers.Put(ns, w)
	}
}

func constrainWhisperAccess(
	projects project.Service,
	ns string,
	origin Origin,
	projectID uint64,
) error {
	p, err := projectExists(projects, ns, origin, projectID)
	if err != nil {
		return err
	}

	if p.OwnerID != origin.UserID {
		return wrapError(ErrUnauthorized, "not project owner")
	}

	return nil
}
