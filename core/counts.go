package core

import (
	"fmt"

	"github.com/jhlee0409/sidedish-sub001/platform/cache"
	"github.com/jhlee0409/sidedish-sub001/service/comment"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
)

const keyComments = "comments.%d"

// CountCacheFunc resolves the ProjectCounts for the given project ids.
type CountCacheFunc func(ns string, projectIDs ...uint64) (ProjectCountsMap, error)

// CountCache resolves comment counts through the count cache with
// fall-through to the comment service, while reaction counts are always
// aggregated from the reaction service.
func CountCache(
	countCache cache.CountService,
	comments comment.Service,
	reactions reaction.Service,
) CountCacheFunc {
	return func(ns string, projectIDs ...uint64) (ProjectCountsMap, error) {
		cm := ProjectCountsMap{}

		if len(projectIDs) == 0 {
			return cm, nil
		}

		var misses []uint64

		for _, id := range projectIDs {
			count, err := countCache.Get(ns, commentsKey(id))
			if err != nil {
				if !cache.IsKeyNotFound(err) {
					return nil, err
				}

				misses = append(misses, id)
				continue
			}

			cm[id] = ProjectCounts{Comments: uint64(count)}
		}

		if len(misses) > 0 {
			countsMap, err := comments.CountMulti(ns, misses...)
			if err != nil {
				return nil, err
			}

			for id, count := range countsMap {
				cm[id] = ProjectCounts{Comments: count}

				if err := countCache.Set(ns, commentsKey(id), int(count)); err != nil {
					return nil, err
				}
			}
		}

		rm, err := reactions.CountMulti(ns, reaction.QueryOptions{
			ProjectIDs: projectIDs,
		})
		if err != nil {
			return nil, err
		}

		for id, counts := range rm {
			c := cm[id]
			c.Reactions = counts
			cm[id] = c
		}

		return cm, nil
	}
}

func commentsKey(id uint64) string {
	return fmt.Sprintf(keyComments, id)
}
