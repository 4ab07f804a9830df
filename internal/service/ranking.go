package service

import (
	"sort"

	"github.com/d60-Lab/feedgraph/internal/model"
)

// Engagement weights for the explore score.
const (
	likeWeight    = 3.0
	commentWeight = 5.0
	repostWeight  = 4.0
	viewWeight    = 0.01
)

// Score is the explore ranking score of a post.
func Score(p *model.Post) float64 {
	return float64(p.LikeCount)*likeWeight +
		float64(p.CommentCount)*commentWeight +
		float64(p.RepostCount)*repostWeight +
		float64(p.ViewCount)*viewWeight
}

// Rank orders posts by score descending in place, newer posts first on ties.
func Rank(posts []*model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		si, sj := Score(posts[i]), Score(posts[j])
		if si != sj {
			return si > sj
		}
		return posts[i].ID > posts[j].ID
	})
}
