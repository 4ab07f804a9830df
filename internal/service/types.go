package service

import (
	"sort"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/pagination"
)

// IDSet 用户 id 集合
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Without 返回 s 中不在 other 里的元素
func (s IDSet) Without(other IDSet) IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted 返回升序的 id 切片，查询参数保持稳定
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FeedRequest 三种 feed 共用的请求参数。ViewerID 为空表示匿名。
type FeedRequest struct {
	ViewerID string
	Cursor   string
	Limit    int
}

// FeedPost 帖子 + 当前查看者的互动标记
type FeedPost struct {
	*model.Post
	IsLiked      bool `json:"isLiked"`
	IsReposted   bool `json:"isReposted"`
	IsBookmarked bool `json:"isBookmarked"`
}

type FeedPage struct {
	Data       []*FeedPost     `json:"data"`
	Pagination pagination.Page `json:"pagination"`
}

func emptyPage() *FeedPage {
	return &FeedPage{Data: []*FeedPost{}}
}
