package service

import "errors"

var (
	ErrFollowSelf = errors.New("cannot follow self")
	ErrBlockSelf  = errors.New("cannot block self")
	ErrMuteSelf   = errors.New("cannot mute self")
	// ErrBlocked 双方存在拉黑关系时不能建立关注
	ErrBlocked = errors.New("relationship blocked")
	// ErrNoPendingRequest 没有待审批的关注请求
	ErrNoPendingRequest = errors.New("no pending follow request")
	ErrPostNotFound     = errors.New("post not found")
	// ErrInvalidation 社交图缓存失效失败；调用方的写操作必须显式失败
	ErrInvalidation = errors.New("graph cache invalidation failed")
)
