package model

// All 返回需要迁移的全部表
func All() []any {
	return []any{
		&User{},
		&Post{},
		&Follow{},
		&Block{},
		&Mute{},
		&Like{},
		&Repost{},
		&Bookmark{},
		&Hashtag{},
	}
}
