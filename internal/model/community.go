package model

import "time"

// PostTitleLength 帖子字符串表示截取的字符数
const PostTitleLength = 15

// Group 是帖子可以归属的主题分组
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (g *Group) String() string {
	return g.Title
}

type Post struct {
	ID       int       `json:"id"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
	Image    string    `json:"image,omitempty"`
	AuthorID int       `json:"author_id"`
	GroupID  *int      `json:"group_id,omitempty"`
	Author   *User     `json:"author,omitempty"`
	Group    *Group    `json:"group,omitempty"`
}

func (p *Post) String() string {
	r := []rune(p.Text)
	if len(r) > PostTitleLength {
		return string(r[:PostTitleLength])
	}
	return p.Text
}

// IsAuthor 判断用户是否为帖子作者
func (p *Post) IsAuthor(user *User) bool {
	return user != nil && user.ID == p.AuthorID
}

type Comment struct {
	ID       int       `json:"id"`
	PostID   int       `json:"post_id"`
	AuthorID int       `json:"author_id"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
	Author   *User     `json:"author,omitempty"`
}

// Follow 是从 UserID（关注者）指向 AuthorID（被关注者）的有向边
type Follow struct {
	ID       int `json:"id"`
	UserID   int `json:"user_id"`
	AuthorID int `json:"author_id"`
}

// PostFilter 描述信息流的筛选条件，零值表示全部帖子
type PostFilter struct {
	GroupID    int
	AuthorID   int
	FollowerID int
}
