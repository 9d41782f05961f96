package model

// SystemStats 系统统计数据
type SystemStats struct {
	TotalUsers    int            `json:"total_users"`
	TotalPosts    int            `json:"total_posts"`
	TotalGroups   int            `json:"total_groups"`
	TotalComments int            `json:"total_comments"`
	TotalFollows  int            `json:"total_follows"`
	ErrorCounts   map[string]int `json:"error_counts,omitempty"`
}
