// Package pagination 把有序集合切分成固定大小的页。
//
// 页码解析规则：非数字或空输入返回第一页，超出范围（小于 1 或大于总页数）
// 返回最后一页。空集合也有一页（空页）。
package pagination

import (
	"strconv"
	"strings"
)

// Paginator 描述一个集合的分页方式
type Paginator struct {
	Count   int
	PerPage int
}

// Page 是某一页的元数据，Offset/Limit 可直接用于 SQL
type Page struct {
	Number   int `json:"number"`
	NumPages int `json:"num_pages"`
	Count    int `json:"count"`
	PerPage  int `json:"per_page"`
}

func New(count, perPage int) Paginator {
	if perPage <= 0 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages 总页数，至少为 1
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// GetPage 根据原始页码字符串返回页面，规则见包注释
func (p Paginator) GetPage(raw string) Page {
	last := p.NumPages()
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > last:
		number = last
	}
	return Page{Number: number, NumPages: last, Count: p.Count, PerPage: p.PerPage}
}

func (pg Page) Offset() int {
	return (pg.Number - 1) * pg.PerPage
}

func (pg Page) Limit() int {
	return pg.PerPage
}

// Len 当前页实际包含的条目数
func (pg Page) Len() int {
	n := pg.Count - pg.Offset()
	if n > pg.PerPage {
		return pg.PerPage
	}
	if n < 0 {
		return 0
	}
	return n
}

func (pg Page) HasNext() bool {
	return pg.Number < pg.NumPages
}

func (pg Page) HasPrevious() bool {
	return pg.Number > 1
}

func (pg Page) HasOtherPages() bool {
	return pg.HasNext() || pg.HasPrevious()
}

func (pg Page) NextNumber() int {
	if pg.HasNext() {
		return pg.Number + 1
	}
	return pg.Number
}

func (pg Page) PreviousNumber() int {
	if pg.HasPrevious() {
		return pg.Number - 1
	}
	return pg.Number
}

// StartIndex 当前页第一条的序号（从 1 开始），空页为 0
func (pg Page) StartIndex() int {
	if pg.Count == 0 {
		return 0
	}
	return pg.Offset() + 1
}

// EndIndex 当前页最后一条的序号
func (pg Page) EndIndex() int {
	return pg.Offset() + pg.Len()
}

// Numbers 返回 1..NumPages，模板渲染页码链接用
func (pg Page) Numbers() []int {
	nums := make([]int, pg.NumPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Slice 对内存中的切片应用分页
func Slice[T any](items []T, pg Page) []T {
	start := pg.Offset()
	if start >= len(items) {
		return items[:0]
	}
	end := start + pg.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
