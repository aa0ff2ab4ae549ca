package listing

import (
	"iter"
	"slices"

	"shopee/internal/model"
)

// 每页条数的默认边界
const (
	DefaultPerPageMin = 5
	DefaultPerPageMax = 300
)

// Concat 按顺序串联多个来源，外层迭代器依次消费每个内层迭代器
func Concat[T any](sources ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, src := range sources {
			for v := range src {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Window 返回 seq 中 [offset, offset+limit) 的元素，取满后停止迭代
func Window[T any](seq iter.Seq[T], offset, limit int) []T {
	out := make([]T, 0, max(limit, 0))
	if limit <= 0 {
		return out
	}
	i := 0
	for v := range seq {
		if i >= offset {
			out = append(out, v)
			if len(out) == limit {
				break
			}
		}
		i++
	}
	return out
}

// Slice 从合并后的引用列表中取出第 page 页
// page 和 perPage 应由调用方先用 ClampPage 校正
func Slice(merged []model.ItemRef, page, perPage int) []model.ItemRef {
	offset := (page - 1) * perPage
	if offset >= len(merged) || offset < 0 {
		return []model.ItemRef{}
	}
	return Window(slices.Values(merged), offset, perPage)
}

// ClampPage 校正页码和每页条数
func ClampPage(page, perPage, minPerPage, maxPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < minPerPage {
		perPage = minPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
