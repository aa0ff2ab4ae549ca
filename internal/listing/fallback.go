package listing

import (
	"encoding/json"
	"math"
	"strconv"
)

// Accessor 从原始字段中读取一个整数值，字段不存在或为 null 时返回 false
type Accessor func(attrs map[string]interface{}) (int64, bool)

// Field 按路径读取嵌套字段，数组下标用数字字符串表示
func Field(path ...string) Accessor {
	return func(attrs map[string]interface{}) (int64, bool) {
		var cur interface{} = attrs
		for _, key := range path {
			switch node := cur.(type) {
			case map[string]interface{}:
				next, ok := node[key]
				if !ok {
					return 0, false
				}
				cur = next
			case []interface{}:
				idx, err := strconv.Atoi(key)
				if err != nil || idx < 0 || idx >= len(node) {
					return 0, false
				}
				cur = node[idx]
			default:
				return 0, false
			}
		}
		return toInt64(cur)
	}
}

// Chain 有序的备选字段列表
type Chain []Accessor

// First 返回第一个有值的字段，全部缺失时返回 0
func (c Chain) First(sources ...map[string]interface{}) int64 {
	for _, get := range c {
		for _, attrs := range sources {
			if attrs == nil {
				continue
			}
			if v, ok := get(attrs); ok {
				return v
			}
		}
	}
	return 0
}

// 计数和库存字段的备选名
var (
	SalesChain = Chain{Field("sale"), Field("sales"), Field("sold"), Field("historical_sold")}
	LikesChain = Chain{Field("likes"), Field("liked_count")}
	ViewsChain = Chain{Field("views"), Field("view_count")}
	StockChain = Chain{
		Field("stock_info_v2", "summary_info", "total_available_stock"),
		Field("stock_info", "0", "normal_stock"),
		Field("normal_stock"),
		Field("stock"),
	}
)

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(math.Round(f)), true
		}
	case float64:
		return int64(math.Round(n)), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
