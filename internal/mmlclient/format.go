package mmlclient

import (
	"fmt"
	"io"
	"text/tabwriter"

	"shopee/internal/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// formatPrice 单一价格输出 19.99，区间输出 10.00~15.00
func formatPrice(p *model.PriceRange) string {
	if p == nil {
		return "-"
	}
	if p.IsSingle() {
		return p.Min.StringFixed(2)
	}
	return fmt.Sprintf("%s~%s", p.Min.StringFixed(2), p.Max.StringFixed(2))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
