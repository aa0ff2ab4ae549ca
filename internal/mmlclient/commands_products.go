package mmlclient

import (
	"context"
	"fmt"

	"shopee/internal/listing"
)

// ProductsCommand 商品列表命令
type ProductsCommand struct {
	client *Client
}

// NewProductsCommand 创建商品列表命令
func NewProductsCommand(client *Client) *ProductsCommand {
	return &ProductsCommand{client: client}
}

// Name 返回命令名称
func (c *ProductsCommand) Name() string {
	return "products"
}

// Aliases 返回命令别名
func (c *ProductsCommand) Aliases() []string {
	return []string{"ls"}
}

// Description 返回命令描述
func (c *ProductsCommand) Description() string {
	return "分页查询全部店铺的商品"
}

// Usage 返回使用说明
func (c *ProductsCommand) Usage() string {
	return "products [account_id=N] [status=S] [page=N] [per_page=N] [strict]\n" +
		"  status: NORMAL, UNLISTED, BANNED, DELETED, REVIEWING, SOLDOUT\n" +
		"  strict: 额外返回实际取回的商品数\n" +
		"  示例:\n" +
		"    products                       # 全部店铺第一页\n" +
		"    products account_id=3 page=2   # 指定店铺第二页\n" +
		"    products status=UNLISTED per_page=50"
}

// Execute 执行命令
func (c *ProductsCommand) Execute(ctx context.Context, args []string) error {
	query, err := parseParams(args, "account_id", "status", "page", "per_page", "strict")
	if err != nil {
		return err
	}

	var result listing.ListResult
	if err := c.client.GetJSON(ctx, "/api/v1/products", query, &result); err != nil {
		return err
	}

	out := c.client.Out()
	if len(result.Products) == 0 {
		fmt.Fprintln(out, "没有商品")
	} else {
		tw := newTable(out)
		fmt.Fprintln(tw, "ID\tTITLE\tACCOUNT\tPRICE\tPROMO\tSTOCK\tSTATUS")
		for _, p := range result.Products {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				p.ID, truncate(p.Title, 40), p.Account,
				formatPrice(p.Price), formatPrice(p.PromoPrice), p.Stock, p.Status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	pg := result.Pagination
	pages := 0
	if pg.PerPage > 0 {
		pages = (pg.Total + pg.PerPage - 1) / pg.PerPage
	}
	line := fmt.Sprintf("第 %d/%d 页，每页 %d，共 %d 件", pg.Page, pages, pg.PerPage, pg.Total)
	if pg.TotalRetrieved != nil {
		line += fmt.Sprintf("（实际取回 %d）", *pg.TotalRetrieved)
	}
	fmt.Fprintln(out, line)
	return nil
}
