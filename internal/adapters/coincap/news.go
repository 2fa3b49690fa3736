package coincap

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alejandrodnm/retrotoken/internal/domain"
	"github.com/alejandrodnm/retrotoken/internal/ports"
)

// GetNews devuelve noticias del agregador según los filtros dados.
func (c *Client) GetNews(ctx context.Context, params ports.NewsParams) ([]domain.NewsArticle, error) {
	q := url.Values{}
	q.Set("lang", "EN")
	if params.Categories != "" {
		q.Set("categories", params.Categories)
	}

	u := fmt.Sprintf("%s/news/?%s", c.newsBase, q.Encode())
	var resp newsResponse
	if err := c.get(ctx, c.newsLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("coincap.GetNews: %w", err)
	}

	articles := mapArticles(resp.Data)
	if params.Limit > 0 && len(articles) > params.Limit {
		articles = articles[:params.Limit]
	}
	return articles, nil
}
