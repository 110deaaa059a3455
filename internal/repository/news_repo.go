package repository

import (
	"context"
	"errors"
	"fmt"
	"gold-pulse/config"
	"gold-pulse/internal/dto"
	"gold-pulse/internal/model"
	"gold-pulse/pkg/cache"
	"gold-pulse/pkg/common"
	"gold-pulse/pkg/httpclient"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/utils"
	"net/http"
	"strings"
	"time"
)

var ErrNewsRateLimited = errors.New("API Limit Reached")

const newsDateLayout = "2006-01-02 15:04:05"

const (
	NewsCategoryGold       = "gold"
	NewsCategoryStocks     = "stocks"
	NewsCategoryAI         = "ai_news"
	NewsCategoryTop        = "top"
	NewsCategoryTechnology = "technology"
	NewsCategoryBusiness   = "business"
)

type newsQuery struct {
	category string
	q        string
}

var newsQueries = map[string]newsQuery{
	NewsCategoryGold:       {q: "ราคาทอง OR ทองคำ OR Gold Price OR XAUUSD OR เศรษฐกิจโลก OR สงครามการค้า"},
	NewsCategoryStocks:     {category: "business", q: "หุ้นสหรัฐ OR ตลาดหุ้น OR Nasdaq OR S&P500 OR หุ้นเทคโนโลยี"},
	NewsCategoryAI:         {category: "technology", q: "ปัญญาประดิษฐ์ OR AI Technology OR ChatGPT OR Gemini OR Generative AI OR NVIDIA OR Beartai OR Droidsans OR ExtremeIT OR iMoD OR Blognone OR TechOffside"},
	NewsCategoryTechnology: {category: "technology", q: "Technology OR Innovation OR Cyber Security OR Gadget"},
	NewsCategoryBusiness:   {category: "business"},
	NewsCategoryTop:        {category: "top"},
}

type NewsRepository interface {
	// Headlines returns the category's articles, skipping any article already
	// cached under another category. On failure the list is empty and the
	// error says why.
	Headlines(ctx context.Context, category string) ([]model.Headline, error)
}

type newsRepository struct {
	httpClient httpclient.HTTPClient
	cache      cache.Cache
	cfg        *config.Config
	logger     *logger.Logger
}

func NewNewsRepository(cfg *config.Config, inMemoryCache cache.Cache, log *logger.Logger) NewsRepository {
	return &newsRepository{
		httpClient: httpclient.New(cfg.News.BaseURL, cfg.News.Timeout, ""),
		cache:      inMemoryCache,
		cfg:        cfg,
		logger:     log,
	}
}

func (r *newsRepository) Headlines(ctx context.Context, category string) ([]model.Headline, error) {
	cacheKey := fmt.Sprintf(common.KEY_NEWS_CATEGORY, category)
	if cached, ok := cache.GetFromCache[[]model.Headline](r.cache, cacheKey); ok {
		return cached, nil
	}

	query, ok := newsQueries[category]
	if !ok {
		query = newsQuery{category: category}
	}

	params := map[string]string{
		"apikey":   r.cfg.News.APIKey,
		"language": r.cfg.News.Language,
	}
	if query.category != "" {
		params["category"] = query.category
	}
	if query.q != "" {
		params["q"] = query.q
	}

	var newsResp dto.NewsDataResponse
	resp, err := r.httpClient.Get(ctx, "/news", params, nil, &newsResp)
	if err != nil {
		return []model.Headline{}, fmt.Errorf("failed to fetch news for %s: %w", category, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return []model.Headline{}, ErrNewsRateLimited
	}
	if !resp.IsSuccess() {
		return []model.Headline{}, fmt.Errorf("news api error: %d", resp.StatusCode)
	}

	seen := r.otherCategoryIDs(cacheKey)
	headlines := make([]model.Headline, 0, len(newsResp.Results))
	for _, article := range newsResp.Results {
		if seen[article.ArticleID] {
			continue
		}
		title := utils.SafeText(article.Title)
		if title == "" {
			continue
		}
		pubDate, _ := time.ParseInLocation(newsDateLayout, article.PubDate, time.UTC)
		headlines = append(headlines, model.Headline{
			ArticleID: article.ArticleID,
			Title:     title,
			Link:      article.Link,
			Source:    article.SourceID,
			PubDate:   pubDate,
		})
	}

	r.cache.Set(cacheKey, headlines, r.cfg.News.CacheDuration)
	r.logger.DebugContext(ctx, "News fetched",
		logger.StringField("category", category),
		logger.IntField("results", len(newsResp.Results)),
		logger.IntField("unique", len(headlines)),
	)
	return headlines, nil
}

func (r *newsRepository) otherCategoryIDs(ownKey string) map[string]bool {
	ids := make(map[string]bool)
	prefix := strings.TrimSuffix(common.KEY_NEWS_CATEGORY, "%s")
	for key, value := range r.cache.Items() {
		if key == ownKey || !strings.HasPrefix(key, prefix) {
			continue
		}
		headlines, ok := value.([]model.Headline)
		if !ok {
			continue
		}
		for _, h := range headlines {
			ids[h.ArticleID] = true
		}
	}
	return ids
}
