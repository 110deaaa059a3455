package model

import (
	"gold-pulse/config"
	"gold-pulse/pkg/common"
	"time"
)

type Asset struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	NewsCategory string `json:"newsCategory"`
	Alert        bool   `json:"alert"`
}

func (a Asset) IsGold() bool {
	return a.Kind == common.ASSET_KIND_GOLD
}

// AssetsFromConfig converts the configured basket.
func AssetsFromConfig(cfg []config.Asset) []Asset {
	assets := make([]Asset, 0, len(cfg))
	for _, a := range cfg {
		assets = append(assets, Asset{
			Symbol:       a.Symbol,
			Name:         a.Name,
			Kind:         a.Kind,
			NewsCategory: a.NewsCategory,
			Alert:        a.Alert,
		})
	}
	return assets
}

// Quote is a reference price together with the source that produced it.
type Quote struct {
	Price     Price     `json:"price"`
	Source    string    `json:"source"`
	Primary   bool      `json:"primary"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Proxied reports that a fallback source answered instead of the primary one.
func (q Quote) Proxied() bool {
	return q.Source != "" && !q.Primary
}

// Headline is one news article title fed to the forecast provider.
type Headline struct {
	ArticleID string    `json:"articleId"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	PubDate   time.Time `json:"pubDate"`
}

// Titles extracts the headline strings.
func Titles(headlines []Headline) []string {
	out := make([]string, 0, len(headlines))
	for _, h := range headlines {
		out = append(out, h.Title)
	}
	return out
}
