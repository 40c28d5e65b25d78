// Package statistics reports row counts and crawl status per configured site.
package statistics

import (
	"context"

	"github.com/nao1215/sitesearch/internal/config"
	"github.com/nao1215/sitesearch/internal/model"
)

// Repository is the read access the Service needs.
type Repository interface {
	GetSiteByURL(ctx context.Context, url string) (*model.Site, error)
	CountPages(ctx context.Context, siteID int64) (int64, error)
	CountLemmas(ctx context.Context, siteID int64) (int64, error)
}

// Service computes statistics for the configured sites.
type Service struct {
	sites []config.Site
	store Repository
}

// NewService creates a Service.
func NewService(sites []config.Site, store Repository) *Service {
	return &Service{sites: append([]config.Site(nil), sites...), store: store}
}

// Statistics counts current rows. Configured sites that were never crawled
// are listed with zero counts and no status.
func (s *Service) Statistics(ctx context.Context) model.StatisticsResponse {
	data := model.StatisticsData{
		Total:    model.TotalStatistics{Sites: len(s.sites)},
		Detailed: make([]model.DetailedStatisticsItem, 0, len(s.sites)),
	}

	for _, cs := range s.sites {
		item := model.DetailedStatisticsItem{URL: cs.Scope(), Name: cs.Name}

		site, err := s.store.GetSiteByURL(ctx, cs.Scope())
		if err != nil {
			return failed(err)
		}
		if site != nil {
			item.Status = site.Status.String()
			item.StatusTime = site.StatusTime.UnixMilli()
			item.Error = site.LastError
			if item.Pages, err = s.store.CountPages(ctx, site.ID); err != nil {
				return failed(err)
			}
			if item.Lemmas, err = s.store.CountLemmas(ctx, site.ID); err != nil {
				return failed(err)
			}
			data.Total.Indexing = data.Total.Indexing || site.IsIndexing()
		}

		data.Total.Pages += item.Pages
		data.Total.Lemmas += item.Lemmas
		data.Detailed = append(data.Detailed, item)
	}

	return model.StatisticsResponse{Result: true, Statistics: data}
}

func failed(err error) model.StatisticsResponse {
	return model.StatisticsResponse{
		Result:     false,
		Statistics: model.StatisticsData{Detailed: []model.DetailedStatisticsItem{}},
		Error:      err.Error(),
	}
}
