package service

import (
	"context"
	"errors"
	"fmt"
	"gold-pulse/internal/model"
	"gold-pulse/internal/repository"
	"gold-pulse/pkg/logger"
	"gold-pulse/pkg/metrics"
	"gold-pulse/pkg/utils"
	"time"
)

var ErrPriceUnavailable = errors.New("price unavailable")

// PriceService resolves an asset's reference price through an ordered list
// of sources. The first source supporting the asset is its primary.
type PriceService interface {
	Quote(ctx context.Context, asset model.Asset) (model.Quote, error)
}

type priceService struct {
	sources []repository.PriceSourceRepository
	timeout time.Duration
	log     *logger.Logger
	metrics *metrics.Recorder
	clock   utils.Clock
}

func NewPriceService(sources []repository.PriceSourceRepository, perSourceTimeout time.Duration, log *logger.Logger, recorder *metrics.Recorder, clock utils.Clock) PriceService {
	return &priceService{
		sources: sources,
		timeout: perSourceTimeout,
		log:     log,
		metrics: recorder,
		clock:   clock,
	}
}

func (s *priceService) Quote(ctx context.Context, asset model.Asset) (model.Quote, error) {
	var errs []error
	primary := true

	for _, source := range s.sources {
		if !source.Supports(asset) {
			continue
		}

		price, err := s.fetch(ctx, source, asset)
		if err == nil {
			s.metrics.RecordPriceFetch(source.Name(), "success")
			s.metrics.RecordLastPrice(asset.Symbol, price.Float())
			return model.Quote{
				Price:     price,
				Source:    source.Name(),
				Primary:   primary,
				FetchedAt: s.clock.Now(),
			}, nil
		}

		s.metrics.RecordPriceFetch(source.Name(), "failure")
		s.log.WarnContext(ctx, "Price source failed, trying next",
			logger.StringField("symbol", asset.Symbol),
			logger.StringField("source", source.Name()),
			logger.ErrorField(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", source.Name(), err))
		primary = false

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		return model.Quote{}, fmt.Errorf("%w for %s: no source supports it", ErrPriceUnavailable, asset.Symbol)
	}
	return model.Quote{}, fmt.Errorf("%w for %s: %w", ErrPriceUnavailable, asset.Symbol, errors.Join(errs...))
}

func (s *priceService) fetch(ctx context.Context, source repository.PriceSourceRepository, asset model.Asset) (model.Price, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	price, err := source.Current(ctx, asset)
	if err != nil {
		return model.Price{}, err
	}
	if !price.Valid() {
		return model.Price{}, fmt.Errorf("source returned no amount")
	}
	return price, nil
}
