package buylist

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// allowed forward transitions; any status may also fall back to watching
var statusTransitions = map[enums.BuyListStatus][]enums.BuyListStatus{
	enums.BuyListStatusWatching: {enums.BuyListStatusOrdered},
	enums.BuyListStatusOrdered:  {enums.BuyListStatusBought, enums.BuyListStatusWatching},
	enums.BuyListStatusBought:   {enums.BuyListStatusWatching},
}

// ServiceParams groups dependencies for the buy-list service.
type ServiceParams struct {
	Repo        *Repository
	PriceSource PriceSource
	Logger      *logger.Logger
}

// Service manages tracked offers and their price history.
type Service interface {
	List(ctx context.Context, status *enums.BuyListStatus) ([]ItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (ItemDTO, error)
	Create(ctx context.Context, input CreateItemInput) (ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status enums.BuyListStatus) (ItemDTO, error)
	PriceHistory(ctx context.Context, id uuid.UUID) ([]PriceSampleDTO, error)
	Summarize(ctx context.Context) (Summary, error)
	RefreshPrices(ctx context.Context) (RefreshSummary, error)
}

type service struct {
	repo        *Repository
	priceSource PriceSource
	logger      *logger.Logger
}

// NewService builds a buy-list service. The price source is optional;
// without it RefreshPrices only stamps check times.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New(errors.CodeValidation, "buy list repo is required")
	}
	if params.Logger == nil {
		return nil, errors.New(errors.CodeValidation, "buy list logger is required")
	}
	return &service{
		repo:        params.Repo,
		priceSource: params.PriceSource,
		logger:      params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, status *enums.BuyListStatus) ([]ItemDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid status %q", *status))
	}
	items, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing buy list")
	}
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, itemToDTO(item))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return ItemDTO{}, err
	}
	return itemToDTO(*item), nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (ItemDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ItemDTO{}, errors.New(errors.CodeValidation, "title is required")
	}
	shop := strings.TrimSpace(input.Shop)
	if shop == "" {
		return ItemDTO{}, errors.New(errors.CodeValidation, "shop is required")
	}
	if input.Price.IsNegative() {
		return ItemDTO{}, errors.New(errors.CodeValidation, "price cannot be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "EUR"
	}

	item := models.BuyListItem{
		ID:       uuid.New(),
		GameID:   input.GameID,
		Title:    title,
		Shop:     shop,
		URL:      input.URL,
		Price:    input.Price,
		Currency: currency,
		Status:   enums.BuyListStatusWatching,
	}
	if err := s.repo.Create(ctx, &item); err != nil {
		return ItemDTO{}, errors.Wrap(errors.CodeDependency, err, "creating buy list item")
	}
	return itemToDTO(item), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (ItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return ItemDTO{}, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return ItemDTO{}, errors.New(errors.CodeValidation, "title cannot be empty")
		}
		item.Title = title
	}
	if input.Shop != nil {
		shop := strings.TrimSpace(*input.Shop)
		if shop == "" {
			return ItemDTO{}, errors.New(errors.CodeValidation, "shop cannot be empty")
		}
		item.Shop = shop
	}
	if input.URL != nil {
		item.URL = input.URL
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return ItemDTO{}, errors.New(errors.CodeValidation, "price cannot be negative")
		}
		item.Price = *input.Price
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return ItemDTO{}, errors.Wrap(errors.CodeDependency, err, "updating buy list item")
	}
	return itemToDTO(*item), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadItem(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "deleting buy list item")
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.BuyListStatus) (ItemDTO, error) {
	if !status.IsValid() {
		return ItemDTO{}, errors.New(errors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return ItemDTO{}, err
	}
	if item.Status == status {
		return itemToDTO(*item), nil
	}
	if !transitionAllowed(item.Status, status) {
		return ItemDTO{}, errors.New(errors.CodeConflict,
			fmt.Sprintf("cannot move item from %s to %s", item.Status, status))
	}

	item.Status = status
	if err := s.repo.Save(ctx, item); err != nil {
		return ItemDTO{}, errors.Wrap(errors.CodeDependency, err, "saving status")
	}
	return itemToDTO(*item), nil
}

func (s *service) PriceHistory(ctx context.Context, id uuid.UUID) ([]PriceSampleDTO, error) {
	if _, err := s.loadItem(ctx, id); err != nil {
		return nil, err
	}
	samples, err := s.repo.ListPriceSamples(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing price samples")
	}
	dtos := make([]PriceSampleDTO, 0, len(samples))
	for _, sample := range samples {
		dtos = append(dtos, PriceSampleDTO{Price: sample.Price, RecordedAt: sample.RecordedAt})
	}
	return dtos, nil
}

// Summarize counts items per status and picks the cheapest offer per game.
// Items not linked to a catalogue game are keyed by title instead.
func (s *service) Summarize(ctx context.Context) (Summary, error) {
	items, err := s.repo.List(ctx, nil)
	if err != nil {
		return Summary{}, errors.Wrap(errors.CodeDependency, err, "listing buy list")
	}

	summary := Summary{TotalTracked: len(items)}
	cheapest := map[string]CheapestOffer{}
	for _, item := range items {
		switch item.Status {
		case enums.BuyListStatusWatching:
			summary.Watching++
		case enums.BuyListStatusOrdered:
			summary.Ordered++
		case enums.BuyListStatusBought:
			summary.Bought++
		}
		if item.Status == enums.BuyListStatusBought {
			continue
		}

		key := item.Title
		if item.GameID != nil {
			key = item.GameID.String()
		}
		offer, seen := cheapest[key]
		if !seen || item.Price.LessThan(offer.Price) {
			cheapest[key] = CheapestOffer{
				GameID: item.GameID,
				Title:  item.Title,
				Shop:   item.Shop,
				Price:  item.Price,
			}
		}
	}

	for _, offer := range cheapest {
		summary.Cheapest = append(summary.Cheapest, offer)
	}
	sortOffers(summary.Cheapest)
	return summary, nil
}

// RefreshPrices walks the watching items, asks the price source for a fresh
// quote and records a sample per change. Per-item failures are collected
// and the run continues.
func (s *service) RefreshPrices(ctx context.Context) (RefreshSummary, error) {
	status := enums.BuyListStatusWatching
	items, err := s.repo.List(ctx, &status)
	if err != nil {
		return RefreshSummary{}, errors.Wrap(errors.CodeDependency, err, "listing watching items")
	}

	var summary RefreshSummary
	var combined error
	now := time.Now()
	for _, item := range items {
		summary.Checked++
		if s.priceSource == nil {
			if err := s.repo.TouchLastChecked(ctx, item.ID, now); err != nil {
				summary.Failed++
				combined = multierr.Append(combined, fmt.Errorf("item %s: %w", item.ID, err))
			}
			continue
		}

		price, err := s.priceSource.CurrentPrice(ctx, item)
		if err != nil {
			summary.Failed++
			combined = multierr.Append(combined, fmt.Errorf("item %s: %w", item.ID, err))
			continue
		}

		if price.Equal(item.Price) {
			if err := s.repo.TouchLastChecked(ctx, item.ID, now); err != nil {
				summary.Failed++
				combined = multierr.Append(combined, fmt.Errorf("item %s: %w", item.ID, err))
			}
			continue
		}

		if err := s.repo.RecordPrice(ctx, item.ID, price, now); err != nil {
			summary.Failed++
			combined = multierr.Append(combined, fmt.Errorf("item %s: %w", item.ID, err))
			continue
		}
		summary.Updated++
	}

	if combined != nil {
		s.logger.Warn(s.logger.WithFields(ctx, map[string]any{
			"checked": summary.Checked,
			"updated": summary.Updated,
			"failed":  summary.Failed,
		}), "price refresh finished with failures")
	}
	return summary, combined
}

func (s *service) loadItem(ctx context.Context, id uuid.UUID) (*models.BuyListItem, error) {
	if id == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(errors.CodeNotFound, err, "buy list item not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading buy list item")
	}
	return item, nil
}

func transitionAllowed(from, to enums.BuyListStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func sortOffers(offers []CheapestOffer) {
	for i := 1; i < len(offers); i++ {
		for j := i; j > 0 && offers[j].Title < offers[j-1].Title; j-- {
			offers[j], offers[j-1] = offers[j-1], offers[j]
		}
	}
}
