package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub/restaurant-api/internal/cache"
	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/logger"
	"github.com/dinehub/restaurant-api/internal/repository"
)

const foodCacheTTL = 5 * time.Minute

// CatalogService is the read side used by order creation plus the admin CRUD
// surface. Lookups go through redis so a burst of checkouts does not hammer
// the foods table; writes invalidate.
type CatalogService struct {
	foods repository.FoodRepo
	cache cache.Cache
}

func NewCatalogService(foods repository.FoodRepo, c cache.Cache) *CatalogService {
	return &CatalogService{foods: foods, cache: c}
}

func (s *CatalogService) GetFood(ctx context.Context, id uuid.UUID) (*domain.Food, error) {
	key := s.cache.Key("food", id.String())
	if raw, err := s.cache.Get(ctx, key); err != nil {
		logger.Warn("food cache read failed", "err", err)
	} else if raw != "" {
		var f domain.Food
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			return &f, nil
		}
	}

	f, err := s.foods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(f); err == nil {
		if err := s.cache.Set(ctx, key, string(b), foodCacheTTL); err != nil {
			logger.Warn("food cache write failed", "err", err)
		}
	}
	return f, nil
}

func (s *CatalogService) ListFoods(ctx context.Context, categoryID uuid.UUID) ([]domain.Food, error) {
	return s.foods.List(ctx, categoryID)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.foods.ListCategories(ctx)
}

type FoodInput struct {
	FoodName    string    `json:"food_name"`
	Image       string    `json:"image"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"category_id"`
}

func (s *CatalogService) CreateFood(ctx context.Context, caller domain.Identity, in FoodInput) (*domain.Food, error) {
	f, err := s.foodFromInput(caller, in)
	if err != nil {
		return nil, err
	}
	if err := s.foods.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *CatalogService) UpdateFood(ctx context.Context, caller domain.Identity, id uuid.UUID, in FoodInput) (*domain.Food, error) {
	f, err := s.foodFromInput(caller, in)
	if err != nil {
		return nil, err
	}
	f.ID = id
	if err := s.foods.Update(ctx, f); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return f, nil
}

func (s *CatalogService) DeleteFood(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	if !caller.Is(domain.RoleAdmin) {
		return fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if err := s.foods.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, caller domain.Identity, name string) (*domain.Category, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	c := &domain.Category{CategoryName: strings.TrimSpace(name)}
	if err := s.foods.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) foodFromInput(caller domain.Identity, in FoodInput) (*domain.Food, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(in.FoodName) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: food name and description are required", domain.ErrValidation)
	}
	if in.CategoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: category id is required", domain.ErrValidation)
	}
	price, err := decimalFromString(in.Price)
	if err != nil {
		return nil, err
	}
	return &domain.Food{
		FoodName:    strings.TrimSpace(in.FoodName),
		Image:       in.Image,
		Price:       price,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  in.CategoryID,
	}, nil
}

func decimalFromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid price", domain.ErrValidation)
	}
	return d.Round(2), nil
}

func (s *CatalogService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Del(ctx, s.cache.Key("food", id.String())); err != nil {
		logger.Warn("food cache invalidation failed", "err", err)
	}
}
