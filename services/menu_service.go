package services

import (
	"context"
	"strings"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type MenuService struct {
	logger *gecho.Logger
	menu   MenuStore
	cache  *CacheService // nil when caching is disabled
}

func NewMenuService(logger *gecho.Logger, menu MenuStore, cache *CacheService) *MenuService {
	return &MenuService{
		logger: logger,
		menu:   menu,
		cache:  cache,
	}
}

// MenuItemView is a menu item with its resolved category name
type MenuItemView struct {
	tables.MenuItem
	CategoryName string `json:"category_name"`
}

func newMenuItemView(item tables.MenuItem) MenuItemView {
	return MenuItemView{MenuItem: item, CategoryName: item.CategoryName()}
}

// ListMenuItems returns the catalog, unavailable items included unless
// AvailableOnly is set
func (ms *MenuService) ListMenuItems(ctx context.Context, opts *structs.MenuListOptions) ([]MenuItemView, error) {
	if opts == nil {
		opts = &structs.MenuListOptions{}
	}

	var items []tables.MenuItem
	key := MenuListKey(opts)
	if ms.cache != nil {
		cached, err := ms.cache.GetMenuList(ctx, key)
		if err != nil {
			ms.logger.Warn("Failed to get menu items from cache", gecho.Field("error", err), gecho.Field("key", key))
		}
		items = cached
	}

	if items == nil {
		var err error
		items, err = ms.menu.ListMenuItems(ctx, opts)
		if err != nil {
			ms.logger.Error("Failed to fetch menu items", gecho.Field("error", err))
			return nil, err
		}
		if ms.cache != nil {
			if err := ms.cache.SetMenuList(ctx, key, items); err != nil {
				ms.logger.Warn("Failed to cache menu items", gecho.Field("error", err), gecho.Field("key", key))
			}
		}
	}

	views := make([]MenuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, newMenuItemView(item))
	}
	return views, nil
}

func (ms *MenuService) GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItemView, error) {
	if ms.cache != nil {
		cached, err := ms.cache.GetMenuItem(ctx, id)
		if err != nil {
			ms.logger.Warn("Failed to get menu item from cache", gecho.Field("error", err), gecho.Field("id", id))
		}
		if cached != nil {
			view := newMenuItemView(*cached)
			return &view, nil
		}
	}

	item, err := ms.menu.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if ms.cache != nil {
		if err := ms.cache.SetMenuItem(ctx, item); err != nil {
			ms.logger.Warn("Failed to cache menu item", gecho.Field("error", err), gecho.Field("id", id))
		}
	}

	view := newMenuItemView(*item)
	return &view, nil
}

func (ms *MenuService) CreateMenuItem(ctx context.Context, req *structs.CreateMenuItemRequest) (*MenuItemView, error) {
	ve := &lib.ValidationError{}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		ve.Add("name", "is required")
	}
	if req.Price.IsNegative() {
		ve.Add("price", "must not be negative")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	category, err := ms.resolveCategory(ctx, req.CategoryId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item := &tables.MenuItem{
		Id:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		CategoryId:  req.CategoryId,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
		Category:    category,
	}

	if err := ms.menu.InsertMenuItem(ctx, item); err != nil {
		ms.logger.Error("Failed to create menu item", gecho.Field("error", err))
		return nil, err
	}
	ms.invalidate(ctx)

	ms.logger.Info("Menu item created", gecho.Field("id", item.Id), gecho.Field("name", item.Name))
	view := newMenuItemView(*item)
	return &view, nil
}

// UpdateMenuItem applies the fields present in req. Price changes never touch
// existing orders, which carry their own snapshot.
func (ms *MenuService) UpdateMenuItem(ctx context.Context, id uuid.UUID, req *structs.UpdateMenuItemRequest) (*MenuItemView, error) {
	item, err := ms.menu.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}

	ve := &lib.ValidationError{}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name == "" {
			ve.Add("name", "is required")
		} else {
			item.Name = name
		}
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			ve.Add("price", "must not be negative")
		} else {
			item.Price = req.Price.Round(2)
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.CategoryId != nil {
		category, err := ms.resolveCategory(ctx, req.CategoryId)
		if err != nil {
			return nil, err
		}
		item.CategoryId = req.CategoryId
		item.Category = category
	}
	item.UpdatedAt = time.Now()

	if err := ms.menu.UpdateMenuItem(ctx, item); err != nil {
		ms.logger.Error("Failed to update menu item", gecho.Field("error", err), gecho.Field("id", id))
		return nil, err
	}
	ms.invalidate(ctx)

	view := newMenuItemView(*item)
	return &view, nil
}

func (ms *MenuService) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	if err := ms.menu.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	ms.invalidate(ctx)

	ms.logger.Info("Menu item deleted", gecho.Field("id", id))
	return nil
}

func (ms *MenuService) ListCategories(ctx context.Context) ([]tables.MenuCategory, error) {
	if ms.cache != nil {
		cached, err := ms.cache.GetCategories(ctx)
		if err != nil {
			ms.logger.Warn("Failed to get categories from cache", gecho.Field("error", err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	categories, err := ms.menu.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if ms.cache != nil {
		if err := ms.cache.SetCategories(ctx, categories); err != nil {
			ms.logger.Warn("Failed to cache categories", gecho.Field("error", err))
		}
	}
	return categories, nil
}

func (ms *MenuService) CreateCategory(ctx context.Context, name string) (*tables.MenuCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, lib.NewValidationError("name", "is required")
	}

	category := &tables.MenuCategory{
		Id:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := ms.menu.InsertCategory(ctx, category); err != nil {
		return nil, err
	}
	ms.invalidate(ctx)

	return category, nil
}

// resolveCategory loads the category a request points at; nil id means uncategorized
func (ms *MenuService) resolveCategory(ctx context.Context, id *uuid.UUID) (*tables.MenuCategory, error) {
	if id == nil {
		return nil, nil
	}
	category, err := ms.menu.GetCategory(ctx, *id)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (ms *MenuService) invalidate(ctx context.Context) {
	if ms.cache == nil {
		return
	}
	if err := ms.cache.InvalidateMenuCaches(ctx); err != nil {
		ms.logger.Warn("Failed to invalidate menu caches", gecho.Field("error", err))
	}
}
