package services

import (
	"tableside_server/database"
	"tableside_server/messaging"
	"tableside_server/repository"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	CacheService     *CacheService // nil when caching is disabled
	EmailService     *EmailService
	HealthService    *HealthService
	MenuService      *MenuService
	TableService     *TableService
	OrderService     *OrderService
	CustomerService  *CustomerService
	InventoryService *InventoryService
	InvoiceService   *InvoiceService
	DraftService     *DraftService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB, publisher messaging.Publisher) *ServiceManager {
	orderStore := repository.NewOrderRepository(db, logger)
	customerStore := repository.NewCustomerRepository(db, logger)
	tableStore := repository.NewTableRepository(db, logger)
	menuStore := repository.NewMenuRepository(db, logger)
	inventoryStore := repository.NewInventoryRepository(db, logger)

	var cacheService *CacheService
	if cfg.Cache.Enabled {
		cacheService = NewCacheService(logger, cfg)
	}

	emailService := NewEmailService(logger, cfg)
	healthService := NewHealthService(logger, db, cacheService)
	menuService := NewMenuService(logger, menuStore, cacheService)
	orderService := NewOrderService(logger, cfg, orderStore, customerStore, publisher)
	tableService := NewTableService(logger, tableStore, orderService)
	customerService := NewCustomerService(logger, customerStore)
	inventoryService := NewInventoryService(logger, inventoryStore, orderStore, publisher)
	invoiceService := NewInvoiceService(logger, cfg, orderStore, tableStore, emailService)
	draftService := NewDraftService(logger, cfg, menuService, orderService)

	return &ServiceManager{
		CacheService:     cacheService,
		EmailService:     emailService,
		HealthService:    healthService,
		MenuService:      menuService,
		TableService:     tableService,
		OrderService:     orderService,
		CustomerService:  customerService,
		InventoryService: inventoryService,
		InvoiceService:   invoiceService,
		DraftService:     draftService,
	}
}

// Close waits for background work and releases the cache connection pool
func (sm *ServiceManager) Close() error {
	sm.OrderService.Wait()
	if sm.CacheService != nil {
		return sm.CacheService.Close()
	}
	return nil
}
