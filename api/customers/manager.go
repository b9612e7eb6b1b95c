package customers

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/services"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type CustomerRoutesManager struct {
	logger          *gecho.Logger
	customerService *services.CustomerService
}

func NewCustomerRoutesManager(logger *gecho.Logger, customerService *services.CustomerService) *CustomerRoutesManager {
	return &CustomerRoutesManager{
		logger:          logger,
		customerService: customerService,
	}
}

func (crm *CustomerRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", crm.ListCustomers)
		r.Post("/", crm.FindOrCreate)
		r.Get("/{id}", crm.GetCustomer)
		r.Post("/{id}/refresh", crm.RefreshStats)
	})
}

func (crm *CustomerRoutesManager) ListCustomers(w http.ResponseWriter, r *http.Request) {
	opts, err := handling.ParseCustomerListOptions(r)
	if err != nil {
		handling.HandleParamError(w, err, "customer")
		return
	}

	result, err := crm.customerService.ListCustomers(r.Context(), opts)
	if err != nil {
		handling.HandleServiceError(w, err, crm.logger, "customer")
		return
	}

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}

func (crm *CustomerRoutesManager) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "customer")
		return
	}

	customer, err := crm.customerService.GetCustomer(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(w, err, crm.logger, "customer")
		return
	}

	gecho.Success(w,
		gecho.WithData(customer),
		gecho.Send(),
	)
}

// FindOrCreate looks the customer up by phone, creating it when unknown.
func (crm *CustomerRoutesManager) FindOrCreate(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.CustomerInfo](r)
	if err != nil {
		handling.HandleBodyError(w, err, "customer")
		return
	}

	customer, err := crm.customerService.FindOrCreateCustomer(r.Context(), body.Name, body.Phone)
	if err != nil {
		handling.HandleServiceError(w, err, crm.logger, "customer")
		return
	}

	gecho.Success(w,
		gecho.WithData(customer),
		gecho.Send(),
	)
}

func (crm *CustomerRoutesManager) RefreshStats(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "customer")
		return
	}

	customer, err := crm.customerService.RefreshCustomerStats(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(w, err, crm.logger, "customer")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.customer.refreshed"),
		gecho.WithData(customer),
		gecho.Send(),
	)
}
