package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/handler"
)

// mockCustomerStore keeps customers per tenant in memory.
type mockCustomerStore struct {
	customers map[uuid.UUID]database.Customer
	createErr error
	lastList  database.ListCustomersParams
}

func newMockCustomerStore() *mockCustomerStore {
	return &mockCustomerStore{customers: make(map[uuid.UUID]database.Customer)}
}

func (m *mockCustomerStore) add(tenantID uuid.UUID, name, phone string) database.Customer {
	c := database.Customer{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Name:       testText(name),
		Phone:      testText(phone),
		TotalSpent: testNumeric("178.00"),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.customers[c.ID] = c
	return c
}

func (m *mockCustomerStore) ListCustomers(_ context.Context, arg database.ListCustomersParams) ([]database.Customer, error) {
	m.lastList = arg
	var out []database.Customer
	for _, c := range m.customers {
		if c.TenantID == arg.TenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCustomerStore) GetCustomer(_ context.Context, arg database.GetCustomerParams) (database.Customer, error) {
	c, ok := m.customers[arg.ID]
	if !ok || c.TenantID != arg.TenantID {
		return database.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCustomerStore) CreateCustomer(_ context.Context, arg database.CreateCustomerParams) (database.Customer, error) {
	if m.createErr != nil {
		return database.Customer{}, m.createErr
	}
	c := database.Customer{
		ID:         uuid.New(),
		TenantID:   arg.TenantID,
		Name:       arg.Name,
		Phone:      arg.Phone,
		Email:      arg.Email,
		Whatsapp:   arg.Whatsapp,
		City:       arg.City,
		TotalSpent: testNumeric("0"),
	}
	m.customers[c.ID] = c
	return c, nil
}

func (m *mockCustomerStore) UpdateCustomer(_ context.Context, arg database.UpdateCustomerParams) (database.Customer, error) {
	c, ok := m.customers[arg.ID]
	if !ok || c.TenantID != arg.TenantID {
		return database.Customer{}, pgx.ErrNoRows
	}
	c.Name, c.Phone, c.Email, c.Whatsapp = arg.Name, arg.Phone, arg.Email, arg.Whatsapp
	m.customers[c.ID] = c
	return c, nil
}

func (m *mockCustomerStore) SoftDeleteCustomer(_ context.Context, arg database.SoftDeleteCustomerParams) (uuid.UUID, error) {
	c, ok := m.customers[arg.ID]
	if !ok || c.TenantID != arg.TenantID {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.customers, c.ID)
	return c.ID, nil
}

func customerRouter(store handler.CustomerStore) http.Handler {
	return authedRouter(handler.NewCustomerHandler(store, nopLogger()))
}

func TestCreateCustomer(t *testing.T) {
	u := cashier()
	store := newMockCustomerStore()

	rr := doAuthRequest(t, customerRouter(store), "POST", "/customers", map[string]string{
		"name":  "Ana",
		"phone": " 5512345678 ",
		"city":  "CDMX",
	}, u)
	assertStatus(t, rr, http.StatusCreated)

	resp := decodeResponse(t, rr)
	if resp["phone"] != "5512345678" || resp["name"] != "Ana" {
		t.Errorf("customer: got %+v", resp)
	}
	if resp["email"] != nil {
		t.Errorf("email: got %v, want null", resp["email"])
	}
	if resp["totalSpent"] != "0.00" || resp["totalOrders"] != float64(0) {
		t.Errorf("stats: got spent=%v orders=%v", resp["totalSpent"], resp["totalOrders"])
	}

	id := uuid.MustParse(resp["id"].(string))
	if store.customers[id].TenantID != u.tenantID {
		t.Error("customer not scoped to caller tenant")
	}
}

func TestCreateCustomer_ContactRequired(t *testing.T) {
	rr := doAuthRequest(t, customerRouter(newMockCustomerStore()), "POST", "/customers", map[string]string{
		"name": "No Contact",
	}, cashier())
	assertStatus(t, rr, http.StatusBadRequest)
	assertErrorCode(t, rr, "CONTACT_REQUIRED")
}

func TestCreateCustomer_DuplicatePhone(t *testing.T) {
	store := newMockCustomerStore()
	store.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "customers_tenant_phone_key"}

	rr := doAuthRequest(t, customerRouter(store), "POST", "/customers", map[string]string{
		"phone": "5512345678",
	}, cashier())
	assertStatus(t, rr, http.StatusConflict)
	assertErrorCode(t, rr, "PHONE_EXISTS")
}

func TestListCustomers_TenantScoped(t *testing.T) {
	u := cashier()
	store := newMockCustomerStore()
	store.add(u.tenantID, "Ana", "5511111111")
	store.add(uuid.New(), "Other Tenant", "5522222222")

	rr := doAuthRequest(t, customerRouter(store), "GET", "/customers?search=Ana&limit=5", nil, u)
	assertStatus(t, rr, http.StatusOK)

	rows := decodeList(t, rr)
	if len(rows) != 1 || rows[0]["name"] != "Ana" {
		t.Errorf("customers: got %+v", rows)
	}
	if !store.lastList.Search.Valid || store.lastList.Search.String != "Ana" || store.lastList.Limit != 5 {
		t.Errorf("params: got %+v", store.lastList)
	}
}

func TestGetCustomer(t *testing.T) {
	u := cashier()
	store := newMockCustomerStore()
	mine := store.add(u.tenantID, "Ana", "5511111111")
	theirs := store.add(uuid.New(), "Bo", "5522222222")

	rr := doAuthRequest(t, customerRouter(store), "GET", "/customers/"+mine.ID.String(), nil, u)
	assertStatus(t, rr, http.StatusOK)
	if resp := decodeResponse(t, rr); resp["totalSpent"] != "178.00" {
		t.Errorf("totalSpent: got %v", resp["totalSpent"])
	}

	rr = doAuthRequest(t, customerRouter(store), "GET", "/customers/"+theirs.ID.String(), nil, u)
	assertStatus(t, rr, http.StatusNotFound)
	assertErrorCode(t, rr, "CUSTOMER_NOT_FOUND")
}

func TestUpdateCustomer(t *testing.T) {
	u := cashier()
	store := newMockCustomerStore()
	c := store.add(u.tenantID, "Ana", "5511111111")

	rr := doAuthRequest(t, customerRouter(store), "PUT", "/customers/"+c.ID.String(), map[string]string{
		"name":     "Ana Maria",
		"whatsapp": "5533333333",
	}, u)
	assertStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["name"] != "Ana Maria" || resp["whatsapp"] != "5533333333" || resp["phone"] != nil {
		t.Errorf("customer: got %+v", resp)
	}
}

func TestDeleteCustomer_RequiresManager(t *testing.T) {
	m := manager()
	store := newMockCustomerStore()
	c := store.add(m.tenantID, "Ana", "5511111111")

	cashierSameTenant := testUser{userID: uuid.New(), tenantID: m.tenantID, role: "CASHIER"}
	rr := doAuthRequest(t, customerRouter(store), "DELETE", "/customers/"+c.ID.String(), nil, cashierSameTenant)
	assertStatus(t, rr, http.StatusForbidden)

	rr = doAuthRequest(t, customerRouter(store), "DELETE", "/customers/"+c.ID.String(), nil, m)
	assertStatus(t, rr, http.StatusNoContent)
	if _, ok := store.customers[c.ID]; ok {
		t.Error("customer still present")
	}

	rr = doAuthRequest(t, customerRouter(store), "DELETE", "/customers/"+c.ID.String(), nil, m)
	assertStatus(t, rr, http.StatusNotFound)
}
