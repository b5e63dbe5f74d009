package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/enum"
	"github.com/quickstack-pos/api/internal/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsersByTenant(ctx context.Context, tenantID uuid.UUID) ([]database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	DeactivateUser(ctx context.Context, arg database.DeactivateUserParams) (uuid.UUID, error)
}

// UserHandler manages the staff accounts of the caller's tenant.
type UserHandler struct {
	store UserStore
	log   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore, log *zap.Logger) *UserHandler {
	return &UserHandler{store: store, log: log}
}

// RegisterRoutes registers staff endpoints. All of them are manager-only.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireManager)
		r.Get("/users", h.List)
		r.Post("/users", h.Create)
		r.Put("/users/{id}", h.Update)
		r.Delete("/users/{id}", h.Delete)
	})
}

// --- Request / Response types ---

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type userDetailResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDetailResponse(u database.User) userDetailResponse {
	return userDetailResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// --- Handlers ---

// List returns the active staff of the tenant.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	users, err := h.store.ListUsersByTenant(r.Context(), claims.TenantID)
	if err != nil {
		h.log.Error("list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	resp := make([]userDetailResponse, len(users))
	for i, u := range users {
		resp[i] = toUserDetailResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a staff account. Only an owner may create another owner.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "password is required")
		return
	}
	if !h.validStaff(w, claims.Role, req.Email, req.FullName, req.Role) {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error("hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		TenantID:       claims.TenantID,
		Email:          req.Email,
		HashedPassword: string(hashed),
		FullName:       req.FullName,
		Role:           req.Role,
	})
	if err != nil {
		h.writeStoreError(w, "create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDetailResponse(user))
}

// Update changes email, name and role of a staff account.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user ID")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if !h.validStaff(w, claims.Role, req.Email, req.FullName, req.Role) {
		return
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:       userID,
		TenantID: claims.TenantID,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		h.writeStoreError(w, "update user", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDetailResponse(user))
}

// Delete deactivates a staff account. Callers cannot deactivate themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user ID")
		return
	}
	if userID == claims.UserID {
		writeError(w, http.StatusConflict, "CANNOT_DEACTIVATE_SELF", "cannot deactivate your own account")
		return
	}

	if _, err := h.store.DeactivateUser(r.Context(), database.DeactivateUserParams{
		ID:       userID,
		TenantID: claims.TenantID,
	}); err != nil {
		h.writeStoreError(w, "deactivate user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *UserHandler) validStaff(w http.ResponseWriter, callerRole, email, fullName, role string) bool {
	if email == "" || fullName == "" || role == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "email, fullName and role are required")
		return false
	}
	if !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid email format")
		return false
	}
	if !enum.IsValidRole(role) {
		writeError(w, http.StatusBadRequest, "INVALID_ROLE", "role must be OWNER, MANAGER or CASHIER")
		return false
	}
	if role == enum.UserRoleOwner && callerRole != enum.UserRoleOwner {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "only an owner can grant the OWNER role")
		return false
	}
	return true
}

func (h *UserHandler) writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		return
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		writeError(w, http.StatusConflict, "EMAIL_EXISTS", "email already exists")
		return
	}
	h.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
