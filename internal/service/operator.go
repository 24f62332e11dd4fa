package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisabled           = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUnknownPermission  = errors.New("unknown permission")
)

type OperatorService struct {
	store *store.Store
}

func NewOperatorService(s *store.Store) *OperatorService {
	return &OperatorService{store: s}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkGrants(grants []string) error {
	for _, g := range grants {
		if !permission.Permission(g).Known() {
			return fmt.Errorf("%w: %s", ErrUnknownPermission, g)
		}
	}
	return nil
}

// CreateOperator registers a console account. An empty password creates a
// Google-only account with a random unusable password.
func (o *OperatorService) CreateOperator(ctx context.Context, email, password, name string, role models.Role, grants []string) (*models.Operator, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := checkGrants(grants); err != nil {
		return nil, err
	}
	if password == "" {
		password = utils.GenerateRandomString(24)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if _, err := o.store.GetOperatorByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("operator %s already exists", email)
	}

	op := &models.Operator{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         role,
		Permissions:  utils.DatatypesJSONFromStrings(grants),
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	// try create; on an id collision (rare) regenerate a few times
	for i := 0; i < 5; i++ {
		id, err := utils.GenerateOperatorID()
		if err != nil {
			return nil, err
		}
		op.ID = id
		if err = o.store.CreateOperator(ctx, op); err == nil {
			return op, nil
		}
	}
	return nil, errors.New("could not create unique operator id")
}

// Authenticate checks an email/password pair.
func (o *OperatorService) Authenticate(ctx context.Context, email, password string) (*models.Operator, error) {
	op, err := o.store.GetOperatorByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := utils.ComparePasswordAndHash(password, op.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if !op.Active {
		return nil, ErrDisabled
	}
	_ = o.store.TouchLogin(ctx, op.ID)
	return op, nil
}

// ByVerifiedEmail resolves a Google sign-in. Only pre-registered active
// operators are let in.
func (o *OperatorService) ByVerifiedEmail(ctx context.Context, email string) (*models.Operator, error) {
	op, err := o.store.GetOperatorByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !op.Active {
		return nil, ErrDisabled
	}
	_ = o.store.TouchLogin(ctx, op.ID)
	return op, nil
}

type OperatorUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Active      *bool     `json:"active,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
	Password    *string   `json:"password,omitempty"`
}

// UpdateOperator applies the non-nil fields. Deactivating an operator
// revokes its refresh tokens.
func (o *OperatorService) UpdateOperator(ctx context.Context, id string, u OperatorUpdate) (*models.Operator, error) {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = strings.TrimSpace(*u.Name)
	}
	if u.Role != nil {
		role := models.Role(*u.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		fields["role"] = role
	}
	if u.Active != nil {
		fields["active"] = *u.Active
	}
	if u.Permissions != nil {
		if err := checkGrants(*u.Permissions); err != nil {
			return nil, err
		}
		fields["permissions"] = utils.DatatypesJSONFromStrings(*u.Permissions)
	}
	if u.Password != nil {
		hash, err := utils.HashPassword(*u.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	if len(fields) > 0 {
		if err := o.store.UpdateOperatorFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	if u.Active != nil && !*u.Active {
		if err := o.store.RevokeOperatorTokens(ctx, id); err != nil {
			return nil, err
		}
	}
	return o.store.GetOperatorByID(ctx, id)
}

func (o *OperatorService) List(ctx context.Context) ([]*models.Operator, error) {
	return o.store.ListOperators(ctx)
}

// Bootstrap creates the first super admin when the operator table is
// empty. It is a no-op otherwise.
func (o *OperatorService) Bootstrap(ctx context.Context, email, password string) (*models.Operator, error) {
	if email == "" || password == "" {
		return nil, nil
	}
	n, err := o.store.CountOperators(ctx)
	if err != nil || n > 0 {
		return nil, err
	}
	return o.CreateOperator(ctx, email, password, "Administrator", models.RoleSuperAdmin, nil)
}
