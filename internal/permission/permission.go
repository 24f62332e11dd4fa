// Package permission resolves what a console operator may see and do.
// Every sensitive render or action in the console consults a Checker first.
package permission

import (
	"errors"
	"sort"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

var ErrForbidden = errors.New("permission denied")

type Permission string

const (
	MastersView         Permission = "masters.view"
	MastersManage       Permission = "masters.manage"
	SubscriptionsView   Permission = "subscriptions.view"
	SubscriptionsManage Permission = "subscriptions.manage"
	EmployersView       Permission = "employers.view"
	EmployersManage     Permission = "employers.manage"
	EmployersExport     Permission = "employers.export"
	UsersView           Permission = "users.view"
	UsersManage         Permission = "users.manage"
	AdminsView          Permission = "admins.view"
	AdminsManage        Permission = "admins.manage"
	OperatorsManage     Permission = "operators.manage"
)

var all = []Permission{
	MastersView, MastersManage,
	SubscriptionsView, SubscriptionsManage,
	EmployersView, EmployersManage, EmployersExport,
	UsersView, UsersManage,
	AdminsView, AdminsManage,
	OperatorsManage,
}

func All() []Permission {
	out := make([]Permission, len(all))
	copy(out, all)
	return out
}

func (p Permission) Known() bool {
	for _, k := range all {
		if k == p {
			return true
		}
	}
	return false
}

type Checker interface {
	Can(p Permission) bool
}

type Set map[Permission]struct{}

func NewSet(perms ...Permission) Set {
	s := Set{}
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

func (s Set) Can(p Permission) bool {
	_, ok := s[p]
	return ok
}

// List returns the permissions in a stable order.
func (s Set) List() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Preset returns the default grants of a role.
func Preset(role models.Role) Set {
	switch role {
	case models.RoleSuperAdmin:
		return NewSet(all...)
	case models.RoleAdmin:
		s := NewSet(all...)
		delete(s, OperatorsManage)
		return s
	case models.RoleViewer:
		return NewSet(MastersView, SubscriptionsView, EmployersView, UsersView, AdminsView)
	}
	return Set{}
}

// Resolve merges a role preset with extra per-operator grants. Unknown
// grants are ignored. Inactive operators get nothing.
func Resolve(role models.Role, active bool, extra []string) Set {
	if !active {
		return Set{}
	}
	s := Preset(role)
	for _, raw := range extra {
		p := Permission(raw)
		if p.Known() {
			s[p] = struct{}{}
		}
	}
	return s
}

// Func adapts a plain function to a Checker.
type Func func(Permission) bool

func (f Func) Can(p Permission) bool { return f(p) }

// Allow is a Checker that grants everything.
var Allow Checker = Func(func(Permission) bool { return true })

// Deny is a Checker that grants nothing.
var Deny Checker = Func(func(Permission) bool { return false })
