package accesscontrol

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Object is a protected resource family.
type Object string

// Action is an operation on an Object.
type Action string

const (
	ObjectPets      Object = "pets"
	ObjectAdoptions Object = "adoptions"
)

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionSubmit  Action = "submit"
	ActionReadOwn Action = "read_own"
	ActionReadAll Action = "read_all"
	ActionDecide  Action = "decide"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// RBAC answers role based access questions. Admins inherit every user permission.
type RBAC struct {
	enforcer *casbin.SyncedEnforcer
}

// New builds the enforcer with the built-in policy set.
func New() (*RBAC, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("accesscontrol: parse model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("accesscontrol: build enforcer: %w", err)
	}
	rbac := &RBAC{enforcer: e}
	if err := rbac.allow("user", ObjectAdoptions, ActionSubmit, ActionReadOwn); err != nil {
		return nil, err
	}
	if err := rbac.allow("admin", ObjectPets, ActionCreate, ActionUpdate, ActionDelete); err != nil {
		return nil, err
	}
	if err := rbac.allow("admin", ObjectAdoptions, ActionReadAll, ActionDecide); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicy(roleSubject("admin"), roleSubject("user")); err != nil {
		return nil, fmt.Errorf("accesscontrol: inherit role: %w", err)
	}
	return rbac, nil
}

// Allowed reports whether role may perform act on obj.
func (r *RBAC) Allowed(role string, obj Object, act Action) (bool, error) {
	if role == "" {
		return false, nil
	}
	return r.enforcer.Enforce(roleSubject(role), string(obj), string(act))
}

func (r *RBAC) allow(role string, obj Object, actions ...Action) error {
	policies := make([][]string, 0, len(actions))
	for _, act := range actions {
		policies = append(policies, []string{roleSubject(role), string(obj), string(act)})
	}
	if _, err := r.enforcer.AddPolicies(policies); err != nil {
		return fmt.Errorf("accesscontrol: add policies: %w", err)
	}
	return nil
}

func roleSubject(role string) string {
	return "role::" + role
}
