package auth

import (
	"encoding/json"
)

// Capability names a single permitted action, e.g. "team:invite".
type Capability = string

// PermissionAll is the wildcard capability. A role carrying it passes
// every permission check.
const PermissionAll Capability = "all"

// PermissionSet decodes the role's serialized permission collection.
// Malformed data resolves to the empty set, never to an error: a role
// with an unreadable permission blob can do nothing.
func (r *Role) PermissionSet() map[Capability]struct{} {
	set := map[Capability]struct{}{}
	if r == nil || r.Permissions == "" {
		return set
	}

	var names []string
	if err := json.Unmarshal([]byte(r.Permissions), &names); err != nil {
		return set
	}

	for _, name := range names {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// SetPermissions serializes the capability list into the stored form.
func (r *Role) SetPermissions(capabilities []Capability) error {
	if capabilities == nil {
		capabilities = []Capability{}
	}
	raw, err := json.Marshal(capabilities)
	if err != nil {
		return err
	}
	r.Permissions = string(raw)
	return nil
}

// HasPermission answers whether the role grants the requested
// capability. The "all" wildcard grants everything.
func HasPermission(role *Role, required Capability) bool {
	set := role.PermissionSet()
	if _, ok := set[PermissionAll]; ok {
		return true
	}
	_, ok := set[required]
	return ok
}
