// Package catalog loads the fixed role library that grounds all generation.
// The library is read-only for the lifetime of the process and is refreshed
// only through Invalidate followed by the next accessor call.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonathan/career-advisor/internal/types"
)

//go:embed roles/*.json
var defaultRoles embed.FS

// Library is an immutable, in-memory view of the role catalog.
type Library struct {
	roles []types.Role
	byID  map[string]int
}

// Roles returns the catalog roles in load order. Callers must treat the
// returned slice as read-only.
func (l *Library) Roles() []types.Role {
	return l.roles
}

// Get looks up a role by identifier.
func (l *Library) Get(id string) (types.Role, bool) {
	idx, ok := l.byID[id]
	if !ok {
		return types.Role{}, false
	}
	return l.roles[idx], true
}

// Len returns the number of roles in the catalog.
func (l *Library) Len() int {
	return len(l.roles)
}

var (
	mu     sync.Mutex
	cached *Library
)

// Default returns the process-wide role library, loading the embedded
// catalog on first use. Subsequent calls return the cached library until
// Invalidate is called.
func Default() (*Library, error) {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	lib, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	cached = lib
	return cached, nil
}

// LoadDir loads a role catalog from a directory of JSON documents, one role
// per file, and installs it as the process-wide library.
func LoadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory %s: %w", dir, err)
	}

	var roles []types.Role
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read role file %s: %w", entry.Name(), err)
		}
		role, err := decodeRole(data, entry.Name())
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	lib, err := build(roles)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	cached = lib
	mu.Unlock()
	return lib, nil
}

// Invalidate drops the cached library so the next accessor call reloads it.
func Invalidate() {
	mu.Lock()
	cached = nil
	mu.Unlock()
}

func loadEmbedded() (*Library, error) {
	entries, err := defaultRoles.ReadDir("roles")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}

	var roles []types.Role
	for _, entry := range entries {
		data, err := defaultRoles.ReadFile("roles/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded role %s: %w", entry.Name(), err)
		}
		role, err := decodeRole(data, entry.Name())
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return build(roles)
}

func decodeRole(data []byte, source string) (types.Role, error) {
	var role types.Role
	if err := json.Unmarshal(data, &role); err != nil {
		return types.Role{}, fmt.Errorf("failed to parse role file %s: %w", source, err)
	}
	if role.ID == "" {
		return types.Role{}, fmt.Errorf("role file %s has no id", source)
	}
	if role.Title == "" {
		return types.Role{}, fmt.Errorf("role %s has no title", role.ID)
	}
	return role, nil
}

func build(roles []types.Role) (*Library, error) {
	byID := make(map[string]int, len(roles))
	for i, role := range roles {
		if _, exists := byID[role.ID]; exists {
			return nil, fmt.Errorf("duplicate role id %q in catalog", role.ID)
		}
		byID[role.ID] = i
	}
	return &Library{roles: roles, byID: byID}, nil
}

// FromRoles builds a library directly from role values. Useful for tests and
// for callers that assemble catalogs programmatically.
func FromRoles(roles []types.Role) (*Library, error) {
	return build(roles)
}
