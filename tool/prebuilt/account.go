package prebuilt

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

var (
	// ErrUserNotFound is returned by get_user_info for unknown user ids.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrgNotFound is returned by get_org_info for unknown org ids.
	ErrOrgNotFound = errors.New("org not found")
)

// User is an account as returned by get_user_info.
type User struct {
	ID    string `json:"user_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	OrgID string `json:"org_id"`
}

// Org is an organization as returned by get_org_info.
type Org struct {
	ID   string `json:"org_id"`
	Name string `json:"name"`
	Plan string `json:"plan"`
}

// AccountDirectory is the lookup backend of the account toolkit.
type AccountDirectory struct {
	mu    sync.RWMutex
	users map[string]User
	orgs  map[string]Org
}

// NewAccountDirectory creates a directory holding the given users and orgs.
func NewAccountDirectory(users []User, orgs []Org) *AccountDirectory {
	d := &AccountDirectory{
		users: make(map[string]User, len(users)),
		orgs:  make(map[string]Org, len(orgs)),
	}

	for _, u := range users {
		d.users[u.ID] = u
	}

	for _, o := range orgs {
		d.orgs[o.ID] = o
	}

	return d
}

// DemoAccountDirectory returns a small fixed directory for demos.
func DemoAccountDirectory() *AccountDirectory {
	return NewAccountDirectory(
		[]User{
			{ID: "user_123", Name: "John Smith", Email: "john.smith@example.com", OrgID: "org_456"},
			{ID: "user_789", Name: "Jane Doe", Email: "jane.doe@example.com", OrgID: "org_999"},
		},
		[]Org{
			{ID: "org_456", Name: "Acme Corp", Plan: "Enterprise"},
			{ID: "org_999", Name: "Initech", Plan: "Starter"},
		},
	)
}

// PutUser adds or replaces a user.
func (d *AccountDirectory) PutUser(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users[u.ID] = u
}

// PutOrg adds or replaces an org.
func (d *AccountDirectory) PutOrg(o Org) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.orgs[o.ID] = o
}

// User looks up a user by id.
func (d *AccountDirectory) User(id string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}

	return u, nil
}

// Org looks up an org by id.
func (d *AccountDirectory) Org(id string) (Org, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	o, ok := d.orgs[id]
	if !ok {
		return Org{}, fmt.Errorf("%w: %s", ErrOrgNotFound, id)
	}

	return o, nil
}

type userArgs struct {
	UserID string `json:"user_id" jsonschema:"description=The user id, e.g. user_123"`
}

type orgArgs struct {
	OrgID string `json:"org_id" jsonschema:"description=The org id, e.g. org_456"`
}

// AccountToolkit returns tools that fetch user and org info by id from dir.
func AccountToolkit(dir *AccountDirectory) *tool.Toolkit {
	return tool.MustToolkit("account", "Tools for fetching user and org info",
		tool.NewTypedTool("get_user_info", "Get information about a user by user id", func(_ *core.ToolContext, a userArgs) (any, error) {
			return dir.User(a.UserID)
		}),
		tool.NewTypedTool("get_org_info", "Get information about an organization by org id", func(_ *core.ToolContext, a orgArgs) (any, error) {
			return dir.Org(a.OrgID)
		}),
	)
}
