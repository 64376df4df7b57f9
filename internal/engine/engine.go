// Package engine provides one integration adapter per managed-database engine,
// translating generic workflow operations into engine-specific pmm-admin flags,
// connection strings and operator follow-up instructions.
package engine

import (
	"errors"
	"fmt"
)

// Instance identifies one database endpoint to register with PMM.
type Instance struct {
	Name     string
	Host     string
	Port     int
	Username string
	Password string
}

// PostStep is a manual follow-up action the operator must perform after
// a successful registration.
type PostStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Command     string `json:"command"`
}

// Integration is the capability set a database engine must implement to be
// onboarded through the workflow. Adding an engine means adding one
// implementation here; the endpoint layer stays untouched.
type Integration interface {
	// ID matches the DigitalOcean engine slug ("pg", "mysql", "mongodb").
	ID() string
	DisplayName() string
	Supported() bool
	// ServiceType is the pmm-admin service type ("postgresql", "mysql", ...).
	ServiceType() string
	// DefaultPort is the port managed clusters listen on when none is given.
	DefaultPort() int
	// AddCommand returns the pmm-admin arguments (excluding the binary itself)
	// that register inst against the PMM server at serverURL.
	AddCommand(serverURL string, inst Instance) []string
	// VerifyDSN returns a database/sql driver name and DSN used to probe
	// manually supplied monitoring credentials.
	VerifyDSN(inst Instance) (driver string, dsn string)
	PostSteps(inst Instance) []PostStep
}

var (
	ErrUnknownEngine     = errors.New("engine: unknown database engine")
	ErrEngineUnsupported = errors.New("engine: not yet supported")
)

// registry keeps a stable order so the /engines listing is deterministic.
var registry = []Integration{
	PostgreSQL{},
	MySQL{},
	MongoDB{},
}

var aliases = map[string]string{
	"pg":         "pg",
	"postgresql": "pg",
	"mysql":      "mysql",
	"mongodb":    "mongodb",
}

// ForID resolves an engine identifier or alias to its integration.
func ForID(id string) (Integration, error) {
	slug, ok := aliases[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, id)
	}
	for _, integ := range registry {
		if integ.ID() == slug {
			return integ, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, id)
}

// ForIDSupported resolves an engine and rejects stubs that must never be
// selectable in discovery or registration.
func ForIDSupported(id string) (Integration, error) {
	integ, err := ForID(id)
	if err != nil {
		return nil, err
	}
	if !integ.Supported() {
		return nil, fmt.Errorf("%s %w", integ.DisplayName(), ErrEngineUnsupported)
	}
	return integ, nil
}

// All returns every registered integration in listing order.
func All() []Integration {
	out := make([]Integration, len(registry))
	copy(out, registry)
	return out
}
