package models

import "fmt"

// The workflow error taxonomy. Every outbound failure is mapped to one of
// these before it crosses a service boundary; the endpoint layer converts
// them into the uniform {ok:false, message, error_code?} envelope.

// AuthError means a credential was rejected by the provider or PMM server.
type AuthError struct {
	Field   string // "do_token" or "pmm_password"
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ConnectivityError means the provider or PMM server could not be reached.
type ConnectivityError struct {
	Target  string
	Message string
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach %s: %s", e.Target, e.Message)
}

// ProviderError is a generic non-2xx response from the cloud API.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

// UserExistsError is a soft conflict from user provisioning. It carries the
// existing username so the caller can redirect toward manual entry.
type UserExistsError struct {
	Username string
}

func (e *UserExistsError) Error() string {
	return fmt.Sprintf("user %q already exists; reset its password in the DigitalOcean control panel or enter its credentials manually", e.Username)
}

// RegistrationError means a pmm-admin invocation failed. Output carries the
// combined process output for diagnostics.
type RegistrationError struct {
	Message string
	Output  string
}

func (e *RegistrationError) Error() string { return e.Message }

// NotFoundError means pmm-admin reported the service as unknown, a soft
// condition relayed to the caller.
type NotFoundError struct {
	Service string
	Output  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service %q is not registered with PMM", e.Service)
}

// ValidationError covers malformed requests and workflow gating violations.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
