package models

import "time"

// Step is the workflow position a session has reached. Endpoints gate on it:
// no skipping forward, free navigation backward.
type Step int

const (
	StepCredentials Step = iota + 1
	StepEngine
	StepDiscovery
	StepProvisioning
	StepIntegration
)

// CredentialMode records how a monitoring credential was obtained.
type CredentialMode string

const (
	CredentialModeAuto   CredentialMode = "auto"
	CredentialModeManual CredentialMode = "manual"
)

// MonitoringCredential is the database-level credential the PMM agent will
// use for one selected database. Held in the session during step 4 only.
type MonitoringCredential struct {
	Mode     CredentialMode `json:"mode"`
	Username string         `json:"username"`
	Password string         `json:"password"`
	Ready    bool           `json:"ready"`
}

// SelectedDatabase captures the connection identity of a database the user
// picked during discovery, in selection order.
type SelectedDatabase struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Session is the per-browser-session workflow state, stored server-side and
// keyed by an opaque identifier. The DO token and PMM password live here and
// nowhere else; they are never written to disk or logged.
type Session struct {
	ID          string    `json:"id"`
	DOToken     string    `json:"do_token"`
	PMMPassword string    `json:"pmm_password"`
	TokenValid  bool      `json:"token_valid"`
	PMMValid    bool      `json:"pmm_valid"`
	Engine      string    `json:"engine"`
	UsePrivate  bool      `json:"use_private"`
	Step        Step      `json:"step"`
	CreatedAt   time.Time `json:"created_at"`

	Selected    []SelectedDatabase              `json:"selected,omitempty"`
	Credentials map[string]MonitoringCredential `json:"credentials,omitempty"`
}

// NewSession returns a fresh session at step 1.
func NewSession(id string) *Session {
	return &Session{
		ID:          id,
		Step:        StepCredentials,
		CreatedAt:   time.Now(),
		Credentials: map[string]MonitoringCredential{},
	}
}

// CredentialsValid reports whether both step-1 validations have passed.
func (s *Session) CredentialsValid() bool {
	return s.TokenValid && s.PMMValid
}

// CredentialFor returns the monitoring credential held for a database id.
func (s *Session) CredentialFor(dbID string) (MonitoringCredential, bool) {
	cred, ok := s.Credentials[dbID]
	return cred, ok
}

// IsSelected reports whether dbID is part of the current selection.
func (s *Session) IsSelected(dbID string) bool {
	for _, db := range s.Selected {
		if db.ID == dbID {
			return true
		}
	}
	return false
}

// AllCredentialsReady reports whether every selected database holds a ready
// credential, the gate between step 4 and step 5.
func (s *Session) AllCredentialsReady() bool {
	if len(s.Selected) == 0 {
		return false
	}
	for _, db := range s.Selected {
		cred, ok := s.Credentials[db.ID]
		if !ok || !cred.Ready {
			return false
		}
	}
	return true
}

// ResetDownstream clears state belonging to steps after target, used when the
// user navigates backward and re-runs an earlier step.
func (s *Session) ResetDownstream(target Step) {
	if target < StepDiscovery {
		s.Engine = ""
		s.UsePrivate = false
	}
	if target < StepProvisioning {
		s.Selected = nil
		s.Credentials = map[string]MonitoringCredential{}
	}
	if s.Step > target {
		s.Step = target
	}
}
