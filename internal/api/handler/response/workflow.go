package response

import (
	"pmmbridge/internal/api/models"
	"pmmbridge/internal/engine"
)

type EngineInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Supported bool   `json:"supported"`
}

type EngineList struct {
	Engines []EngineInfo `json:"engines"`
}

type DatabaseList struct {
	OK        bool                    `json:"ok"`
	Databases []models.DatabaseRecord `json:"databases"`
}

type Selection struct {
	OK       bool                      `json:"ok"`
	Selected []models.SelectedDatabase `json:"selected"`
}

type CreatedUser struct {
	OK       bool   `json:"ok"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionState mirrors the workflow position without exposing secrets.
type SessionState struct {
	OK              bool                      `json:"ok"`
	Step            int                       `json:"step"`
	TokenValid      bool                      `json:"token_valid"`
	PMMValid        bool                      `json:"pmm_valid"`
	Engine          string                    `json:"engine,omitempty"`
	UsePrivate      bool                      `json:"use_private"`
	Selected        []models.SelectedDatabase `json:"selected,omitempty"`
	CredentialReady map[string]bool           `json:"credential_ready,omitempty"`
}

// Integration is the outcome of registering a single instance.
type Integration struct {
	OK        bool              `json:"ok"`
	Output    string            `json:"output,omitempty"`
	Message   string            `json:"message,omitempty"`
	PostSteps []engine.PostStep `json:"post_steps,omitempty"`
}

// IntegrationResult is one entry of a batch run, reported independently of
// its siblings and in selection order.
type IntegrationResult struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	OK        bool              `json:"ok"`
	Output    string            `json:"output,omitempty"`
	Message   string            `json:"message,omitempty"`
	PostSteps []engine.PostStep `json:"post_steps,omitempty"`
}

type IntegrationBatch struct {
	OK      bool                `json:"ok"`
	Results []IntegrationResult `json:"results"`
}

type Removal struct {
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
}
