package request

// Step 1: credential validation.

type ValidateTokenDTO struct {
	DOToken string `json:"do_token" validate:"required"`
}

type ValidatePMMDTO struct {
	PMMPassword string `json:"pmm_password" validate:"required"`
}

// Step 3: discovery and selection.

type ListDatabasesDTO struct {
	Engine     string `json:"engine" validate:"required"`
	UsePrivate bool   `json:"use_private"`
}

type SelectDatabasesDTO struct {
	DatabaseIDs []string `json:"db_ids" validate:"required,min=1"`
}

// Step 4: monitoring-user provisioning.

type CreateUserDTO struct {
	DatabaseID string `json:"db_id" validate:"required"`
	Username   string `json:"username"`
}

type ManualCredentialDTO struct {
	DatabaseID string `json:"db_id" validate:"required"`
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Step 5: integration, plus removal of already-monitored services.

type InstanceDTO struct {
	Name     string `json:"name" validate:"required"`
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type IntegrateDTO struct {
	Engine   string      `json:"engine" validate:"required"`
	Instance InstanceDTO `json:"instance" validate:"required"`
}

type RemoveDTO struct {
	ServiceName string `json:"service_name" validate:"required"`
	Engine      string `json:"engine" validate:"required"`
}
