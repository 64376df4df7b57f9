package models

// DatabaseRecord is one managed database cluster as presented to the
// discovery step. Sourced fresh from the provider on every request.
type DatabaseRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Engine         string `json:"engine"`
	Region         string `json:"region"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	NumNodes       int    `json:"num_nodes"`
	Status         string `json:"status"`
	Monitored      bool   `json:"monitored"`
	PMMServiceName string `json:"pmm_service_name,omitempty"`
}

// Online reports whether the cluster can accept a new integration.
func (d DatabaseRecord) Online() bool {
	return d.Status == "online"
}

// MonitoringUser is a provider-created database credential for the agent.
type MonitoringUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
