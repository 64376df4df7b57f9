package engine

import (
	"fmt"
	"strconv"
)

// PostgreSQL onboards DigitalOcean Managed PostgreSQL clusters.
type PostgreSQL struct{}

func (PostgreSQL) ID() string          { return "pg" }
func (PostgreSQL) DisplayName() string { return "PostgreSQL" }
func (PostgreSQL) Supported() bool     { return true }
func (PostgreSQL) ServiceType() string { return "postgresql" }
func (PostgreSQL) DefaultPort() int    { return 25060 }

func (PostgreSQL) AddCommand(serverURL string, inst Instance) []string {
	return []string{
		"add",
		"postgresql",
		"--username=" + inst.Username,
		"--password=" + inst.Password,
		"--host=" + inst.Host,
		"--port=" + strconv.Itoa(inst.Port),
		"--service-name=" + inst.Name,
		"--database=defaultdb",
		"--auto-discovery-limit=-1",
		"--tls",
		"--tls-skip-verify",
		"--server-url=" + serverURL,
		"--server-insecure-tls",
		"--query-source=pgstatements",
	}
}

func (PostgreSQL) VerifyDSN(inst Instance) (string, string) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=defaultdb sslmode=require connect_timeout=10",
		inst.Host, inst.Port, inst.Username, inst.Password)
	return "postgres", dsn
}

func (PostgreSQL) PostSteps(inst Instance) []PostStep {
	grant := fmt.Sprintf(
		`psql "host=%s port=%d dbname=defaultdb user=doadmin sslmode=require" -c "CREATE EXTENSION IF NOT EXISTS pg_stat_statements; GRANT SELECT ON pg_stat_statements TO %s; GRANT pg_read_all_stats TO %s;"`,
		inst.Host, inst.Port, inst.Username, inst.Username)
	return []PostStep{
		{
			Title:       "Enable query analytics",
			Description: "Run the following on the PMM server to enable query analytics for this cluster.",
			Command:     "apt install -y postgresql-client && " + grant,
		},
		{
			Title: "Node metrics limitation",
			Description: "Node Summary metrics (CPU, RAM, disk) are not available for DigitalOcean " +
				"Managed PostgreSQL because node_exporter cannot be installed on the managed host. " +
				"Database metrics and query analytics will still be collected.",
		},
	}
}
