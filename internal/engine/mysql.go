package engine

import (
	"fmt"
	"strconv"
)

// MySQL onboards DigitalOcean Managed MySQL clusters.
type MySQL struct{}

func (MySQL) ID() string          { return "mysql" }
func (MySQL) DisplayName() string { return "MySQL" }
func (MySQL) Supported() bool     { return true }
func (MySQL) ServiceType() string { return "mysql" }
func (MySQL) DefaultPort() int    { return 25060 }

func (MySQL) AddCommand(serverURL string, inst Instance) []string {
	return []string{
		"add",
		"mysql",
		"--username=" + inst.Username,
		"--password=" + inst.Password,
		"--host=" + inst.Host,
		"--port=" + strconv.Itoa(inst.Port),
		"--service-name=" + inst.Name,
		"--tls",
		"--tls-skip-verify",
		"--server-url=" + serverURL,
		"--server-insecure-tls",
		"--query-source=perfschema",
	}
}

func (MySQL) VerifyDSN(inst Instance) (string, string) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/?tls=skip-verify&timeout=10s",
		inst.Username, inst.Password, inst.Host, inst.Port)
	return "mysql", dsn
}

func (MySQL) PostSteps(inst Instance) []PostStep {
	grant := fmt.Sprintf(
		`mysql -h %s -P %d -u doadmin -p --ssl-mode=REQUIRED -e "GRANT SELECT, PROCESS, REPLICATION CLIENT ON *.* TO '%s'@'%%'; GRANT SELECT ON performance_schema.* TO '%s'@'%%';"`,
		inst.Host, inst.Port, inst.Username, inst.Username)
	return []PostStep{
		{
			Title:       "Grant monitoring permissions",
			Description: "Run the following on the PMM server to grant the monitoring user its permissions.",
			Command:     "apt install -y mysql-client && " + grant,
		},
		{
			Title: "Node metrics limitation",
			Description: "Node Summary metrics (CPU, RAM, disk) are not available for DigitalOcean " +
				"Managed MySQL because node_exporter cannot be installed on the managed host. " +
				"Database metrics and query analytics will still be collected.",
		},
	}
}
