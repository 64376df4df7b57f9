package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForID_Aliases(t *testing.T) {
	pg, err := ForID("pg")
	require.NoError(t, err)
	assert.Equal(t, "pg", pg.ID())

	alias, err := ForID("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "pg", alias.ID())

	mysql, err := ForID("mysql")
	require.NoError(t, err)
	assert.Equal(t, "mysql", mysql.ID())
}

func TestForID_Unknown(t *testing.T) {
	_, err := ForID("oracle")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestForIDSupported_RejectsStub(t *testing.T) {
	_, err := ForIDSupported("mongodb")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEngineUnsupported)

	_, err = ForIDSupported("pg")
	assert.NoError(t, err)
}

func TestAll_StableOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 3)
	assert.Equal(t, "pg", all[0].ID())
	assert.Equal(t, "mysql", all[1].ID())
	assert.Equal(t, "mongodb", all[2].ID())
	assert.False(t, all[2].Supported())
}

func TestPostgreSQL_AddCommand(t *testing.T) {
	inst := Instance{
		Name:     "prod-pg",
		Host:     "db.example.com",
		Port:     25060,
		Username: "pmm_monitor",
		Password: "s3cret",
	}

	args := PostgreSQL{}.AddCommand("https://admin:pw@127.0.0.1/", inst)
	require.NotEmpty(t, args)
	assert.Equal(t, "add", args[0])
	assert.Equal(t, "postgresql", args[1])
	assert.Contains(t, args, "--username=pmm_monitor")
	assert.Contains(t, args, "--password=s3cret")
	assert.Contains(t, args, "--host=db.example.com")
	assert.Contains(t, args, "--port=25060")
	assert.Contains(t, args, "--service-name=prod-pg")
	assert.Contains(t, args, "--database=defaultdb")
	assert.Contains(t, args, "--query-source=pgstatements")
	assert.Contains(t, args, "--tls")
	assert.Contains(t, args, "--tls-skip-verify")
	assert.Contains(t, args, "--server-url=https://admin:pw@127.0.0.1/")
	assert.Contains(t, args, "--server-insecure-tls")
}

func TestMySQL_AddCommand(t *testing.T) {
	inst := Instance{
		Name:     "prod-mysql",
		Host:     "mysql.example.com",
		Port:     25060,
		Username: "pmm_monitor",
		Password: "s3cret",
	}

	args := MySQL{}.AddCommand("https://admin:pw@127.0.0.1/", inst)
	require.NotEmpty(t, args)
	assert.Equal(t, "add", args[0])
	assert.Equal(t, "mysql", args[1])
	assert.Contains(t, args, "--query-source=perfschema")
	assert.NotContains(t, args, "--database=defaultdb")
	assert.Contains(t, args, "--service-name=prod-mysql")
}

func TestVerifyDSN(t *testing.T) {
	inst := Instance{Host: "h", Port: 25060, Username: "u", Password: "p"}

	driver, dsn := PostgreSQL{}.VerifyDSN(inst)
	assert.Equal(t, "postgres", driver)
	assert.Contains(t, dsn, "host=h")
	assert.Contains(t, dsn, "sslmode=require")

	driver, dsn = MySQL{}.VerifyDSN(inst)
	assert.Equal(t, "mysql", driver)
	assert.Contains(t, dsn, "u:p@tcp(h:25060)")
	assert.Contains(t, dsn, "tls=skip-verify")

	driver, _ = MongoDB{}.VerifyDSN(inst)
	assert.Empty(t, driver)
}

func TestPostSteps(t *testing.T) {
	inst := Instance{Name: "db", Host: "h", Port: 25060, Username: "pmm_monitor"}

	pgSteps := PostgreSQL{}.PostSteps(inst)
	require.NotEmpty(t, pgSteps)
	assert.Contains(t, pgSteps[0].Command, "pg_stat_statements")
	assert.Contains(t, pgSteps[0].Command, "GRANT pg_read_all_stats TO pmm_monitor")

	mysqlSteps := MySQL{}.PostSteps(inst)
	require.NotEmpty(t, mysqlSteps)
	assert.Contains(t, mysqlSteps[0].Command, "REPLICATION CLIENT")
	assert.Contains(t, mysqlSteps[0].Command, "performance_schema")

	mongoSteps := MongoDB{}.PostSteps(inst)
	require.NotEmpty(t, mongoSteps)
	assert.Contains(t, mongoSteps[0].Description, "not yet supported")
}

func TestDefaultPorts(t *testing.T) {
	assert.Equal(t, 25060, PostgreSQL{}.DefaultPort())
	assert.Equal(t, 25060, MySQL{}.DefaultPort())
}
