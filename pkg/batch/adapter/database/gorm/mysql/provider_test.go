package mysql

import (
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbconfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/config"
)

func TestConnectionString_RoundTrips(t *testing.T) {
	c := dbconfig.DatabaseConfig{Host: "db", Port: 3306, User: "prep", Password: "p@ss/word", Database: "energy"}

	dsn := ConnectionString(c)
	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "prep", parsed.User)
	assert.Equal(t, "p@ss/word", parsed.Passwd)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "energy", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}
