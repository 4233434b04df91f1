package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), conn))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	err = Migrate(context.Background(), conn)
	assert.ErrorContains(t, err, "apply schema")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "", Options{})
	assert.Error(t, err)
}
