package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	"github.com/trezcool/darasa/testutil"
)

const newPassword = "N3w$ecret.Pwd"

func setup(t *testing.T) (*commandLine, user.Repository) {
	t.Helper()
	usrRepo := inmemdb.NewUserRepository(inmemdb.Open())

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &commandLine{
		conf:   &core.Config{Database: core.DatabaseConfig{Engine: "postgres"}},
		db:     db,
		usrSvc: user.NewService(usrRepo),
		out:    &bytes.Buffer{},
	}, usrRepo
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err))
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func runTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			tt.check(t, cli.run(context.Background(), append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t)
	runTests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
	assert.Contains(t, cli.out.(*bytes.Buffer).String(), "resetpassword -email EMAIL")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var gotCmd string
	orig := gooseRunFunc
	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		gotCmd = command
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = orig })

	runTests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
	})
	assert.Equal(t, "create", gotCmd)

	cli.db = nil
	runTests(t, cli, []cliTest{{name: "in-memory store", args: []string{"migrate", "up"}, wantErr: errNoSQL}})
}

func Test_commandLine_createdb(t *testing.T) {
	cli, _ := setup(t)

	var called bool
	orig := createDBFunc
	createDBFunc = func(context.Context, *core.Config) error {
		called = true
		return nil
	}
	t.Cleanup(func() { createDBFunc = orig })

	runTests(t, cli, []cliTest{{name: "postgres", args: []string{"createdb"}}})
	assert.True(t, called)

	called = false
	cli.conf.Database.Engine = core.DBEngineMemory
	runTests(t, cli, []cliTest{{name: "in-memory store", args: []string{"createdb"}, wantErr: errNoSQL}})
	assert.False(t, called)
}

func Test_commandLine_addUser(t *testing.T) {
	cli, usrRepo := setup(t)
	existing := testutil.CreateUser(t, usrRepo, "Prof", "Lumumba", "prof@test.cd", auth.RoleFaculty)

	runTests(t, cli, []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "missing names", args: []string{"adduser", "-email", "admin@test.cd"}, pwd: newPassword, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "admin@test.cd", "-first", "Ad", "-last", "Min"}, wantErr: errHelp},
		{
			name: "invalid role", args: []string{"adduser", "-email", "admin@test.cd", "-first", "Ad", "-last", "Min", "-role", "dean"},
			pwd: newPassword, wantErrStr: `invalid role "dean"`,
		},
		{
			name: "weak password", args: []string{"adduser", "-email", "admin@test.cd", "-first", "Ad", "-last", "Min"},
			pwd: "12345678", wantErrStr: "password cannot be entirely numeric",
		},
		{name: "create admin", args: []string{"adduser", "-email", " Admin@Test.cd ", "-first", "Ad", "-last", "Min"}, pwd: newPassword},
		{name: "update existing", args: []string{"adduser", "-email", "prof@test.cd", "-first", "Patrice", "-last", "Lumumba", "-role", "admin"}, pwd: newPassword},
	})

	ctx := context.Background()
	admin, err := usrRepo.GetUserByEmail(ctx, "admin@test.cd")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)
	assert.NoError(t, admin.CheckPassword(newPassword))

	updated, err := usrRepo.GetUserByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Patrice", updated.FirstName)
	assert.Equal(t, auth.RoleAdmin, updated.Role)
	assert.NoError(t, updated.CheckPassword(newPassword))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, usrRepo := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "Hero", "Mbuyi", "hero@test.cd", auth.RoleStudent)

	runTests(t, cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "hero@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, pwd: newPassword, wantErr: user.ErrNotFound},
		{name: "weak password", args: []string{"resetpassword", "-email", "hero@test.cd"}, pwd: "short", wantErrStr: "password must contain at least 8 characters"},
		{name: "reset", args: []string{"resetpassword", "-email", "HERO@test.cd"}, pwd: newPassword},
	})

	refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(refreshed.PasswordHash, usr.PasswordHash), "failed to update new password")
	assert.NoError(t, refreshed.CheckPassword(newPassword))
}
