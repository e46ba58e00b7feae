package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/auth"
	"github.com/stephenschool/schoolconnect/core/session"
	"github.com/stephenschool/schoolconnect/core/site"
	"github.com/stephenschool/schoolconnect/core/user"
	"github.com/stephenschool/schoolconnect/storage"
	"github.com/stephenschool/schoolconnect/storage/database"
	"github.com/stephenschool/schoolconnect/tests"
)

const testPwd = "Kx9#mPq2vL"

var repos *storage.Repositories

func setup(t *testing.T) *commandLine {
	conf := core.NewTestConfig()
	repos = storage.NewMemory()

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(repos.Users)
	sessions := session.NewManager(repos.Sessions, conf.Server.SessionIdleTimeout)

	return &commandLine{
		usrSvc:   usrSvc,
		authSvc:  auth.NewService(usrSvc, sessions),
		sessions: sessions,
		siteSvc:  site.NewService(repos.Site, nil, conf.AdminEmail),
		validate: validate,
		out:      io.Discard,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()

	switch {
	case tt.wantErr != nil:
		assert.ErrorIs(t, err, tt.wantErr)
	case tt.wantErrStr != "":
		assert.EqualError(t, err, tt.wantErrStr)
	default:
		assert.NoError(t, err)
	}
}

func mockReadPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"adduser", "-lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	t.Run("memory engine", func(t *testing.T) {
		err := cli.run([]string{"admin", "migrate", "up"})
		assert.Equal(t, errNoSQLDatabase, err)
	})

	conf := core.NewTestConfig()
	conf.Database.Engine = core.EngineSqlite
	conf.Database.Path = ":memory:"
	db, err := database.Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cli.db = db

	gooseRunFunc = func(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
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
	t.Cleanup(func() { gooseRunFunc = database.RunMigration })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "timetable", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	testutil.CreateUser(t, repos.Users, "Taken", "taken", testPwd, user.RoleStudent)

	type extra struct {
		pwd      string
		wantRole user.Role
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "hero"}, wantErr: errHelp},
		{
			name: "username taken", args: []string{"adduser", "-username", "Taken"},
			extra: extra{pwd: testPwd}, wantErr: user.ErrUsernameExists,
		},
		{
			name: "student", args: []string{"adduser", "-username", "hero", "-name", "Hero", "-email", "hero@test.school"},
			extra: extra{pwd: testPwd, wantRole: user.RoleStudent},
		},
		{
			name: "admin", args: []string{"adduser", "-username", "boss", "-admin"},
			extra: extra{pwd: testPwd, wantRole: user.RoleAdmin},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		ex, _ := tt.extra.(extra)
		mockReadPassword(ex.pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, tt, err)
			if err != nil {
				return
			}

			usr, err := repos.Users.GetUser(context.Background(), user.GetFilter{Username: args[3]})
			require.NoError(t, err)
			assert.Equal(t, ex.wantRole, usr.Role)
			assert.True(t, usr.CheckPassword(ex.pwd))
		})
	}
}

func Test_commandLine_addUser_passwordPolicy(t *testing.T) {
	cli := setup(t)
	mockReadPassword("12345678")

	err := cli.run([]string{"admin", "adduser", "-username", "hero"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "pwdnotallnum", verrs[0].Tag())

	_, err = repos.Users.GetUser(context.Background(), user.GetFilter{Username: "hero"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repos.Users, "User", "awe", testPwd, user.RoleStudent)
	token, err := cli.sessions.Create(ctx, usr.ID)
	require.NoError(t, err)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "Zr7!wQe4nB"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "Zr7!wQe4nB"}},
		{name: "reset (case-insensitive username)", args: []string{"resetpassword", "-username", "AWE"}, extra: extra{pwd: "Qp3$vNs8kD"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		ex, _ := tt.extra.(extra)
		mockReadPassword(ex.pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, tt, err)
			if err != nil {
				return
			}

			refreshedUsr, err := repos.Users.GetUser(ctx, user.GetFilter{ID: usr.ID})
			require.NoError(t, err)
			assert.False(t, bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash), "failed to update new password")
			assert.True(t, refreshedUsr.CheckPassword(ex.pwd))

			_, err = cli.sessions.Resolve(ctx, token)
			assert.ErrorIs(t, err, session.ErrNotFound)
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "seed"}))
	settings, err := cli.siteSvc.Settings(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, settings)

	// seeding twice adds nothing
	require.NoError(t, cli.run([]string{"admin", "seed"}))
	again, err := cli.siteSvc.Settings(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(settings))
}

func Test_commandLine_pruneSessions(t *testing.T) {
	cli := setup(t)
	assert.NoError(t, cli.run([]string{"admin", "prunesessions"}))
}
