package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/auth"
	"github.com/stephenschool/schoolconnect/core/session"
	"github.com/stephenschool/schoolconnect/core/site"
	"github.com/stephenschool/schoolconnect/core/user"
	emailsvc "github.com/stephenschool/schoolconnect/services/email"
	logsvc "github.com/stephenschool/schoolconnect/services/logger"
	"github.com/stephenschool/schoolconnect/storage"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(false)

	// set up storage; migrations are left to the migrate command
	repos, err := storage.Open(context.Background(), conf, false /* migrate */)
	if err != nil {
		std.Fatal(err)
	}

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(repos.Users)
	sessions := session.NewManager(repos.Sessions, conf.Server.SessionIdleTimeout)

	// start CLI
	cli := commandLine{
		db:       repos.DB,
		usrSvc:   usrSvc,
		authSvc:  auth.NewService(usrSvc, sessions),
		sessions: sessions,
		siteSvc:  site.NewService(repos.Site, emailsvc.NewConsoleService(conf, nil, logger), conf.AdminEmail),
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	if cerr := repos.Close(); cerr != nil {
		std.Print(cerr)
	}
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
