// Package storage selects and opens the storage engine the application runs on.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/fee"
	"github.com/stephenschool/schoolconnect/core/inquiry"
	"github.com/stephenschool/schoolconnect/core/session"
	"github.com/stephenschool/schoolconnect/core/site"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
	"github.com/stephenschool/schoolconnect/storage/database"
	"github.com/stephenschool/schoolconnect/storage/database/dummydb"
	"github.com/stephenschool/schoolconnect/storage/database/sqlxrepos"
)

// Repositories are the repositories of one storage engine.
type Repositories struct {
	Users     user.Repository
	Students  student.Repository
	Fees      fee.Repository
	Sessions  session.Store
	Inquiries inquiry.Repository
	Site      site.Repository

	DB *sqlx.DB // nil with the memory engine
}

// NewMemory returns repositories sharing one in-memory database.
func NewMemory() *Repositories {
	db := dummydb.Open()
	return &Repositories{
		Users:     dummydb.NewUserRepository(db),
		Students:  dummydb.NewStudentRepository(db),
		Fees:      dummydb.NewFeeRepository(db),
		Sessions:  dummydb.NewSessionStore(db),
		Inquiries: dummydb.NewInquiryRepository(db),
		Site:      dummydb.NewSiteRepository(db),
	}
}

// NewSQL returns repositories over an open SQL database.
func NewSQL(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:     sqlxrepos.NewUserRepository(db),
		Students:  sqlxrepos.NewStudentRepository(db),
		Fees:      sqlxrepos.NewFeeRepository(db),
		Sessions:  sqlxrepos.NewSessionStore(db),
		Inquiries: sqlxrepos.NewInquiryRepository(db),
		Site:      sqlxrepos.NewSiteRepository(db),
		DB:        db,
	}
}

// Open opens the configured engine. SQL databases are created when missing, and migrated when migrate is set.
func Open(ctx context.Context, conf *core.Config, migrate bool) (*Repositories, error) {
	if conf.Database.Engine == core.EngineMemory {
		return NewMemory(), nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return NewSQL(db), nil
}

func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return errors.Wrap(r.DB.Close(), "closing database")
}
