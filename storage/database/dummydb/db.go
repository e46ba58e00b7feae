// Package dummydb is an in-memory storage engine. All tables share one lock,
// so every repository method is atomic with respect to the others.
package dummydb

import (
	"sync"

	"github.com/stephenschool/schoolconnect/core/fee"
	"github.com/stephenschool/schoolconnect/core/inquiry"
	"github.com/stephenschool/schoolconnect/core/session"
	"github.com/stephenschool/schoolconnect/core/site"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
)

type DB struct {
	sync.RWMutex

	users     map[int]*user.User
	students  map[int]*student.Profile
	records   map[int]*student.AcademicRecord
	fees      map[int]*fee.Fee
	payments  map[int]*fee.Payment
	inquiries map[int]*inquiry.Inquiry
	settings  map[int]*site.Setting
	notices   map[int]*site.Notice
	messages  map[int]*site.ContactMessage
	gallery   map[int]*site.GalleryItem
	feats     map[int]*site.Achievement
	sessions  map[string]session.Session

	seq map[string]int // last id per table
}

func Open() *DB {
	return &DB{
		users:     make(map[int]*user.User),
		students:  make(map[int]*student.Profile),
		records:   make(map[int]*student.AcademicRecord),
		fees:      make(map[int]*fee.Fee),
		payments:  make(map[int]*fee.Payment),
		inquiries: make(map[int]*inquiry.Inquiry),
		settings:  make(map[int]*site.Setting),
		notices:   make(map[int]*site.Notice),
		messages:  make(map[int]*site.ContactMessage),
		gallery:   make(map[int]*site.GalleryItem),
		feats:     make(map[int]*site.Achievement),
		sessions:  make(map[string]session.Session),
		seq:       make(map[string]int),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}

// deleteUser removes a user and everything that references it. Must be called with the write lock held.
func (db *DB) deleteUser(id int) bool {
	if _, ok := db.users[id]; !ok {
		return false
	}
	for sid, p := range db.students {
		if p.UserID == id {
			db.deleteStudent(sid)
		}
	}
	for token, s := range db.sessions {
		if s.UserID == id {
			delete(db.sessions, token)
		}
	}
	delete(db.users, id)
	return true
}

func (db *DB) deleteStudent(id int) {
	for fid, f := range db.fees {
		if f.StudentID == id {
			db.deleteFee(fid)
		}
	}
	for rid, r := range db.records {
		if r.StudentID == id {
			delete(db.records, rid)
		}
	}
	delete(db.students, id)
}

func (db *DB) deleteFee(id int) {
	for pid, p := range db.payments {
		if p.FeeID == id {
			delete(db.payments, pid)
		}
	}
	delete(db.fees, id)
}
