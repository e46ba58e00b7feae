package echoapi_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
	"github.com/stephenschool/schoolconnect/tests"
)

func Test_studentApi(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Admin", "admin", user.RoleAdmin)
	heroUsr := app.createUser(t, "Hero", "hero", user.RoleStudent)
	hero := testutil.StudentOf(t, app.studentRepo, heroUsr)
	adminCookie := app.login(t, "admin")
	heroCookie := app.login(t, "hero")

	studentPath := "/api/admin/students/" + strconv.Itoa(hero.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/api/student/profile", wantCode: http.StatusUnauthorized},
		{name: "admin has no profile", path: "/api/student/profile", cookie: adminCookie, wantCode: http.StatusForbidden},
		{name: "own profile", path: "/api/student/profile", cookie: heroCookie, wantData: marchallObj(t, hero)},
		{name: "students are admin only", path: "/api/admin/students", cookie: heroCookie, wantCode: http.StatusForbidden},
		{name: "list", path: "/api/admin/students", cookie: adminCookie, wantData: marchallList(t, hero)},
		{
			name: "unknown student", path: "/api/admin/students/999", cookie: adminCookie,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "invalid gender", method: http.MethodPut, path: studentPath, cookie: adminCookie,
			body: marchallObj(t, map[string]string{"gender": "robot"}), wantCode: http.StatusBadRequest,
		},
	})

	t.Run("update", func(t *testing.T) {
		rec := app.do(http.MethodPut, studentPath, adminCookie, marchallObj(t, map[string]string{"class": "Grade 5", "section": "B"}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var p student.Profile
		unmarshal(t, rec, &p)
		assert.Equal(t, "Grade 5", p.Class)
		assert.Equal(t, "B", p.Section)
		assert.Equal(t, heroUsr.ID, p.UserID)
	})

	var rec student.AcademicRecord
	t.Run("create record", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"student_id": hero.ID, "subject": "Maths", "term": "Term 1", "grade": "A", "marks": 88, "max_marks": 100,
		})
		res := app.do(http.MethodPost, "/api/admin/academic-records", adminCookie, body)
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
		unmarshal(t, res, &rec)
		assert.Equal(t, hero.ID, rec.StudentID)
		assert.Equal(t, "Maths", rec.Subject)
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "marks above max", method: http.MethodPost, path: "/api/admin/academic-records", cookie: adminCookie,
			body: marchallObj(t, map[string]interface{}{
				"student_id": hero.ID, "subject": "Maths", "term": "Term 1", "marks": 120, "max_marks": 100,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"marks": "marks cannot exceed max marks"}),
		},
		{
			name: "record for unknown student", method: http.MethodPost, path: "/api/admin/academic-records", cookie: adminCookie,
			body:     marchallObj(t, map[string]interface{}{"student_id": 999, "subject": "Maths", "term": "Term 1"}),
			wantCode: http.StatusNotFound,
		},
	})

	t.Run("own records", func(t *testing.T) {
		res := app.do(http.MethodGet, "/api/student/academic-records", heroCookie)
		require.Equal(t, http.StatusOK, res.Code)
		var records []student.AcademicRecord
		unmarshal(t, res, &records)
		require.Len(t, records, 1)
		assert.Equal(t, rec.ID, records[0].ID)

		res = app.do(http.MethodGet, studentPath+"/academic-records", adminCookie)
		require.Equal(t, http.StatusOK, res.Code)
		unmarshal(t, res, &records)
		assert.Len(t, records, 1)
	})

	t.Run("update record", func(t *testing.T) {
		path := "/api/admin/academic-records/" + strconv.Itoa(rec.ID)
		res := app.do(http.MethodPut, path, adminCookie, marchallObj(t, map[string]interface{}{
			"subject": "Maths", "term": "Term 1", "grade": "A+",
		}))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
		var got student.AcademicRecord
		unmarshal(t, res, &got)
		assert.Equal(t, "A+", got.Grade)

		res = app.do(http.MethodPut, "/api/admin/academic-records/999", adminCookie, marchallObj(t, map[string]interface{}{
			"subject": "Maths", "term": "Term 1",
		}))
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}
