package handler

import (
	"net/http"
	"testing"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListStudents_Success(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.ListStudents, http.MethodGet, "/api/v1/students?branchId=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	students := decodeList(t, rec)
	require.Len(t, students, 5)

	byID := map[float64]map[string]interface{}{}
	for _, s := range students {
		byID[s["id"].(float64)] = s
	}
	assert.Equal(t, "PAID", byID[1]["paymentStatus"])
	assert.Equal(t, "150000.00", byID[1]["expectedAmount"])
	assert.Equal(t, "0.00", byID[1]["remainingAmount"])
	assert.Equal(t, "Central", byID[1]["branchName"])

	assert.Equal(t, "PARTIAL", byID[2]["paymentStatus"])
	assert.Equal(t, "40000.00", byID[2]["totalPaidInMonth"])
	assert.Equal(t, "60000.00", byID[2]["remainingAmount"])
	assert.Equal(t, float64(2024), byID[2]["year"])
	assert.Equal(t, float64(3), byID[2]["month"])
}

func TestListStudents_ExplicitPeriod(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.ListStudents, http.MethodGet, "/api/v1/students?branchId=1&year=2024&month=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// February's due date rolls forward to March 10, ten days before today
	for _, s := range decodeList(t, rec) {
		if s["id"].(float64) == 2 {
			assert.Equal(t, "OVERDUE", s["paymentStatus"])
			assert.Equal(t, "60000.00", s["totalPaidInMonth"])
			assert.Equal(t, float64(2), s["month"])
		}
	}
}

func TestListStudents_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		field  string
	}{
		{"missing branch", "/api/v1/students", "branchId"},
		{"non-numeric branch", "/api/v1/students?branchId=central", "branchId"},
		{"non-numeric year", "/api/v1/students?branchId=1&year=last", "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rec := env.do(env.h.Students.ListStudents, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)

			problem := decodeProblem(t, rec)
			assert.Equal(t, ErrorTypeValidation, problem.Type)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
		})
	}
}

func TestListStudents_InvalidMonthIsValidationError(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.ListStudents, http.MethodGet, "/api/v1/students?branchId=1&year=2024&month=13", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "month", decodeProblem(t, rec).Errors[0].Field)
}

func TestListStudents_OtherBranchForbidden(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.ListStudents, http.MethodGet, "/api/v1/students?branchId=2", "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	problem := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeForbidden, problem.Type)
	assert.Equal(t, "/api/v1/students", problem.Instance)
}

func TestListStudents_SuperAdminSeesEveryBranch(t *testing.T) {
	env := newTestEnv()
	env.principal = &domain.Principal{Subject: "auth0|owner", Role: domain.RoleSuperAdmin}

	rec := env.do(env.h.Students.ListStudents, http.MethodGet, "/api/v1/students?branchId=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

func TestListStudents_NoPrincipalForbidden(t *testing.T) {
	env := newTestEnv()
	env.principal = nil

	rec := env.do(env.h.Students.ListStudents, http.MethodGet, "/api/v1/students?branchId=1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetStudent(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.GetStudent, http.MethodGet, "/api/v1/students/2", "", "id", "2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	student := decodeObject(t, rec)
	assert.Equal(t, "Dilnoza", student["firstName"])
	assert.Equal(t, "2024-03-12", student["lastPaymentDate"])
	groups := student["groups"].([]interface{})
	require.Len(t, groups, 1)
	assert.Equal(t, "100000.00", groups[0].(map[string]interface{})["price"])
}

func TestGetStudent_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"invalid id", "abc", http.StatusBadRequest},
		{"zero id", "0", http.StatusBadRequest},
		{"unknown student", "99", http.StatusNotFound},
		{"other branch", "6", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rec := env.do(env.h.Students.GetStudent, http.MethodGet, "/api/v1/students/"+tt.id, "", "id", tt.id)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestUnpaidStudents(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.UnpaidStudents, http.MethodGet, "/api/v1/students/unpaid?branchId=1&year=2024&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows := decodeList(t, rec)
	require.Len(t, rows, 2)

	remaining := map[float64]string{}
	for _, row := range rows {
		remaining[row["studentId"].(float64)] = row["remainingAmount"].(string)
	}
	assert.Equal(t, map[float64]string{2: "60000.00", 5: "80000.00"}, remaining)
}

func TestStatistics(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.Statistics, http.MethodGet, "/api/v1/students/statistics?branchId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decodeObject(t, rec)
	assert.Equal(t, float64(5), stats["totalStudents"])
	assert.Equal(t, float64(1), stats["paidStudents"])
	assert.Equal(t, float64(20), stats["paymentRate"])
}

func TestSearchAndRecentStudents(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.SearchStudents, http.MethodGet, "/api/v1/students/search?branchId=1&name=yusup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeList(t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, float64(2), found[0]["id"])

	rec = env.do(env.h.Students.RecentStudents, http.MethodGet, "/api/v1/students/recent?branchId=1&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decodeList(t, rec)
	require.Len(t, recent, 2)
	assert.Equal(t, float64(5), recent[0]["id"])
}

func TestStudentSubresources(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.StudentPayments, http.MethodGet, "/api/v1/students/2/payments", "", "id", "2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = env.do(env.h.Students.StudentGroups, http.MethodGet, "/api/v1/students/1/groups", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = env.do(env.h.Students.StudentProductSales, http.MethodGet, "/api/v1/students/1/product-sales", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	sales := decodeList(t, rec)
	require.Len(t, sales, 1)
	assert.Equal(t, "45000.00", sales[0]["totalAmount"])

	rec = env.do(env.h.Students.StudentPayments, http.MethodGet, "/api/v1/students/6/payments", "", "id", "6")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateStudent_Success(t *testing.T) {
	env := newTestEnv()
	body := `{"firstName":"Laylo","lastName":"Saidova","phoneNumber":"+998901112233","branchId":1,"paymentDayOfMonth":15,"groupIds":[11,12]}`

	rec := env.do(env.h.Students.CreateStudent, http.MethodPost, "/api/v1/students", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	student := decodeObject(t, rec)
	assert.Equal(t, "Laylo", student["firstName"])
	assert.Equal(t, "130000.00", student["expectedAmount"])
	assert.Equal(t, "UPCOMING", student["paymentStatus"])
	assert.Equal(t, "2024-04-15", student["nextDueDate"])
	assert.Len(t, student["groups"], 2)
	assert.Equal(t, []string{"student.created"}, env.pub.Types())
}

func TestCreateStudent_ValidationErrors(t *testing.T) {
	env := newTestEnv()
	body := `{"lastName":"Saidova","branchId":1,"paymentDayOfMonth":40}`

	rec := env.do(env.h.Students.CreateStudent, http.MethodPost, "/api/v1/students", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fields := map[string]string{}
	for _, fe := range decodeProblem(t, rec).Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Is required", fields["firstName"])
	assert.Equal(t, "Must be at most 31", fields["paymentDayOfMonth"])
	assert.Len(t, env.repos.Students.Students, 6)
}

func TestCreateStudent_MalformedBody(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.CreateStudent, http.MethodPost, "/api/v1/students", `{"firstName":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeProblem(t, rec).Detail)
}

func TestCreateStudent_GroupFromOtherBranch(t *testing.T) {
	env := newTestEnv()
	body := `{"firstName":"Laylo","lastName":"Saidova","branchId":1,"groupIds":[20]}`

	rec := env.do(env.h.Students.CreateStudent, http.MethodPost, "/api/v1/students", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	problem := decodeProblem(t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "groupIds", problem.Errors[0].Field)
	assert.Len(t, env.repos.Students.Students, 6)
}

func TestCreateStudent_ForbiddenBranchHasNoSideEffects(t *testing.T) {
	env := newTestEnv()
	body := `{"firstName":"Laylo","lastName":"Saidova","branchId":2}`

	rec := env.do(env.h.Students.CreateStudent, http.MethodPost, "/api/v1/students", body)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, env.repos.Students.Students, 6)
	assert.Equal(t, 0, env.repos.Tx.Calls)
	assert.Empty(t, env.pub.Events)
}

func TestUpdateStudent(t *testing.T) {
	env := newTestEnv()
	body := `{"firstName":"Malika","lastName":"Tosheva-Karimova","branchId":1,"paymentDayOfMonth":25,"groupIds":[10]}`

	rec := env.do(env.h.Students.UpdateStudent, http.MethodPut, "/api/v1/students/4", body, "id", "4")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	student := decodeObject(t, rec)
	assert.Equal(t, "Tosheva-Karimova", student["lastName"])
	groups := student["groups"].([]interface{})
	require.Len(t, groups, 1)
	assert.Equal(t, "Math A", groups[0].(map[string]interface{})["name"])
	assert.Equal(t, []string{"student.updated"}, env.pub.Types())
}

func TestUpdateStudent_MoveToForbiddenBranch(t *testing.T) {
	env := newTestEnv()
	body := `{"firstName":"Aziz","lastName":"Rahimov","branchId":2}`

	rec := env.do(env.h.Students.UpdateStudent, http.MethodPut, "/api/v1/students/1", body, "id", "1")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(1), env.repos.Students.Students[1].BranchID)
	assert.Empty(t, env.pub.Events)
}

func TestDeleteStudent(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Students.DeleteStudent, http.MethodDelete, "/api/v1/students/3", "", "id", "3")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.StudentDeleted, env.repos.Students.Students[3].State)

	rec = env.do(env.h.Students.GetStudent, http.MethodGet, "/api/v1/students/3", "", "id", "3")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(env.h.Students.DeleteStudent, http.MethodDelete, "/api/v1/students/6", "", "id", "6")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.StudentActive, env.repos.Students.Students[6].State)
}
