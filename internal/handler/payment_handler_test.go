package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newPaymentBody = `{"studentId":2,"groupId":10,"branchId":1,"amount":"60000","category":"cash","paymentYear":2024,"paymentMonth":3}`

func TestCreatePayment_Success(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.CreatePayment, http.MethodPost, "/api/v1/payments", newPaymentBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	payment := decodeObject(t, rec)
	assert.Equal(t, "60000.00", payment["amount"])
	assert.Equal(t, "CASH", payment["category"])
	assert.Equal(t, "COMPLETED", payment["status"])
	assert.Equal(t, "2024-03-10", payment["dueDate"])
	assert.Equal(t, "2024-03-20T14:30:00Z", payment["createdAt"])
	assert.Equal(t, []string{"payment.created"}, env.pub.Types())

	// the student is now fully paid for March
	rec = env.do(env.h.Students.GetStudent, http.MethodGet, "/api/v1/students/2", "", "id", "2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PAID", decodeObject(t, rec)["paymentStatus"])
}

func TestCreatePayment_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{
			name:   "amount not a number",
			body:   `{"studentId":2,"groupId":10,"branchId":1,"amount":"sixty","category":"CASH","paymentYear":2024,"paymentMonth":3}`,
			status: http.StatusBadRequest,
			field:  "amount",
		},
		{
			name:   "zero amount",
			body:   `{"studentId":2,"groupId":10,"branchId":1,"amount":"0","category":"CASH","paymentYear":2024,"paymentMonth":3}`,
			status: http.StatusBadRequest,
			field:  "amount",
		},
		{
			name:   "month out of range",
			body:   `{"studentId":2,"groupId":10,"branchId":1,"amount":"10","category":"CASH","paymentYear":2024,"paymentMonth":13}`,
			status: http.StatusBadRequest,
			field:  "paymentMonth",
		},
		{
			name:   "unknown category",
			body:   `{"studentId":2,"groupId":10,"branchId":1,"amount":"10","category":"CRYPTO","paymentYear":2024,"paymentMonth":3}`,
			status: http.StatusBadRequest,
			field:  "category",
		},
		{
			name:   "student not in group",
			body:   `{"studentId":4,"groupId":10,"branchId":1,"amount":"10","category":"CASH","paymentYear":2024,"paymentMonth":3}`,
			status: http.StatusBadRequest,
			field:  "groupId",
		},
		{
			name:   "unknown student",
			body:   `{"studentId":99,"groupId":10,"branchId":1,"amount":"10","category":"CASH","paymentYear":2024,"paymentMonth":3}`,
			status: http.StatusNotFound,
		},
		{
			name:   "other branch",
			body:   `{"studentId":6,"groupId":20,"branchId":2,"amount":"10","category":"CASH","paymentYear":2024,"paymentMonth":3}`,
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rec := env.do(env.h.Payments.CreatePayment, http.MethodPost, "/api/v1/payments", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.field != "" {
				problem := decodeProblem(t, rec)
				require.NotEmpty(t, problem.Errors)
				assert.Equal(t, tt.field, problem.Errors[0].Field)
			}
			assert.Len(t, env.repos.Payments.Payments, 5)
			assert.Empty(t, env.pub.Events)
		})
	}
}

func TestCreatePayment_StoreFailureIsInternal(t *testing.T) {
	env := newTestEnv()
	env.repos.Payments.CreateFn = func(p *domain.Payment) (*domain.Payment, error) {
		return nil, errors.New("connection reset by peer")
	}

	rec := env.do(env.h.Payments.CreatePayment, http.MethodPost, "/api/v1/payments", newPaymentBody)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	problem := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeInternal, problem.Type)
	assert.Equal(t, "Failed to create payment", problem.Detail)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestListPayments_Filters(t *testing.T) {
	tests := []struct {
		name   string
		target string
		count  int
	}{
		{"whole branch", "/api/v1/payments?branchId=1", 4},
		{"by category", "/api/v1/payments?branchId=1&category=card", 1},
		{"by period", "/api/v1/payments?branchId=1&year=2024&month=3", 3},
		{"by category and period", "/api/v1/payments?branchId=1&category=CASH&year=2024&month=3", 2},
		{"by category and other period", "/api/v1/payments?branchId=1&category=transfer&year=2024&month=2", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rec := env.do(env.h.Payments.ListPayments, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Len(t, decodeList(t, rec), tt.count)
		})
	}
}

func TestListPayments_UnknownCategory(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.ListPayments, http.MethodGet, "/api/v1/payments?branchId=1&category=barter", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "category", decodeProblem(t, rec).Errors[0].Field)
}

func TestPaymentsInRange(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.PaymentsInRange, http.MethodGet, "/api/v1/payments/range?branchId=1&startDate=2024-03-08&endDate=2024-03-09", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeList(t, rec), 2)

	rec = env.do(env.h.Payments.PaymentsInRange, http.MethodGet, "/api/v1/payments/range?branchId=1&startDate=2024-03-09&endDate=2024-03-08", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "startDate", decodeProblem(t, rec).Errors[0].Field)

	rec = env.do(env.h.Payments.PaymentsInRange, http.MethodGet, "/api/v1/payments/range?branchId=1&startDate=08.03.2024&endDate=2024-03-09", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Must be a date in YYYY-MM-DD format", decodeProblem(t, rec).Errors[0].Message)

	rec = env.do(env.h.Payments.PaymentsInRange, http.MethodGet, "/api/v1/payments/range?branchId=1&startDate=2024-03-08", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "endDate", decodeProblem(t, rec).Errors[0].Field)
}

func TestSearchAndRecentPayments(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.SearchPayments, http.MethodGet, "/api/v1/payments/search?branchId=1&name=AZIZ", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = env.do(env.h.Payments.RecentPayments, http.MethodGet, "/api/v1/payments/recent?branchId=1&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decodeList(t, rec)
	require.Len(t, recent, 1)
	assert.Equal(t, float64(3), recent[0]["id"])
}

func TestStudentPaymentsEndpoint(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.StudentPayments, http.MethodGet, "/api/v1/payments/student/2", "", "studentId", "2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = env.do(env.h.Payments.StudentPayments, http.MethodGet, "/api/v1/payments/student/6", "", "studentId", "6")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(env.h.Payments.StudentPayments, http.MethodGet, "/api/v1/payments/student/99", "", "studentId", "99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPayment(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.GetPayment, http.MethodGet, "/api/v1/payments/1", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100000.00", decodeObject(t, rec)["amount"])

	rec = env.do(env.h.Payments.GetPayment, http.MethodGet, "/api/v1/payments/5", "", "id", "5")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(env.h.Payments.GetPayment, http.MethodGet, "/api/v1/payments/99", "", "id", "99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorTypeNotFound, decodeProblem(t, rec).Type)
}

func TestUpdatePaymentAmount(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.UpdatePaymentAmount, http.MethodPatch, "/api/v1/payments/3", `{"amount":"100000"}`, "id", "3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payment := decodeObject(t, rec)
	assert.Equal(t, "100000.00", payment["amount"])
	assert.Equal(t, "2024-03-10", payment["dueDate"])
	assert.Equal(t, []string{"payment.updated"}, env.pub.Types())
}

func TestUpdatePaymentAmount_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"negative amount", "3", `{"amount":"-5"}`, http.StatusBadRequest},
		{"missing amount", "3", `{}`, http.StatusBadRequest},
		{"unknown payment", "99", `{"amount":"5"}`, http.StatusNotFound},
		{"other branch", "5", `{"amount":"5"}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rec := env.do(env.h.Payments.UpdatePaymentAmount, http.MethodPatch, "/api/v1/payments/"+tt.id, tt.body, "id", tt.id)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "40000", env.repos.Payments.Payments[3].Amount.String())
			assert.Equal(t, "70000", env.repos.Payments.Payments[5].Amount.String())
		})
	}
}

func TestDeletePayment(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.Payments.DeletePayment, http.MethodDelete, "/api/v1/payments/3", "", "id", "3")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, env.repos.Payments.Payments, int64(3))
	assert.Equal(t, []string{"payment.deleted"}, env.pub.Types())

	rec = env.do(env.h.Payments.DeletePayment, http.MethodDelete, "/api/v1/payments/3", "", "id", "3")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(env.h.Payments.DeletePayment, http.MethodDelete, "/api/v1/payments/5", "", "id", "5")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, env.repos.Payments.Payments, int64(5))
}
