package handler

import (
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// StudentHandler handles student-related HTTP requests
type StudentHandler struct {
	students *service.StudentService
	sales    *service.ProductSaleService
	gate     BranchGate
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(students *service.StudentService, sales *service.ProductSaleService, gate BranchGate) *StudentHandler {
	return &StudentHandler{students: students, sales: sales, gate: gate}
}

// StudentRequest represents the create and update student request body.
// GroupIDs is the complete membership set; an update replaces the previous one.
type StudentRequest struct {
	FirstName         string  `json:"firstName" validate:"required,max=100"`
	LastName          string  `json:"lastName" validate:"required,max=100"`
	PhoneNumber       string  `json:"phoneNumber" validate:"max=32"`
	ParentPhoneNumber string  `json:"parentPhoneNumber" validate:"max=32"`
	BranchID          int64   `json:"branchId" validate:"required,gt=0"`
	PaymentDayOfMonth *int    `json:"paymentDayOfMonth" validate:"omitempty,min=1,max=31"`
	GroupIDs          []int64 `json:"groupIds" validate:"dive,gt=0"`
}

func (r StudentRequest) input() domain.StudentInput {
	return domain.StudentInput{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		PhoneNumber:       r.PhoneNumber,
		ParentPhoneNumber: r.ParentPhoneNumber,
		BranchID:          r.BranchID,
		PaymentDayOfMonth: r.PaymentDayOfMonth,
		GroupIDs:          r.GroupIDs,
	}
}

// studentInScope loads a student, deleted or not, and checks the caller may see its branch
func (h *StudentHandler) studentInScope(c echo.Context, id int64) (*domain.Student, error) {
	student, err := h.students.Lookup(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := h.gate.Check(c, student.BranchID); err != nil {
		return nil, err
	}
	return student, nil
}

// scopedBranch reads the branchId query parameter and checks access to it
func scopedBranch(c echo.Context, gate BranchGate) (int64, error) {
	branchID, perr := queryID(c, "branchId")
	if perr != nil {
		return 0, perr
	}
	if err := gate.Check(c, branchID); err != nil {
		return 0, err
	}
	return branchID, nil
}

// respondScopeError writes the response for a failed scopedBranch call
func respondScopeError(c echo.Context, err error) error {
	if perr, ok := err.(*paramError); ok {
		return perr.respond(c)
	}
	return serviceError(c, err, "Failed to check branch access")
}

// ListStudents handles GET /api/v1/students?branchId=&year=&month=
// @Summary List students with payment status
// @Description Returns the active students of a branch with their payment projection for the requested period
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int false "Billing year, defaults to the current payment period"
// @Param month query int false "Billing month (1-12), defaults to the current payment period"
// @Success 200 {array} StudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students [get]
func (h *StudentHandler) ListStudents(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, perr := optionalInt(c, "year")
	if perr != nil {
		return perr.respond(c)
	}
	month, perr := optionalInt(c, "month")
	if perr != nil {
		return perr.respond(c)
	}

	views, err := h.students.ListByBranch(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to list students")
	}
	return c.JSON(http.StatusOK, toStudentResponses(views))
}

// SearchStudents handles GET /api/v1/students/search?branchId=&name=
// @Summary Search students
// @Description Finds active students whose full name contains the search text
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param name query string false "Case-insensitive part of the student name"
// @Success 200 {array} StudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/search [get]
func (h *StudentHandler) SearchStudents(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	views, err := h.students.Search(c.Request().Context(), branchID, c.QueryParam("name"))
	if err != nil {
		return serviceError(c, err, "Failed to search students")
	}
	return c.JSON(http.StatusOK, toStudentResponses(views))
}

// RecentStudents handles GET /api/v1/students/recent?branchId=&limit=
// @Summary List recently added students
// @Description Returns the newest active students of a branch
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param limit query int false "Maximum number of rows (default 10, max 100)"
// @Success 200 {array} StudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/recent [get]
func (h *StudentHandler) RecentStudents(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	limit, perr := optionalInt(c, "limit")
	if perr != nil {
		return perr.respond(c)
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	views, err := h.students.Recent(c.Request().Context(), branchID, n)
	if err != nil {
		return serviceError(c, err, "Failed to list recent students")
	}
	return c.JSON(http.StatusOK, toStudentResponses(views))
}

// UnpaidStudents handles GET /api/v1/students/unpaid?branchId=&year=&month=
// @Summary List unpaid students
// @Description Returns one row per student and group with an outstanding balance. Without both year and month every payment ever made counts toward the balance
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int false "Billing year, defaults to the current payment period"
// @Param month query int false "Billing month (1-12), defaults to the current payment period"
// @Success 200 {array} UnpaidStudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/unpaid [get]
func (h *StudentHandler) UnpaidStudents(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, perr := optionalInt(c, "year")
	if perr != nil {
		return perr.respond(c)
	}
	month, perr := optionalInt(c, "month")
	if perr != nil {
		return perr.respond(c)
	}

	entries, err := h.students.FindUnpaid(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to find unpaid students")
	}
	return c.JSON(http.StatusOK, toUnpaidResponses(entries))
}

// Statistics handles GET /api/v1/students/statistics?branchId=
// @Summary Get student payment statistics
// @Description Counts students per payment status for the current payment period
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Success 200 {object} domain.StudentStatistics
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/statistics [get]
func (h *StudentHandler) Statistics(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	stats, err := h.students.Statistics(c.Request().Context(), branchID)
	if err != nil {
		return serviceError(c, err, "Failed to compute student statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

// GetStudent handles GET /api/v1/students/:id?year=&month=
// @Summary Get student
// @Description Returns one student with the payment projection for the requested period
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param year query int false "Billing year, defaults to the current payment period"
// @Param month query int false "Billing month (1-12), defaults to the current payment period"
// @Success 200 {object} StudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	year, perr := optionalInt(c, "year")
	if perr != nil {
		return perr.respond(c)
	}
	month, perr := optionalInt(c, "month")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.studentInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to get student")
	}

	view, err := h.students.GetByID(c.Request().Context(), id, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to get student")
	}
	return c.JSON(http.StatusOK, toStudentResponse(view))
}

// StudentPayments handles GET /api/v1/students/:id/payments
// @Summary Get student payment history
// @Description Returns every tuition payment of the student, newest first
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {array} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/{id}/payments [get]
func (h *StudentHandler) StudentPayments(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.studentInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to get payment history")
	}

	payments, err := h.students.PaymentHistory(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to get payment history")
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// StudentGroups handles GET /api/v1/students/:id/groups
// @Summary List student groups
// @Description Returns the groups the student is a member of
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {array} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/{id}/groups [get]
func (h *StudentHandler) StudentGroups(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.studentInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to get student groups")
	}

	groups, err := h.students.Groups(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to get student groups")
	}
	return c.JSON(http.StatusOK, toGroupResponses(groups))
}

// StudentProductSales handles GET /api/v1/students/:id/product-sales
// @Summary List student purchases
// @Description Returns the product sales linked to the student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {array} ProductSaleResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/{id}/product-sales [get]
func (h *StudentHandler) StudentProductSales(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.studentInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to get student product sales")
	}

	sales, err := h.sales.ListByStudent(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to get student product sales")
	}
	return c.JSON(http.StatusOK, toProductSaleResponses(sales))
}

// CreateStudent handles POST /api/v1/students
// @Summary Create student
// @Description Creates a student and enrolls them in the given groups of the same branch
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StudentRequest true "Student to create"
// @Success 201 {object} StudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c echo.Context) error {
	var req StudentRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}
	if err := h.gate.Check(c, req.BranchID); err != nil {
		return serviceError(c, err, "Failed to create student")
	}

	view, err := h.students.Create(c.Request().Context(), req.input())
	if err != nil {
		return serviceError(c, err, "Failed to create student")
	}
	return c.JSON(http.StatusCreated, toStudentResponse(view))
}

// UpdateStudent handles PUT /api/v1/students/:id
// @Summary Update student
// @Description Replaces the student details and group memberships
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body StudentRequest true "Student details"
// @Success 200 {object} StudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/{id} [put]
func (h *StudentHandler) UpdateStudent(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	var req StudentRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}

	existing, err := h.studentInScope(c, id)
	if err != nil {
		return serviceError(c, err, "Failed to update student")
	}
	// moving a student needs access to both branches
	if req.BranchID != existing.BranchID {
		if err := h.gate.Check(c, req.BranchID); err != nil {
			return serviceError(c, err, "Failed to update student")
		}
	}

	view, err := h.students.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return serviceError(c, err, "Failed to update student")
	}
	return c.JSON(http.StatusOK, toStudentResponse(view))
}

// DeleteStudent handles DELETE /api/v1/students/:id
// @Summary Delete student
// @Description Removes the student from every group and marks them deleted. Recorded payments are kept
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /students/{id} [delete]
func (h *StudentHandler) DeleteStudent(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.studentInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to delete student")
	}

	if err := h.students.Delete(c.Request().Context(), id); err != nil {
		return serviceError(c, err, "Failed to delete student")
	}
	return c.NoContent(http.StatusNoContent)
}
