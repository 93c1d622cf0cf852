package handler

import (
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// GroupHandler handles group and membership HTTP requests
type GroupHandler struct {
	groups   *service.GroupService
	students *service.StudentService
	gate     BranchGate
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groups *service.GroupService, students *service.StudentService, gate BranchGate) *GroupHandler {
	return &GroupHandler{groups: groups, students: students, gate: gate}
}

// AddMemberRequest represents the add student to group request body
type AddMemberRequest struct {
	StudentID int64 `json:"studentId" validate:"required,gt=0"`
}

func (h *GroupHandler) groupInScope(c echo.Context, id int64) (*domain.Group, error) {
	group, err := h.groups.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := h.gate.Check(c, group.BranchID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups handles GET /api/v1/groups?branchId=
// @Summary List groups
// @Description Returns the groups of a branch with teacher and active student count
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Success 200 {array} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /groups [get]
func (h *GroupHandler) ListGroups(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	groups, err := h.groups.ListByBranch(c.Request().Context(), branchID)
	if err != nil {
		return serviceError(c, err, "Failed to list groups")
	}
	return c.JSON(http.StatusOK, toGroupResponses(groups))
}

// GetGroup handles GET /api/v1/groups/:id
// @Summary Get group
// @Description Returns one group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /groups/{id} [get]
func (h *GroupHandler) GetGroup(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}

	group, err := h.groupInScope(c, id)
	if err != nil {
		return serviceError(c, err, "Failed to get group")
	}
	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// GroupStudents handles GET /api/v1/groups/:id/students?year=&month=
// @Summary List group students
// @Description Returns the active members of a group with their payment projection
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param year query int false "Billing year, defaults to the current payment period"
// @Param month query int false "Billing month (1-12), defaults to the current payment period"
// @Success 200 {array} StudentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /groups/{id}/students [get]
func (h *GroupHandler) GroupStudents(c echo.Context) error {
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
	if _, err := h.groupInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to list group students")
	}

	views, err := h.students.ListByGroup(c.Request().Context(), id, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to list group students")
	}
	return c.JSON(http.StatusOK, toStudentResponses(views))
}

// AddStudent handles POST /api/v1/groups/:id/students
// @Summary Add student to group
// @Description Enrolls an active student of the same branch in the group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body AddMemberRequest true "Student to enroll"
// @Success 200 {object} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /groups/{id}/students [post]
func (h *GroupHandler) AddStudent(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	var req AddMemberRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}
	if _, err := h.groupInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to add student to group")
	}

	group, err := h.groups.AddStudent(c.Request().Context(), id, req.StudentID)
	if err != nil {
		return serviceError(c, err, "Failed to add student to group")
	}
	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// RemoveStudent handles DELETE /api/v1/groups/:id/students/:studentId
// @Summary Remove student from group
// @Description Drops a student from the group and returns the updated group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /groups/{id}/students/{studentId} [delete]
func (h *GroupHandler) RemoveStudent(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	studentID, perr := pathID(c, "studentId")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.groupInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to remove student from group")
	}

	group, err := h.groups.RemoveStudent(c.Request().Context(), id, studentID)
	if err != nil {
		return serviceError(c, err, "Failed to remove student from group")
	}
	return c.JSON(http.StatusOK, toGroupResponse(group))
}
