package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/application/service"
	"github.com/lmasson/course-management/internal/auth"
	"github.com/lmasson/course-management/internal/domain/entity"
	"github.com/lmasson/course-management/internal/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	courseService  service.CourseService
	absenceService service.AbsenceService
	userService    service.UserService
	tokens         *auth.TokenManager
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	courseService service.CourseService,
	absenceService service.AbsenceService,
	userService service.UserService,
	tokens *auth.TokenManager,
	logger Logger,
) *Handlers {
	return &Handlers{
		courseService:  courseService,
		absenceService: absenceService,
		userService:    userService,
		tokens:         tokens,
		logger:         logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// --- auth ---

// LoginRequest carries login credentials. Identifier accepts username
// or email.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "identifier and password are required"})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue token", "error", err, "user_id", user.ID)
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, LoginResponse{Token: token, User: user}, port.Delivery{})
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, user, port.Delivery{})
}

// CompleteRegistrationRequest redeems an invite token.
type CompleteRegistrationRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CompleteRegistration handles POST /api/auth/complete-registration
func (h *Handlers) CompleteRegistration(c *gin.Context) {
	var req CompleteRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "token and password are required"})
		return
	}

	user, err := h.userService.CompleteRegistration(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user, port.Delivery{})
}

// InviteTeacherRequest carries an admin's teacher invitation.
type InviteTeacherRequest struct {
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// InviteTeacher handles POST /api/admin/invite-teacher
func (h *Handlers) InviteTeacher(c *gin.Context) {
	var req InviteTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "email and full_name are required"})
		return
	}

	user, delivery, err := h.userService.InviteTeacher(c.Request.Context(), req.Email, req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, user, delivery)
}

// --- course catalogue ---

// ListCourses handles GET /api/courses
func (h *Handlers) ListCourses(c *gin.Context) {
	views, err := h.courseService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// GetCourse handles GET /api/courses/:id
func (h *Handlers) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, port.Delivery{})
}

// --- admin course workflow ---

// SaveCourse handles POST /api/admin/courses
func (h *Handlers) SaveCourse(c *gin.Context) {
	var req service.SaveCourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	view, delivery, err := h.courseService.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, view, delivery)
}

// ProposeMakeupByAdmin handles POST /api/admin/courses/propose-makeup
func (h *Handlers) ProposeMakeupByAdmin(c *gin.Context) {
	var req service.ProposeCourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	view, delivery, err := h.courseService.ProposeByAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, view, delivery)
}

// UpdateCourseStatusRequest carries a free-form status write.
type UpdateCourseStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateCourseStatus handles PUT /api/admin/courses/:id/status
func (h *Handlers) UpdateCourseStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "status is required"})
		return
	}

	view, delivery, err := h.courseService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, delivery)
}

// ApproveCourseByAdmin handles POST /api/admin/courses/:id/approve
func (h *Handlers) ApproveCourseByAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, delivery, err := h.courseService.ApproveByAdmin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, delivery)
}

// DeleteCourse handles DELETE /api/admin/courses/:id
func (h *Handlers) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": id}, port.Delivery{})
}

// --- teacher course workflow ---

// actor resolves the authenticated user behind the request.
func (h *Handlers) actor(c *gin.Context) (*entity.User, bool) {
	claims := claimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "authentication required"})
		return nil, false
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

// ListOwnCourses handles GET /api/teacher/courses
func (h *Handlers) ListOwnCourses(c *gin.Context) {
	claims := claimsFrom(c)
	views, err := h.courseService.ListByTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// ProposeMakeupByTeacher handles POST /api/teacher/courses/propose-makeup
func (h *Handlers) ProposeMakeupByTeacher(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req service.ProposeCourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	view, err := h.courseService.ProposeByTeacher(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, view, port.Delivery{})
}

// ListPendingProposals handles GET /api/teacher/courses/pending-approval
func (h *Handlers) ListPendingProposals(c *gin.Context) {
	claims := claimsFrom(c)
	views, err := h.courseService.ListPendingTeacherApproval(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// ApproveCourseByTeacher handles POST /api/teacher/courses/:id/approve
func (h *Handlers) ApproveCourseByTeacher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	claims := claimsFrom(c)
	view, delivery, err := h.courseService.ApproveByTeacher(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, delivery)
}

// RejectCourseByTeacher handles POST /api/teacher/courses/:id/reject
func (h *Handlers) RejectCourseByTeacher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	claims := claimsFrom(c)
	view, err := h.courseService.RejectByTeacher(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, port.Delivery{})
}

// --- absence requests ---

// SubmitAbsenceRequestBody is the teacher-facing submission payload;
// the teacher id always comes from the token.
type SubmitAbsenceRequestBody struct {
	CourseID      int64      `json:"course_id" binding:"required"`
	Justification string     `json:"justification"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
}

// SubmitAbsenceRequest handles POST /api/teacher/absence-requests
func (h *Handlers) SubmitAbsenceRequest(c *gin.Context) {
	var req SubmitAbsenceRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "course_id is required"})
		return
	}

	claims := claimsFrom(c)
	view, err := h.absenceService.Submit(c.Request.Context(), service.SubmitAbsenceInput{
		TeacherID:     claims.UserID,
		CourseID:      req.CourseID,
		Justification: req.Justification,
		SubmittedAt:   req.SubmittedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, view, port.Delivery{})
}

// ListOwnAbsenceRequests handles GET /api/teacher/absence-requests
func (h *Handlers) ListOwnAbsenceRequests(c *gin.Context) {
	claims := claimsFrom(c)
	views, err := h.absenceService.ListByTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// ListOwnAbsenceRequestsByStatus handles GET /api/teacher/absence-requests/status/:status
func (h *Handlers) ListOwnAbsenceRequestsByStatus(c *gin.Context) {
	claims := claimsFrom(c)
	views, err := h.absenceService.ListByTeacherAndStatus(c.Request.Context(), claims.UserID, c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// ListAbsenceRequests handles GET /api/admin/absence-requests
func (h *Handlers) ListAbsenceRequests(c *gin.Context) {
	views, err := h.absenceService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// UpdateAbsenceStatusRequest carries a free-form status write.
type UpdateAbsenceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAbsenceStatus handles PUT /api/admin/absence-requests/:id/status
func (h *Handlers) UpdateAbsenceStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAbsenceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "status is required"})
		return
	}

	view, delivery, err := h.absenceService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, delivery)
}

// ApproveAbsence handles POST /api/admin/absence-requests/:id/approve
func (h *Handlers) ApproveAbsence(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, delivery, err := h.absenceService.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, delivery)
}

// --- direction read surface ---

// ListApprovedCourses handles GET /api/direction/courses/approved
func (h *Handlers) ListApprovedCourses(c *gin.Context) {
	views, err := h.courseService.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// ListApprovedAbsenceRequests handles GET /api/direction/absence-requests/approved
func (h *Handlers) ListApprovedAbsenceRequests(c *gin.Context) {
	views, err := h.absenceService.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// ListCoursesByTeacher handles GET /api/direction/teachers/:id/courses
func (h *Handlers) ListCoursesByTeacher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	views, err := h.courseService.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// ListAbsenceRequestsByTeacher handles GET /api/direction/teachers/:id/absence-requests
func (h *Handlers) ListAbsenceRequestsByTeacher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	views, err := h.absenceService.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, views, port.Delivery{})
}

// --- exports ---

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportCourses handles GET /api/admin/export/courses
func (h *Handlers) ExportCourses(c *gin.Context) {
	views, err := h.courseService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("courses_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", excelContentType)

	if err := export.WriteCoursesReport(c.Writer, views); err != nil {
		h.logger.Error("Failed to export courses", "error", err)
	}
}

// ExportAbsenceRequests handles GET /api/admin/export/absence-requests
func (h *Handlers) ExportAbsenceRequests(c *gin.Context) {
	views, err := h.absenceService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("absence_requests_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", excelContentType)

	if err := export.WriteAbsenceReport(c.Writer, views); err != nil {
		h.logger.Error("Failed to export absence requests", "error", err)
	}
}
