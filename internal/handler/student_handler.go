package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enlistment-api/internal/models"
	"github.com/noah-isme/enlistment-api/internal/service"
	"github.com/noah-isme/enlistment-api/pkg/response"
)

// StudentHandler serves the admin student lookups.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Search godoc
// @Summary Search students
// @Description Find students by exact student number or last-name substring
// @Tags Students
// @Produce json
// @Param search query string false "Student number or last name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	students, pagination, err := h.students.Search(c.Request.Context(), models.StudentFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Account godoc
// @Summary Student account view
// @Description Student record with financial assessment, payment history and enlisted subjects
// @Tags Students
// @Produce json
// @Param studentNumber path string true "Student number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentNumber}/account [get]
func (h *StudentHandler) Account(c *gin.Context) {
	account, err := h.students.Account(c.Request.Context(), c.Param("studentNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}

// SubjectHistory godoc
// @Summary Student subject history
// @Description Chronological enlistment additions and removals for a student
// @Tags Students
// @Produce json
// @Param studentNumber path string true "Student number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentNumber}/subject-logs [get]
func (h *StudentHandler) SubjectHistory(c *gin.Context) {
	logs, err := h.students.SubjectHistory(c.Request.Context(), c.Param("studentNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
