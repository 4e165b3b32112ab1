package controllers

import (
	"net/http"

	"Gin_postgres_redis_borrow_admin/excel"
	"Gin_postgres_redis_borrow_admin/models"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	*Srv
	sheet[models.Student, StudentDTO]
}

func NewStudentController(s *Srv) *StudentController {
	return &StudentController{Srv: s, sheet: sheet[models.Student, StudentDTO]{
		entity:   "Students",
		filename: "students.xlsx",
		svc:      s.Students,
		dto:      toStudentDTO,
		write:    excel.WriteStudents,
		read:     excel.ReadStudents,
	}}
}

func (sc *StudentController) Get(c *gin.Context) {
	st, err := sc.Students.Get(c.Request.Context(), c.Param("studentNumber"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toStudentDTO(*st))
}

// Create also provisions the student's account; its password is mailed.
func (sc *StudentController) Create(c *gin.Context) {
	var in StudentCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	st := in.model()
	out, err := sc.Students.Create(c.Request.Context(), &st)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStudentDTO(*out))
}

func (sc *StudentController) Update(c *gin.Context) {
	var in StudentUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := sc.Students.Update(c.Request.Context(), c.Param("studentNumber"), in.patch())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toStudentDTO(*out))
}

func (sc *StudentController) Delete(c *gin.Context) {
	if err := sc.Students.SoftDelete(c.Request.Context(), c.Param("studentNumber")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}
