package controllers

import (
	"net/http"

	"Gin_postgres_redis_borrow_admin/excel"
	"Gin_postgres_redis_borrow_admin/models"

	"github.com/gin-gonic/gin"
)

type ProfessorController struct {
	*Srv
	sheet[models.Professor, ProfessorDTO]
}

func NewProfessorController(s *Srv) *ProfessorController {
	return &ProfessorController{Srv: s, sheet: sheet[models.Professor, ProfessorDTO]{
		entity:   "Professors",
		filename: "professors.xlsx",
		svc:      s.Professors,
		dto:      toProfessorDTO,
		write:    excel.WriteProfessors,
		read:     excel.ReadProfessors,
	}}
}

func (pc *ProfessorController) Get(c *gin.Context) {
	p, err := pc.Professors.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfessorDTO(*p))
}

func (pc *ProfessorController) Create(c *gin.Context) {
	var in ProfessorCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p := in.model()
	out, err := pc.Professors.Create(c.Request.Context(), &p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProfessorDTO(*out))
}

func (pc *ProfessorController) Update(c *gin.Context) {
	var in ProfessorUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := pc.Professors.Update(c.Request.Context(), c.Param("name"), in.patch())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfessorDTO(*out))
}

func (pc *ProfessorController) Delete(c *gin.Context) {
	if err := pc.Professors.SoftDelete(c.Request.Context(), c.Param("name")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}
