package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_borrow_admin/excel"
	"Gin_postgres_redis_borrow_admin/models"
	"Gin_postgres_redis_borrow_admin/services"

	"github.com/gin-gonic/gin"
)

type YearLevelController struct {
	*Srv
	sheet[models.YearLevel, YearLevelDTO]
}

func NewYearLevelController(s *Srv) *YearLevelController {
	return &YearLevelController{Srv: s, sheet: sheet[models.YearLevel, YearLevelDTO]{
		entity:   "Year Levels",
		filename: "year-levels.xlsx",
		svc:      s.YearLevels,
		dto:      toYearLevelDTO,
		write:    excel.WriteYearLevels,
		read:     excel.ReadYearLevels,
	}}
}

func yearNumberParam(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("yearNumber"))
	if err != nil {
		return 0, services.BadRequest("year number must be an integer")
	}
	return n, nil
}

func (yc *YearLevelController) Get(c *gin.Context) {
	n, err := yearNumberParam(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	y, err := yc.YearLevels.Get(c.Request.Context(), n)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toYearLevelDTO(*y))
}

func (yc *YearLevelController) Create(c *gin.Context) {
	var in YearLevelCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := yc.YearLevels.Create(c.Request.Context(), &models.YearLevel{YearNumber: in.YearNumber})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toYearLevelDTO(*out))
}

func (yc *YearLevelController) Update(c *gin.Context) {
	n, err := yearNumberParam(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	var in YearLevelUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := yc.YearLevels.Update(c.Request.Context(), n, services.YearLevelPatch{YearName: in.YearName, DeleteFlag: in.DeleteFlag})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toYearLevelDTO(*out))
}

func (yc *YearLevelController) Delete(c *gin.Context) {
	n, err := yearNumberParam(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := yc.YearLevels.SoftDelete(c.Request.Context(), n); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type YearSectionController struct {
	*Srv
	sheet[models.YearSection, YearSectionDTO]
}

func NewYearSectionController(s *Srv) *YearSectionController {
	return &YearSectionController{Srv: s, sheet: sheet[models.YearSection, YearSectionDTO]{
		entity:   "Year Sections",
		filename: "year-sections.xlsx",
		svc:      s.YearSections,
		dto:      toYearSectionDTO,
		write:    excel.WriteYearSections,
		read:     excel.ReadYearSections,
	}}
}

func (yc *YearSectionController) Get(c *gin.Context) {
	y, err := yc.YearSections.Get(c.Request.Context(), c.Param("sectionName"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toYearSectionDTO(*y))
}

func (yc *YearSectionController) Create(c *gin.Context) {
	var in YearSectionCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := yc.YearSections.Create(c.Request.Context(), &models.YearSection{SectionName: in.SectionName})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toYearSectionDTO(*out))
}

func (yc *YearSectionController) Update(c *gin.Context) {
	var in YearSectionUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := yc.YearSections.Update(c.Request.Context(), c.Param("sectionName"), services.YearSectionPatch{DeleteFlag: in.DeleteFlag})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toYearSectionDTO(*out))
}

func (yc *YearSectionController) Delete(c *gin.Context) {
	if err := yc.YearSections.SoftDelete(c.Request.Context(), c.Param("sectionName")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}
