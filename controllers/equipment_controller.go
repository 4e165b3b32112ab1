package controllers

import (
	"net/http"

	"Gin_postgres_redis_borrow_admin/excel"
	"Gin_postgres_redis_borrow_admin/models"

	"github.com/gin-gonic/gin"
)

type EquipmentController struct {
	*Srv
	sheet[models.Equipment, EquipmentDTO]
}

func NewEquipmentController(s *Srv) *EquipmentController {
	return &EquipmentController{Srv: s, sheet: sheet[models.Equipment, EquipmentDTO]{
		entity:   "Equipments",
		filename: "equipments.xlsx",
		svc:      s.Equipments,
		dto:      toEquipmentDTO,
		write:    excel.WriteEquipments,
		read:     excel.ReadEquipments,
	}}
}

func (ec *EquipmentController) Get(c *gin.Context) {
	e, err := ec.Equipments.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toEquipmentDTO(*e))
}

// GetByBarcode backs the scanner at the return desk.
func (ec *EquipmentController) GetByBarcode(c *gin.Context) {
	e, err := ec.Equipments.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toEquipmentDTO(*e))
}

func (ec *EquipmentController) Create(c *gin.Context) {
	var in EquipmentCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	e := in.model()
	out, err := ec.Equipments.Create(c.Request.Context(), &e)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEquipmentDTO(*out))
}

func (ec *EquipmentController) Update(c *gin.Context) {
	var in EquipmentUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := ec.Equipments.Update(c.Request.Context(), c.Param("code"), in.patch())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toEquipmentDTO(*out))
}

// Release clears isBorrowed on an item no transaction holds any more.
func (ec *EquipmentController) Release(c *gin.Context) {
	out, err := ec.Equipments.Release(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toEquipmentDTO(*out))
}

func (ec *EquipmentController) Delete(c *gin.Context) {
	if err := ec.Equipments.SoftDelete(c.Request.Context(), c.Param("code")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}
