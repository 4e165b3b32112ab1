package controllers

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"

	"Gin_postgres_redis_borrow_admin/app"
	"Gin_postgres_redis_borrow_admin/excel"
	"Gin_postgres_redis_borrow_admin/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// lister is the read side every reference service shares.
type lister[T any] interface {
	List(ctx context.Context) ([]T, error)
	ListNotDeleted(ctx context.Context) ([]T, error)
	AddOrUpdate(ctx context.Context, recs []T, overwrite bool) (int, error)
}

// sheet wires one entity's list, download and upload endpoints.
type sheet[T, D any] struct {
	entity   string // "Students" -> {"Students Affected": n}
	filename string
	svc      lister[T]
	dto      func(T) D
	write    func(io.Writer, []T) error
	read     func(io.Reader) ([]T, error)
}

func (s sheet[T, D]) records(c *gin.Context) ([]T, error) {
	historical, err := boolQuery(c, "historical")
	if err != nil {
		return nil, err
	}
	if historical {
		return s.svc.List(c.Request.Context())
	}
	return s.svc.ListNotDeleted(c.Request.Context())
}

func (s sheet[T, D]) List(c *gin.Context) {
	recs, err := s.records(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(recs, s.dto))
}

func (s sheet[T, D]) Download(c *gin.Context) {
	recs, err := s.records(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	sendWorkbook(c, s.filename, recs, s.write)
}

func (s sheet[T, D]) Upload(c *gin.Context) {
	upload(c, s.entity, s.read, s.svc.AddOrUpdate)
}

func sendWorkbook[T any](c *gin.Context, filename string, recs []T, write func(io.Writer, []T) error) {
	var buf bytes.Buffer
	if err := write(&buf, recs); err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, "application/octet-stream", buf.Bytes())
}

// upload reads the multipart "file" field as a workbook and applies it.
// Only the xlsx content type is accepted; a workbook that does not parse is
// logged and answered with a generic 500.
func upload[T any](c *gin.Context, entity string, read func(io.Reader) ([]T, error), apply func(context.Context, []T, bool) (int, error)) {
	overwrite, err := boolQuery(c, "overwrite")
	if err != nil {
		respondErr(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		respondErr(c, services.BadRequest("file is required"))
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != excel.ContentType {
		respondErr(c, services.BadRequest("unsupported content type %q", ct))
		return
	}
	f, err := fh.Open()
	if err != nil {
		zap.L().Error("open upload", zap.String("entity", entity), zap.Error(err))
		respondErr(c, services.Internal("could not read uploaded file"))
		return
	}
	defer f.Close()

	recs, err := read(f)
	if err != nil {
		zap.L().Error("parse upload",
			zap.String("entity", entity),
			zap.String("filename", fh.Filename),
			zap.Error(err))
		respondErr(c, services.Internal("could not parse uploaded file"))
		return
	}
	n, err := apply(c.Request.Context(), recs, overwrite)
	if err != nil {
		respondErr(c, err)
		return
	}
	zap.L().Info("upload applied", zap.String("entity", entity), zap.Int("affected", n), zap.Bool("overwrite", overwrite))
	c.JSON(http.StatusOK, app.H{entity + " Affected": n})
}
