package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/interface/api/rest/dto"
	fileDTO "file-storage-api/internal/interface/api/rest/dto/file"
	"file-storage-api/internal/interface/api/rest/middleware"
	"file-storage-api/internal/interface/api/rest/validator"
)

const (
	formFileField = "file"
	// multipartSlack covers boundaries and part headers around the payload.
	multipartSlack = 1 << 20
	// uploadMemory caps the part of a multipart upload held in memory; the
	// rest spills to a temp file.
	uploadMemory = 32 << 10
)

type FileController struct {
	engine       ports.StorageEngine
	query        ports.QueryEngine
	quota        ports.QuotaEnforcer
	limits       file.PageLimits
	chunkTimeout time.Duration
	logger       *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	gate ports.AccessGate,
	engine ports.StorageEngine,
	query ports.QueryEngine,
	quota ports.QuotaEnforcer,
	limits file.PageLimits,
	chunkTimeout time.Duration,
	logger *zap.Logger,
) *FileController {
	fc := &FileController{
		engine:       engine,
		query:        query,
		quota:        quota,
		limits:       limits,
		chunkTimeout: chunkTimeout,
		logger:       logger,
	}

	r.MaxMultipartMemory = uploadMemory

	authed := middleware.Auth(gate)
	r.GET(RouteFiles, authed, fc.ListFilesHandler)
	r.POST(RouteFileUpload, authed, fc.UploadHandler)
	r.GET(RouteFileDownload, authed, fc.DownloadHandler)
	r.DELETE(RouteFile, authed, fc.DeleteHandler)
	r.GET(RouteAdminFiles, authed, middleware.RequireRole(gate, user.RoleAdmin), fc.ListAllFilesHandler)

	return fc
}

func (fc *FileController) ListFilesHandler(c *gin.Context) {
	id, _ := middleware.Identity(c)
	fc.list(c, file.Owned(id.UserID), "Files retrieved successfully")
}

func (fc *FileController) ListAllFilesHandler(c *gin.Context) {
	fc.list(c, file.All(), "All files retrieved successfully")
}

func (fc *FileController) list(c *gin.Context, scope file.Scope, message string) {
	q, err := file.ParseOptions(scope, file.Options{
		Search:     c.Query("search"),
		UserFilter: c.Query("user_filter"),
		SizeFrom:   c.Query("size_from"),
		SizeTo:     c.Query("size_to"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
		Page:       c.Query("page"),
		Limit:      c.Query("limit"),
	}, fc.limits)
	if err != nil {
		writeError(c, fc.logger, "ParseOptions", err)
		return
	}

	res, err := fc.query.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, fc.logger, "List", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(message, fileDTO.ListData{
		Files:      fileDTO.ToResponseFiles(res.Items),
		Pagination: res.Summary,
	}))
}

func (fc *FileController) UploadHandler(c *gin.Context) {
	id, _ := middleware.Identity(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.quota.MaxPayloadBytes()+multipartSlack)

	fh, err := c.FormFile(formFileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.Fail("file too large", nil))
			return
		}
		badRequest(c, "no file uploaded or upload error", nil)
		return
	}

	src, err := fh.Open()
	if err != nil {
		writeError(c, fc.logger, "FileHeader.Open", err)
		return
	}
	defer src.Close()

	f, err := fc.engine.Upload(c.Request.Context(), ports.UploadRequest{
		OwnerID:      id.UserID,
		Payload:      src,
		DeclaredName: fh.Filename,
		DeclaredSize: fh.Size,
		DeclaredMime: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(c, fc.logger, "Upload", err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("File uploaded successfully", fileDTO.UploadData{
		File: fileDTO.ToResponseFile(*f),
	}))
}

func (fc *FileController) DownloadHandler(c *gin.Context) {
	id, _ := middleware.Identity(c)

	fileID, ok := validator.ParseID(c.Param("file_id"))
	if !ok {
		badRequest(c, "file_id must be a positive integer", nil)
		return
	}

	d, err := fc.engine.Download(c.Request.Context(), file.ID(fileID), id.UserID)
	if err != nil {
		writeError(c, fc.logger, "Download", err)
		return
	}

	mime := d.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}

	h := c.Writer.Header()
	h.Set("Content-Type", mime)
	h.Set("Content-Disposition", contentDisposition(d.Name))
	h.Set("Content-Length", strconv.FormatUint(d.Size, 10))
	h.Set("Cache-Control", "no-cache, must-revalidate")
	h.Set("Pragma", "no-cache")
	c.Status(http.StatusOK)

	dst := &deadlineWriter{
		w:       c.Writer,
		rc:      http.NewResponseController(c.Writer),
		timeout: fc.chunkTimeout,
	}
	if n, err := fc.engine.Stream(c.Request.Context(), dst, d); err != nil {
		// Headers are gone; the client sees a short body.
		fc.logger.Warn("download aborted",
			zap.Int64("file_id", fileID),
			zap.Int64("written", n),
			zap.Error(err),
		)
		c.Abort()
	}
}

func (fc *FileController) DeleteHandler(c *gin.Context) {
	id, _ := middleware.Identity(c)

	fileID, ok := validator.ParseID(c.Param("file_id"))
	if !ok {
		badRequest(c, "file_id must be a positive integer", nil)
		return
	}

	if err := fc.engine.Delete(c.Request.Context(), file.ID(fileID), id); err != nil {
		writeError(c, fc.logger, "Delete", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("File deleted successfully", nil))
}

// deadlineWriter bounds every chunk written to a slow client.
type deadlineWriter struct {
	w       io.Writer
	rc      *http.ResponseController
	timeout time.Duration
}

func (d *deadlineWriter) Write(p []byte) (int, error) {
	if d.timeout > 0 {
		err := d.rc.SetWriteDeadline(time.Now().Add(d.timeout))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			return 0, err
		}
	}
	return d.w.Write(p)
}
