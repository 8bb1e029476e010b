package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/config"
	"github.com/roshanlimbu/png-to-svg/internal/converter"
	"github.com/roshanlimbu/png-to-svg/internal/service"
)

type Handler struct {
	service service.ConvertService
	cfg     *config.Config
	log     *zap.Logger
}

func NewHandler(service service.ConvertService, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		log:     log,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) GetUI(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

func (h *Handler) GetPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": h.service.Presets()})
}

func (h *Handler) Convert(c *gin.Context) {
	data, ok := h.readUpload(c, "image")
	if !ok {
		return
	}

	opts, err := optionsFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svg, err := h.service.Convert(c.Request.Context(), data, opts)
	if err != nil {
		h.log.Error("Conversion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Conversion failed",
			"details": err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (h *Handler) Posterize(c *gin.Context) {
	data, ok := h.readUpload(c, "image")
	if !ok {
		return
	}

	opts, err := optionsFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	steps := converter.DefaultSteps
	if raw := c.PostForm("steps"); raw != "" {
		steps, err = strconv.Atoi(raw)
		if err != nil || steps < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "steps must be an integer of at least 2"})
			return
		}
	}

	svg, err := h.service.Posterize(c.Request.Context(), data, steps, opts)
	if err != nil {
		h.log.Error("Posterization failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Posterization failed",
			"details": err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (h *Handler) BulkConvert(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image files provided"})
		return
	}
	if len(files) > h.cfg.App.MaxBulkFiles {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Too many files (max %d)", h.cfg.App.MaxBulkFiles),
		})
		return
	}

	opts, err := optionsFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uploads := make([]service.UploadedFile, 0, len(files))
	for _, file := range files {
		data, err := h.validateAndRead(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		uploads = append(uploads, service.UploadedFile{Name: file.Filename, Data: data})
	}

	report := h.service.BulkConvert(c.Request.Context(), uploads, opts)
	c.JSON(http.StatusOK, report)
}

func (h *Handler) ListArchive(c *gin.Context) {
	if !h.service.ArchiveEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Archive storage is not configured"})
		return
	}

	entries, err := h.service.ListArchive(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list archive", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list archive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) GetArchived(c *gin.Context) {
	if !h.service.ArchiveEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Archive storage is not configured"})
		return
	}

	svg, err := h.service.GetArchived(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to fetch archived SVG", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Archived SVG not found"})
		return
	}

	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// readUpload fetches and validates a single PNG part, writing the error
// response itself when validation fails.
func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		h.log.Error("Failed to get file from form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return nil, false
	}

	data, err := h.validateAndRead(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return data, true
}

func (h *Handler) validateAndRead(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > h.cfg.App.MaxUploadSize {
		return nil, fmt.Errorf("File too large (max %d bytes)", h.cfg.App.MaxUploadSize)
	}

	if !isPNG(file) {
		return nil, errors.New("Only PNG files are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("Failed to open uploaded file: %v", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("Failed to read uploaded file: %v", err)
	}
	return data, nil
}

func isPNG(file *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(file.Filename), ".png") {
		return true
	}
	return file.Header.Get("Content-Type") == "image/png"
}

// optionsFromForm builds conversion options from the optional form fields,
// starting from the named preset when one is given.
func optionsFromForm(c *gin.Context) (converter.Options, error) {
	var opts converter.Options

	if name := c.PostForm("preset"); name != "" {
		preset, err := converter.PresetOptions(name)
		if err != nil {
			return opts, fmt.Errorf("unknown preset %q (valid: %s)", name, strings.Join(converter.ValidPresets(), ", "))
		}
		opts = preset
	}

	var overlay converter.Options

	if raw := c.PostForm("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("threshold must be an integer")
		}
		overlay.Threshold = converter.Int(v)
	}
	if raw := c.PostForm("turdSize"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("turdSize must be an integer")
		}
		overlay.TurdSize = converter.Int(v)
	}
	if raw := c.PostForm("alphaMax"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, fmt.Errorf("alphaMax must be a number")
		}
		overlay.AlphaMax = converter.Float(v)
	}
	if raw := c.PostForm("optCurve"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("optCurve must be a boolean")
		}
		overlay.OptCurve = converter.Bool(v)
	}
	if raw := c.PostForm("optTolerance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, fmt.Errorf("optTolerance must be a number")
		}
		overlay.OptTolerance = converter.Float(v)
	}
	if raw := c.PostForm("turnPolicy"); raw != "" {
		overlay.TurnPolicy = converter.TurnPolicy(raw)
	}
	if raw := c.PostForm("blackOnWhite"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("blackOnWhite must be a boolean")
		}
		overlay.BlackOnWhite = converter.Bool(v)
	}

	return opts.Merge(overlay), nil
}
