package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"valora/server/internal/approval"
	"valora/server/internal/database"
	"valora/server/internal/export"
	"valora/server/internal/importer"
	"valora/server/internal/models"
	"valora/server/internal/notify"
	"valora/server/internal/study"
	"valora/server/internal/valuation"
)

type Handler struct {
	studies  *database.StudyRepository
	projects *database.ProjectRepository
	units    *database.UnitRepository
	importer *importer.Importer
	notifier *notify.Service
	logger   *logrus.Logger
}

func NewHandler(studies *database.StudyRepository, projects *database.ProjectRepository,
	units *database.UnitRepository, imp *importer.Importer, notifier *notify.Service,
	logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		studies:  studies,
		projects: projects,
		units:    units,
		importer: imp,
		notifier: notifier,
		logger:   logger,
	}
}

// respondError maps domain failures onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validationErr *valuation.ValidationError
	var businessErr *valuation.BusinessRuleError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &businessErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": businessErr.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// CreateStudy runs the full valuation pipeline over submitted comparables
// and persists the resulting study.
func (h *Handler) CreateStudy(c *gin.Context) {
	var req StudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse study request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	comparables := make([]valuation.Comparable, 0, len(req.Comparables))
	for i, entry := range req.Comparables {
		comparable, err := entry.toComparable(fmt.Sprintf("comp-%d", i+1), req.Currency)
		if err != nil {
			h.respondError(c, err)
			return
		}
		comparables = append(comparables, comparable)
	}

	homogenized, err := valuation.Homogenize(comparables, req.TargetFactors)
	if err != nil {
		h.respondError(c, err)
		return
	}

	analysis, err := valuation.Analyze(homogenized)
	if err != nil {
		h.respondError(c, err)
		return
	}

	targetArea, err := valuation.NewArea(req.TargetAreaSqm)
	if err != nil {
		h.respondError(c, err)
		return
	}

	valuations, err := valuation.CalculateValuations(analysis, targetArea, req.Perception)
	if err != nil {
		h.respondError(c, err)
		return
	}

	factorNames := make([]string, 0, len(req.TargetFactors))
	for name := range req.TargetFactors {
		factorNames = append(factorNames, name)
	}

	result, err := study.New(study.Params{
		Owner: req.Owner,
		Target: study.TargetProperty{
			Address:   req.Address,
			Area:      targetArea,
			Factors:   req.TargetFactors,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		},
		EvaluationType: req.EvaluationType,
		FactorNames:    factorNames,
		Comparables:    homogenized,
		Analysis:       analysis,
		Valuations:     valuations,
	}, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.studies.Save(result); err != nil {
		h.respondError(c, err)
		return
	}

	go func() {
		if err := h.notifier.NotifyStudyCompleted(result); err != nil {
			h.logger.WithError(err).Error("Failed to send study notification")
		}
	}()

	c.JSON(http.StatusCreated, result.Snapshot())
}

// GetStudy returns one study snapshot.
func (h *Handler) GetStudy(c *gin.Context) {
	result, err := h.studies.FindByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Snapshot())
}

// ListStudies returns study metadata, optionally filtered by owner.
func (h *Handler) ListStudies(c *gin.Context) {
	records, err := h.studies.FindByOwner(c.Query("owner"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// DeleteStudy removes a stored study.
func (h *Handler) DeleteStudy(c *gin.Context) {
	if err := h.studies.Delete(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SelectStandard picks a finish standard for a stored study.
func (h *Handler) SelectStandard(c *gin.Context) {
	var req SelectStandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	result, err := h.studies.FindByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := result.SelectStandard(valuation.Standard(req.Standard)); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.studies.Update(result); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Snapshot())
}

// AttachArtifacts stores report/slides URLs on a study.
func (h *Handler) AttachArtifacts(c *gin.Context) {
	var req ArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}
	if req.ReportURL == "" && req.SlidesURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one artifact URL is required"})
		return
	}

	result, err := h.studies.FindByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.ReportURL != "" {
		if err := result.SetReportURL(req.ReportURL); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.SlidesURL != "" {
		if err := result.SetSlidesURL(req.SlidesURL); err != nil {
			h.respondError(c, err)
			return
		}
	}

	if err := h.studies.Update(result); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Snapshot())
}

// ExportStudy streams the study workbook as an XLSX download.
func (h *Handler) ExportStudy(c *gin.Context) {
	result, err := h.studies.FindByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	workbook, err := export.BuildStudyWorkbook(result)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=study-%s.xlsx", result.ID()))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to stream study workbook")
	}
}

// CalculateApproval runs the payment-approval calculator.
func (h *Handler) CalculateApproval(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	income, err := valuation.NewMoney(req.MonthlyIncome, req.Currency)
	if err != nil {
		h.respondError(c, err)
		return
	}
	obligations, err := valuation.NewMoney(req.MonthlyObligations, req.Currency)
	if err != nil {
		h.respondError(c, err)
		return
	}
	installment, err := valuation.NewMoney(req.Installment, req.Currency)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := approval.Evaluate(approval.Request{
		MonthlyIncome:      income,
		MonthlyObligations: obligations,
		Installment:        installment,
		CommitmentLimit:    req.CommitmentLimit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateProject registers a development project.
func (h *Handler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Developer: req.Developer,
		Address:   req.Address,
		City:      req.City,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.projects.Create(project); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ListProjects returns all projects.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.projects.FindAll()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject returns one project with its units.
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.projects.FindByID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject removes a project and its units.
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetProjectStats returns the inventory summary of one project.
func (h *Handler) GetProjectStats(c *gin.Context) {
	stats, err := h.projects.Stats(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateUnit adds one unit to a project.
func (h *Handler) CreateUnit(c *gin.Context) {
	var req UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if _, err := h.projects.FindByID(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	now := time.Now().UTC()
	unit := &models.Unit{
		ID:        uuid.NewString(),
		ProjectID: c.Param("id"),
		Label:     req.Label,
		AreaSqm:   req.AreaSqm,
		Price:     req.Price,
		Currency:  req.Currency,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.units.Create(unit); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// ListUnits returns a project's units.
func (h *Handler) ListUnits(c *gin.Context) {
	units, err := h.units.FindByProject(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// ImportUnits accepts a CSV upload and enqueues the units for batch import.
func (h *Handler) ImportUnits(c *gin.Context) {
	if _, err := h.projects.FindByID(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file upload is required"})
		return
	}
	defer file.Close()

	enqueued, err := h.importer.Import(file, c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to import units")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "import enqueued",
		"enqueued": enqueued,
	})
}
