package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/llighterr/promo-task/internal/csvexport"
	"github.com/llighterr/promo-task/internal/http/dto"
	"github.com/llighterr/promo-task/internal/models"
	"github.com/llighterr/promo-task/internal/services"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type PromoHandler struct {
	svc            *services.PromoService
	previewPerPage int
	log            *zap.Logger
}

func NewPromoHandler(svc *services.PromoService, previewPerPage int, log *zap.Logger) *PromoHandler {
	if previewPerPage <= 0 {
		previewPerPage = 25
	}
	return &PromoHandler{svc: svc, previewPerPage: previewPerPage, log: log}
}

// NewPromoMessage returns an empty draft plus one page of the cohort
// the current date bounds select. Blank or bad dates are not an error,
// they preview an empty cohort.
func (h *PromoHandler) NewPromoMessage(c *fiber.Ctx) error {
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", h.previewPerPage)
	if perPage <= 0 || perPage > 100 {
		perPage = h.previewPerPage
	}

	users, total, err := h.svc.Preview(c.Context(), dateFrom, dateTo, page, perPage)
	if err != nil {
		h.log.Error("cohort preview failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewPromoMessageResponse{
		Message: models.PromoMessage{DateFrom: dateFrom, DateTo: dateTo},
		Users:   users,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}})
}

func (h *PromoHandler) CreatePromoMessage(c *fiber.Ctx) error {
	var req dto.CreatePromoMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	report, err := h.svc.Submit(c.Context(), req.Body, req.DateFrom, req.DateTo)
	if err != nil {
		var verrs services.ValidationErrors
		if errors.As(err, &verrs) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorListResponse{Errors: verrs})
		}
		h.log.Error("promo message submit failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{
		OK:     true,
		Data:   report,
		Notice: "Messages Sent Successfully!",
	})
}

// DownloadCSV streams the cohort as a CSV attachment. The body stream
// writer means rows reach the client while the repository is still
// paging through the cohort.
func (h *PromoHandler) DownloadCSV(c *fiber.Ctx) error {
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, csvexport.Filename(time.Now())))

	ctx := c.Context()
	ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if err := h.svc.ExportCSV(ctx, dateFrom, dateTo, w); err != nil {
			// Headers are gone by now; all we can do is cut the stream.
			h.log.Error("csv export aborted", zap.Error(err))
		}
	}))
	return nil
}
