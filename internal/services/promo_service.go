package services

import (
	"context"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/llighterr/promo-task/internal/cohort"
	"github.com/llighterr/promo-task/internal/csvexport"
	"github.com/llighterr/promo-task/internal/models"
	"github.com/llighterr/promo-task/internal/queue"
	"go.uber.org/zap"
)

// TaskSendPromoMessage is the task name the delivery worker dispatches on.
const TaskSendPromoMessage = "send_promo_message"

// SendPromoPayload is the delivery task descriptor: recipient phone
// only. The worker resolves the message body on its side.
type SendPromoPayload struct {
	Phone string `json:"phone"`
}

type PromoMessageStore interface {
	Create(ctx context.Context, m *models.PromoMessage) error
}

type CohortSource interface {
	Page(ctx context.Context, rng cohort.Range, limit, offset int) ([]models.CohortUser, error)
	Count(ctx context.Context, rng cohort.Range) (int, error)
	Phones(ctx context.Context, rng cohort.Range) ([]string, error)
	ForEach(ctx context.Context, rng cohort.Range, batchSize int, fn func(models.CohortUser) error) error
}

// ValidationErrors is the recoverable error kind: human-readable
// messages for the submit form. Anything else coming out of Submit is
// an infrastructure failure.
type ValidationErrors []string

func (e ValidationErrors) Error() string {
	return strings.Join(e, "; ")
}

type SendReport struct {
	MessageID  uuid.UUID `json:"message_id"`
	Recipients int       `json:"recipients"`
	Enqueued   int       `json:"enqueued"`
	Failed     int       `json:"failed"`
}

type PromoService struct {
	messages    PromoMessageStore
	cohorts     CohortSource
	tasks       queue.Queue
	validate    *validator.Validate
	exportBatch int
	log         *zap.Logger
}

func NewPromoService(
	messages PromoMessageStore,
	cohorts CohortSource,
	tasks queue.Queue,
	exportBatch int,
	log *zap.Logger,
) *PromoService {
	return &PromoService{
		messages:    messages,
		cohorts:     cohorts,
		tasks:       tasks,
		validate:    validator.New(),
		exportBatch: exportBatch,
		log:         log,
	}
}

type submitInput struct {
	Body string `validate:"required"`
}

// Submit runs the dispatch workflow: validate and persist the message,
// resolve the cohort from the same bounds, enqueue one delivery task
// per phone. Enqueuing is best-effort per recipient — a failed enqueue
// is counted and skipped, never rolled back or retried here.
func (s *PromoService) Submit(ctx context.Context, body, dateFrom, dateTo string) (*SendReport, error) {
	if errs := s.validateSubmit(body); len(errs) > 0 {
		return nil, errs
	}

	msg := &models.PromoMessage{Body: body, DateFrom: dateFrom, DateTo: dateTo}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	report := &SendReport{MessageID: msg.ID}

	rng, ok := cohort.ParseRange(dateFrom, dateTo)
	if !ok {
		// Bad or missing dates degrade the cohort to empty; the saved
		// message is still a success.
		s.log.Info("promo message saved with empty cohort",
			zap.String("message_id", msg.ID.String()),
			zap.String("date_from", dateFrom),
			zap.String("date_to", dateTo),
		)
		return report, nil
	}

	phones, err := s.cohorts.Phones(ctx, rng)
	if err != nil {
		s.log.Error("failed to resolve recipients, message saved without sends",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
		return report, nil
	}
	report.Recipients = len(phones)

	for _, phone := range phones {
		if err := s.tasks.Enqueue(ctx, TaskSendPromoMessage, SendPromoPayload{Phone: phone}); err != nil {
			report.Failed++
			s.log.Warn("failed to enqueue delivery task",
				zap.String("message_id", msg.ID.String()),
				zap.String("phone", phone),
				zap.Error(err),
			)
			continue
		}
		report.Enqueued++
	}

	s.log.Info("promo message dispatched",
		zap.String("message_id", msg.ID.String()),
		zap.Int("recipients", report.Recipients),
		zap.Int("enqueued", report.Enqueued),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *PromoService) validateSubmit(body string) ValidationErrors {
	err := s.validate.Struct(submitInput{Body: strings.TrimSpace(body)})
	if err == nil {
		return nil
	}

	var out ValidationErrors
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "required":
				out = append(out, "Body can't be blank")
			default:
				out = append(out, "Body is invalid")
			}
		}
		return out
	}
	return ValidationErrors{"Body is invalid"}
}

// Preview is the paginated cohort view for the compose form. Blank or
// unparseable dates produce an empty page, not an error.
func (s *PromoService) Preview(ctx context.Context, dateFrom, dateTo string, page, perPage int) ([]models.CohortUser, int, error) {
	rng, ok := cohort.ParseRange(dateFrom, dateTo)
	if !ok {
		return []models.CohortUser{}, 0, nil
	}

	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	users, err := s.cohorts.Page(ctx, rng, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []models.CohortUser{}
	}

	total, err := s.cohorts.Count(ctx, rng)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ExportCSV streams the cohort as CSV into w, batching reads so the
// cohort is never fully materialized. Bad dates export header only.
func (s *PromoService) ExportCSV(ctx context.Context, dateFrom, dateTo string, w io.Writer) error {
	ew := csvexport.NewWriter(w)

	if rng, ok := cohort.ParseRange(dateFrom, dateTo); ok {
		if err := s.cohorts.ForEach(ctx, rng, s.exportBatch, ew.WriteUser); err != nil {
			return err
		}
	}
	return ew.Flush()
}
