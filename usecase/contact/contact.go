package contact

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository"
)

// emailShape is the basic local@domain.tld check; full RFC validation is
// deliberately out of scope.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

// Submission is one inbound contact request.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Lang    string `json:"lang"`
}

type UseCase struct {
	repo       repository.ContactRepository
	webhookURL string
	client     *fasthttp.Client
	logger     *zap.Logger
}

func New(repo repository.ContactRepository, webhookURL string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repo:       repo,
		webhookURL: webhookURL,
		client:     &fasthttp.Client{MaxConnsPerHost: 4},
		logger:     logger,
	}
}

// Validate checks required fields and the email shape.
func Validate(sub Submission) error {
	if strings.TrimSpace(sub.Name) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "name is required")
	}
	if strings.TrimSpace(sub.Message) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "message is required")
	}
	if !ValidEmail(sub.Email) {
		return domain.NewError(domain.ErrCodeInvalid, "email address is invalid")
	}
	return nil
}

// ValidEmail reports whether the address matches the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailShape.MatchString(strings.TrimSpace(email))
}

// Submit validates, archives and forwards one submission. The archive write
// and the webhook are best-effort side effects: their failures are logged
// once and never fail the request. Returns the opaque record identifier.
func (uc *UseCase) Submit(ctx context.Context, sub Submission) (string, error) {
	if err := Validate(sub); err != nil {
		return "", err
	}

	record := &repository.ContactSubmission{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(sub.Name),
		Email:   strings.TrimSpace(sub.Email),
		Message: sub.Message,
		Lang:    sub.Lang,
	}

	if uc.repo != nil {
		if err := uc.repo.Create(ctx, record); err != nil {
			uc.logger.Warn("contact archive write failed", zap.String("id", record.ID), zap.Error(err))
		}
	}

	uc.forward(record)
	return record.ID, nil
}

// forward posts the submission to the configured webhook, attempted once.
func (uc *UseCase) forward(record *repository.ContactSubmission) {
	if uc.webhookURL == "" {
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	body, err := json.Marshal(record)
	if err != nil {
		return
	}

	req.SetRequestURI(uc.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := uc.client.DoTimeout(req, resp, 5*time.Second); err != nil {
		uc.logger.Warn("contact webhook failed", zap.Error(err))
	}
}
