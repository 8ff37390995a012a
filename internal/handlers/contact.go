package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MsgInvalidContact is returned for any contact submission that fails validation.
const MsgInvalidContact = "Invalid input"

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>?`)
	mailboxPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ContactMessage is a sanitized contact form submission.
type ContactMessage struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,mailbox"`
	Message string `validate:"required"`
}

// ContactRequest carries a contact form body, JSON or form encoded.
type ContactRequest struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

// ContactResponse acknowledges a valid submission.
type ContactResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// ContactHandler accepts contact form submissions and logs them.
type ContactHandler struct {
	validate *validator.Validate
	logger   *zap.Logger
}

func NewContactHandler(logger *zap.Logger) *ContactHandler {
	validate := validator.New()
	_ = validate.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return mailboxPattern.MatchString(fl.Field().String())
	})

	return &ContactHandler{validate: validate, logger: logger}
}

func (h *ContactHandler) SubmitContact(ctx context.Context, req *ContactRequest) (*ContactResponse, error) {
	msg, err := ParseContactMessage(req.ContentType, req.RawBody)
	if err != nil {
		return nil, newAPIError(http.StatusBadRequest, MsgInvalidContact)
	}

	if err := h.validate.Struct(msg); err != nil {
		return nil, newAPIError(http.StatusBadRequest, MsgInvalidContact)
	}

	meta := RequestMetaFromContext(ctx)
	h.logger.Info("contact form submission",
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.String("message", msg.Message),
		zap.String("client_ip", meta.ClientIP),
	)

	resp := &ContactResponse{}
	resp.Body.Success = true

	return resp, nil
}

// ParseContactMessage reads name, email and message from a JSON body when the
// content type says so, and from a form encoded body otherwise. Markup is
// stripped from every field.
func ParseContactMessage(contentType string, body []byte) (ContactMessage, error) {
	if strings.Contains(contentType, "application/json") {
		fields := map[string]any{}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &fields); err != nil {
				return ContactMessage{}, err
			}
		}

		return ContactMessage{
			Name:    sanitize(textValue(fields["name"])),
			Email:   sanitize(textValue(fields["email"])),
			Message: sanitize(textValue(fields["message"])),
		}, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return ContactMessage{}, err
	}

	return ContactMessage{
		Name:    sanitize(values.Get("name")),
		Email:   sanitize(values.Get("email")),
		Message: sanitize(values.Get("message")),
	}, nil
}

func sanitize(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
