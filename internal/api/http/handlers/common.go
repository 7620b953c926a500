package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/access"
	"github.com/khushboocodes/QuickDesk/internal/api/dto"
	"github.com/khushboocodes/QuickDesk/internal/auth"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		fields := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			fields[fe.Field()] = rule
		}
		return apperrors.NewValidationError("invalid payload", map[string]any{"fields": fields})
	}
	return nil
}

func currentUser(c *fiber.Ctx) (domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.User{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		DisplayName: user.DisplayName(),
		Role:        user.Role,
		AccessLevel: access.AccessLevel(user.Role),
		AvatarURL:   user.AvatarURL,
		Department:  user.Department,
		Phone:       user.Phone,
		CreatedDate: user.CreatedDate,
	}
}

func ticketResponse(ticket *domain.Ticket, commentCount int) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		CategoryID:     ticket.CategoryID,
		ReporterEmail:  ticket.ReporterEmail,
		Upvotes:        ticket.Upvotes,
		CommentCount:   commentCount,
		Tags:           nonNil(ticket.Tags),
		AttachmentURLs: nonNil(ticket.AttachmentURLs),
		CreatedDate:    ticket.CreatedDate,
		UpdatedDate:    ticket.UpdatedDate,
	}
}

func commentResponses(comments []domain.Comment) []dto.CommentResponse {
	resp := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, commentResponse(&comments[i]))
	}
	return resp
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:          comment.ID,
		TicketID:    comment.TicketID,
		Content:     comment.Content,
		AuthorEmail: comment.AuthorEmail,
		AuthorName:  comment.AuthorName,
		IsInternal:  comment.IsInternal,
		CreatedDate: comment.CreatedDate,
	}
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		Icon:        category.Icon,
		CreatedDate: category.CreatedDate,
	}
}

func upgradeResponse(request *domain.UpgradeRequest) dto.UpgradeRequestResponse {
	return dto.UpgradeRequestResponse{
		ID:            request.ID,
		UserID:        request.UserID,
		UserEmail:     request.UserEmail,
		UserName:      request.UserName,
		CurrentRole:   request.CurrentRole,
		RequestedRole: request.RequestedRole,
		Reason:        request.Reason,
		Status:        request.Status,
		CreatedDate:   request.CreatedDate,
		UpdatedDate:   request.UpdatedDate,
	}
}

func upgradeResponses(requests []domain.UpgradeRequest) []dto.UpgradeRequestResponse {
	resp := make([]dto.UpgradeRequestResponse, 0, len(requests))
	for i := range requests {
		resp = append(resp, upgradeResponse(&requests[i]))
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
