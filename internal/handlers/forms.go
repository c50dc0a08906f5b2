package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags to gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return utils.IsSlug(fl.Field().String())
		})
		_ = v.RegisterValidation("itemstatus", func(fl validator.FieldLevel) bool {
			return models.ItemStatus(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("categorytype", func(fl validator.FieldLevel) bool {
			return models.CategoryType(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
			return models.BookingStatus(fl.Field().String()).IsValid()
		})
	})
}

func isFormRequest(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "multipart/form-data" || ct == "application/x-www-form-urlencoded"
}

// bindBody decodes a JSON body or, for form posts, the form fields.
func bindBody(c *gin.Context, dst interface{}) error {
	var err error
	if isFormRequest(c) {
		err = c.ShouldBind(dst)
	} else {
		err = c.ShouldBindJSON(dst)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return apperrors.Validation("Request body is required")
	}
	return bindingError(err)
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		messages := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msg := fieldMessage(fe)
			fields[fe.Field()] = msg
			messages = append(messages, msg)
		}
		return apperrors.Validation(strings.Join(messages, "; ")).WithDetails(fields)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) {
		return apperrors.Validation("Malformed JSON body")
	}
	if errors.As(err, &typeErr) {
		return apperrors.Validation(fmt.Sprintf("Invalid value for field %s", typeErr.Field))
	}
	return apperrors.Validation(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "slug":
		return fe.Field() + " must be lowercase letters, digits and hyphens"
	case "itemstatus":
		return "Status must be one of active, inactive, draft"
	case "categorytype":
		return "Type must be one of tour, service, both"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// formJSON decodes a stringified JSON form field into dst. Absent fields
// leave dst untouched; malformed JSON is a validation error.
func formJSON[T any](c *gin.Context, field string, dst **T) error {
	if !isFormRequest(c) {
		return nil
	}
	raw, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	var v T
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return apperrors.Validation(fmt.Sprintf("Invalid JSON in field %s", field))
		}
	}
	*dst = &v
	return nil
}

func formFile(c *gin.Context, field string) *multipart.FileHeader {
	if c.ContentType() != "multipart/form-data" {
		return nil
	}
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}

func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	if c.ContentType() != "multipart/form-data" {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil || form.File == nil {
		return nil
	}
	return form.File[field]
}

// imageUploads uploads the "image" file as the featured image and any
// "galleryImages" files onto the end of the gallery. It returns the URLs it
// stored so callers can remove them again if the save fails.
func imageUploads(c *gin.Context, store services.Storage, folder string, featured *string, gallery *[]string) ([]string, error) {
	var uploaded []string
	if store == nil {
		return nil, nil
	}
	if file := formFile(c, "image"); file != nil {
		url, err := store.Upload(c.Request.Context(), file, folder)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, url)
		*featured = url
	}
	for _, file := range formFiles(c, "galleryImages") {
		url, err := store.Upload(c.Request.Context(), file, folder)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, url)
		*gallery = append(*gallery, url)
	}
	return uploaded, nil
}

// removedURLs lists entries of before that are not in after.
func removedURLs(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, u := range after {
		keep[u] = true
	}
	var removed []string
	for _, u := range before {
		if u != "" && !keep[u] {
			removed = append(removed, u)
		}
	}
	return removed
}

// ensureUniqueSlug checks slug against every row of model's table,
// soft-deleted ones included since the unique index covers them.
func ensureUniqueSlug(db *gorm.DB, model interface{}, slug string, excludeID uint) error {
	var count int64
	query := db.Unscoped().Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Unexpected("Failed to check slug", err)
	}
	if count > 0 {
		return apperrors.Conflict("Slug already exists")
	}
	return nil
}

// resolveSlug picks the explicit slug or derives one from the title.
func resolveSlug(explicit *string, title string) (string, error) {
	slug := ""
	if explicit != nil {
		slug = strings.TrimSpace(*explicit)
	}
	if slug == "" {
		slug = utils.Slugify(title)
	}
	if slug == "" {
		return "", apperrors.Validation("Slug could not be generated from the title")
	}
	if !utils.IsSlug(slug) {
		return "", apperrors.Validation("Slug must be lowercase letters, digits and hyphens")
	}
	return slug, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func saveError(err error, what string) error {
	if services.IsUniqueViolation(err) {
		return apperrors.Conflict("Slug already exists")
	}
	return apperrors.Unexpected("Failed to save "+what, err)
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(message)
	}
	return apperrors.Unexpected("Database error", err)
}
