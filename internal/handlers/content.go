package handlers

import (
	"net/http"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var contentSortColumns = map[string]string{
	"sortOrder":  "sort_order",
	"sort_order": "sort_order",
	"key":        "content_key",
	"page":       "page",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

type contentInput struct {
	Key       *string `json:"key" form:"key"`
	Page      *string `json:"page" form:"page"`
	Section   *string `json:"section" form:"section"`
	Title     *string `json:"title" form:"title"`
	TitleVi   *string `json:"titleVi" form:"titleVi"`
	Body      *string `json:"body" form:"body"`
	BodyVi    *string `json:"bodyVi" form:"bodyVi"`
	Image     *string `json:"image" form:"-"`
	Status    *string `json:"status" form:"status" binding:"omitempty,itemstatus"`
	SortOrder *int    `json:"sortOrder" form:"sortOrder"`

	Metadata *map[string]interface{} `json:"metadata" form:"-"`
}

func bindContentInput(c *gin.Context) (*contentInput, error) {
	var in contentInput
	if err := bindBody(c, &in); err != nil {
		return nil, err
	}
	if err := formJSON(c, "metadata", &in.Metadata); err != nil {
		return nil, err
	}
	if isFormRequest(c) {
		if v, ok := c.GetPostForm("image"); ok {
			in.Image = &v
		}
	}
	return &in, nil
}

func (in *contentInput) apply(item *models.Content) {
	if in.Page != nil {
		item.Page = *in.Page
	}
	if in.Section != nil {
		item.Section = *in.Section
	}
	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.TitleVi != nil {
		item.TitleVi = *in.TitleVi
	}
	if in.Body != nil {
		item.Body = *in.Body
	}
	if in.BodyVi != nil {
		item.BodyVi = *in.BodyVi
	}
	if in.Image != nil {
		item.Image = *in.Image
	}
	if in.Status != nil {
		item.Status = models.ItemStatus(*in.Status)
	}
	if in.SortOrder != nil {
		item.SortOrder = *in.SortOrder
	}
	if in.Metadata != nil {
		item.Metadata = datatypes.JSONMap(*in.Metadata)
	}
}

func ensureUniqueContentKey(db *gorm.DB, key string, excludeID uint) error {
	var count int64
	query := db.Model(&models.Content{}).Where("content_key = ?", key)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Unexpected("Failed to check content key", err)
	}
	if count > 0 {
		return apperrors.Conflict("Content key already exists")
	}
	return nil
}

// uploadContentImage stores an uploaded "image" file as the block's image.
func uploadContentImage(c *gin.Context, store services.Storage, item *models.Content) (string, error) {
	file := formFile(c, "image")
	if file == nil || store == nil {
		return "", nil
	}
	url, err := store.Upload(c.Request.Context(), file, "content")
	if err != nil {
		return "", err
	}
	item.Image = url
	return url, nil
}

func ListContent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		query := db.Model(&models.Content{})

		if middleware.IsAdmin(c) {
			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
		} else {
			query = query.Where("status = ?", models.ItemStatusActive)
		}
		if p := c.Query("pageName"); p != "" {
			query = query.Where("page = ?", p)
		}
		if section := c.Query("section"); section != "" {
			query = query.Where("section = ?", section)
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(content_key) LIKE ? OR LOWER(title) LIKE ?", like, like)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to count content", err))
			return
		}

		var items []models.Content
		err := query.
			Order(sortClause(c, contentSortColumns, "page ASC")).
			Order("sort_order ASC").
			Order("id ASC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&items).Error
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch content", err))
			return
		}
		respondList(c, items, page, limit, total)
	}
}

func GetContent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := models.FindContentByKey(db, c.Param("key"))
		if err != nil {
			respondError(c, notFoundOr(err, "Content not found"))
			return
		}
		if !middleware.IsAdmin(c) && item.Status != models.ItemStatusActive {
			respondError(c, apperrors.NotFound("Content not found"))
			return
		}
		respond(c, http.StatusOK, "", item)
	}
}

func CreateContent(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := bindContentInput(c)
		if err != nil {
			respondError(c, err)
			return
		}
		key := trimmed(in.Key)
		if key == "" {
			failValidation(c, "Content key is required")
			return
		}
		if err := ensureUniqueContentKey(db, key, 0); err != nil {
			respondError(c, err)
			return
		}

		item := &models.Content{Key: key, Status: models.ItemStatusActive}
		in.apply(item)

		uploaded, err := uploadContentImage(c, store, item)
		if err == nil {
			if serr := item.Save(db); serr != nil {
				if services.IsUniqueViolation(serr) {
					err = apperrors.Conflict("Content key already exists")
				} else {
					err = apperrors.Unexpected("Failed to save content", serr)
				}
			}
		}
		if err != nil {
			if uploaded != "" {
				services.DeleteImagesBestEffort(c.Request.Context(), store, []string{uploaded})
			}
			respondError(c, err)
			return
		}

		record(activity, c, models.ActionCreate, "content", item.ID, "Created content "+item.Key, nil)
		respond(c, http.StatusCreated, "Content created successfully", item)
	}
}

func UpdateContent(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := models.FindContentByKey(db, c.Param("key"))
		if err != nil {
			respondError(c, notFoundOr(err, "Content not found"))
			return
		}
		in, err := bindContentInput(c)
		if err != nil {
			respondError(c, err)
			return
		}

		if in.Key != nil {
			key := trimmed(in.Key)
			if key == "" {
				failValidation(c, "Content key cannot be empty")
				return
			}
			if err := ensureUniqueContentKey(db, key, item.ID); err != nil {
				respondError(c, err)
				return
			}
			item.Key = key
		}

		previous := item.Image
		in.apply(item)

		uploaded, err := uploadContentImage(c, store, item)
		if err == nil {
			if serr := item.Save(db); serr != nil {
				err = apperrors.Unexpected("Failed to save content", serr)
			}
		}
		if err != nil {
			if uploaded != "" {
				services.DeleteImagesBestEffort(c.Request.Context(), store, []string{uploaded})
			}
			respondError(c, err)
			return
		}

		if previous != "" && previous != item.Image {
			services.DeleteImagesBestEffort(c.Request.Context(), store, []string{previous})
		}
		record(activity, c, models.ActionUpdate, "content", item.ID, "Updated content "+item.Key, nil)
		respond(c, http.StatusOK, "Content updated successfully", item)
	}
}

func DeleteContent(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := models.FindContentByKey(db, c.Param("key"))
		if err != nil {
			respondError(c, notFoundOr(err, "Content not found"))
			return
		}
		if err := db.Delete(item).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to delete content", err))
			return
		}
		if item.Image != "" {
			services.DeleteImagesBestEffort(c.Request.Context(), store, []string{item.Image})
		}

		record(activity, c, models.ActionDelete, "content", item.ID, "Deleted content "+item.Key, nil)
		respond(c, http.StatusOK, "Content deleted successfully", nil)
	}
}
