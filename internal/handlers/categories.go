package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var categorySortColumns = map[string]string{
	"sortOrder":  "sort_order",
	"sort_order": "sort_order",
	"name":       "name",
	"createdAt":  "created_at",
	"created_at": "created_at",
}

type categoryInput struct {
	Name        *string `json:"name" form:"name"`
	NameVi      *string `json:"nameVi" form:"nameVi"`
	Slug        *string `json:"slug" form:"slug"`
	Description *string `json:"description" form:"description"`
	Type        *string `json:"type" form:"type" binding:"omitempty,categorytype"`
	Icon        *string `json:"icon" form:"icon"`
	Color       *string `json:"color" form:"color"`
	Status      *string `json:"status" form:"status" binding:"omitempty,itemstatus"`
	Featured    *bool   `json:"featured" form:"featured"`
	SortOrder   *int    `json:"sortOrder" form:"sortOrder"`
}

func (in *categoryInput) apply(cat *models.Category) {
	if in.Name != nil {
		cat.Name = strings.TrimSpace(*in.Name)
	}
	if in.NameVi != nil {
		cat.NameVi = *in.NameVi
	}
	if in.Description != nil {
		cat.Description = *in.Description
	}
	if in.Type != nil {
		cat.Type = models.CategoryType(*in.Type)
	}
	if in.Icon != nil {
		cat.Icon = *in.Icon
	}
	if in.Color != nil {
		cat.Color = *in.Color
	}
	if in.Status != nil {
		cat.Status = models.ItemStatus(*in.Status)
	}
	if in.Featured != nil {
		cat.Featured = *in.Featured
	}
	if in.SortOrder != nil {
		cat.SortOrder = *in.SortOrder
	}
}

func findCategory(db *gorm.DB, ref string) (*models.Category, error) {
	var (
		cat *models.Category
		err error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		cat, err = models.FindCategoryByID(db, uint(id))
	} else {
		cat, err = models.FindCategoryBySlug(db, ref)
	}
	if err != nil {
		return nil, notFoundOr(err, "Category not found")
	}
	return cat, nil
}

func ListCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		query := db.Model(&models.Category{})

		if middleware.IsAdmin(c) {
			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
		} else {
			query = query.Where("status = ?", models.ItemStatusActive)
		}
		// A tour or service filter also matches categories shared by both.
		if t := c.Query("type"); t != "" {
			if t == string(models.CategoryTypeBoth) {
				query = query.Where("type = ?", t)
			} else {
				query = query.Where("type IN ?", []string{t, string(models.CategoryTypeBoth)})
			}
		}
		if featured := c.Query("featured"); featured != "" {
			query = query.Where("featured = ?", featured == "true" || featured == "1")
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(name_vi) LIKE ?", like, like)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to count categories", err))
			return
		}

		var categories []models.Category
		err := query.
			Order(sortClause(c, categorySortColumns, "sort_order ASC")).
			Order("name ASC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&categories).Error
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch categories", err))
			return
		}
		respondList(c, categories, page, limit, total)
	}
}

func GetCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := findCategory(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !middleware.IsAdmin(c) && cat.Status != models.ItemStatusActive {
			respondError(c, apperrors.NotFound("Category not found"))
			return
		}
		respond(c, http.StatusOK, "", cat)
	}
}

func CreateCategory(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categoryInput
		if err := bindBody(c, &in); err != nil {
			respondError(c, err)
			return
		}
		if trimmed(in.Name) == "" {
			failValidation(c, "Name is required")
			return
		}

		cat := &models.Category{Type: models.CategoryTypeBoth, Status: models.ItemStatusActive}
		in.apply(cat)

		slug, err := resolveSlug(in.Slug, cat.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := ensureUniqueSlug(db, &models.Category{}, slug, 0); err != nil {
			respondError(c, err)
			return
		}
		cat.Slug = slug

		if err := cat.Save(db); err != nil {
			respondError(c, saveError(err, "category"))
			return
		}

		record(activity, c, models.ActionCreate, "category", cat.ID, "Created category "+cat.Name, nil)
		respond(c, http.StatusCreated, "Category created successfully", cat)
	}
}

func UpdateCategory(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := findCategory(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var in categoryInput
		if err := bindBody(c, &in); err != nil {
			respondError(c, err)
			return
		}
		if in.Name != nil && trimmed(in.Name) == "" {
			failValidation(c, "Name cannot be empty")
			return
		}

		in.apply(cat)
		if in.Slug != nil {
			slug, err := resolveSlug(in.Slug, cat.Name)
			if err != nil {
				respondError(c, err)
				return
			}
			if err := ensureUniqueSlug(db, &models.Category{}, slug, cat.ID); err != nil {
				respondError(c, err)
				return
			}
			cat.Slug = slug
		}

		if err := cat.Save(db); err != nil {
			respondError(c, saveError(err, "category"))
			return
		}

		record(activity, c, models.ActionUpdate, "category", cat.ID, "Updated category "+cat.Name, nil)
		respond(c, http.StatusOK, "Category updated successfully", cat)
	}
}

// DeleteCategory refuses while tours or services still reference the
// category unless force=true, in which case the references are cleared.
func DeleteCategory(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := findCategory(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		usage, err := cat.Usage(db)
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to check category usage", err))
			return
		}
		force := c.Query("force") == "true"
		if usage.Total > 0 && !force {
			respondError(c, apperrors.Validation("Category is in use by tours or services").WithDetails(usage))
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			// Soft-deleted rows still hold the foreign key.
			if err := tx.Unscoped().Model(&models.Tour{}).Where("category_id = ?", cat.ID).Update("category_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Model(&models.Service{}).Where("category_id = ?", cat.ID).Update("category_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(cat).Error
		})
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to delete category", err))
			return
		}

		record(activity, c, models.ActionDelete, "category", cat.ID, "Deleted category "+cat.Name,
			map[string]interface{}{"force": force, "tours": usage.Tours, "services": usage.Services})
		respond(c, http.StatusOK, "Category deleted successfully", usage)
	}
}
