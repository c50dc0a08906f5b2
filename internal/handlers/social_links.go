package handlers

import (
	"net/http"
	"strings"

	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/models"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type socialLinkInput struct {
	Platform  *string `json:"platform"`
	URL       *string `json:"url" binding:"omitempty,url"`
	Icon      *string `json:"icon"`
	SortOrder *int    `json:"sortOrder"`
	IsActive  *bool   `json:"isActive"`
}

func (in *socialLinkInput) apply(link *models.SocialLink) {
	if in.Platform != nil {
		link.Platform = strings.TrimSpace(*in.Platform)
	}
	if in.URL != nil {
		link.URL = strings.TrimSpace(*in.URL)
	}
	if in.Icon != nil {
		link.Icon = *in.Icon
	}
	if in.SortOrder != nil {
		link.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		link.IsActive = *in.IsActive
	}
}

func ListSocialLinks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		links, err := models.FindSocialLinks(db, !middleware.IsAdmin(c))
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch social links", err))
			return
		}
		respond(c, http.StatusOK, "", links)
	}
}

func CreateSocialLink(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in socialLinkInput
		if err := bindBody(c, &in); err != nil {
			respondError(c, err)
			return
		}
		if trimmed(in.Platform) == "" || trimmed(in.URL) == "" {
			failValidation(c, "Platform and URL are required")
			return
		}

		link := &models.SocialLink{IsActive: true}
		if in.SortOrder == nil {
			var maxOrder int
			if err := db.Model(&models.SocialLink{}).Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
				respondError(c, apperrors.Unexpected("Failed to read social links", err))
				return
			}
			link.SortOrder = maxOrder + 1
		}
		in.apply(link)

		if err := link.Save(db); err != nil {
			respondError(c, apperrors.Unexpected("Failed to save social link", err))
			return
		}

		record(activity, c, models.ActionCreate, "social_link", link.ID, "Created social link "+link.Platform, nil)
		respond(c, http.StatusCreated, "Social link created successfully", link)
	}
}

func UpdateSocialLink(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			failValidation(c, "Invalid social link ID")
			return
		}
		link, err := models.FindSocialLinkByID(db, id)
		if err != nil {
			respondError(c, notFoundOr(err, "Social link not found"))
			return
		}
		var in socialLinkInput
		if err := bindBody(c, &in); err != nil {
			respondError(c, err)
			return
		}
		if (in.Platform != nil && trimmed(in.Platform) == "") || (in.URL != nil && trimmed(in.URL) == "") {
			failValidation(c, "Platform and URL cannot be empty")
			return
		}

		in.apply(link)
		if err := link.Save(db); err != nil {
			respondError(c, apperrors.Unexpected("Failed to save social link", err))
			return
		}

		record(activity, c, models.ActionUpdate, "social_link", link.ID, "Updated social link "+link.Platform, nil)
		respond(c, http.StatusOK, "Social link updated successfully", link)
	}
}

func DeleteSocialLink(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			failValidation(c, "Invalid social link ID")
			return
		}
		link, err := models.FindSocialLinkByID(db, id)
		if err != nil {
			respondError(c, notFoundOr(err, "Social link not found"))
			return
		}
		if err := db.Delete(link).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to delete social link", err))
			return
		}

		record(activity, c, models.ActionDelete, "social_link", link.ID, "Deleted social link "+link.Platform, nil)
		respond(c, http.StatusOK, "Social link deleted successfully", nil)
	}
}

// ReorderSocialLinks assigns sort_order by position in the submitted id list.
func ReorderSocialLinks(db *gorm.DB, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			IDs []uint `json:"ids" binding:"required,min=1"`
		}
		if err := bindBody(c, &in); err != nil {
			respondError(c, err)
			return
		}

		seen := make(map[uint]bool, len(in.IDs))
		for _, id := range in.IDs {
			if seen[id] {
				failValidation(c, "Duplicate social link ID in order")
				return
			}
			seen[id] = true
		}

		var count int64
		if err := db.Model(&models.SocialLink{}).Where("id IN ?", in.IDs).Count(&count).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to read social links", err))
			return
		}
		if count != int64(len(in.IDs)) {
			respondError(c, apperrors.NotFound("Social link not found"))
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for i, id := range in.IDs {
				if err := tx.Model(&models.SocialLink{}).Where("id = ?", id).Update("sort_order", i).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to reorder social links", err))
			return
		}

		links, err := models.FindSocialLinks(db, false)
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch social links", err))
			return
		}
		record(activity, c, models.ActionUpdate, "social_link", 0, "Reordered social links", map[string]interface{}{"ids": in.IDs})
		respond(c, http.StatusOK, "Social links reordered", links)
	}
}
