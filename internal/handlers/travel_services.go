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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var serviceSortColumns = map[string]string{
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"price":       "price",
	"title":       "title",
	"serviceType": "service_type",
	"featured":    "featured",
}

type serviceInput struct {
	Title         *string  `json:"title" form:"title"`
	TitleVi       *string  `json:"titleVi" form:"titleVi"`
	Slug          *string  `json:"slug" form:"slug"`
	Description   *string  `json:"description" form:"description"`
	DescriptionVi *string  `json:"descriptionVi" form:"descriptionVi"`
	ServiceType   *string  `json:"serviceType" form:"serviceType"`
	Price         *float64 `json:"price" form:"price" binding:"omitempty,gte=0"`
	PriceUnit     *string  `json:"priceUnit" form:"priceUnit"`
	FeaturedImage *string  `json:"featuredImage" form:"featuredImage"`
	CategoryID    *uint    `json:"categoryId" form:"categoryId"`
	Status        *string  `json:"status" form:"status" binding:"omitempty,itemstatus"`
	Featured      *bool    `json:"featured" form:"featured"`

	Images   *[]string `json:"images" form:"-"`
	Included *[]string `json:"included" form:"-"`
	Excluded *[]string `json:"excluded" form:"-"`
}

func bindServiceInput(c *gin.Context) (*serviceInput, error) {
	var in serviceInput
	if err := bindBody(c, &in); err != nil {
		return nil, err
	}
	if err := formJSON(c, "images", &in.Images); err != nil {
		return nil, err
	}
	if err := formJSON(c, "included", &in.Included); err != nil {
		return nil, err
	}
	if err := formJSON(c, "excluded", &in.Excluded); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *serviceInput) apply(s *models.Service) {
	if in.Title != nil {
		s.Title = strings.TrimSpace(*in.Title)
	}
	if in.TitleVi != nil {
		s.TitleVi = *in.TitleVi
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.DescriptionVi != nil {
		s.DescriptionVi = *in.DescriptionVi
	}
	if in.ServiceType != nil {
		s.ServiceType = *in.ServiceType
	}
	if in.Price != nil {
		s.Price = *in.Price
	}
	if in.PriceUnit != nil {
		s.PriceUnit = *in.PriceUnit
	}
	if in.FeaturedImage != nil {
		s.FeaturedImage = *in.FeaturedImage
	}
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			s.CategoryID = nil
		} else {
			id := *in.CategoryID
			s.CategoryID = &id
		}
	}
	if in.Status != nil {
		s.Status = models.ItemStatus(*in.Status)
	}
	if in.Featured != nil {
		s.Featured = *in.Featured
	}
	if in.Images != nil {
		s.Images = datatypes.JSONSlice[string](*in.Images)
	}
	if in.Included != nil {
		s.Included = datatypes.JSONSlice[string](*in.Included)
	}
	if in.Excluded != nil {
		s.Excluded = datatypes.JSONSlice[string](*in.Excluded)
	}
}

func findService(db *gorm.DB, ref string) (*models.Service, error) {
	var (
		service *models.Service
		err     error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		service, err = models.FindServiceByID(db, uint(id))
	} else {
		service, err = models.FindServiceBySlug(db, ref)
	}
	if err != nil {
		return nil, notFoundOr(err, "Service not found")
	}
	return service, nil
}

func ListServices(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		query := db.Model(&models.Service{})

		if middleware.IsAdmin(c) {
			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
		} else {
			query = query.Where("status = ?", models.ItemStatusActive)
		}
		query = applyCategoryFilter(db, query, c.Query("category"))
		if serviceType := c.Query("serviceType"); serviceType != "" {
			query = query.Where("service_type = ?", serviceType)
		}
		if featured := c.Query("featured"); featured != "" {
			query = query.Where("featured = ?", featured == "true" || featured == "1")
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(title_vi) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
		}
		if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
			query = query.Where("price >= ?", v)
		}
		if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
			query = query.Where("price <= ?", v)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to count services", err))
			return
		}

		var list []models.Service
		err := query.Preload("Category").
			Order(sortClause(c, serviceSortColumns, "created_at DESC")).
			Order("id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&list).Error
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch services", err))
			return
		}
		respondList(c, list, page, limit, total)
	}
}

func GetService(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		service, err := findService(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !middleware.IsAdmin(c) && service.Status != models.ItemStatusActive {
			respondError(c, apperrors.NotFound("Service not found"))
			return
		}
		respond(c, http.StatusOK, "", service)
	}
}

func CreateService(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := bindServiceInput(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if trimmed(in.Title) == "" || in.Price == nil {
			failValidation(c, "Title and price are required")
			return
		}

		service := &models.Service{Status: models.ItemStatusDraft}
		in.apply(service)

		slug, err := resolveSlug(in.Slug, service.Title)
		if err != nil {
			respondError(c, err)
			return
		}
		service.Slug = slug
		if err := ensureUniqueSlug(db, &models.Service{}, slug, 0); err != nil {
			respondError(c, err)
			return
		}
		if err := checkCategory(db, service.CategoryID); err != nil {
			respondError(c, err)
			return
		}

		gallery := []string(service.Images)
		uploaded, err := imageUploads(c, store, "services", &service.FeaturedImage, &gallery)
		if err == nil {
			service.Images = gallery
			err = checkGallery(gallery)
		}
		if err == nil {
			if serr := service.Save(db); serr != nil {
				err = saveError(serr, "service")
			}
		}
		if err != nil {
			services.DeleteImagesBestEffort(c.Request.Context(), store, uploaded)
			respondError(c, err)
			return
		}

		record(activity, c, models.ActionCreate, "service", service.ID, "Created service "+service.Title, nil)
		respond(c, http.StatusCreated, "Service created successfully", service)
	}
}

func UpdateService(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		service, err := findService(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		in, err := bindServiceInput(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if in.Title != nil && trimmed(in.Title) == "" {
			failValidation(c, "Title cannot be empty")
			return
		}

		previous := service.StoredImages()
		in.apply(service)
		service.Category = nil

		if in.Slug != nil {
			slug, err := resolveSlug(in.Slug, service.Title)
			if err != nil {
				respondError(c, err)
				return
			}
			if err := ensureUniqueSlug(db, &models.Service{}, slug, service.ID); err != nil {
				respondError(c, err)
				return
			}
			service.Slug = slug
		}
		if in.CategoryID != nil {
			if err := checkCategory(db, service.CategoryID); err != nil {
				respondError(c, err)
				return
			}
		}

		gallery := []string(service.Images)
		uploaded, err := imageUploads(c, store, "services", &service.FeaturedImage, &gallery)
		if err == nil {
			service.Images = gallery
			err = checkGallery(gallery)
		}
		if err == nil {
			if serr := service.Save(db); serr != nil {
				err = saveError(serr, "service")
			}
		}
		if err != nil {
			services.DeleteImagesBestEffort(c.Request.Context(), store, uploaded)
			respondError(c, err)
			return
		}

		services.DeleteImagesBestEffort(c.Request.Context(), store, removedURLs(previous, service.StoredImages()))
		record(activity, c, models.ActionUpdate, "service", service.ID, "Updated service "+service.Title, nil)

		updated, err := models.FindServiceByID(db, service.ID)
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to reload service", err))
			return
		}
		respond(c, http.StatusOK, "Service updated successfully", updated)
	}
}

func DeleteService(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		service, err := findService(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := db.Delete(service).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to delete service", err))
			return
		}

		services.DeleteImagesBestEffort(c.Request.Context(), store, service.StoredImages())
		record(activity, c, models.ActionDelete, "service", service.ID, "Deleted service "+service.Title, nil)
		respond(c, http.StatusOK, "Service deleted successfully", nil)
	}
}
