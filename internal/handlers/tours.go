package handlers

import (
	"fmt"
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

var tourSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"price":      "price",
	"title":      "title",
	"duration":   "duration",
	"featured":   "featured",
}

type tourInput struct {
	Title              *string  `json:"title" form:"title"`
	TitleVi            *string  `json:"titleVi" form:"titleVi"`
	Slug               *string  `json:"slug" form:"slug"`
	Description        *string  `json:"description" form:"description"`
	DescriptionVi      *string  `json:"descriptionVi" form:"descriptionVi"`
	ShortDescription   *string  `json:"shortDescription" form:"shortDescription"`
	ShortDescriptionVi *string  `json:"shortDescriptionVi" form:"shortDescriptionVi"`
	Price              *float64 `json:"price" form:"price" binding:"omitempty,gte=0"`
	OriginalPrice      *float64 `json:"originalPrice" form:"originalPrice" binding:"omitempty,gte=0"`
	Duration           *string  `json:"duration" form:"duration"`
	Location           *string  `json:"location" form:"location"`
	MaxParticipants    *int     `json:"maxParticipants" form:"maxParticipants" binding:"omitempty,gte=0"`
	FeaturedImage      *string  `json:"featuredImage" form:"featuredImage"`
	CategoryID         *uint    `json:"categoryId" form:"categoryId"`
	Status             *string  `json:"status" form:"status" binding:"omitempty,itemstatus"`
	Featured           *bool    `json:"featured" form:"featured"`

	Images    *[]string              `json:"images" form:"-"`
	Itinerary *[]models.ItineraryDay `json:"itinerary" form:"-"`
	Included  *[]string              `json:"included" form:"-"`
	Excluded  *[]string              `json:"excluded" form:"-"`
}

func bindTourInput(c *gin.Context) (*tourInput, error) {
	var in tourInput
	if err := bindBody(c, &in); err != nil {
		return nil, err
	}
	if err := formJSON(c, "images", &in.Images); err != nil {
		return nil, err
	}
	if err := formJSON(c, "itinerary", &in.Itinerary); err != nil {
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

// apply merges the provided fields into t.
func (in *tourInput) apply(t *models.Tour) {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.TitleVi != nil {
		t.TitleVi = *in.TitleVi
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.DescriptionVi != nil {
		t.DescriptionVi = *in.DescriptionVi
	}
	if in.ShortDescription != nil {
		t.ShortDescription = *in.ShortDescription
	}
	if in.ShortDescriptionVi != nil {
		t.ShortDescriptionVi = *in.ShortDescriptionVi
	}
	if in.Price != nil {
		t.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		t.OriginalPrice = in.OriginalPrice
	}
	if in.Duration != nil {
		t.Duration = *in.Duration
	}
	if in.Location != nil {
		t.Location = *in.Location
	}
	if in.MaxParticipants != nil {
		t.MaxParticipants = *in.MaxParticipants
	}
	if in.FeaturedImage != nil {
		t.FeaturedImage = *in.FeaturedImage
	}
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			t.CategoryID = nil
		} else {
			id := *in.CategoryID
			t.CategoryID = &id
		}
	}
	if in.Status != nil {
		t.Status = models.ItemStatus(*in.Status)
	}
	if in.Featured != nil {
		t.Featured = *in.Featured
	}
	if in.Images != nil {
		t.Images = datatypes.JSONSlice[string](*in.Images)
	}
	if in.Itinerary != nil {
		t.Itinerary = datatypes.JSONSlice[models.ItineraryDay](*in.Itinerary)
	}
	if in.Included != nil {
		t.Included = datatypes.JSONSlice[string](*in.Included)
	}
	if in.Excluded != nil {
		t.Excluded = datatypes.JSONSlice[string](*in.Excluded)
	}
}

func checkCategory(db *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := models.FindCategoryByID(db, *id); err != nil {
		return notFoundOr(err, "Category not found")
	}
	return nil
}

func checkGallery(images []string) error {
	if len(images) > models.MaxGalleryImages {
		return apperrors.Validation(fmt.Sprintf("A maximum of %d images is allowed", models.MaxGalleryImages))
	}
	return nil
}

// findTour resolves :id as a numeric id first and a slug otherwise.
func findTour(db *gorm.DB, ref string) (*models.Tour, error) {
	var (
		tour *models.Tour
		err  error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		tour, err = models.FindTourByID(db, uint(id))
	} else {
		tour, err = models.FindTourBySlug(db, ref)
	}
	if err != nil {
		return nil, notFoundOr(err, "Tour not found")
	}
	return tour, nil
}

// applyCategoryFilter accepts a category id or slug.
func applyCategoryFilter(db *gorm.DB, query *gorm.DB, ref string) *gorm.DB {
	if ref == "" {
		return query
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return query.Where("category_id = ?", id)
	}
	return query.Where("category_id IN (?)", db.Model(&models.Category{}).Select("id").Where("slug = ?", ref))
}

func ListTours(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		query := db.Model(&models.Tour{})

		if middleware.IsAdmin(c) {
			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
		} else {
			query = query.Where("status = ?", models.ItemStatusActive)
		}
		query = applyCategoryFilter(db, query, c.Query("category"))
		if featured := c.Query("featured"); featured != "" {
			query = query.Where("featured = ?", featured == "true" || featured == "1")
		}
		if location := strings.TrimSpace(c.Query("location")); location != "" {
			query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
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
			respondError(c, apperrors.Unexpected("Failed to count tours", err))
			return
		}

		var tours []models.Tour
		err := query.Preload("Category").
			Order(sortClause(c, tourSortColumns, "created_at DESC")).
			Order("id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&tours).Error
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to fetch tours", err))
			return
		}
		respondList(c, tours, page, limit, total)
	}
}

func GetTour(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tour, err := findTour(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !middleware.IsAdmin(c) && tour.Status != models.ItemStatusActive {
			respondError(c, apperrors.NotFound("Tour not found"))
			return
		}
		respond(c, http.StatusOK, "", tour)
	}
}

func CreateTour(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := bindTourInput(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if trimmed(in.Title) == "" || in.Price == nil {
			failValidation(c, "Title and price are required")
			return
		}

		tour := &models.Tour{Status: models.ItemStatusDraft}
		in.apply(tour)

		slug, err := resolveSlug(in.Slug, tour.Title)
		if err != nil {
			respondError(c, err)
			return
		}
		tour.Slug = slug
		if err := ensureUniqueSlug(db, &models.Tour{}, slug, 0); err != nil {
			respondError(c, err)
			return
		}
		if err := checkCategory(db, tour.CategoryID); err != nil {
			respondError(c, err)
			return
		}

		gallery := []string(tour.Images)
		uploaded, err := imageUploads(c, store, "tours", &tour.FeaturedImage, &gallery)
		if err == nil {
			tour.Images = gallery
			err = checkGallery(gallery)
		}
		if err == nil {
			if serr := tour.Save(db); serr != nil {
				err = saveError(serr, "tour")
			}
		}
		if err != nil {
			services.DeleteImagesBestEffort(c.Request.Context(), store, uploaded)
			respondError(c, err)
			return
		}

		record(activity, c, models.ActionCreate, "tour", tour.ID, "Created tour "+tour.Title, nil)
		respond(c, http.StatusCreated, "Tour created successfully", tour)
	}
}

func UpdateTour(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tour, err := findTour(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		in, err := bindTourInput(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if in.Title != nil && trimmed(in.Title) == "" {
			failValidation(c, "Title cannot be empty")
			return
		}

		previous := tour.StoredImages()
		in.apply(tour)
		tour.Category = nil

		if in.Slug != nil {
			slug, err := resolveSlug(in.Slug, tour.Title)
			if err != nil {
				respondError(c, err)
				return
			}
			if err := ensureUniqueSlug(db, &models.Tour{}, slug, tour.ID); err != nil {
				respondError(c, err)
				return
			}
			tour.Slug = slug
		}
		if in.CategoryID != nil {
			if err := checkCategory(db, tour.CategoryID); err != nil {
				respondError(c, err)
				return
			}
		}

		gallery := []string(tour.Images)
		uploaded, err := imageUploads(c, store, "tours", &tour.FeaturedImage, &gallery)
		if err == nil {
			tour.Images = gallery
			err = checkGallery(gallery)
		}
		if err == nil {
			if serr := tour.Save(db); serr != nil {
				err = saveError(serr, "tour")
			}
		}
		if err != nil {
			services.DeleteImagesBestEffort(c.Request.Context(), store, uploaded)
			respondError(c, err)
			return
		}

		services.DeleteImagesBestEffort(c.Request.Context(), store, removedURLs(previous, tour.StoredImages()))
		record(activity, c, models.ActionUpdate, "tour", tour.ID, "Updated tour "+tour.Title, nil)

		updated, err := models.FindTourByID(db, tour.ID)
		if err != nil {
			respondError(c, apperrors.Unexpected("Failed to reload tour", err))
			return
		}
		respond(c, http.StatusOK, "Tour updated successfully", updated)
	}
}

func DeleteTour(db *gorm.DB, store services.Storage, activity services.ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tour, err := findTour(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := db.Delete(tour).Error; err != nil {
			respondError(c, apperrors.Unexpected("Failed to delete tour", err))
			return
		}

		services.DeleteImagesBestEffort(c.Request.Context(), store, tour.StoredImages())
		record(activity, c, models.ActionDelete, "tour", tour.ID, "Deleted tour "+tour.Title, nil)
		respond(c, http.StatusOK, "Tour deleted successfully", nil)
	}
}
