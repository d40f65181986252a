// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"brocante/internal/apperr"
	"brocante/internal/cache"
	"brocante/internal/imaging"
	"brocante/internal/middleware"
	"brocante/internal/models"
	"brocante/internal/schema"
	"brocante/internal/storage"
	"brocante/internal/store"
)

const (
	// maxAdImages is the maximum number of pictures per ad.
	maxAdImages = 8

	// maxImageSize is the maximum size of a single picture (5 MB).
	maxImageSize = 5 << 20
)

// allowedImageTypes defines MIME types accepted for ad pictures.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Ads groups the classified-ad HTTP handlers: the public listing and
// detail pages, authenticated submission, and the owner surface.
type Ads struct {
	adStore       *store.AdStore
	fieldStore    *store.FieldStore
	settingStore  *store.SettingStore
	storageClient *storage.Client
	listingCache  *cache.ListingCache
}

// NewAds creates a new Ads handler group. storageClient may be nil if
// object storage is not configured; image upload is then unavailable.
func NewAds(adStore *store.AdStore, fieldStore *store.FieldStore, settingStore *store.SettingStore, storageClient *storage.Client, listingCache *cache.ListingCache) *Ads {
	return &Ads{
		adStore:       adStore,
		fieldStore:    fieldStore,
		settingStore:  settingStore,
		storageClient: storageClient,
		listingCache:  listingCache,
	}
}

// List serves the public listing: active ads only, filtered, sorted and
// paginated. Responses are cached briefly in Valkey keyed by the query
// string.
func (h *Ads) List(w http.ResponseWriter, r *http.Request) {
	q := store.PublicQuery{
		CategorySlug:    r.URL.Query().Get("category"),
		SubcategorySlug: r.URL.Query().Get("subcategory"),
		Search:          strings.TrimSpace(r.URL.Query().Get("search")),
		Sort:            store.SortKey(r.URL.Query().Get("sort")),
		Page:            queryInt(r, "page"),
		Limit:           queryInt(r, "limit"),
	}

	cacheKey := r.URL.RawQuery
	if body, ok := h.listingCache.Get(r.Context(), cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	ads, total, err := h.adStore.ListPublic(q)
	if err != nil {
		writeError(w, err)
		return
	}
	for i := range ads {
		h.withImageURLs(&ads[i])
	}

	body, err := json.Marshal(listingResponse(ads, total, q.Page, q.Limit))
	if err != nil {
		writeError(w, err)
		return
	}

	h.listingCache.Set(r.Context(), cacheKey, body)
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Detail serves one ad and counts the view. Ads that are not active are
// only visible to their owner and to admins.
func (h *Ads) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	ad, err := h.adStore.FindForDisplay(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if ad == nil || !h.canSee(r, ad) {
		writeErrorMsg(w, http.StatusNotFound, "ad not found")
		return
	}

	writeJSON(w, http.StatusOK, h.withImageURLs(ad))
}

// Submit creates a new ad from a multipart form. Intrinsic fields come
// as form values, category-specific fields as a JSON object under
// "fields", and up to 8 pictures under "images". The ad starts pending
// when moderation is on, active otherwise.
func (h *Ads) Submit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAdImages*maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeErrorMsg(w, http.StatusRequestEntityTooLarge, "request too large")
		return
	}

	ad, err := h.adFromForm(r, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}
	if len(files) > maxAdImages {
		writeErrorMsg(w, http.StatusUnprocessableEntity, fmt.Sprintf("at most %d images per ad", maxAdImages))
		return
	}
	if len(files) > 0 && h.storageClient == nil {
		writeErrorMsg(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	images, uploaded, err := h.uploadImages(r, files)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.adStore.Create(ad, images)
	if err != nil {
		// Roll back the uploads the ad will never reference.
		h.cleanupUploads(r, uploaded)
		writeError(w, err)
		return
	}

	if created.Status == models.StatusActive {
		h.listingCache.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusCreated, h.withImageURLs(created))
}

// MyAds lists the authenticated user's own ads in every status.
func (h *Ads) MyAds(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())

	ads, err := h.adStore.ListByOwner(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	for i := range ads {
		h.withImageURLs(&ads[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"ads": ads})
}

// MarkSold transitions the owner's active ad to sold.
func (h *Ads) MarkSold(w http.ResponseWriter, r *http.Request) {
	ad, ok := h.ownedAd(w, r)
	if !ok {
		return
	}

	if err := h.adStore.Transition(ad.ID, models.StatusSold); err != nil {
		writeError(w, err)
		return
	}

	h.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusSold)})
}

// Delete removes the owner's ad and cleans up its pictures in storage.
func (h *Ads) Delete(w http.ResponseWriter, r *http.Request) {
	ad, ok := h.ownedAd(w, r)
	if !ok {
		return
	}

	filenames, err := h.adStore.Delete(ad.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cleanupUploads(r, filenames)
	h.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ReorderImages rewrites the picture order of the owner's ad. The body
// must list every image of the ad exactly once; the first becomes the
// primary image.
func (h *Ads) ReorderImages(w http.ResponseWriter, r *http.Request) {
	ad, ok := h.ownedAd(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.adStore.ReorderImages(ad.ID, req.IDs); err != nil {
		writeError(w, err)
		return
	}

	h.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// adFromForm builds and validates an Ad from the multipart form values.
func (h *Ads) adFromForm(r *http.Request, ownerID uuid.UUID) (*models.Ad, error) {
	categoryID, err := uuid.Parse(r.FormValue("category_id"))
	if err != nil {
		return nil, apperr.ValidationField("category_id", "a valid category id is required")
	}

	ad := &models.Ad{
		OwnerID:     ownerID,
		CategoryID:  categoryID,
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Condition:   models.Condition(r.FormValue("condition")),
		Location:    strings.TrimSpace(r.FormValue("location")),
	}

	if raw := r.FormValue("subcategory_id"); raw != "" {
		subID, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.ValidationField("subcategory_id", "must be a valid id")
		}
		ad.SubcategoryID = &subID
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return nil, apperr.ValidationField("price", "must be a number")
	}
	ad.Price = price

	if err := schema.ValidateBaseline(ad); err != nil {
		return nil, err
	}

	// Category-specific fields arrive as one JSON object.
	payload := map[string]string{}
	if raw := r.FormValue("fields"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, apperr.ValidationField("fields", "must be a JSON object of strings")
		}
	}

	defs, err := h.fieldStore.ListByCategory(ad.CategoryID)
	if err != nil {
		return nil, err
	}
	dynamic, err := schema.ValidateSubmission(defs, payload)
	if err != nil {
		return nil, err
	}
	ad.DynamicFields = dynamic

	moderated, err := h.settingStore.ModerationEnabled()
	if err != nil {
		return nil, err
	}
	if moderated {
		ad.Status = models.StatusPending
	} else {
		ad.Status = models.StatusActive
	}

	return ad, nil
}

// uploadImages stores each picture in S3 with a generated filename and
// a best-effort thumbnail. Returns the image rows in submission order
// plus every uploaded key for rollback.
func (h *Ads) uploadImages(r *http.Request, files []*multipart.FileHeader) ([]models.AdImage, []string, error) {
	var images []models.AdImage
	var uploaded []string

	for _, fh := range files {
		if fh.Size > maxImageSize {
			h.cleanupUploads(r, uploaded)
			return nil, nil, apperr.ValidationField("images", "each image must be at most 5 MB")
		}

		file, err := fh.Open()
		if err != nil {
			h.cleanupUploads(r, uploaded)
			return nil, nil, fmt.Errorf("open upload: %w", err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.cleanupUploads(r, uploaded)
			return nil, nil, fmt.Errorf("read upload: %w", err)
		}

		contentType := http.DetectContentType(data)
		if !allowedImageTypes[contentType] {
			h.cleanupUploads(r, uploaded)
			return nil, nil, apperr.ValidationField("images", fmt.Sprintf("file type %q is not allowed", contentType))
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext == "" {
			ext = extensionFromType(contentType)
		}
		filename := uuid.New().String() + ext
		key := "ads/" + filename

		ctx := r.Context()
		if err := h.storageClient.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
			h.cleanupUploads(r, uploaded)
			return nil, nil, fmt.Errorf("upload image: %w", err)
		}
		uploaded = append(uploaded, filename)

		// GIF keeps its animation, no thumbnail.
		if contentType != "image/gif" {
			if thumb, err := imaging.Thumbnail(data); err != nil {
				slog.Warn("thumbnail generation failed", "error", err, "key", key)
			} else if err := h.storageClient.Upload(ctx, thumbKey(filename), "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", thumbKey(filename))
			}
		}

		images = append(images, models.AdImage{
			Filename:     filename,
			OriginalName: fh.Filename,
		})
	}

	return images, uploaded, nil
}

// cleanupUploads deletes stored pictures and their thumbnails,
// best-effort.
func (h *Ads) cleanupUploads(r *http.Request, filenames []string) {
	if h.storageClient == nil {
		return
	}
	ctx := r.Context()
	for _, name := range filenames {
		if err := h.storageClient.Delete(ctx, "ads/"+name); err != nil {
			slog.Warn("image delete failed", "error", err, "filename", name)
		}
		if err := h.storageClient.Delete(ctx, thumbKey(name)); err != nil {
			slog.Warn("thumbnail delete failed", "error", err, "filename", name)
		}
	}
}

// withImageURLs rewrites the ad's image filenames into full URLs.
func (h *Ads) withImageURLs(ad *models.Ad) *models.Ad {
	if h.storageClient == nil {
		return ad
	}
	for i, name := range ad.Images {
		ad.Images[i] = h.storageClient.FileURL("ads/" + name)
	}
	return ad
}

// canSee reports whether the requester may view the ad in its current
// status.
func (h *Ads) canSee(r *http.Request, ad *models.Ad) bool {
	if ad.Status == models.StatusActive {
		return true
	}
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		return false
	}
	return claims.UserID == ad.OwnerID || claims.Role == models.RoleAdmin
}

// ownedAd loads the ad from the URL and checks the requester owns it.
// Admins pass the ownership check.
func (h *Ads) ownedAd(w http.ResponseWriter, r *http.Request) (*models.Ad, bool) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return nil, false
	}

	ad, err := h.adStore.FindByID(id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if ad == nil {
		writeErrorMsg(w, http.StatusNotFound, "ad not found")
		return nil, false
	}

	claims := middleware.ClaimsFromCtx(r.Context())
	if claims.UserID != ad.OwnerID && claims.Role != models.RoleAdmin {
		writeErrorMsg(w, http.StatusForbidden, "not your ad")
		return nil, false
	}
	return ad, true
}

// thumbKey is the storage key of a picture's thumbnail.
func thumbKey(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return "ads/" + base + "_thumb.jpg"
}

// extensionFromType picks a file extension for a sniffed content type.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// queryInt parses an integer query parameter, 0 when absent or bad.
func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// listingResponse shapes the paginated listing body.
func listingResponse(ads []models.Ad, total, page, limit int) map[string]any {
	if page < 1 {
		page = store.DefaultPage
	}
	if limit < 1 || limit > store.MaxLimit {
		limit = store.DefaultLimit
	}
	totalPages := (total + limit - 1) / limit
	return map[string]any{
		"ads":         ads,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages,
	}
}
