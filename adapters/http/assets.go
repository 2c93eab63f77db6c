package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mediavault/app"
	"mediavault/domain/asset"
	"mediavault/pkg/jsonapi"
)

type createAssetRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	S3Bucket  string `json:"s3Bucket"`
	S3Key     string `json:"s3Key"`
	CDNURL    string `json:"cdnUrl"`
	SizeBytes int64  `json:"sizeBytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}

type privacyRequest struct {
	IsPrivate bool   `json:"isPrivate"`
	Folder    string `json:"folder"`
}

type assetResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	S3Key     string    `json:"s3Key"`
	CDNURL    string    `json:"cdnUrl"`
	SizeBytes int64     `json:"sizeBytes"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Format    string    `json:"format,omitempty"`
	IsPrivate bool      `json:"isPrivate"`
	Folder    string    `json:"folder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type assetBandwidthResponse struct {
	TotalBytes    int64  `json:"totalBytes"`
	TotalGB       string `json:"totalGB"`
	Requests      int64  `json:"requests"`
	CacheHits     int64  `json:"cacheHits"`
	CacheHitRatio string `json:"cacheHitRatio"`
}

func toAssetResponse(a asset.Asset) assetResponse {
	return assetResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		S3Key:     a.S3Key,
		CDNURL:    a.CDNURL,
		SizeBytes: a.SizeBytes,
		Width:     a.Width,
		Height:    a.Height,
		Format:    a.Format,
		IsPrivate: a.IsPrivate,
		Folder:    a.Folder(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAssetResponses(assets []asset.Asset) []assetResponse {
	out := make([]assetResponse, len(assets))
	for i, a := range assets {
		out[i] = toAssetResponse(a)
	}
	return out
}

// CreateAsset handles POST /api/assets.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("Invalid JSON body"))
		return
	}

	a, err := h.assets.Create(r.Context(), userID(r), app.CreateAssetInput{
		Name:      req.Name,
		Type:      asset.Type(req.Type),
		S3Bucket:  req.S3Bucket,
		S3Key:     req.S3Key,
		CDNURL:    req.CDNURL,
		SizeBytes: req.SizeBytes,
		Width:     req.Width,
		Height:    req.Height,
		Format:    req.Format,
	})
	if err != nil {
		h.writeAssetError(w, err, "create asset")
		return
	}

	jsonapi.WriteData(w, http.StatusCreated, toAssetResponse(a))
}

// ListAssets handles GET /api/assets.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	page, limit := jsonapi.ParsePaginationParams(r.URL.Query(), 20, 100)

	assets, total, err := h.assets.List(r.Context(), userID(r), page, limit)
	if err != nil {
		h.internalError(w, err, "list assets")
		return
	}

	p := jsonapi.NewPagination(total, page, limit)
	jsonapi.WriteDataMeta(w, http.StatusOK, toAssetResponses(assets), p.Meta())
}

// GetAsset handles GET /api/assets/{id}.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	a, err := h.assets.Get(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		h.writeAssetError(w, err, "get asset")
		return
	}
	jsonapi.WriteData(w, http.StatusOK, toAssetResponse(a))
}

// DeleteAsset handles DELETE /api/assets/{id} (soft delete).
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.assets.SoftDelete(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		h.writeAssetError(w, err, "delete asset")
		return
	}
	jsonapi.WriteNoContent(w)
}

// RestoreAsset handles POST /api/assets/{id}/restore.
func (h *Handler) RestoreAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.assets.Restore(r.Context(), id, userID(r)); err != nil {
		h.writeAssetError(w, err, "restore asset")
		return
	}

	a, err := h.assets.Get(r.Context(), id, userID(r))
	if err != nil {
		h.writeAssetError(w, err, "restore asset")
		return
	}
	jsonapi.WriteData(w, http.StatusOK, toAssetResponse(a))
}

// SetPrivacy handles PATCH /api/assets/{id}/privacy.
func (h *Handler) SetPrivacy(w http.ResponseWriter, r *http.Request) {
	var req privacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("Invalid JSON body"))
		return
	}

	id := chi.URLParam(r, "id")
	var (
		a   asset.Asset
		err error
	)
	if req.IsPrivate {
		a, err = h.assets.MakePrivate(r.Context(), id, userID(r))
	} else {
		a, err = h.assets.MakePublic(r.Context(), id, userID(r), req.Folder)
	}
	if err != nil {
		h.writeAssetError(w, err, "set privacy")
		return
	}

	jsonapi.WriteData(w, http.StatusOK, toAssetResponse(a))
}

// InvalidateAsset handles POST /api/assets/{id}/invalidate.
func (h *Handler) InvalidateAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.assets.InvalidateCache(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		h.writeAssetError(w, err, "invalidate asset")
		return
	}
	jsonapi.WriteData(w, http.StatusOK, map[string]string{"status": "invalidation requested"})
}

// SignedAssetURL handles GET /api/assets/{id}/signed-url. The optional
// expiresIn query parameter is in seconds, one minute to seven days.
func (h *Handler) SignedAssetURL(w http.ResponseWriter, r *http.Request) {
	var ttl time.Duration
	if v := r.URL.Query().Get("expiresIn"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 60 || secs > 604800 {
			jsonapi.WriteError(w, jsonapi.ErrInvalidParam("expiresIn", "expiresIn must be between 60 and 604800 seconds"))
			return
		}
		ttl = time.Duration(secs) * time.Second
	}

	signed, err := h.assets.SignedAssetURL(r.Context(), chi.URLParam(r, "id"), userID(r), ttl)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSigningUnavailable):
			jsonapi.WriteError(w, jsonapi.ErrServiceUnavailable("Signed URLs are not configured"))
		case errors.Is(err, app.ErrAssetPublic):
			jsonapi.WriteError(w, jsonapi.ErrBadRequest("Asset is public; use its CDN URL or make it private first"))
		default:
			h.writeAssetError(w, err, "signed url")
		}
		return
	}

	jsonapi.WriteData(w, http.StatusOK, signed)
}

// AssetBandwidth handles GET /api/assets/{id}/bandwidth.
func (h *Handler) AssetBandwidth(w http.ResponseWriter, r *http.Request) {
	totals, err := h.assets.BandwidthStats(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		h.writeAssetError(w, err, "asset bandwidth")
		return
	}

	jsonapi.WriteData(w, http.StatusOK, assetBandwidthResponse{
		TotalBytes:    totals.Bytes,
		TotalGB:       strconv.FormatFloat(float64(totals.Bytes)/(1<<30), 'f', 4, 64),
		Requests:      totals.Requests,
		CacheHits:     totals.Hits,
		CacheHitRatio: strconv.FormatFloat(totals.HitRatio(), 'f', 2, 64) + "%",
	})
}

// ListFolders handles GET /api/assets/folders.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.assets.Folders(r.Context(), userID(r))
	if err != nil {
		h.internalError(w, err, "list folders")
		return
	}
	jsonapi.WriteData(w, http.StatusOK, folders)
}

// AssetsByFolder handles GET /api/assets/folders/{folder}.
func (h *Handler) AssetsByFolder(w http.ResponseWriter, r *http.Request) {
	page, limit := jsonapi.ParsePaginationParams(r.URL.Query(), 20, 100)

	assets, total, err := h.assets.AssetsByFolder(r.Context(), userID(r), chi.URLParam(r, "folder"), page, limit)
	if err != nil {
		h.internalError(w, err, "assets by folder")
		return
	}

	p := jsonapi.NewPagination(total, page, limit)
	jsonapi.WriteDataMeta(w, http.StatusOK, toAssetResponses(assets), p.Meta())
}

func (h *Handler) writeAssetError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, app.ErrAssetNotFound):
		jsonapi.WriteError(w, jsonapi.ErrNotFound("asset"))
	case errors.Is(err, app.ErrInvalidAsset):
		jsonapi.WriteError(w, jsonapi.ErrValidation("asset", err.Error()))
	case errors.Is(err, app.ErrDuplicateKey):
		jsonapi.WriteError(w, jsonapi.ErrConflict(err.Error()))
	case errors.Is(err, app.ErrAlreadyPrivate), errors.Is(err, app.ErrAlreadyPublic):
		jsonapi.WriteError(w, jsonapi.ErrConflict(err.Error()))
	case errors.Is(err, app.ErrReservedFolder):
		jsonapi.WriteError(w, jsonapi.ErrValidation("folder", err.Error()))
	default:
		h.internalError(w, err, op)
	}
}
