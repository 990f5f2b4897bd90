package imaging

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/images/upload", h.Upload)
	api.GET("/images/", h.ListImages)
	api.GET("/images/:id", h.GetImage)
	api.GET("/images/:id/url", h.GetImageURL)
	api.GET("/images/patient/:patientID", h.ListByPatient)
	api.DELETE("/images/:id", h.DeleteImage)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Image not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func formInt64(c echo.Context, name string) (int64, error) {
	v := c.FormValue(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

type uploadResponse struct {
	Image        *MedicalImage `json:"image"`
	PresignedURL string        `json:"presigned_url,omitempty"`
}

func (h *Handler) Upload(c echo.Context) error {
	patientID, err := formInt64(c, "patient_id")
	if err != nil {
		return err
	}
	uploadedBy, err := formInt64(c, "uploaded_by")
	if err != nil {
		return err
	}
	imageType := c.FormValue("image_type")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}
	defer src.Close()

	img, presigned, err := h.svc.Upload(c.Request().Context(), UploadInput{
		PatientID:   patientID,
		ImageType:   imageType,
		UploadedBy:  uploadedBy,
		FileName:    fileHeader.Filename,
		FileSize:    fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     src,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, uploadResponse{Image: img, PresignedURL: presigned})
}

func (h *Handler) ListImages(c echo.Context) error {
	items, err := h.svc.ListImages(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*MedicalImage{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	img, err := h.svc.GetImage(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, img)
}

func (h *Handler) GetImageURL(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	expiry := time.Duration(0)
	if v := c.QueryParam("expires_in"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid expires_in")
		}
		expiry = time.Duration(secs) * time.Second
	}
	url, err := h.svc.PresignedURL(c.Request().Context(), id, expiry)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"image_id": id, "url": url})
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*MedicalImage{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}
