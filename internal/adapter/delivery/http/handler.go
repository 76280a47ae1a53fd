package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type slugUseCase interface {
	Create(ctx context.Context, longURL, requestedSlug string) (*entity.SlugRecord, error)
	Resolve(ctx context.Context, slug string) (string, error)
}

type visitUseCase interface {
	RecordVisit(ctx context.Context, urlID, visitorOrigin, rawUserAgent string) (string, error)
	GetStats(ctx context.Context, urlID string) (*entity.URLRecord, error)
}

type metadataUseCase interface {
	ExtractMetadata(ctx context.Context, url string) (*entity.Metadata, error)
}

func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// The tag is static, registration can only fail on an empty tag name.
	_ = validate.RegisterValidation("slug", validateSlug)

	return validate
}

type slugHandler struct {
	baseURL  string
	slugUC   slugUseCase
	visitUC  visitUseCase
	validate *validator.Validate
}

func newSlugHandler(baseURL string, slugUC slugUseCase, visitUC visitUseCase, validate *validator.Validate) *slugHandler {
	return &slugHandler{
		baseURL:  strings.TrimRight(baseURL, "/"),
		slugUC:   slugUC,
		visitUC:  visitUC,
		validate: validate,
	}
}

func (h *slugHandler) shortURL(slug string) string {
	return h.baseURL + "/" + slug
}

func (h *slugHandler) shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	rec, err := h.slugUC.Create(r.Context(), req.LongURL, req.Slug)
	if err != nil {
		if errors.Is(err, entity.ErrSlugConflict) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, slugConflictResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, shortenResponse{ShortURL: h.shortURL(rec.Slug)})
}

func (h *slugHandler) redirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	urlID, err := h.slugUC.Resolve(r.Context(), slug)
	if err != nil {
		h.notFoundOrServerError(w, r, err)
		return
	}

	longURL, err := h.visitUC.RecordVisit(r.Context(), urlID, clientIP(r), r.UserAgent())
	if err != nil {
		h.notFoundOrServerError(w, r, err)
		return
	}

	http.Redirect(w, r, longURL, http.StatusFound)
}

func (h *slugHandler) stats(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	urlID, err := h.slugUC.Resolve(r.Context(), slug)
	if err != nil {
		h.notFoundOrServerError(w, r, err)
		return
	}

	url, err := h.visitUC.GetStats(r.Context(), urlID)
	if err != nil {
		h.notFoundOrServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatsResponse(url))
}

func (h *slugHandler) notFoundOrServerError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, entity.ErrSlugNotFound) || errors.Is(err, entity.ErrURLNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
		return
	}

	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, serverErrorResponse)
}

// clientIP returns the request origin without the port. RealIP middleware
// has already replaced RemoteAddr with a forwarded address when one is present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type metadataHandler struct {
	useCase  metadataUseCase
	validate *validator.Validate
}

func newMetadataHandler(useCase metadataUseCase, validate *validator.Validate) *metadataHandler {
	return &metadataHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func (h *metadataHandler) extract(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		msg := invalidRequestBodyResponse.Error
		if errors.Is(err, io.EOF) {
			msg = emptyRequestBodyResponse.Error
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, metadataResponse{Error: msg})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, metadataResponse{Error: "url is required and must be a valid url"})
		return
	}

	md, err := h.useCase.ExtractMetadata(r.Context(), req.URL)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, metadataFailureResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toMetadataResponse(md))
}
