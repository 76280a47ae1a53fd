package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

const testBaseURL = "http://sho.rt"

type HandlersTestSuite struct {
	suite.Suite
	logger     *httplog.Logger
	slugUC     *mockSlugUseCase
	visitUC    *mockVisitUseCase
	metadataUC *mockMetadataUseCase
	server     *httptest.Server
	e          *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.slugUC = new(mockSlugUseCase)
	suite.visitUC = new(mockVisitUseCase)
	suite.metadataUC = new(mockMetadataUseCase)

	router := NewRouter(suite.logger, testBaseURL+"/", suite.slugUC, suite.visitUC, suite.metadataUC)
	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.server.URL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.slugUC.AssertExpectations(suite.T())
	suite.visitUC.AssertExpectations(suite.T())
	suite.metadataUC.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestShorten() {
	const path = "/shorten"

	suite.Run("empty request body", func() {
		suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "empty request body")
	})

	suite.Run("invalid request body", func() {
		suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "invalid request body")
	})

	suite.Run("validation error", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{"longUrl": "invalid url"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", "validation error")
		resp.Value("errors").Array().Value(0).Object().
			HasValue("field", "longUrl").
			ContainsKey("message")
	})

	suite.Run("invalid slug", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{"longUrl": "https://example.com", "slug": "no spaces"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.Value("errors").Array().Value(0).Object().
			HasValue("field", "slug")
	})

	suite.Run("slug conflict", func() {
		suite.slugUC.
			On("Create", mock.Anything, "https://example.com", "abc").
			Once().
			Return(nil, fmt.Errorf("usecase: %w", entity.ErrSlugConflict))

		suite.e.POST(path).
			WithJSON(map[string]string{"longUrl": "https://example.com", "slug": "abc"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "slug already exists")
	})

	suite.Run("server error", func() {
		suite.slugUC.
			On("Create", mock.Anything, "https://example.com", "").
			Once().
			Return(nil, usecase.ErrMaxRetriesExceeded)

		suite.e.POST(path).
			WithJSON(map[string]string{"longUrl": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("error", "internal server error")
	})

	suite.Run("success with generated slug", func() {
		suite.slugUC.
			On("Create", mock.Anything, "https://example.com", "").
			Once().
			Return(&entity.SlugRecord{Slug: "Ab3_x-9", URLID: "url-1"}, nil)

		suite.e.POST(path).
			WithJSON(map[string]string{"longUrl": "https://example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			IsEqual(map[string]string{"shortUrl": testBaseURL + "/Ab3_x-9"})
	})

	suite.Run("success with requested slug", func() {
		suite.slugUC.
			On("Create", mock.Anything, "https://example.com", "abc").
			Once().
			Return(&entity.SlugRecord{Slug: "abc", URLID: "url-1"}, nil)

		suite.e.POST(path).
			WithJSON(map[string]string{"longUrl": "https://example.com", "slug": "abc"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("shortUrl", testBaseURL+"/abc")
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	const path = "/{slug}"

	suite.Run("slug not found", func() {
		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("", entity.ErrSlugNotFound)

		suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("error", "url not found")
	})

	suite.Run("url not found", func() {
		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("url-1", nil)
		suite.visitUC.
			On("RecordVisit", mock.Anything, "url-1", mock.Anything, mock.Anything).
			Once().
			Return("", entity.ErrURLNotFound)

		suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("server error", func() {
		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("", errors.New("unknown error"))

		suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("error", "internal server error")
	})

	suite.Run("success", func() {
		const ua = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("url-1", nil)
		suite.visitUC.
			On("RecordVisit", mock.Anything, "url-1", "203.0.113.7", ua).
			Once().
			Return("https://example.com", nil)

		suite.e.GET(path, "abc").
			WithHeader("User-Agent", ua).
			WithHeader("X-Real-IP", "203.0.113.7").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")
	})

	suite.Run("origin without forwarded header", func() {
		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("url-1", nil)
		suite.visitUC.
			On("RecordVisit", mock.Anything, "url-1", "127.0.0.1", mock.Anything).
			Once().
			Return("https://example.com", nil)

		suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusFound)
	})
}

func (suite *HandlersTestSuite) TestStats() {
	const path = "/{slug}/stats"

	suite.Run("slug not found", func() {
		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("", entity.ErrSlugNotFound)

		suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("server error", func() {
		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("url-1", nil)
		suite.visitUC.
			On("GetStats", mock.Anything, "url-1").
			Once().
			Return(nil, errors.New("unknown error"))

		suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusInternalServerError)
	})

	suite.Run("success", func() {
		ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("url-1", nil)
		suite.visitUC.
			On("GetStats", mock.Anything, "url-1").
			Once().
			Return(&entity.URLRecord{
				ID:         "url-1",
				Slug:       "abc",
				LongURL:    "https://example.com",
				VisitCount: 1,
				VisitHistory: []entity.VisitEvent{
					{ID: "v-1", Location: "203.0.113.7", Device: "Firefox 120.0 / Linux x86_64", Timestamp: ts},
				},
				CreatedAt: ts,
				UpdatedAt: ts,
			}, nil)

		resp := suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("slug", "abc")
		resp.HasValue("longUrl", "https://example.com")
		resp.HasValue("visitCount", 1)
		resp.ContainsKey("createdAt")
		resp.ContainsKey("updatedAt")

		visit := resp.Value("visitorDetails").Array().Value(0).Object()
		visit.HasValue("id", "v-1")
		visit.HasValue("location", "203.0.113.7")
		visit.HasValue("device", "Firefox 120.0 / Linux x86_64")
	})

	suite.Run("empty history", func() {
		suite.slugUC.
			On("Resolve", mock.Anything, "abc").
			Once().
			Return("url-1", nil)
		suite.visitUC.
			On("GetStats", mock.Anything, "url-1").
			Once().
			Return(&entity.URLRecord{ID: "url-1", Slug: "abc", LongURL: "https://example.com"}, nil)

		suite.e.GET(path, "abc").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("visitorDetails").Array().IsEmpty()
	})
}

func (suite *HandlersTestSuite) TestExtractMetadata() {
	const path = "/metadata"

	suite.Run("empty request body", func() {
		resp := suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("success", false)
		resp.ContainsKey("error")
	})

	suite.Run("missing url", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("success", false)
		resp.NotContainsKey("data")
	})

	suite.Run("extraction failure", func() {
		suite.metadataUC.
			On("ExtractMetadata", mock.Anything, "https://example.com").
			Once().
			Return(nil, entity.ErrExtractionFailure)

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			IsEqual(map[string]any{"success": false, "error": "failed to extract metadata"})
	})

	suite.Run("success", func() {
		title, image := "Hi", "x.png"

		suite.metadataUC.
			On("ExtractMetadata", mock.Anything, "https://example.com").
			Once().
			Return(&entity.Metadata{Title: &title, Image: &image}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("success", true)
		data := resp.Value("data").Object()
		data.HasValue("title", "Hi")
		data.HasValue("image", "x.png")
		data.Value("description").IsNull()
	})
}

func (suite *HandlersTestSuite) TestSwagger() {
	suite.Run("openapi document", func() {
		suite.e.GET("/docs/swagger.yml").
			Expect().
			Status(http.StatusOK).
			Body().Contains("/shorten")
	})
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	r.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, "198.51.100.4", clientIP(r))

	r.RemoteAddr = "198.51.100.4"
	assert.Equal(t, "198.51.100.4", clientIP(r))
}
