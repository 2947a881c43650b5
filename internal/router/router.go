// Package router maps the /user HTTP API onto the user service: it parses
// and validates input, picks status codes and renders JSON bodies.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/userapp/internal/gzippedhttp"
	"github.com/patric-chuzhbe/userapp/internal/httperr"
	"github.com/patric-chuzhbe/userapp/internal/logger"
	"github.com/patric-chuzhbe/userapp/internal/models"
	"github.com/patric-chuzhbe/userapp/internal/service"
)

type userService interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	Create(ctx context.Context, usr models.User) (models.User, error)
	Update(ctx context.Context, id int, usr models.User) (models.User, error)
	Delete(ctx context.Context, id int) error
	Ping(ctx context.Context) error
}

// Router holds the HTTP handlers of the user API.
type Router struct {
	svc userService
}

type initOptions struct {
	enableGzip bool
}

// InitOption configures the router built by New.
type InitOption func(*initOptions)

// WithGzip toggles gzip request decoding and response compression.
func WithGzip(enable bool) InitOption {
	return func(options *initOptions) {
		options.enableGzip = enable
	}
}

// New builds the chi router with the middleware chain and all user routes.
func New(svc userService, optionsProto ...InitOption) *chi.Mux {
	options := &initOptions{
		enableGzip: true,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	myRouter := Router{svc: svc}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
	)
	if options.enableGzip {
		router.Use(
			gzippedhttp.UngzipRequest,
			gzippedhttp.GzipResponse,
		)
	}

	router.Get(`/ping`, myRouter.GetPing)
	router.Route(`/user`, func(r chi.Router) {
		r.Get(`/`, myRouter.GetUsers)
		r.Post(`/`, myRouter.PostUser)
		r.Get(`/{id}`, myRouter.GetUser)
		r.Put(`/{id}`, myRouter.PutUser)
		r.Delete(`/{id}`, myRouter.DeleteUser)
	})

	return router
}

// GetUsers handles GET /user.
func (router *Router) GetUsers(response http.ResponseWriter, request *http.Request) {
	users, err := router.svc.GetAll(request.Context())
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.Users(users))
}

// GetUser handles GET /user/{id}.
func (router *Router) GetUser(response http.ResponseWriter, request *http.Request) {
	id, ok := parseID(response, request)
	if !ok {
		return
	}

	usr, err := router.svc.GetByID(request.Context(), id)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

// PostUser handles POST /user. The response carries the new resource path
// in the Location header.
func (router *Router) PostUser(response http.ResponseWriter, request *http.Request) {
	usr, ok := decodeUser(response, request)
	if !ok {
		return
	}

	created, err := router.svc.Create(request.Context(), usr)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	response.Header().Set("Location", "/user/"+strconv.Itoa(created.ID))
	writeJSON(response, http.StatusCreated, created)
}

// PutUser handles PUT /user/{id}. Any id in the body is ignored.
func (router *Router) PutUser(response http.ResponseWriter, request *http.Request) {
	id, ok := parseID(response, request)
	if !ok {
		return
	}

	usr, ok := decodeUser(response, request)
	if !ok {
		return
	}

	updated, err := router.svc.Update(request.Context(), id, usr)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusAccepted, updated)
}

// DeleteUser handles DELETE /user/{id}. Success has no body.
func (router *Router) DeleteUser(response http.ResponseWriter, request *http.Request) {
	id, ok := parseID(response, request)
	if !ok {
		return
	}

	if err := router.svc.Delete(request.Context(), id); err != nil {
		router.writeServiceError(response, err)
		return
	}

	response.WriteHeader(http.StatusAccepted)
}

// GetPing reports whether the storage is reachable.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.svc.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `router.svc.Ping()`: ", zap.Error(err))
		httperr.Write(response, httperr.NewInternalServerError())
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (router *Router) writeServiceError(response http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		httperr.Write(response, httperr.NewNotFoundError(err.Error()))
		return
	}

	logger.Log.Errorln("storage failure: ", zap.Error(err))
	httperr.Write(response, httperr.NewInternalServerError())
}

func parseID(response http.ResponseWriter, request *http.Request) (int, bool) {
	rawID := chi.URLParam(request, "id")
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		httperr.Write(
			response,
			httperr.NewBadRequestError("user id must be a positive integer, got "+strconv.Quote(rawID), nil),
		)
		return 0, false
	}

	return id, true
}

func decodeUser(response http.ResponseWriter, request *http.Request) (models.User, bool) {
	var usr models.User
	decoder := json.NewDecoder(request.Body)
	if err := decoder.Decode(&usr); err != nil {
		httperr.Write(response, httperr.NewBadRequestError("malformed JSON body: "+err.Error(), nil))
		return models.User{}, false
	}
	// the body must hold exactly one JSON value
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		httperr.Write(response, httperr.NewBadRequestError("malformed JSON body: unexpected data after the user object", nil))
		return models.User{}, false
	}

	if err := models.ValidateUser(usr); err != nil {
		httperr.Write(response, httperr.ValidationError(err))
		return models.User{}, false
	}

	return usr, true
}

func writeJSON(response http.ResponseWriter, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		logger.Log.Errorln("Error calling the `json.Marshal()`: ", zap.Error(err))
		httperr.Write(response, httperr.NewInternalServerError())
		return
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if _, err := response.Write(payload); err != nil {
		logger.Log.Debugln("Error calling the `response.Write()`: ", zap.Error(err))
	}
}
