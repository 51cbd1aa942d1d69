// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/secador-solar/sensorhub/api/middleware"
	"github.com/secador-solar/sensorhub/api/resources"
	_ "github.com/secador-solar/sensorhub/docs"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/swaggo/swag"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.AuthMiddleware
	resources *resources.Resources
	opts      Options
}

// Options configures the outer surface of the router.
type Options struct {
	// Health answers GET /api/health. Required.
	Health http.HandlerFunc
	// Metrics is mounted at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	// Recorder counts served requests; may be nil.
	Recorder       middleware.RequestRecorder
	AllowedOrigins []string
}

func NewRouter(svc *hubservice.HubService, opts Options) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewAuthMiddleware(svc),
		resources: resources.NewResources(svc),
		opts:      opts,
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	if r.opts.Metrics != nil && r.opts.MetricsPath != "" {
		r.router.Handle(r.opts.MetricsPath, r.opts.Metrics).Methods(http.MethodGet)
	}

	api := r.router.PathPrefix("/api").Subrouter()

	// Public routes
	handle(api, "/health", r.opts.Health, http.MethodGet)
	handle(api, "/docs/doc.json", serveDoc, http.MethodGet)
	handle(api, "/register", r.resources.Auth.Register, http.MethodPost)
	handle(api, "/token", r.resources.Auth.Token, http.MethodPost)

	// Sensor readings
	sensor := r.resources.Sensor
	handle(api, "/sensor", sensor.CreateReading, http.MethodPost)
	handle(api, "/sensor", sensor.ListReadings, http.MethodGet)
	handle(api, "/sensor/latest", sensor.GetLatestReading, http.MethodGet)
	handle(api, "/sensor/{id}", sensor.GetReading, http.MethodGet)
	handle(api, "/sensor/{id}", r.protect(sensor.DeleteReading), http.MethodDelete)

	// Controllers
	controllers := r.resources.Controllers
	handle(api, "/controller", controllers.ListControllers, http.MethodGet)
	handle(api, "/controller", r.protect(controllers.CreateController), http.MethodPost)
	handle(api, "/controller/name-update/{id}", r.protect(controllers.UpdateControllerName), http.MethodPut)
	handle(api, "/controller/update-test/{id}", r.protect(controllers.UpdateControllerEnsayo), http.MethodPut)
	handle(api, "/controller/{id}", controllers.GetController, http.MethodGet)
	handle(api, "/controller/{id}/status", controllers.GetControllerStatus, http.MethodGet)
	handle(api, "/controller/{id}", r.protect(controllers.DeleteController), http.MethodDelete)

	// Ensayos
	ensayos := r.resources.Ensayos
	handle(api, "/ensayos", ensayos.ListEnsayos, http.MethodGet)
	handle(api, "/ensayos", r.protect(ensayos.CreateEnsayo), http.MethodPost)
	handle(api, "/ensayos/{id}", ensayos.GetEnsayo, http.MethodGet)
	handle(api, "/ensayos/{id}", r.protect(ensayos.UpdateEnsayo), http.MethodPut)
	handle(api, "/ensayos/{id}", r.protect(ensayos.DeleteEnsayo), http.MethodDelete)
}

// protect requires a valid bearer token.
func (r *Router) protect(h http.HandlerFunc) http.HandlerFunc {
	return r.auth.Authenticate(h).ServeHTTP
}

// handle registers path with and without a trailing slash.
func handle(router *mux.Router, path string, h http.HandlerFunc, method string) {
	router.HandleFunc(path, h).Methods(method)
	router.HandleFunc(path+"/", h).Methods(method)
}

func serveDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

// Handler wraps the routes with request ids, access logging, CORS, proxy
// headers and panic recovery.
func (r *Router) Handler() http.Handler {
	var h http.Handler = r.router
	h = middleware.AccessLog(r.opts.Recorder)(h)
	h = middleware.RequestID(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(r.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
		handlers.AllowCredentials(),
	)(h)
	h = handlers.ProxyHeaders(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	logging.L.Error(append([]interface{}{"[API] Recovered from panic: "}, v...)...)
}
