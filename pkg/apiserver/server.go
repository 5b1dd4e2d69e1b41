package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/auth"
	"github.com/tectrixdev/unplayit/pkg/backend"
	"github.com/tectrixdev/unplayit/pkg/version"
)

type apiServer struct {
	ctx  context.Context
	log  *logrus.Entry
	port int
}

func NewAPIServer(ctx context.Context, log *logrus.Entry, port int) *apiServer {
	return &apiServer{
		ctx:  ctx,
		log:  log,
		port: port,
	}
}

func newRouter(log *logrus.Entry, b backend.Backend, sessions *auth.Sessions, users userService) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(loggingMiddleware(log))
	router.Use(sessionMiddleware(sessions))
	h := newHandler(b, sessions, users)

	router.Path("/healthz").Methods("GET").HandlerFunc(h.version)
	router.Path("/version").Methods("GET").HandlerFunc(h.version)

	router.Path("/").Methods("GET").HandlerFunc(h.index)
	router.Path("/login").Methods("GET").HandlerFunc(h.getLogin)
	router.Path("/login").Methods("POST").HandlerFunc(h.postLogin)
	router.Path("/logout").Methods("POST").HandlerFunc(h.logout)

	// Registering is a GET with query parameters so the result page can be bookmarked and refreshed.
	router.Path("/dash").Methods("GET").HandlerFunc(h.dash)
	router.Path("/status").Methods("GET").HandlerFunc(h.serverStatus)

	// Note: this allows not found urls to be logged via the middleware
	// It **HAS** to be defined after all other paths are defined.
	router.NotFoundHandler = router.NewRoute().HandlerFunc(http.NotFound).GetHandler()

	return router
}

func (a *apiServer) Start(b backend.Backend, sessions *auth.Sessions, users userService) error {
	a.log.Infof("Version: %s", version.Get())

	router := newRouter(a.log, b, sessions, users)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           ghandlers.CORS()(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.WithField("port", a.port).Info("starting api server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Fatalf("listen: %s\n", err)
		}
	}()

	go b.StartReconcilerDaemon(a.ctx)

	<-a.ctx.Done()

	a.log.Info("shutting down the api server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.log.WithError(err).Error("unable to shutdown the api server gracefully")
		return err
	}

	return nil
}
