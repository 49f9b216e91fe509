package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/service"
	"github.com/lokeshchintha/nearfind/internal/store"
	"github.com/lokeshchintha/nearfind/pkg/geocode"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the discovery pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newAPIRouter(env.Service, env.Store),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newAPIRouter(svc *service.Service, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/location", func(w http.ResponseWriter, req *http.Request) {
			fix, err := svc.AcquireLocation(req.Context())
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, err)
				return
			}
			writeJSON(w, http.StatusOK, fix)
		})

		r.Get("/geocode", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query().Get("q")
			if q == "" {
				writeError(w, http.StatusBadRequest, eris.New("q query parameter is required"))
				return
			}
			fix, err := svc.ResolvePoint(req.Context(), q)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, fix)
		})

		r.Get("/places", func(w http.ResponseWriter, req *http.Request) {
			center, err := queryCoordinate(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			radiusKm := queryFloat(req, "radius", 5)

			result, err := svc.SearchPlaces(req.Context(), center, radiusKm)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/route", func(w http.ResponseWriter, req *http.Request) {
			start, err := queryCoordinate(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			end := geo.Coordinate{
				Lat: queryFloat(req, "to_lat", 91),
				Lng: queryFloat(req, "to_lng", 181),
			}
			if err := end.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			mode, err := model.ParseTravelMode(queryString(req, "mode", "driving"))
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}

			fix := &model.LocationFix{Coordinate: start, Method: model.MethodManualEntry}
			route, err := svc.ComputeRoute(req.Context(), fix, end, queryString(req, "to_label", ""), mode)
			if err != nil {
				writeError(w, http.StatusBadGateway, err)
				return
			}
			writeJSON(w, http.StatusOK, route)
		})

		r.Get("/suggest", func(w http.ResponseWriter, req *http.Request) {
			var bias *geo.Coordinate
			if req.URL.Query().Get("lat") != "" {
				coord, err := queryCoordinate(req)
				if err != nil {
					writeError(w, http.StatusBadRequest, err)
					return
				}
				bias = &coord
			}
			limit := int(queryFloat(req, "limit", 5))

			results, err := svc.Suggest(req.Context(), req.URL.Query().Get("q"), limit, bias)
			if err != nil {
				writeError(w, http.StatusBadGateway, err)
				return
			}
			if results == nil {
				results = []geocode.ForwardResult{}
			}
			writeJSON(w, http.StatusOK, results)
		})

		r.Get("/history/searches", func(w http.ResponseWriter, req *http.Request) {
			if st == nil {
				writeError(w, http.StatusNotFound, eris.New("recency store disabled"))
				return
			}
			records, err := st.ListSearches(req.Context(), int(queryFloat(req, "limit", 20)))
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, records)
		})
	})

	return r
}

func queryCoordinate(req *http.Request) (geo.Coordinate, error) {
	lat, latErr := strconv.ParseFloat(req.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(req.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		return geo.Coordinate{}, eris.New("lat and lng query parameters are required")
	}
	coord := geo.Coordinate{Lat: lat, Lng: lng}
	return coord, coord.Validate()
}

func queryFloat(req *http.Request, key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(req.URL.Query().Get(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryString(req *http.Request, key, fallback string) string {
	if v := req.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
