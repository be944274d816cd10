package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the pgxpool snapshot included in health responses.
type PoolStats struct {
	TotalConns    int32  `json:"total_conns"`
	IdleConns     int32  `json:"idle_conns"`
	AcquiredConns int32  `json:"acquired_conns"`
	MaxConns      int32  `json:"max_conns"`
	AcquireWait   string `json:"acquire_wait"`
}

func poolStats(pool *pgxpool.Pool) PoolStats {
	st := pool.Stat()
	return PoolStats{
		TotalConns:    st.TotalConns(),
		IdleConns:     st.IdleConns(),
		AcquiredConns: st.AcquiredConns(),
		MaxConns:      st.MaxConns(),
		AcquireWait:   st.AcquireDuration().String(),
	}
}

// Check is an extra component probed by the health endpoint, such as the
// audit trail. A failing check makes the service unhealthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type healthResponse struct {
	Status  string            `json:"status"`
	Storage string            `json:"storage"`
	Checks  map[string]string `json:"checks"`
	Pool    *PoolStats        `json:"pool,omitempty"`
}

// HealthHandler serves GET /health. A nil pool means the in-memory storage
// mode. The database is probed with Ping, then every extra check runs.
func HealthHandler(pool *pgxpool.Pool, checks ...Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		resp := healthResponse{Status: "healthy", Storage: "memory", Checks: map[string]string{}}
		if pool != nil {
			resp.Storage = "postgres"
			stats := poolStats(pool)
			resp.Pool = &stats
			resp.Checks["database"] = probeResult(pool.Ping(ctx))
		}
		for _, chk := range checks {
			resp.Checks[chk.Name] = probeResult(chk.Probe(ctx))
		}

		code := http.StatusOK
		for _, result := range resp.Checks {
			if result != "ok" {
				resp.Status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
		}
		return c.JSON(code, resp)
	}
}

func probeResult(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
