package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

func HealthHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		err := s.Ping(ctx)
		ok := err == nil
		data := map[string]interface{}{
			"db":   ok,
			"time": time.Now(),
		}
		if !ok {
			utils.WriteJSONResponse(w, http.StatusServiceUnavailable, false, "db unreachable", data, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, true, "ok", data, nil)
	}
}
