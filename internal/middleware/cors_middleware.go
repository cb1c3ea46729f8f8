package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stockx-backend-go/internal/config"
)

// CORSMiddleware allows the configured client origin(s). CLIENT_URL may hold
// a comma separated list.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	origins := []string{"http://localhost:3000"}
	if appConfig != nil && strings.TrimSpace(appConfig.ClientURL) != "" {
		origins = origins[:0]
		for _, o := range strings.Split(appConfig.ClientURL, ",") {
			if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
