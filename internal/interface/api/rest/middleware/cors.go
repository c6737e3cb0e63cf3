package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"file-storage-api/config"
)

// CORS allows browser clients to send bearer tokens and read the download
// headers. A "*" entry opens the API to every origin.
func CORS(cfg config.CORS) gin.HandlerFunc {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	c.ExposeHeaders = []string{"Content-Disposition", "Content-Length"}
	c.MaxAge = 12 * time.Hour

	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			c.AllowAllOrigins = true
			return cors.New(c)
		}
	}
	c.AllowOrigins = cfg.AllowOrigins

	return cors.New(c)
}
