package middleware

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/MiguelSerea/taskmanagement/internal/utils"
)

func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		message := "Request received: " + c.Request.Method + " " + c.Request.URL.Path
		entry := log.WithFields(log.Fields{
			"traceId": c.GetString(utils.TraceIdKey.String()),
			"service": utils.ExtractServiceName(),
		})
		utils.LogEntry(entry, "info", message)
		c.Next()
	}
}
