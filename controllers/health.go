package controllers

import (
	"context"
	"time"

	"oquvmarkaz_go/database"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct{}

// HealthCheck reports liveness plus DB and Redis connectivity
func (hc *HealthController) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	checks := fiber.Map{}

	dbStatus := "ok"
	if database.DB == nil {
		dbStatus = "down"
	} else if sqlDB, err := database.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}
	checks["database"] = dbStatus

	redisStatus := "ok"
	if rc := database.GetRedisClient(); rc == nil {
		redisStatus = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}
	checks["redis"] = redisStatus

	code := fiber.StatusOK
	if dbStatus == "down" {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().UTC(),
		"checks": checks,
	})
}
