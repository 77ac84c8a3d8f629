package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"oquvmarkaz_go/config"
	"oquvmarkaz_go/database"
	"oquvmarkaz_go/middleware"
	"oquvmarkaz_go/models"
	"oquvmarkaz_go/services"
	ws "oquvmarkaz_go/services/websocket"
	"oquvmarkaz_go/storage"
	"oquvmarkaz_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type PaymentController struct {
	ledger *services.LedgerService
	hub    *ws.Hub
}

func NewPaymentController(hub *ws.Hub) *PaymentController {
	return &PaymentController{ledger: services.NewLedgerService(), hub: hub}
}

// RecordPayment records a tuition payment for a student and month. Recording
// the same month twice replaces the previous ledger row.
func (pc *PaymentController) RecordPayment(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var req struct {
		Month  string  `json:"month"`
		Amount float64 `json:"amount"`
		Method string  `json:"method"`
		Note   string  `json:"note"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var recordedBy uint
	if user, uerr := middleware.GetCurrentUser(c); uerr == nil {
		recordedBy = user.ID
	}

	update, err := pc.ledger.RecordPayment(services.RecordPaymentInput{
		StudentID:  uint(studentID),
		Month:      req.Month,
		Amount:     req.Amount,
		Method:     req.Method,
		Note:       req.Note,
		RecordedBy: recordedBy,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logrus.WithError(err).Error("failed to record payment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record payment",
		})
	}

	middleware.LogActivity(c, "CREATE", "payments", update.Payment.ID, map[string]interface{}{
		"student_id": studentID,
		"month":      update.Payment.Month,
		"amount":     update.Payment.Amount,
		"replaced":   update.Replaced,
	})

	// Open dashboards refresh their revenue figures on this event.
	if pc.hub != nil {
		pc.hub.Broadcast(map[string]interface{}{
			"type": "payment_recorded",
			"data": fiber.Map{
				"student_id": update.Student.ID,
				"group_id":   update.Student.GroupID,
				"month":      update.Payment.Month,
				"amount":     update.Payment.Amount,
			},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment":     update.Payment,
		"student":     update.Student,
		"valid_until": update.ValidUntil,
		"replaced":    update.Replaced,
	})
}

// GetPayments returns the student's ledger rows, newest month first
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	payments, err := pc.ledger.Payments(uint(studentID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
	})
}

// GetPaymentHistory returns the append-only audit entries for a student
func (pc *PaymentController) GetPaymentHistory(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	history, err := pc.ledger.History(uint(studentID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payment history",
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}

// GetOutstandingMonths lists the recent months a student has not paid for
func (pc *PaymentController) GetOutstandingMonths(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	months, _ := strconv.Atoi(c.Query("months", "6"))

	owed, err := pc.ledger.OutstandingMonths(uint(studentID), months, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute outstanding months",
		})
	}

	return c.JSON(fiber.Map{
		"student_id":         studentID,
		"outstanding_months": owed,
	})
}

// UploadReceipt attaches a receipt image to an existing ledger row
func (pc *PaymentController) UploadReceipt(c *fiber.Ctx) error {
	paymentID, err := strconv.ParseUint(c.Params("paymentId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var payment models.MonthlyPayment
	if err := database.DB.First(&payment, uint(paymentID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Receipt file is required",
		})
	}

	allowed := strings.Split(config.AppConfig.AllowedExtensions, ",")
	if !utils.IsValidFileExtension(file.Filename, allowed) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File type not allowed",
		})
	}

	storageService, err := storage.NewStorageService()
	if err != nil {
		logrus.WithError(err).Error("failed to initialize storage service")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Storage unavailable",
		})
	}

	url, err := storageService.UploadFile(c.Context(), file, "receipts", payment.StudentID)
	if err != nil {
		logrus.WithError(err).Error("receipt upload failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload receipt",
		})
	}

	oldReceipt := payment.ReceiptURL
	if err := database.DB.Model(&payment).Update("receipt_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save receipt URL",
		})
	}

	// Best-effort cleanup of the replaced object.
	if oldReceipt != "" && oldReceipt != url {
		go func() {
			if err := storageService.DeleteFile(context.Background(), oldReceipt); err != nil {
				logrus.WithError(err).Warn("failed to delete replaced receipt")
			}
		}()
	}

	middleware.LogActivity(c, "UPDATE", "payments", payment.ID,
		map[string]string{"receipt_url": url})

	return c.JSON(fiber.Map{
		"receipt_url": url,
	})
}
