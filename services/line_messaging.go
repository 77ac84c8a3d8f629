package services

import (
	"fmt"
	"os"

	"oquvmarkaz_go/config"
	"oquvmarkaz_go/models"

	"github.com/line/line-bot-sdk-go/linebot"
	"github.com/sirupsen/logrus"
)

// LineMessagingService sends outbound messages to the admin LINE group.
// Only the enrollment flow uses it; a missing configuration disables it
// without failing the request.
type LineMessagingService struct {
	bot *linebot.Client
}

func NewLineMessagingService() *LineMessagingService {
	channelSecret := os.Getenv("LINE_CHANNEL_SECRET")
	channelToken := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")

	if channelSecret == "" || channelToken == "" {
		logrus.Warn("LINE messaging disabled: missing LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN")
		return &LineMessagingService{}
	}

	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		logrus.WithError(err).Error("cannot create LINE bot client")
		return &LineMessagingService{}
	}

	return &LineMessagingService{bot: bot}
}

// Enabled reports whether outbound LINE messaging is configured.
func (s *LineMessagingService) Enabled() bool {
	return s.bot != nil && config.AppConfig.LineAdminGroupID != ""
}

// NotifyNewApplication pushes a free-text summary of an enrollment request
// to the admin group.
func (s *LineMessagingService) NotifyNewApplication(app models.Application, courseTitle string) error {
	if !s.Enabled() {
		return fmt.Errorf("LINE messaging is not configured")
	}

	text := fmt.Sprintf("New enrollment request\nName: %s\nPhone: %s", app.FullName, app.Phone)
	if courseTitle != "" {
		text += "\nCourse: " + courseTitle
	}
	if app.Message != "" {
		text += "\nMessage: " + app.Message
	}

	_, err := s.bot.PushMessage(config.AppConfig.LineAdminGroupID, linebot.NewTextMessage(text)).Do()
	if err != nil {
		return fmt.Errorf("LINE push failed: %v", err)
	}
	return nil
}
