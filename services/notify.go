// services/notify.go
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/garane84/shynne-autowash-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// WinnerNotifier tells the day's approved free-wash winner about their prize
// over SMS or WhatsApp and records every attempt in the notification log.
type WinnerNotifier struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewWinnerNotifier(db *gorm.DB) *WinnerNotifier {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &WinnerNotifier{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// StartScheduler notifies today's winner every evening at 8 PM. Approval
// stays a manual operator action; the job only delivers the message.
func (s *WinnerNotifier) StartScheduler() {
	c := cron.New()

	c.AddFunc("0 20 * * *", func() {
		if err := s.NotifyTodaysWinner(); err != nil {
			log.Printf("winner notification run failed: %v", err)
		}
	})

	c.Start()
	log.Println("Winner notification scheduler started")
}

// NotifyTodaysWinner sends the prize message to today's approved winner if
// one exists and has not been notified yet.
func (s *WinnerNotifier) NotifyTodaysWinner() error {
	registry := NewDrawRegistry(s.db, nil)
	winner, err := registry.GetApprovedWinner(time.Now())
	if err != nil {
		return err
	}
	if winner == nil {
		log.Println("No approved winner for today, nothing to notify")
		return nil
	}
	if winner.NotifiedAt != nil {
		return nil
	}
	return s.NotifyWinner(winner.ID)
}

// NotifyWinner sends the prize message for a specific winner row.
func (s *WinnerNotifier) NotifyWinner(winnerID uuid.UUID) error {
	var winner models.FreeWashWinner
	if err := s.db.First(&winner, "id = ?", winnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWinnerNotFound
		}
		return err
	}
	if winner.Phone == "" {
		return fmt.Errorf("winner %s has no phone number on record", winner.ID)
	}

	name := winner.CustomerName
	if name == "" {
		name = "customer"
	}
	message := fmt.Sprintf(
		"Hi %s, congratulations! You won a free wash for %s. Show this message at the counter to redeem it.",
		name, winner.DrawDate.Format("January 2"))

	// WhatsApp for E.164 numbers, plain SMS otherwise
	channel := "sms"
	to := winner.Phone
	if strings.HasPrefix(winner.Phone, "+") {
		to = "whatsapp:" + winner.Phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, sendErr := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if sendErr != nil {
		log.Printf("Failed to notify winner %s at %s: %v", winner.ID, winner.Phone, sendErr)
		status = "failed"
		errorMsg = sendErr.Error()
	} else if resp.Sid != nil {
		log.Printf("Winner %s notified at %s, SID: %s", winner.ID, winner.Phone, *resp.Sid)
	} else {
		log.Printf("Winner %s notified at %s, but no SID returned", winner.ID, winner.Phone)
	}

	notificationLog := models.NotificationLog{
		WinnerID:     winner.ID,
		Phone:        winner.Phone,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}
	if err := s.db.Create(&notificationLog).Error; err != nil {
		log.Printf("Failed to log notification for winner %s: %v", winner.ID, err)
	}

	if sendErr != nil {
		return sendErr
	}

	now := time.Now()
	return s.db.Model(&winner).Update("notified_at", &now).Error
}
