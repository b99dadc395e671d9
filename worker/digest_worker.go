package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

// DigestWorker emails a daily ticket/email-event summary to every admin who
// has the digest enabled in their settings.
type DigestWorker struct {
	DB     *gorm.DB
	Mailer *utils.SMTPMailer
	Logger *log.Logger

	// Hour of day (UTC) the digest goes out
	SendHour int

	lastSent string // date of the last digest, "2006-01-02"
}

func NewDigestWorker(db *gorm.DB, mailer *utils.SMTPMailer, logger *log.Logger) *DigestWorker {
	return &DigestWorker{
		DB:       db,
		Mailer:   mailer,
		Logger:   logger,
		SendHour: 7,
	}
}

func (dw *DigestWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	dw.Logger.Println("Digest worker started")

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			dw.Logger.Println("Digest worker shutting down...")
			return
		case <-ticker.C:
			dw.tick(time.Now().UTC())
		}
	}
}

func (dw *DigestWorker) tick(now time.Time) {
	today := now.Format("2006-01-02")
	if now.Hour() < dw.SendHour || dw.lastSent == today {
		return
	}

	if err := dw.SendDigest(now); err != nil {
		dw.Logger.Printf("Error sending daily digest: %v", err)
		return
	}
	dw.lastSent = today
}

// DigestStats are yesterday's counters as rendered into the report email.
type DigestStats struct {
	Date        string
	NewTickets  int64
	OpenTickets int64
	Delivered   int64
	Bounced     int64
	Complaints  int64
}

// CollectStats gathers the digest counters for the 24 hours before now.
func (dw *DigestWorker) CollectStats(now time.Time) (DigestStats, error) {
	since := now.Add(-24 * time.Hour)
	stats := DigestStats{Date: since.Format("2006-01-02")}

	if err := dw.DB.Model(&models.Ticket{}).
		Where("created_at >= ?", since).
		Count(&stats.NewTickets).Error; err != nil {
		return stats, err
	}
	if err := dw.DB.Model(&models.Ticket{}).
		Where("status = ?", models.TicketStatusOpen).
		Count(&stats.OpenTickets).Error; err != nil {
		return stats, err
	}

	counts := map[string]*int64{
		models.EmailEventDelivered:  &stats.Delivered,
		models.EmailEventBounced:    &stats.Bounced,
		models.EmailEventComplained: &stats.Complaints,
	}
	for eventType, dst := range counts {
		if err := dw.DB.Model(&models.EmailEvent{}).
			Where("event_type = ? AND created_at >= ?", eventType, since).
			Count(dst).Error; err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Recipients returns the notify addresses of admins with the digest enabled.
func (dw *DigestWorker) Recipients() ([]string, error) {
	var settings []models.AdminSetting
	if err := dw.DB.Where("daily_digest = ?", true).Find(&settings).Error; err != nil {
		return nil, err
	}

	var recipients []string
	for _, s := range settings {
		if s.NotifyEmail != "" {
			recipients = append(recipients, s.NotifyEmail)
		}
	}
	return recipients, nil
}

// SendDigest collects the stats and mails the report.
func (dw *DigestWorker) SendDigest(now time.Time) error {
	if !dw.Mailer.Configured() {
		return fmt.Errorf("digest skipped: smtp mailer not configured")
	}

	recipients, err := dw.Recipients()
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		dw.Logger.Println("Digest skipped: no recipients enabled")
		return nil
	}

	stats, err := dw.CollectStats(now)
	if err != nil {
		return err
	}

	subject := "Daily report - " + stats.Date
	if err := dw.Mailer.Send(recipients, subject, "daily_digest", stats); err != nil {
		return err
	}

	dw.Logger.Printf("Daily digest sent to %d recipient(s)", len(recipients))
	return nil
}
