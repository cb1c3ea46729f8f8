// Command notify-preview renders the admin signup notification for a sample
// user and prints it. With -send it delivers the message over the configured
// SMTP server instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"stockx-backend-go/internal/config"
	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/models"
	"stockx-backend-go/pkg/mailer"
)

func main() {
	send := flag.Bool("send", false, "deliver the message over SMTP instead of printing it")
	to := flag.String("to", "", "comma separated recipients (required with -send)")
	name := flag.String("name", "Jane Doe", "display name of the sample user")
	email := flag.String("email", "jane@example.com", "email of the sample user")
	phone := flag.String("phone", "", "phone number of the sample user")
	flag.Parse()

	appConfig, err := config.Read()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	msg, err := core.RenderSignupNotification(models.NotifyAdminRequest{
		UID:         "preview",
		Email:       *email,
		DisplayName: *name,
		PhoneNumber: *phone,
		Timestamp:   time.Now(),
	}, appConfig.AppURL)
	if err != nil {
		log.Fatalf("Failed to render notification: %v", err)
	}

	if !*send {
		fmt.Printf("Subject: %s\n\n%s\n", msg.Subject, msg.Text)
		return
	}

	for _, r := range strings.Split(*to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			msg.To = append(msg.To, r)
		}
	}
	if len(msg.To) == 0 {
		fmt.Fprintln(os.Stderr, "-to is required with -send")
		os.Exit(2)
	}

	m := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUser,
		Password: appConfig.SMTPPassword,
		From:     appConfig.EmailFrom,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.Send(ctx, msg); err != nil {
		log.Fatalf("Error sending email: %v", err)
	}
	fmt.Printf("Notification sent to %s\n", strings.Join(msg.To, ", "))
}
