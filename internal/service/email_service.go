package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"literacylead/internal/models"
)

// EmailService sends the post-analysis summary via Amazon SES. With no
// from/to address configured it becomes a no-op.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	toEmail   string
	enabled   bool
}

// NewEmailService creates a new email service.
func NewEmailService(awsRegion, fromEmail, toEmail string) (*EmailService, error) {
	if fromEmail == "" || toEmail == "" {
		log.Println("Email summaries disabled: SES_FROM_EMAIL/REPORT_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email summaries enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		toEmail:   toEmail,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the email service is enabled.
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendReportSummary emails the class-health headline of a fresh report.
// Report text already carries display names only, so the email does too.
func (s *EmailService) SendReportSummary(ctx context.Context, report *models.LiteracyAnalysisReport) error {
	if !s.enabled {
		return nil
	}

	subject := fmt.Sprintf("Literacy analysis: %d%% at or above benchmark", report.ClassHealth.AtOrAbovePercent())
	body := buildSummaryText(report)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{s.toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send summary email: %w", err)
	}
	return nil
}

func buildSummaryText(report *models.LiteracyAnalysisReport) string {
	var b strings.Builder
	h := report.ClassHealth

	fmt.Fprintf(&b, "Class health: %d Well Below, %d Below, %d At, %d Above (%d%% at or above benchmark).\n\n",
		h.WellBelow, h.Below, h.At, h.Above, h.AtOrAbovePercent())

	for _, group := range report.Groupings {
		fmt.Fprintf(&b, "%s: %d students\n", group.GroupID, len(group.Students))
	}

	if len(report.MovementReport) > 0 {
		b.WriteString("\nMovement:\n")
		for _, m := range report.MovementReport {
			fmt.Fprintf(&b, "- %s: %s\n", m.Student, m.Reason)
		}
	}

	if len(report.MissingDataStudents) > 0 {
		fmt.Fprintf(&b, "\nMissing data: %s\n", strings.Join(report.MissingDataStudents, ", "))
	}

	return b.String()
}
