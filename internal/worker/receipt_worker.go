package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: loads the invoice, renders the
// PDF receipt and enqueues an email job with the attachment. Uses exponential
// backoff (max 3 attempts) around the PDF render; terminal failures go to the
// DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicer/internal/infra"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID string `json:"invoice_id"`
	ToEmail   string `json:"to_email,omitempty"`
}

// ReceiptWorker renders invoice receipts and hands them off to the mailer.
type ReceiptWorker struct {
	invoices       repository.InvoiceRepository
	dispatcher     *Dispatcher
	rdb            *redis.Client
	pdfStoragePath string
}

func NewReceiptWorker(
	invoices repository.InvoiceRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		invoices:       invoices,
		dispatcher:     dispatcher,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process renders the PDF for one invoice and enqueues the email job.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invalid invoice_id")
		return
	}

	invoice, err := w.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invoice not found")
		return
	}

	var pdfPath string
	renderErr := withRetry(ctx, 3, func(attempt int) error {
		path, err := infra.GenerateInvoicePDF(invoice, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("invoice_id", payload.InvoiceID).
				Msg("receipt_worker: PDF attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if renderErr != nil {
		log.Error().Err(renderErr).Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: PDF failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", raw, renderErr.Error(), 3)
		return
	}
	log.Info().Str("pdf", pdfPath).Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: PDF generated")

	if payload.ToEmail == "" {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: payload.ToEmail,
		Subject: fmt.Sprintf("Invoice %s", invoice.ID),
		Body:    fmt.Sprintf("Your invoice receipt is attached.\nTotal: $%s", invoice.Total().StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", payload.ToEmail).Msg("receipt_worker: failed to enqueue email")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
