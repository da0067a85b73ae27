// Command mockwebhook emits a signed payment webhook event against a running
// server, for local development without a provider account.
//
//	go run ./cmd/tools/mockwebhook -booking <uuid> -type checkout.completed
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"mathsandmelody-api/internal/infra/payment"

	"github.com/google/uuid"
)

func main() {
	var (
		target    = flag.String("url", "http://localhost:8888/api/webhooks/payment", "webhook endpoint URL")
		secret    = flag.String("secret", os.Getenv("PAYMENT_WEBHOOK_SECRET"), "webhook signing secret")
		bookingID = flag.String("booking", "", "booking UUID to correlate the event with")
		eventType = flag.String("type", "checkout.completed", "event type (checkout.completed, payment.failed, ...)")
		intentID  = flag.String("intent", "pi_"+uuid.NewString()[:8], "payment intent ID")
		reason    = flag.String("reason", "card_declined", "failure reason for payment.failed events")
		badSig    = flag.Bool("bad-signature", false, "send a deliberately invalid signature")
	)
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing signing secret: set PAYMENT_WEBHOOK_SECRET or pass -secret")
		os.Exit(1)
	}

	payload := map[string]any{
		"id":   "evt_" + uuid.NewString()[:8],
		"type": *eventType,
		"data": map[string]any{
			"session_id":        "cs_" + uuid.NewString()[:8],
			"payment_intent_id": *intentID,
			"metadata":          map[string]string{},
		},
	}
	data := payload["data"].(map[string]any)
	if *bookingID != "" {
		data["metadata"] = map[string]string{"booking_id": *bookingID}
	}
	if *eventType == "payment.failed" {
		data["failure_reason"] = *reason
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to encode payload:", err)
		os.Exit(1)
	}

	signingSecret := []byte(*secret)
	if *badSig {
		signingSecret = []byte("wrong-secret")
	}
	sigHeader := payment.BuildSignatureHeader(signingSecret, time.Now().Unix(), body)

	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build request:", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payment.SignatureHeader, sigHeader)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request failed:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s\n%s\n", resp.Status, respBody)
}
