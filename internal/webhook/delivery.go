// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/store"
)

// Delivery behavior.
const (
	maxAttempts     = 3
	attemptTimeout  = 10 * time.Second
	retryBackoff    = 2 * time.Second
	signatureHeader = "X-OTMS-Signature"
	eventHeader     = "X-OTMS-Event"
	deliveryHeader  = "X-OTMS-Delivery"
)

var httpClient = &http.Client{Timeout: attemptTimeout}

// Sign computes the hex HMAC-SHA256 signature of a payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// deliver posts a queued delivery, retrying transient failures, and
// records the outcome.
func (d *Dispatcher) deliver(ctx context.Context, qd *queuedDelivery) {
	var lastErr error
	var statusCode int
	attempts := 0

	for attempts < maxAttempts {
		attempts++

		statusCode, lastErr = d.post(ctx, qd)
		if lastErr == nil && statusCode >= 200 && statusCode < 300 {
			_ = d.queries.FinishWebhookDelivery(ctx, store.FinishWebhookDeliveryParams{
				ID:         qd.deliveryID,
				Status:     model.DeliveryStatusSuccess,
				StatusCode: statusCode,
				Attempts:   attempts,
			})
			d.logger.Debug("webhook delivered", "category", model.EventCategoryWebhook,
				"delivery", qd.deliveryUID, "event", qd.event, "attempts", attempts)
			return
		}

		// 4xx responses are permanent, do not retry.
		if lastErr == nil && statusCode >= 400 && statusCode < 500 {
			break
		}

		select {
		case <-ctx.Done():
			attempts = maxAttempts
		case <-time.After(retryBackoff * time.Duration(attempts)):
		}
	}

	errMsg := ""
	if lastErr != nil {
		errMsg = lastErr.Error()
	} else {
		errMsg = fmt.Sprintf("endpoint returned status %d", statusCode)
	}

	_ = d.queries.FinishWebhookDelivery(ctx, store.FinishWebhookDeliveryParams{
		ID:         qd.deliveryID,
		Status:     model.DeliveryStatusFailed,
		StatusCode: statusCode,
		Error:      errMsg,
		Attempts:   attempts,
	})
	d.logger.Warn("webhook delivery failed", "category", model.EventCategoryWebhook,
		"delivery", qd.deliveryUID, "event", qd.event, "error", errMsg)
}

// post performs one delivery attempt.
func (d *Dispatcher) post(ctx context.Context, qd *queuedDelivery) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, qd.url, bytes.NewReader(qd.payload))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "otms-webhook/1.0")
	req.Header.Set(eventHeader, qd.event)
	req.Header.Set(deliveryHeader, qd.deliveryUID)
	req.Header.Set("X-OTMS-Timestamp", strconv.FormatInt(deliveryTimestamp().Unix(), 10))
	if qd.secret != "" {
		req.Header.Set(signatureHeader, Sign(qd.secret, qd.payload))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
