package service

import (
	"context"
	"fmt"
	"time"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

type ConnectionTester interface {
	Test(ctx context.Context, method model.HTTPMethod, url string, at time.Time) (status int, err error)
}

type ProbeResult struct {
	Status int    `json:"status"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// CheckConnection sends a connection probe to url. Invalid input is returned
// as a *model.ValidationError; transport failures are reported in the result
// and as a destructive notification.
func CheckConnection(ctx context.Context, c ConnectionTester, n Notifier, rawMethod, url string, now time.Time) (ProbeResult, error) {
	if err := model.ValidateURL("webhookUrl", url); err != nil {
		return ProbeResult{}, err
	}
	method, err := model.ParseMethod(rawMethod)
	if err != nil {
		return ProbeResult{}, err
	}
	if n == nil {
		n = LogNotifier{}
	}

	status, err := c.Test(ctx, method, url, now)
	if err != nil {
		n.Notify(model.Notification{
			Title:       "Test failed",
			Description: "Could not reach the webhook. Check the URL and that the workflow accepts requests from this client.",
			Variant:     model.VariantDestructive,
			Time:        now,
		})
		return ProbeResult{Error: err.Error()}, nil
	}

	res := ProbeResult{Status: status, OK: status >= 200 && status <= 299}
	if res.OK {
		n.Notify(model.Notification{
			Title:       "Test OK",
			Description: fmt.Sprintf("Webhook answered with status %d.", status),
			Variant:     model.VariantDefault,
			Time:        now,
		})
	} else {
		n.Notify(model.Notification{
			Title:       "Test sent",
			Description: fmt.Sprintf("Webhook answered with status %d.", status),
			Variant:     model.VariantDefault,
			Time:        now,
		})
	}
	return res, nil
}
