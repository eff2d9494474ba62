package download

import (
	"context"
	"errors"

	"github.com/ytget/yt-music-bot/internal/catalog"
	"github.com/ytget/yt-music-bot/internal/workpool"
)

// DeliveryError is returned when the transport rejected the upload
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "delivery failed: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Failure reasons that are not catalog fetch reasons
const (
	ReasonNotFound = "not-found"
	ReasonDelivery = "delivery"
	ReasonCanceled = "canceled"
	ReasonPanic    = "panic"
	ReasonInternal = "internal"
)

// FailureReason returns a short label for a pipeline error, used for
// metrics and user messages
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	if reason, ok := catalog.FailureReason(err); ok {
		return string(reason)
	}
	var de *DeliveryError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return ReasonNotFound
	case errors.As(err, &de):
		return ReasonDelivery
	case errors.Is(err, workpool.ErrPanic):
		return ReasonPanic
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return string(catalog.ReasonTimeout)
	}
	return ReasonInternal
}
