package service

import (
	"context"
	"time"
)

// OTPMessage is one login code to deliver.
type OTPMessage struct {
	RequestID string // For log correlation across the async boundary
	Email     string
	Code      string
	ExpiresAt time.Time
}

// OTPSender delivers a login code to the address owner.
type OTPSender interface {
	Send(ctx context.Context, msg OTPMessage) error
}

// OTPDispatcher hands messages to background delivery.
// Dispatch never blocks; it fails when the queue cannot take the message.
type OTPDispatcher interface {
	Dispatch(ctx context.Context, msg OTPMessage) error
}
