package service

import (
	"context"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/metrics"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// PaymentService simulates a card payment and confirms the booking. No
// gateway is contacted and no card data is stored.
type PaymentService struct {
	bookings *BookingService
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(bookings *BookingService, logger *logrus.Logger) *PaymentService {
	return &PaymentService{bookings: bookings, validate: newValidator(), logger: logger}
}

// Pay checks that every card field is present and confirms the booking.
// Paying for an already confirmed booking is a no-op.
func (s *PaymentService) Pay(ctx context.Context, session model.Session, bookingID string, card model.PaymentRequest) (booking *model.Booking, err error) {
	defer func(start time.Time) { metrics.Track("pay", start, err) }(time.Now())

	card.CardName = strings.TrimSpace(card.CardName)
	card.CardNumber = strings.TrimSpace(card.CardNumber)
	card.ExpiryDate = strings.TrimSpace(card.ExpiryDate)
	card.CVV = strings.TrimSpace(card.CVV)

	verr := &model.ValidationError{}
	if err = collect(ctx, s.validate, card, verr); err != nil {
		return nil, err
	}
	if err = verr.OrNil(); err != nil {
		return nil, err
	}

	booking, err = s.bookings.Confirm(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    session.UserID,
		"card":       maskCard(card.CardNumber),
	}).Info("payment accepted")
	return booking, nil
}

func maskCard(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	if len(digits) <= 4 {
		return "****"
	}
	return "****" + digits[len(digits)-4:]
}
