package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const (
	ticketNumberPrefix = "TICK-"
	ticketDayLayout    = "20060102"
)

// TicketNumberGenerator hands out TICK-YYYYMMDD-NNNN numbers for the calendar day
// of now. Uniqueness is finally enforced by the tickets table constraint.
// Resync is called after a drawn number turned out to be taken.
type TicketNumberGenerator interface {
	Next(ctx context.Context, now time.Time) (string, error)
	Resync(ctx context.Context, now time.Time) error
}

// DailyCounter is an atomic per-day sequence. persistence.Redis implements it.
type DailyCounter interface {
	NextDailySequence(ctx context.Context, day string, seed func(context.Context) (int64, error)) (int64, error)
	// RaiseDailySequence lifts the day's counter to floor if it is below it.
	RaiseDailySequence(ctx context.Context, day string, floor int64) error
}

// FormatTicketNumber pads seq to four digits. Larger sequences keep all their digits.
func FormatTicketNumber(day string, seq int64) string {
	return fmt.Sprintf("%s%s-%04d", ticketNumberPrefix, day, seq)
}

// ParseTicketSequence extracts the trailing sequence of a ticket number.
func ParseTicketSequence(number string) (int64, bool) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, false
	}
	seq, err := strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

func dayPrefix(day string) string {
	return ticketNumberPrefix + day + "-"
}

type lastNumberGenerator struct {
	tickets repository.TicketRepository
}

// NewLastNumberGenerator reads the day's highest stored number and adds one.
func NewLastNumberGenerator(tickets repository.TicketRepository) TicketNumberGenerator {
	return &lastNumberGenerator{tickets: tickets}
}

func (g *lastNumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	day := now.Format(ticketDayLayout)
	last, err := g.lastSequence(ctx, day)
	if err != nil {
		return "", err
	}
	return FormatTicketNumber(day, last+1), nil
}

// Resync is a no-op: every Next reads the stored tickets again.
func (g *lastNumberGenerator) Resync(context.Context, time.Time) error {
	return nil
}

func (g *lastNumberGenerator) lastSequence(ctx context.Context, day string) (int64, error) {
	number, err := g.tickets.LastNumberWithPrefix(ctx, dayPrefix(day))
	if err != nil {
		return 0, fmt.Errorf("read last ticket number: %w", err)
	}
	if number == "" {
		return 0, nil
	}
	seq, ok := ParseTicketSequence(number)
	if !ok {
		return 0, nil
	}
	return seq, nil
}

type counterNumberGenerator struct {
	counter  DailyCounter
	fallback *lastNumberGenerator
	logger   *zap.Logger
}

// NewCounterNumberGenerator draws sequences from counter, seeding a new day from the
// stored tickets. When the counter fails it falls back to the last-number read.
func NewCounterNumberGenerator(counter DailyCounter, tickets repository.TicketRepository, logger *zap.Logger) TicketNumberGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &counterNumberGenerator{
		counter:  counter,
		fallback: &lastNumberGenerator{tickets: tickets},
		logger:   logger,
	}
}

func (g *counterNumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	day := now.Format(ticketDayLayout)
	seq, err := g.counter.NextDailySequence(ctx, day, func(ctx context.Context) (int64, error) {
		return g.fallback.lastSequence(ctx, day)
	})
	if err != nil {
		g.logger.Warn("daily ticket counter unavailable, reading last number", zap.String("day", day), zap.Error(err))
		return g.fallback.Next(ctx, now)
	}
	return FormatTicketNumber(day, seq), nil
}

// Resync lifts the counter to the day's highest stored sequence, covering numbers
// stored through the fallback while the counter was unreachable.
func (g *counterNumberGenerator) Resync(ctx context.Context, now time.Time) error {
	day := now.Format(ticketDayLayout)
	last, err := g.fallback.lastSequence(ctx, day)
	if err != nil {
		return err
	}
	if err := g.counter.RaiseDailySequence(ctx, day, last); err != nil {
		return fmt.Errorf("raise daily ticket counter: %w", err)
	}
	return nil
}
