package expiry

import (
	"context"
	"fmt"
	"time"

	"license-tracker/pkg/featureflags"
	"license-tracker/pkg/notify"
	"license-tracker/services/license"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "license-tracker/services/expiry"

// Store is the read side the scanner walks.
type Store interface {
	ScanAll(ctx context.Context) ([]*license.License, error)
}

type ScanResult struct {
	Processed int `json:"processed"`
	Notified  int `json:"notified"`
}

type Scanner struct {
	store    Store
	policy   *Policy
	channels *notify.Channels
	flags    featureflags.FeatureFlag
	loc      *time.Location
	now      func() time.Time

	tracer    trace.Tracer
	processed metric.Int64Counter
	notified  metric.Int64Counter
}

func newScanner(store Store, policy *Policy, channels *notify.Channels, flags featureflags.FeatureFlag, loc *time.Location) *Scanner {
	if channels == nil {
		channels = &notify.Channels{}
	}
	if loc == nil {
		loc = time.UTC
	}

	meter := otel.Meter(instrumentationName)
	processed, err := meter.Int64Counter("license_scan_processed_total",
		metric.WithDescription("Licenses evaluated by the expiry scan"))
	if err != nil {
		zap.L().Warn("failed to create scan counter", zap.Error(err))
		processed = noop.Int64Counter{}
	}
	notified, err := meter.Int64Counter("license_scan_notified_total",
		metric.WithDescription("Licenses for which at least one reminder was delivered"))
	if err != nil {
		zap.L().Warn("failed to create scan counter", zap.Error(err))
		notified = noop.Int64Counter{}
	}

	return &Scanner{
		store:     store,
		policy:    policy,
		channels:  channels,
		flags:     flags,
		loc:       loc,
		now:       time.Now,
		tracer:    otel.Tracer(instrumentationName),
		processed: processed,
		notified:  notified,
	}
}

func (s *Scanner) Policy() *Policy { return s.policy }

// Run evaluates every stored license once. Only a failure to read the store
// aborts the run.
func (s *Scanner) Run(ctx context.Context) (ScanResult, error) {
	ctx, span := s.tracer.Start(ctx, "expiry.Scan")
	defer span.End()

	var result ScanResult

	licenses, err := s.store.ScanAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store scan failed")
		return result, fmt.Errorf("scan licenses: %w", err)
	}

	today := s.now().In(s.loc)
	zap.L().Info("expiry scan started",
		zap.Int("licenses", len(licenses)),
		zap.String("today", today.Format(license.DateLayout)))

	for _, l := range licenses {
		processed, notified := s.process(ctx, l, today)
		if processed {
			result.Processed++
		}
		if notified {
			result.Notified++
		}
	}

	s.processed.Add(ctx, int64(result.Processed))
	s.notified.Add(ctx, int64(result.Notified))
	span.SetAttributes(
		attribute.Int("scan.processed", result.Processed),
		attribute.Int("scan.notified", result.Notified),
	)

	zap.L().Info("expiry scan finished",
		zap.Int("processed", result.Processed),
		zap.Int("notified", result.Notified))
	return result, nil
}

func (s *Scanner) process(ctx context.Context, l *license.License, today time.Time) (processed, notified bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("license evaluation panicked",
				zap.String("license_id", l.ID),
				zap.Any("panic", r))
		}
	}()

	if l.ExpiryDate == "" {
		zap.L().Debug("license has no expiry date", zap.String("license_id", l.ID))
		return false, false
	}

	daysLeft, ok := l.DaysLeft(today)
	if !ok {
		zap.L().Warn("unparseable expiry date",
			zap.String("license_id", l.ID),
			zap.String("expiry_date", l.ExpiryDate))
		return false, false
	}
	processed = true

	if l.PrimaryEmail == "" {
		zap.L().Debug("license has no primary email", zap.String("license_id", l.ID))
		return processed, false
	}

	if !s.policy.Match(daysLeft, l) {
		return processed, false
	}

	return processed, s.fanOut(ctx, l, daysLeft)
}

// fanOut sends every reminder independently and reports whether any of
// them was accepted.
func (s *Scanner) fanOut(ctx context.Context, l *license.License, daysLeft int) bool {
	delivered := false

	for _, ch := range s.channels.Contact {
		if !s.enabled(ctx, ch) {
			continue
		}
		for _, to := range []string{l.PrimaryEmail, l.SecondaryEmail} {
			if to == "" {
				continue
			}
			if s.send(ctx, ch, l, contactMessage(l, daysLeft, to)) {
				delivered = true
			}
		}
	}

	if chat := s.channels.Chat; chat != nil && s.enabled(ctx, chat) {
		if s.send(ctx, chat, l, chatMessage(l, daysLeft)) {
			delivered = true
		}
	}

	return delivered
}

func (s *Scanner) send(ctx context.Context, ch notify.Channel, l *license.License, m notify.Message) bool {
	if err := ch.Send(ctx, m); err != nil {
		zap.L().Warn("reminder delivery failed",
			zap.String("channel", ch.Name()),
			zap.String("license_id", l.ID),
			zap.String("to", m.To),
			zap.Error(err))
		return false
	}
	zap.L().Info("reminder sent",
		zap.String("channel", ch.Name()),
		zap.String("license_id", l.ID),
		zap.String("to", m.To))
	return true
}

func (s *Scanner) enabled(ctx context.Context, ch notify.Channel) bool {
	if s.flags == nil {
		return true
	}
	return s.flags.IsEnabled(ctx, "notify_"+ch.Name())
}
