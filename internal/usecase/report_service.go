package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	"github.com/cueleague/snooker-scores/internal/platform/logging"
)

// Sources stamped on break rows and fixture logs.
const (
	ReportSourceSMS = "sms"
	ReportSourceAPI = "api"
)

// ScoreExtractor turns a free-text score report into a structured candidate.
// The roster is passed along so the extractor can anchor names to known
// players instead of inventing spellings.
type ScoreExtractor interface {
	ExtractCandidate(ctx context.Context, passage string, roster []snooker.Player) (snooker.Candidate, error)
}

// Messenger sends outbound text replies to reporters.
type Messenger interface {
	SendMessage(ctx context.Context, to, body string) error
}

// Notification is an operational push message.
type Notification struct {
	Title    string
	Message  string
	URL      string
	URLTitle string
	Priority int
}

// Monitor delivers operational notifications. A lost notification never
// fails the flow that raised it.
type Monitor interface {
	Notify(ctx context.Context, n Notification) error
}

// InboundReport is a score report as delivered by the SMS webhook.
type InboundReport struct {
	Sender string
	Body   string
}

// ReportReceipt is what the webhook answers with after handling a report.
// Reply always carries the text the sender was messaged, whether or not
// the result was recorded.
type ReportReceipt struct {
	Reply    string
	Recorded bool
	Match    snooker.Match
}

// ReportService handles free-text score reports end to end: extraction,
// recording and the reply back to the reporter.
type ReportService struct {
	ledger    snooker.Ledger
	recorder  *RecordingService
	extractor ScoreExtractor
	messenger Messenger
	monitor   Monitor
	messages  MessageCatalog
	sheetURL  string
	logger    *logging.Logger
}

func NewReportService(
	ledger snooker.Ledger,
	recorder *RecordingService,
	extractor ScoreExtractor,
	messenger Messenger,
	monitor Monitor,
	messages MessageCatalog,
	sheetURL string,
	logger *logging.Logger,
) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportService{
		ledger:    ledger,
		recorder:  recorder,
		extractor: extractor,
		messenger: messenger,
		monitor:   monitor,
		messages:  messages,
		sheetURL:  strings.TrimSpace(sheetURL),
		logger:    logger,
	}
}

// HandleReport extracts a candidate from the report body, records it and
// replies to the sender. The reply goes out even when recording fails; the
// error return carries what actually went wrong for the caller to map.
func (s *ReportService) HandleReport(ctx context.Context, report InboundReport) (ReportReceipt, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.HandleReport")
	defer span.End()

	if s.extractor == nil {
		return ReportReceipt{}, fmt.Errorf("%w: score extraction is not configured", ErrDependencyUnavailable)
	}
	if strings.TrimSpace(report.Body) == "" {
		return s.fail(ctx, report, s.messages.Invalid, fmt.Errorf("%w: empty report body", ErrInvalidInput))
	}

	roster, err := s.ledger.GetCurrentPlayers(ctx)
	if err != nil {
		return s.fail(ctx, report, s.messages.Invalid, fmt.Errorf("get current players: %w", err))
	}

	candidate, err := s.extractor.ExtractCandidate(ctx, report.Body, roster)
	if err != nil {
		return s.fail(ctx, report, s.messages.Invalid, fmt.Errorf("extract candidate: %w", err))
	}

	match, err := s.recorder.RecordCandidate(ctx, candidate, ReportSourceSMS, report.Body)
	if err != nil {
		if errors.Is(err, snooker.ErrMatchAlreadyCompleted) {
			reply := fmt.Sprintf(s.messages.AlreadyCompleted, pairLabel(candidate))
			return s.fail(ctx, report, reply, err)
		}
		return s.fail(ctx, report, s.messages.Invalid, err)
	}

	reply := fmt.Sprintf(s.messages.Recorded, s.describeRecorded(match))
	receipt := ReportReceipt{Reply: reply, Recorded: true, Match: match}
	// The result is already on the ledger; a lost reply is an SMS problem,
	// not a recording problem.
	s.sendReply(ctx, report.Sender, reply)
	s.notifyRecorded(ctx, match)

	return receipt, nil
}

func (s *ReportService) fail(ctx context.Context, report InboundReport, reply string, cause error) (ReportReceipt, error) {
	s.sendReply(ctx, report.Sender, reply)
	return ReportReceipt{Reply: reply}, cause
}

// sendReply messages the reporter. Without a configured messenger the reply
// still reaches them in the webhook response body, so this only logs.
func (s *ReportService) sendReply(ctx context.Context, to, reply string) {
	if s.messenger == nil {
		s.logger.DebugContext(ctx, "reply not sent, messaging is not configured")
		return
	}
	if err := s.messenger.SendMessage(ctx, to, reply); err != nil {
		s.logger.WarnContext(ctx, "send reply failed", "error", err)
	}
}

// describeRecorded renders the reply body: the match summary plus a link to
// the score sheet when one is configured.
func (s *ReportService) describeRecorded(m snooker.Match) string {
	summary := m.Summary()
	if s.sheetURL == "" {
		return summary
	}
	return summary + "\n" + s.sheetURL
}

func (s *ReportService) notifyRecorded(ctx context.Context, m snooker.Match) {
	if s.monitor == nil {
		return
	}
	n := Notification{
		Title:    fmt.Sprintf("Match recorded: %s", m.ID),
		Message:  m.Summary(),
		URL:      s.sheetURL,
		URLTitle: "Open score sheet",
	}
	if err := s.monitor.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notify recorded match failed", "match_id", m.ID, "error", err)
	}
}

func pairLabel(c snooker.Candidate) string {
	return fmt.Sprintf("%s vs %s", c.Player1Name, c.Player2Name)
}
