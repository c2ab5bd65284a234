package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	"github.com/cueleague/snooker-scores/internal/infrastructure/ledger/memory"
	"github.com/cueleague/snooker-scores/internal/platform/id"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

const (
	testAPIUser   = "league-bot"
	testAPISecret = "hush-hush"
	testJobToken  = "cron-secret"
)

type routerEnv struct {
	ledger    *memory.Ledger
	extractor *stubExtractor
	messenger *stubMessenger
	router    http.Handler
}

func newTestRouter(t *testing.T) *routerEnv {
	t.Helper()

	unplayed, err := snooker.RehydrateMatch("kq3wr", 1, "L1",
		snooker.Player{Name: "Virtanen Aatos", Group: "L1"},
		snooker.Player{Name: "Mäkinen Joonas", Group: "L1"},
		snooker.LeagueFormat, nil)
	if err != nil {
		t.Fatalf("seed unplayed fixture: %v", err)
	}
	outcome := snooker.NewOutcome(time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), 2, 1, nil)
	played, err := snooker.RehydrateMatch("zt8mh", 1, "L1",
		snooker.Player{Name: "Korhonen Elias", Group: "L1"},
		snooker.Player{Name: "Virtanen Aatos", Group: "L1"},
		snooker.LeagueFormat, &outcome)
	if err != nil {
		t.Fatalf("seed played fixture: %v", err)
	}

	ledger := memory.NewLedger(memory.Seed{
		Players: []snooker.Player{
			{Name: "Virtanen Aatos", Group: "L1"},
			{Name: "Mäkinen Joonas", Group: "L1"},
			{Name: "Korhonen Elias", Group: "L1"},
			{Name: "Nieminen Onni", Group: "L2"},
			{Name: "Laine Eetu", Group: "L2"},
		},
		Windows:  []snooker.RoundWindow{{Round: 1, Start: time.Now().Add(-24 * time.Hour)}},
		Fixtures: []snooker.Match{unplayed, played},
	})

	recording := usecase.NewRecordingService(ledger)
	extractor := &stubExtractor{}
	messenger := &stubMessenger{}
	report := usecase.NewReportService(ledger, recording, extractor, messenger, nil,
		usecase.MessagesFor("eng"), "", nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(
		usecase.NewMatchService(ledger),
		recording,
		report,
		usecase.NewFixtureService(ledger, id.NewRandomGenerator(), snooker.LeagueFormat),
		usecase.NewRefreshService(ledger, nil),
		logger,
	)

	return &routerEnv{
		ledger:    ledger,
		extractor: extractor,
		messenger: messenger,
		router:    NewRouter(handler, logger, false, nil, testAPIUser, testAPISecret, testJobToken, false, 0),
	}
}

func (env *routerEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v\nbody: %s", err, body)
	}
	if got, _ := envelope["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", envelope["apiVersion"])
	}
	return envelope
}

func envelopeData(t *testing.T, body []byte) map[string]any {
	t.Helper()
	data, ok := decodeEnvelope(t, body)["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in envelope, body: %s", body)
	}
	return data
}

func envelopeErrorStatus(t *testing.T, body []byte) string {
	t.Helper()
	errObj, ok := decodeEnvelope(t, body)["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in envelope, body: %s", body)
	}
	status, _ := errObj["status"].(string)
	return status
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := envelopeData(t, rec.Body.Bytes())
	if data["status"] != "ok" {
		t.Fatalf("expected status=ok, got %v", data["status"])
	}
}

func TestRouter_SubmitScores_RecordsMatch(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	payload := `{"player1_score":2,"player2_score":0,"date":"2026-02-14","breaks":[{"player":"player1","points":65}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/scores/kq3wr", strings.NewReader(payload))
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body: %s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec.Body.Bytes())
	if data["state"] != snooker.StateCompleted {
		t.Fatalf("expected completed state, got %v", data["state"])
	}
	if data["winner"] != "Virtanen Aatos" {
		t.Fatalf("expected winner Virtanen Aatos, got %v", data["winner"])
	}
	if data["score"] != "2-0" {
		t.Fatalf("expected score 2-0, got %v", data["score"])
	}
	if data["date"] != "2026-02-14" {
		t.Fatalf("expected date 2026-02-14, got %v", data["date"])
	}

	winner, log, ok := env.ledger.RecordedRow("kq3wr")
	if !ok || winner != "Virtanen Aatos" {
		t.Fatalf("fixture row not updated: winner=%q ok=%v", winner, ok)
	}
	if log != payload {
		t.Fatalf("expected the raw body as the row log, got %q", log)
	}

	breaks := env.ledger.BreakRows()
	if len(breaks) != 1 {
		t.Fatalf("expected 1 break row, got %d", len(breaks))
	}
	if breaks[0].Source != usecase.ReportSourceAPI || breaks[0].Break.Points != 65 {
		t.Fatalf("unexpected break row: %+v", breaks[0])
	}
}

func TestRouter_SubmitScores_RequiresBasicAuth(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	payload := `{"player1_score":2,"player2_score":0}`

	req := httptest.NewRequest(http.MethodPost, "/api/v2/scores/kq3wr", strings.NewReader(payload))
	rec := env.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); !strings.Contains(got, "Basic") {
		t.Fatalf("expected WWW-Authenticate challenge, got %q", got)
	}
	if status := envelopeErrorStatus(t, rec.Body.Bytes()); status != "UNAUTHENTICATED" {
		t.Fatalf("expected UNAUTHENTICATED, got %q", status)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v2/scores/kq3wr", strings.NewReader(payload))
	req.SetBasicAuth(testAPIUser, "wrong-secret")
	rec = env.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad credentials, got %d", rec.Code)
	}

	// Nothing may have been written on the rejected attempts.
	if _, _, ok := env.ledger.RecordedRow("kq3wr"); ok {
		t.Fatal("rejected request must not touch the ledger")
	}
}

func TestRouter_SubmitScores_UnknownMatch(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/scores/nope9",
		strings.NewReader(`{"player1_score":2,"player2_score":0}`))
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if status := envelopeErrorStatus(t, rec.Body.Bytes()); status != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %q", status)
	}
}

func TestRouter_SubmitScores_AlreadyCompleted(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/scores/zt8mh",
		strings.NewReader(`{"player1_score":2,"player2_score":1}`))
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if status := envelopeErrorStatus(t, rec.Body.Bytes()); status != "ALREADY_EXISTS" {
		t.Fatalf("expected ALREADY_EXISTS, got %q", status)
	}
}

func TestRouter_SubmitScores_InvalidScoreline(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/scores/kq3wr",
		strings.NewReader(`{"player1_score":5,"player2_score":0}`))
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a scoreline best-of-3 cannot produce, got %d", rec.Code)
	}
	if status := envelopeErrorStatus(t, rec.Body.Bytes()); status != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT, got %q", status)
	}
}

func TestRouter_SubmitScores_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/scores/kq3wr",
		strings.NewReader(`{"player1_score":2,"player2_score":0,"frames":3}`))
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown fields, got %d", rec.Code)
	}
}

func TestRouter_SubmitScores_RejectsBadBreakOwner(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/scores/kq3wr",
		strings.NewReader(`{"player1_score":2,"player2_score":0,"breaks":[{"player":"referee","points":50}]}`))
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a break owner outside the fixture, got %d", rec.Code)
	}
}

func TestRouter_ListMatches_UnplayedFilter(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v2/matches?unplayed=true", nil)
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec.Body.Bytes())
	if round, _ := data["round"].(float64); int(round) != 1 {
		t.Fatalf("expected current round 1, got %v", data["round"])
	}
	matches, _ := data["matches"].([]any)
	if len(matches) != 1 {
		t.Fatalf("expected 1 unplayed match, got %d", len(matches))
	}
	first, _ := matches[0].(map[string]any)
	if first["id"] != "kq3wr" {
		t.Fatalf("expected the unplayed fixture, got %v", first["id"])
	}
	if _, scored := first["player1_score"]; scored {
		t.Fatal("an unplayed match must not carry scores")
	}
}

func TestRouter_ListMatches_BadRoundParam(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v2/matches?round=abc", nil)
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric round, got %d", rec.Code)
	}
}

func TestRouter_GetMatch(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v2/matches/zt8mh", nil)
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := envelopeData(t, rec.Body.Bytes())
	if data["id"] != "zt8mh" || data["state"] != snooker.StateCompleted {
		t.Fatalf("unexpected match payload: %v", data)
	}
	if score, _ := data["player1_score"].(float64); int(score) != 2 {
		t.Fatalf("expected player1_score 2, got %v", data["player1_score"])
	}
}

func TestRouter_ListPlayers(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v2/players", nil)
	req.SetBasicAuth(testAPIUser, testAPISecret)
	rec := env.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	players, _ := envelope["data"].([]any)
	if len(players) != 5 {
		t.Fatalf("expected the full roster, got %d entries", len(players))
	}
}

func TestRouter_ReportScoreSMS_RecordsReport(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	env.extractor.candidate = snooker.Candidate{
		Player1Name:  "Mäkinen Joonas",
		Player2Name:  "Virtanen Aatos",
		Player1Score: 0,
		Player2Score: 2,
	}

	form := url.Values{}
	form.Set("From", "+358401234567")
	form.Set("Body", "Aatos beat Joonas 2-0")
	req := httptest.NewRequest(http.MethodPost, "/sms/scores", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(t, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body: %s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec.Body.Bytes())
	if recorded, _ := data["recorded"].(bool); !recorded {
		t.Fatalf("expected recorded=true, got %v", data["recorded"])
	}
	match, _ := data["match"].(map[string]any)
	if match == nil || match["winner"] != "Virtanen Aatos" {
		t.Fatalf("unexpected recorded match: %v", data["match"])
	}
	if len(env.messenger.to) != 1 || env.messenger.to[0] != "+358401234567" {
		t.Fatalf("reply went to the wrong recipient: %v", env.messenger.to)
	}
	if env.extractor.gotPassage != "Aatos beat Joonas 2-0" {
		t.Fatalf("extractor got the wrong passage: %q", env.extractor.gotPassage)
	}
}

func TestRouter_ReportScoreSMS_MissingFrom(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	form := url.Values{}
	form.Set("Body", "Aatos 2-0 Joonas")
	req := httptest.NewRequest(http.MethodPost, "/sms/scores", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(env.messenger.to) != 0 {
		t.Fatal("no reply can go out without a sender number")
	}
}

func TestRouter_ReportScoreSMS_UnparsableReportStillReplies(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	env.extractor.err = context.DeadlineExceeded

	form := url.Values{}
	form.Set("From", "+358401234567")
	form.Set("Body", "hello?")
	req := httptest.NewRequest(http.MethodPost, "/sms/scores", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(t, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an unmapped extraction failure, got %d", rec.Code)
	}
	if len(env.messenger.body) != 1 {
		t.Fatalf("the sender must still get a reply, got %d messages", len(env.messenger.body))
	}
}

func TestRouter_GenerateFixtures(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/internal/fixtures/generate",
		strings.NewReader(`{"round":2,"groups":["L2"]}`))
	rec := env.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without the job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/fixtures/generate",
		strings.NewReader(`{"round":2,"groups":["L2"],"dry_run":true}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a dry run, got %d, body: %s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec.Body.Bytes())
	if count, _ := data["fixture_count"].(float64); int(count) != 1 {
		t.Fatalf("two L2 players pair exactly once, got fixture_count=%v", data["fixture_count"])
	}
	if fixtures, err := env.ledger.GetFixturesForRound(context.Background(), 2); err != nil || len(fixtures) != 0 {
		t.Fatalf("a dry run must not write fixtures, got %d (err=%v)", len(fixtures), err)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/fixtures/generate",
		strings.NewReader(`{"round":2,"groups":["L2"]}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body: %s", rec.Code, rec.Body.String())
	}
	fixtures, err := env.ledger.GetFixturesForRound(context.Background(), 2)
	if err != nil || len(fixtures) != 1 {
		t.Fatalf("expected 1 appended fixture, got %d (err=%v)", len(fixtures), err)
	}
	if fixtures[0].Group != "L2" {
		t.Fatalf("fixture landed in the wrong group: %q", fixtures[0].Group)
	}
}

func TestRouter_RefreshCache_EmptyBodyUsesDefaults(t *testing.T) {
	t.Parallel()

	env := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/internal/cache/refresh", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := env.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec.Body.Bytes())
	if count, _ := data["task_count"].(float64); int(count) != 3 {
		t.Fatalf("expected players+round+fixtures tasks, got task_count=%v", data["task_count"])
	}
	if failed, _ := data["failed_count"].(float64); int(failed) != 0 {
		t.Fatalf("expected no failed tasks, got %v", data["failed_count"])
	}
}

type stubExtractor struct {
	candidate  snooker.Candidate
	err        error
	gotPassage string
}

func (s *stubExtractor) ExtractCandidate(_ context.Context, passage string, _ []snooker.Player) (snooker.Candidate, error) {
	s.gotPassage = passage
	if s.err != nil {
		return snooker.Candidate{}, s.err
	}
	return s.candidate, nil
}

type stubMessenger struct {
	to   []string
	body []string
}

func (s *stubMessenger) SendMessage(_ context.Context, to, body string) error {
	s.to = append(s.to, to)
	s.body = append(s.body, body)
	return nil
}
