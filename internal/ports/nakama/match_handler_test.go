package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"twentyeight/internal/app"
	"twentyeight/internal/bot"
	"twentyeight/internal/config"
	"twentyeight/internal/domain"
	"twentyeight/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// sentMessage records one dispatched match message.
type sentMessage struct {
	opCode     int64
	data       []byte
	recipients int // 0 means broadcast to everyone
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{
		opCode:     opCode,
		data:       append([]byte(nil), data...),
		recipients: len(presences),
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) byOpCode(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.messages {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

// mockPresence is a minimal runtime.Presence.
type mockPresence struct {
	userID string
}

func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }
func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return true }
func (p mockPresence) GetUsername() string               { return p.userID }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// mockMatchData wraps a presence with an opcode payload.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

type mockEconomy struct {
	updates []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

type mockScores struct {
	entries []ports.ScoreArchiveEntry
}

func (ms *mockScores) ArchiveScore(ctx context.Context, entry ports.ScoreArchiveEntry) error {
	ms.entries = append(ms.entries, entry)
	return nil
}

// testState builds a MatchState with a live session service and the
// given seats; humans get connected presences.
func testState(t *testing.T, seats [domain.NumSeats]string) *MatchState {
	t.Helper()
	service, err := app.NewService(domain.DefaultRules(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	s := &MatchState{
		TableID:   "table-1",
		Seats:     seats,
		OwnerSeat: firstHumanSeat(seats[:]),
		Presences: make(map[string]runtime.Presence),
		App:       service,
		Rejoin:    app.NewRejoinService("test-secret", time.Minute),
		Cfg:       config.GetTableConfig(),
		Bots:      make(map[string]*bot.Agent),
	}
	for _, uid := range seats {
		if uid != "" && !bot.IsBot(uid) {
			s.Presences[uid] = mockPresence{userID: uid}
		}
	}
	return s
}

func fullSeats() [domain.NumSeats]string {
	return [domain.NumSeats]string{
		"user-1",
		bot.IdentityFor(1).UserID,
		"user-2",
		bot.IdentityFor(3).UserID,
	}
}

func TestFirstHumanSeat(t *testing.T) {
	bot1 := bot.IdentityFor(0).UserID
	bot2 := bot.IdentityFor(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: []string{bot1, "user-1", "", ""},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: []string{bot1, bot2, "", ""},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: []string{"user-1", bot1, "user-2", ""},
			want:  0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := firstHumanSeat(test.seats); got != test.want {
				t.Fatalf("firstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestMatchStateSeatAccounting(t *testing.T) {
	s := &MatchState{Seats: [domain.NumSeats]string{"user-1", "", "user-2", ""}}
	if got := s.OpenSeats(); got != 2 {
		t.Errorf("OpenSeats = %d, want 2", got)
	}
	if got := s.OccupiedSeats(); got != 2 {
		t.Errorf("OccupiedSeats = %d, want 2", got)
	}
	if got := s.seatOf("user-2"); got != 2 {
		t.Errorf("seatOf(user-2) = %d, want 2", got)
	}
	if got := s.seatOf("ghost"); got != -1 {
		t.Errorf("seatOf(ghost) = %d, want -1", got)
	}

	s.Reserved[1] = true
	if got := s.OpenSeats(); got != 1 {
		t.Errorf("OpenSeats with reservation = %d, want 1", got)
	}
}

func TestLabelMarshal(t *testing.T) {
	data, err := json.Marshal(Label{Open: 3, Game: GameName, Phase: string(domain.PhaseCreated)})
	if err != nil {
		t.Fatalf("Failed to marshal label: %v", err)
	}
	want := `{"open":3,"game":"twentyeight","phase":"created"}`
	if string(data) != want {
		t.Errorf("label = %s, want %s", data, want)
	}
}

func TestMatchJoinAssignsSeats(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	s := testState(t, [domain.NumSeats]string{})

	joined := mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, s,
		[]runtime.Presence{mockPresence{userID: "user-1"}, mockPresence{userID: "user-2"}})

	got, ok := joined.(*MatchState)
	if !ok {
		t.Fatal("MatchJoin did not return MatchState")
	}
	if got.Seats[0] != "user-1" || got.Seats[1] != "user-2" {
		t.Fatalf("Seats = %v, want users in seats 0 and 1", got.Seats)
	}
	if got.OwnerSeat != 0 {
		t.Errorf("OwnerSeat = %d, want 0", got.OwnerSeat)
	}
	if len(dispatcher.byOpCode(OpPlayerJoined)) != 2 {
		t.Errorf("expected 2 player_joined broadcasts, got %d", len(dispatcher.byOpCode(OpPlayerJoined)))
	}
	if dispatcher.labelUpdates == 0 {
		t.Error("expected a label update after joins")
	}
}

func TestMatchJoinReplacesLobbyBot(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	botID := bot.IdentityFor(0).UserID
	seats := [domain.NumSeats]string{botID, "user-1", "user-2", "user-3"}
	s := testState(t, seats)
	s.Bots[botID] = bot.NewAgent(botID)

	joined := mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, s,
		[]runtime.Presence{mockPresence{userID: "user-4"}})

	got := joined.(*MatchState)
	if got.Seats[0] != "user-4" {
		t.Fatalf("Seats[0] = %s, want the joining human", got.Seats[0])
	}
	if _, stillThere := got.Bots[botID]; stillThere {
		t.Error("replaced bot agent should be removed")
	}
}

func TestMatchJoinAttemptRejoinToken(t *testing.T) {
	mh := &matchHandler{}
	s := testState(t, [domain.NumSeats]string{"user-1", "user-2", "user-3", "user-4"})
	s.GameID = "live-game"
	s.Reserved[2] = true
	delete(s.Presences, "user-3")

	token, err := s.Rejoin.IssueToken("user-3", s.TableID, 2)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	metadata := map[string]string{"rejoin_token": token}
	_, allowed, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, s,
		mockPresence{userID: "user-3"}, metadata)
	if !allowed {
		t.Fatal("expected rejoin with a valid token to be allowed")
	}

	// A stolen token is useless to another user.
	_, allowed, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, s,
		mockPresence{userID: "user-9"}, metadata)
	if allowed {
		t.Fatal("expected a token presented by another user to be rejected")
	}

	wrongTable, err := s.Rejoin.IssueToken("user-3", "other-table", 2)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	_, allowed, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, s,
		mockPresence{userID: "user-3"}, map[string]string{"rejoin_token": wrongTable})
	if allowed {
		t.Fatal("expected a token for another table to be rejected")
	}

	// After the seat is reassigned the reservation is gone.
	s.Seats[2] = "user-9"
	_, allowed, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, s,
		mockPresence{userID: "user-3"}, metadata)
	if allowed {
		t.Fatal("expected a token for a reassigned seat to be rejected")
	}
}

func TestMatchJoinAttemptFullMatch(t *testing.T) {
	mh := &matchHandler{}
	s := testState(t, [domain.NumSeats]string{"user-1", "user-2", "user-3", "user-4"})
	s.GameID = "live-game"

	_, allowed, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, s,
		mockPresence{userID: "user-5"}, nil)
	if allowed {
		t.Fatalf("expected a full in-game match to reject joins, got %q", reason)
	}
}

func TestHandleStartGameOwnerOnly(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	s := testState(t, fullSeats())

	msg := mockMatchData{mockPresence: mockPresence{userID: "user-2"}, opCode: OpStartGame}
	mh.handleStartGame(context.Background(), s, dispatcher, noopLogger{}, msg)

	if s.GameID != "" {
		t.Fatal("non-owner must not start a game")
	}
	errs := dispatcher.byOpCode(OpGameError)
	if len(errs) != 1 || errs[0].recipients != 1 {
		t.Fatalf("expected one targeted game_error, got %v", errs)
	}
}

func TestHandleStartGameDealsHands(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	s := testState(t, fullSeats())

	msg := mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame}
	mh.handleStartGame(context.Background(), s, dispatcher, noopLogger{}, msg)

	if s.GameID == "" {
		t.Fatal("expected a game to start")
	}
	if len(dispatcher.byOpCode(OpGameState)) == 0 {
		t.Error("expected a game_state broadcast")
	}

	// Hands go only to connected humans, one presence each; bot hands
	// are suppressed rather than broadcast.
	hands := dispatcher.byOpCode(OpHandDealt)
	if len(hands) != 2 {
		t.Fatalf("expected 2 private hand messages, got %d", len(hands))
	}
	for _, m := range hands {
		if m.recipients != 1 {
			t.Fatalf("hand message had %d recipients, want 1", m.recipients)
		}
	}
}

func TestHandleStartGameRequiresFullTable(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	s := testState(t, [domain.NumSeats]string{"user-1", "", "", ""})

	msg := mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame}
	mh.handleStartGame(context.Background(), s, dispatcher, noopLogger{}, msg)

	if s.GameID != "" {
		t.Fatal("a short table must not start a game")
	}
	if len(dispatcher.byOpCode(OpGameError)) != 1 {
		t.Fatal("expected a targeted game_error")
	}
}

func TestGameFlowThroughOpcodes(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	s := testState(t, [domain.NumSeats]string{"user-1", "user-2", "user-3", "user-4"})

	start := mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame}
	mh.handleStartGame(context.Background(), s, dispatcher, noopLogger{}, start)
	if s.GameID == "" {
		t.Fatal("expected a game to start")
	}

	view, err := s.App.GetGame(s.GameID, app.SpectatorSeat)
	if err != nil {
		t.Fatalf("GetGame returned error: %v", err)
	}
	opener := int(*view.Turn)

	bidPayload, _ := json.Marshal(PlaceBidRequest{Kind: "bid", Amount: 16})
	bidMsg := mockMatchData{
		mockPresence: mockPresence{userID: s.Seats[opener]},
		opCode:       OpPlaceBid,
		data:         bidPayload,
	}
	mh.handlePlaceBid(context.Background(), s, dispatcher, noopLogger{}, bidMsg)

	if len(dispatcher.byOpCode(OpBidPlaced)) != 1 {
		t.Fatalf("expected one bid_placed broadcast")
	}
	if len(dispatcher.byOpCode(OpGameError)) != 0 {
		t.Fatalf("unexpected game_error: %s", dispatcher.byOpCode(OpGameError)[0].data)
	}

	// An out-of-turn bid is answered with a targeted error.
	badSeat := (opener + 1) % domain.NumSeats
	badMsg := mockMatchData{
		mockPresence: mockPresence{userID: s.Seats[badSeat]},
		opCode:       OpPlaceBid,
		data:         bidPayload,
	}
	mh.handlePlaceBid(context.Background(), s, dispatcher, noopLogger{}, badMsg)
	errs := dispatcher.byOpCode(OpGameError)
	if len(errs) != 1 || errs[0].recipients != 1 {
		t.Fatalf("expected one targeted game_error, got %d", len(errs))
	}
	var wire GameErrorEvent
	if err := json.Unmarshal(errs[0].data, &wire); err != nil {
		t.Fatalf("Failed to unmarshal error event: %v", err)
	}
	if wire.Code != 7 {
		t.Errorf("error code = %d, want 7 (permission denied)", wire.Code)
	}
}

func TestSendDomainErrorCodes(t *testing.T) {
	mh := &matchHandler{}
	s := testState(t, [domain.NumSeats]string{"user-1", "", "", ""})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotFound", fmt.Errorf("wrap: %w", domain.ErrGameNotFound), 5},
		{"Phase", fmt.Errorf("wrap: %w", domain.ErrIllegalPhase), 9},
		{"Player", fmt.Errorf("wrap: %w", domain.ErrIllegalPlayer), 7},
		{"Bid", fmt.Errorf("wrap: %w", domain.ErrIllegalBid), 3},
		{"Card", fmt.Errorf("wrap: %w", domain.ErrIllegalCard), 3},
		{"Selection", fmt.Errorf("wrap: %w", domain.ErrInvalidSelectionSize), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &mockDispatcher{}
			mh.sendDomainError(s, dispatcher, noopLogger{}, "user-1", tt.err)

			msgs := dispatcher.byOpCode(OpGameError)
			if len(msgs) != 1 {
				t.Fatalf("expected one error message, got %d", len(msgs))
			}
			var wire GameErrorEvent
			if err := json.Unmarshal(msgs[0].data, &wire); err != nil {
				t.Fatalf("Failed to unmarshal error event: %v", err)
			}
			if wire.Code != tt.want {
				t.Errorf("code = %d, want %d", wire.Code, tt.want)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	mh := &matchHandler{}
	economy := &mockEconomy{}
	archive := &mockScores{}
	s := testState(t, fullSeats())
	s.Economy = economy
	s.Scores = archive

	view := &app.View{
		GameID: "game-1",
		Score: &domain.ScoreRecord{
			BidWinner:   0,
			BiddingSide: domain.SideEvens,
			BidValue:    16,
			PointsTaken: 20,
			Won:         true,
			Margin:      4,
			SideCredits: map[domain.Side]int{
				domain.SideEvens: 20,
				domain.SideOdds:  0,
			},
		},
	}
	mh.settle(context.Background(), s, noopLogger{}, view)

	if len(archive.entries) != 1 || archive.entries[0].GameID != "game-1" {
		t.Fatalf("expected one archived score, got %v", archive.entries)
	}

	// Seats 0 and 2 are the credited side; both are humans here.
	if len(economy.updates) != 2 {
		t.Fatalf("expected 2 wallet updates, got %d", len(economy.updates))
	}
	for _, u := range economy.updates {
		if u.Amount != 20*settlementChipsPerPoint {
			t.Errorf("amount = %d, want %d", u.Amount, 20*settlementChipsPerPoint)
		}
		if bot.IsBot(u.UserID) {
			t.Errorf("bot %s must not receive wallet updates", u.UserID)
		}
	}
}

func TestSettleSkipsBots(t *testing.T) {
	mh := &matchHandler{}
	economy := &mockEconomy{}
	s := testState(t, fullSeats())
	s.Economy = economy

	view := &app.View{
		GameID: "game-1",
		Score: &domain.ScoreRecord{
			BidWinner:   1,
			BiddingSide: domain.SideOdds,
			BidValue:    16,
			PointsTaken: 18,
			Won:         true,
			SideCredits: map[domain.Side]int{
				domain.SideEvens: 0,
				domain.SideOdds:  18,
			},
		},
	}
	mh.settle(context.Background(), s, noopLogger{}, view)

	// The odd side is two bots; nothing to pay out.
	if len(economy.updates) != 0 {
		t.Fatalf("expected no wallet updates, got %v", economy.updates)
	}
}

func TestProcessBotsAutoFill(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	s := testState(t, [domain.NumSeats]string{"user-1", "", "", ""})
	s.Cfg.BotsEnabled = true
	s.Cfg.BotAutoFillDelay = 2
	s.LastSinglePlayerTick = 8
	s.Tick = 10

	mh.processBots(context.Background(), s, dispatcher, noopLogger{})

	botCount := 0
	for _, uid := range s.Seats {
		if bot.IsBot(uid) {
			botCount++
		}
	}
	if botCount != 3 {
		t.Fatalf("expected 3 bots after auto-fill, got %d", botCount)
	}
	if s.OpenSeats() != 0 {
		t.Fatalf("expected no open seats after auto-fill, got %d", s.OpenSeats())
	}
	if s.LastSinglePlayerTick != 0 {
		t.Fatalf("expected auto-fill timer reset, got %d", s.LastSinglePlayerTick)
	}
	if len(dispatcher.byOpCode(OpPlayerJoined)) != 3 || dispatcher.labelUpdates == 0 {
		t.Fatal("expected joined broadcasts and a label update after auto-fill")
	}
}

func TestBroadcastEventsSuppressesOfflinePrivate(t *testing.T) {
	mh := &matchHandler{}
	dispatcher := &mockDispatcher{}
	s := testState(t, fullSeats())

	events := []app.Event{
		{
			Kind:       app.EventHandDealt,
			Payload:    app.HandDealtPayload{Seat: 1, Cards: []string{"JH"}},
			Recipients: []domain.Seat{1}, // a bot, no presence
		},
	}
	mh.broadcastEvents(context.Background(), s, dispatcher, noopLogger{}, events)

	if len(dispatcher.messages) != 0 {
		t.Fatalf("expected private event without recipients to be suppressed, got %v", dispatcher.messages)
	}
}
