package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"twentyeight/internal/app"
	"twentyeight/internal/bot"
	"twentyeight/internal/config"
	"twentyeight/internal/domain"
	"twentyeight/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// settlementChipsPerPoint converts score-record credits into wallet chips.
const settlementChipsPerPoint = 100

// MatchState holds the authoritative runtime state for the match handler.
type MatchState struct {
	TableID   string
	Seats     [domain.NumSeats]string // user ids, "" means empty
	Reserved  [domain.NumSeats]bool   // seat held for a disconnected player
	OwnerSeat int
	Tick      int64

	Presences map[string]runtime.Presence
	App       *app.Service
	Rejoin    *app.RejoinService
	GameID    string
	Cfg       config.TableConfig

	BotWaitUntil         int64
	LastSinglePlayerTick int64
	Bots                 map[string]*bot.Agent

	Economy ports.EconomyPort
	Scores  ports.ScoreArchivePort
}

// OpenSeats returns the number of empty, unreserved seats.
func (ms *MatchState) OpenSeats() int {
	n := 0
	for i, uid := range ms.Seats {
		if uid == "" && !ms.Reserved[i] {
			n++
		}
	}
	return n
}

// OccupiedSeats returns the number of seats with an assigned user.
func (ms *MatchState) OccupiedSeats() int {
	n := 0
	for _, uid := range ms.Seats {
		if uid != "" {
			n++
		}
	}
	return n
}

func (ms *MatchState) seatOf(userID string) int {
	for i, uid := range ms.Seats {
		if uid == userID {
			return i
		}
	}
	return -1
}

func isHumanSeat(seats []string, seat int) bool {
	if seat < 0 || seat >= len(seats) {
		return false
	}
	return seats[seat] != "" && !bot.IsBot(seats[seat])
}

func firstHumanSeat(seats []string) int {
	for i := range seats {
		if isHumanSeat(seats, i) {
			return i
		}
	}
	return -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit builds the table's rules from config plus runtime env
// overrides and boots the session service.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadTableConfig("data/table_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load table config: %v", err)
	}

	cfg := config.GetTableConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		overridden, err := config.ApplyEnv(cfg, env)
		if err != nil {
			logger.Warn("MatchInit: Ignoring bad env overrides: %v", err)
		} else {
			cfg = overridden
		}
	}

	rules, err := cfg.Rules()
	if err != nil {
		logger.Error("MatchInit: Invalid ruleset: %v", err)
		return nil, 0, ""
	}
	service, err := app.NewService(rules, nil)
	if err != nil {
		logger.Error("MatchInit: Failed to build session service: %v", err)
		return nil, 0, ""
	}

	tableID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := &MatchState{
		TableID:   tableID,
		OwnerSeat: -1,
		Presences: make(map[string]runtime.Presence),
		App:       service,
		Rejoin:    app.NewRejoinService(cfg.RejoinTokenSecret, time.Duration(cfg.RejoinTokenTTLSec)*time.Second),
		Cfg:       cfg,
		Bots:      make(map[string]*bot.Agent),
		Economy:   NewNakamaEconomyAdapter(nk),
		Scores:    NewNakamaScoreArchiveAdapter(nk),
	}

	labelBytes, err := json.Marshal(Label{Open: state.OpenSeats(), Game: GameName, Phase: string(domain.PhaseCreated)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, 1, string(labelBytes)
}

// MatchJoinAttempt admits players into open seats, lets humans replace
// lobby bots, and honors seat-reclaim tokens during a live hand.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	s, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	uid := presence.GetUserId()
	if token := metadata["rejoin_token"]; token != "" {
		claims, err := s.Rejoin.VerifyToken(token)
		if err != nil {
			logger.Warn("MatchJoinAttempt: Bad rejoin token from %s: %v", uid, err)
			return s, false, "invalid rejoin token"
		}
		if claims.UserID != uid {
			return s, false, "rejoin token belongs to another user"
		}
		if claims.TableID != s.TableID {
			return s, false, "rejoin token is for another table"
		}
		if s.Seats[claims.Seat] != claims.UserID {
			return s, false, "seat no longer reserved"
		}
		return s, true, ""
	}

	if s.seatOf(uid) >= 0 {
		return s, true, ""
	}

	if s.OpenSeats() > 0 {
		return s, true, ""
	}
	if s.GameID == "" {
		for _, seatUID := range s.Seats {
			if bot.IsBot(seatUID) {
				return s, true, ""
			}
		}
	}
	return s, false, "match full"
}

// MatchJoin assigns seats (empty first, lobby bots second) and sends the
// joining player their redacted game view.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		s.Presences[uid] = p

		seat := s.seatOf(uid)
		if seat < 0 {
			for i, seatUID := range s.Seats {
				if seatUID == "" && !s.Reserved[i] {
					seat = i
					break
				}
			}
		}
		if seat < 0 && s.GameID == "" {
			for i, seatUID := range s.Seats {
				if bot.IsBot(seatUID) {
					logger.Info("MatchJoin: Replacing bot %s with %s in seat %d", seatUID, uid, i)
					delete(s.Bots, seatUID)
					seat = i
					break
				}
			}
		}
		if seat < 0 {
			logger.Warn("MatchJoin: No seat available for %s", uid)
			continue
		}

		s.Seats[seat] = uid
		s.Reserved[seat] = false

		evt, _ := json.Marshal(PlayerJoinedEvent{
			UserID:      uid,
			DisplayName: p.GetUsername(),
			Seat:        seat,
			Owner:       seat == s.OwnerSeat,
		})
		_ = dispatcher.BroadcastMessage(OpPlayerJoined, evt, nil, nil, true)

		mh.sendState(s, dispatcher, logger, uid)
	}

	if !isHumanSeat(s.Seats[:], s.OwnerSeat) {
		s.OwnerSeat = firstHumanSeat(s.Seats[:])
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// MatchLeave reserves the seat of a player who drops mid-hand so they
// can reclaim it; in the lobby the seat frees up immediately.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(s.Presences, uid)

		seat := s.seatOf(uid)
		if seat < 0 {
			continue
		}
		reserved := s.GameID != ""
		if reserved {
			s.Reserved[seat] = true
		} else {
			s.Seats[seat] = ""
		}
		evt, _ := json.Marshal(PlayerLeftEvent{UserID: uid, Seat: seat, Reserved: reserved})
		_ = dispatcher.BroadcastMessage(OpPlayerLeft, evt, nil, nil, true)
	}

	if !isHumanSeat(s.Seats[:], s.OwnerSeat) {
		s.OwnerSeat = firstHumanSeat(s.Seats[:])
	}

	if mh.connectedHumans(s) == 0 {
		logger.Info("MatchLeave: Terminating match with no connected humans.")
		return nil
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

func (mh *matchHandler) connectedHumans(s *MatchState) int {
	n := 0
	for uid := range s.Presences {
		if !bot.IsBot(uid) {
			n++
		}
	}
	return n
}

// MatchLoop dispatches client actions to the session service and drives
// bot seats.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		return state
	}
	s.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, s, dispatcher, logger, msg)
		case OpPlaceBid:
			mh.handlePlaceBid(ctx, s, dispatcher, logger, msg)
		case OpDeclareTrump:
			mh.handleDeclareTrump(ctx, s, dispatcher, logger, msg)
		case OpSelectCards:
			mh.handleSelectCards(ctx, s, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, s, dispatcher, logger, msg)
		case OpScoreHand:
			mh.handleScoreHand(ctx, s, dispatcher, logger, msg.GetUserId())
		case OpGetState:
			mh.sendState(s, dispatcher, logger, msg.GetUserId())
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if s.Cfg.BotsEnabled {
		mh.processBots(ctx, s, dispatcher, logger)
	}
	return s
}

func (mh *matchHandler) handleStartGame(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := s.seatOf(msg.GetUserId())
	if senderSeat != s.OwnerSeat {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 7, "only the table owner may start a game")
		return
	}
	if s.OccupiedSeats() < domain.NumSeats {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 9, "table is not full")
		return
	}
	if s.GameID != "" {
		if view, err := s.App.GetGame(s.GameID, app.SpectatorSeat); err == nil {
			switch view.Phase {
			case domain.PhaseCompleted, domain.PhaseVoid:
			default:
				logger.Info("handleStartGame: Retiring unfinished game %s for table %s", s.GameID, s.TableID)
			}
		}
	}

	view, events, err := s.App.CreateGame(s.TableID)
	if err != nil {
		logger.Error("handleStartGame: Failed to start game: %v", err)
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 13, "failed to start game")
		return
	}
	s.GameID = view.GameID

	mh.updateLabel(s, dispatcher, logger)
	mh.broadcastEvents(ctx, s, dispatcher, logger, events)
	logger.Info("handleStartGame: Game %s started for table %s", s.GameID, s.TableID)
}

func (mh *matchHandler) handlePlaceBid(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.senderSeat(s, dispatcher, logger, msg.GetUserId())
	if !ok {
		return
	}
	var req PlaceBidRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, "malformed bid payload")
		return
	}
	bid, err := bidFromRequest(req)
	if err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}
	_, events, err := s.App.PlaceBid(s.GameID, seat, bid)
	if err != nil {
		logger.Warn("handlePlaceBid: Seat %d rejected: %v", seat, err)
		mh.sendDomainError(s, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.broadcastEvents(ctx, s, dispatcher, logger, events)
	mh.updateLabel(s, dispatcher, logger)
}

func (mh *matchHandler) handleDeclareTrump(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.senderSeat(s, dispatcher, logger, msg.GetUserId())
	if !ok {
		return
	}
	var req DeclareTrumpRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, "malformed trump payload")
		return
	}
	suit, err := domain.ParseSuit(req.Suit)
	if err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}
	_, events, err := s.App.DeclareTrump(s.GameID, seat, suit)
	if err != nil {
		logger.Warn("handleDeclareTrump: Seat %d rejected: %v", seat, err)
		mh.sendDomainError(s, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.broadcastEvents(ctx, s, dispatcher, logger, events)
}

func (mh *matchHandler) handleSelectCards(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.senderSeat(s, dispatcher, logger, msg.GetUserId())
	if !ok {
		return
	}
	var req SelectCardsRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, "malformed selection payload")
		return
	}
	cards, err := domain.ParseCards(req.CardIDs)
	if err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}
	_, events, err := s.App.SelectCards(s.GameID, seat, cards)
	if err != nil {
		logger.Warn("handleSelectCards: Seat %d rejected: %v", seat, err)
		mh.sendDomainError(s, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.broadcastEvents(ctx, s, dispatcher, logger, events)
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.senderSeat(s, dispatcher, logger, msg.GetUserId())
	if !ok {
		return
	}
	var req PlayCardRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, "malformed play payload")
		return
	}
	card, err := domain.ParseCard(req.CardID)
	if err != nil {
		mh.sendError(s, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}
	_, events, err := s.App.PlayCard(s.GameID, seat, card)
	if err != nil {
		logger.Warn("handlePlayCard: Seat %d rejected: %v", seat, err)
		mh.sendDomainError(s, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.broadcastEvents(ctx, s, dispatcher, logger, events)
}

func (mh *matchHandler) handleScoreHand(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string) {
	view, events, err := s.App.ScoreHand(s.GameID)
	if err != nil {
		logger.Warn("handleScoreHand: Rejected: %v", err)
		if senderID != "" {
			mh.sendDomainError(s, dispatcher, logger, senderID, err)
		}
		return
	}
	mh.broadcastEvents(ctx, s, dispatcher, logger, events)
	mh.settle(ctx, s, logger, view)
	mh.updateLabel(s, dispatcher, logger)
}

// settle converts the score record into wallet credits for the winning
// side's human players and archives the record.
func (mh *matchHandler) settle(ctx context.Context, s *MatchState, logger runtime.Logger, view *app.View) {
	if view.Score == nil {
		return
	}
	record := *view.Score

	if s.Scores != nil {
		entry := ports.ScoreArchiveEntry{GameID: view.GameID, TableID: s.TableID, Record: record}
		if err := s.Scores.ArchiveScore(ctx, entry); err != nil {
			logger.Error("settle: Failed to archive score: %v", err)
		}
	}

	if s.Economy == nil {
		return
	}
	var updates []ports.WalletUpdate
	for seat := 0; seat < domain.NumSeats; seat++ {
		credit := record.SideCredits[domain.SideOf(domain.Seat(seat))]
		if credit == 0 {
			continue
		}
		uid := s.Seats[seat]
		if uid == "" || bot.IsBot(uid) {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: uid,
			Amount: int64(credit) * settlementChipsPerPoint,
			Metadata: map[string]interface{}{
				"game_id": view.GameID,
				"reason":  "hand_settlement",
			},
		})
	}
	if len(updates) == 0 {
		return
	}
	if err := s.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("settle: Failed to update balances: %v", err)
	}
}

// processBots fills empty lobby seats with bots after a delay and plays
// bot turns with a human-like pause.
func (mh *matchHandler) processBots(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if s.GameID == "" {
		humans := 0
		for i := range s.Seats {
			if isHumanSeat(s.Seats[:], i) {
				humans++
			}
		}
		if humans == 1 && s.OpenSeats() > 0 {
			if s.LastSinglePlayerTick == 0 {
				s.LastSinglePlayerTick = s.Tick
			}
			if s.Tick-s.LastSinglePlayerTick >= int64(s.Cfg.BotAutoFillDelay) {
				for i, uid := range s.Seats {
					if uid != "" || s.Reserved[i] {
						continue
					}
					identity := bot.IdentityFor(i)
					s.Seats[i] = identity.UserID
					s.Bots[identity.UserID] = bot.NewAgent(identity.UserID)
					logger.Info("processBots: Added bot %s to seat %d", identity.DisplayName, i)

					evt, _ := json.Marshal(PlayerJoinedEvent{
						UserID:      identity.UserID,
						DisplayName: identity.DisplayName,
						Seat:        i,
						Owner:       false,
					})
					_ = dispatcher.BroadcastMessage(OpPlayerJoined, evt, nil, nil, true)
				}
				mh.updateLabel(s, dispatcher, logger)
				s.LastSinglePlayerTick = 0
			}
		} else {
			s.LastSinglePlayerTick = 0
		}
		return
	}

	view, err := s.App.GetGame(s.GameID, app.SpectatorSeat)
	if err != nil {
		return
	}

	// The scoring step needs no player; drive it from the loop so a
	// table of disconnected humans still completes.
	if view.Phase == domain.PhaseScoring {
		mh.handleScoreHand(ctx, s, dispatcher, logger, "")
		return
	}
	if view.Turn == nil {
		s.BotWaitUntil = 0
		return
	}

	seat := *view.Turn
	uid := s.Seats[seat]
	if !bot.IsBot(uid) {
		s.BotWaitUntil = 0
		return
	}

	if s.BotWaitUntil == 0 {
		delay := s.Cfg.BotMinDelaySec
		if s.Cfg.BotMaxDelaySec > s.Cfg.BotMinDelaySec {
			delay += rand.Intn(s.Cfg.BotMaxDelaySec - s.Cfg.BotMinDelaySec + 1)
		}
		s.BotWaitUntil = s.Tick + int64(delay)
		return
	}
	if s.Tick < s.BotWaitUntil {
		return
	}
	s.BotWaitUntil = 0

	agent, ok := s.Bots[uid]
	if !ok {
		agent = bot.NewAgent(uid)
		s.Bots[uid] = agent
	}
	mh.playBotAction(ctx, s, dispatcher, logger, agent, seat)
}

func (mh *matchHandler) playBotAction(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, agent *bot.Agent, seat domain.Seat) {
	action, err := mh.botAction(s, agent, seat)
	if err != nil {
		logger.Error("playBotAction: Bot %s failed to choose: %v", agent.ID, err)
		return
	}

	var events []app.Event
	switch {
	case action.Bid != nil:
		_, events, err = s.App.PlaceBid(s.GameID, seat, *action.Bid)
	case action.Trump != nil:
		_, events, err = s.App.DeclareTrump(s.GameID, seat, *action.Trump)
	case action.Selection != nil:
		_, events, err = s.App.SelectCards(s.GameID, seat, action.Selection)
	case action.Card != nil:
		_, events, err = s.App.PlayCard(s.GameID, seat, *action.Card)
	default:
		return
	}
	if err != nil {
		logger.Error("playBotAction: Bot %s move rejected: %v", agent.ID, err)
		return
	}
	mh.broadcastEvents(ctx, s, dispatcher, logger, events)
}

// botAction hands the agent a snapshot so the brain never reads live
// service state.
func (mh *matchHandler) botAction(s *MatchState, agent *bot.Agent, seat domain.Seat) (bot.Action, error) {
	g, err := s.App.SnapshotGame(s.GameID)
	if err != nil {
		return bot.Action{}, err
	}
	return agent.Act(g, seat)
}

// broadcastEvents converts app events into opcode messages, honoring
// targeted recipients for private payloads.
func (mh *matchHandler) broadcastEvents(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := opCodeFor(ev.Kind)
		if !ok {
			logger.Warn("broadcastEvents: Unknown event kind: %v", ev.Kind)
			continue
		}
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("broadcastEvents: Failed to marshal %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, seat := range ev.Recipients {
				uid := s.Seats[seat]
				if p, ok := s.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// A private payload whose recipients are offline or bots
			// must not leak to the rest of the table.
			if len(recipients) == 0 {
				continue
			}
		}
		_ = dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
	}
}

func opCodeFor(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventGameStarted:
		return OpGameState, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventBidPlaced:
		return OpBidPlaced, true
	case app.EventBiddingWon:
		return OpBiddingWon, true
	case app.EventHandVoided:
		return OpHandVoided, true
	case app.EventKittyRevealed:
		return OpKittyRevealed, true
	case app.EventTrumpDeclared:
		return OpTrumpDeclared, true
	case app.EventCardsExchanged:
		return OpCardsExchanged, true
	case app.EventCardPlayed:
		return OpCardPlayed, true
	case app.EventTrickWon:
		return OpTrickWon, true
	case app.EventHandScored:
		return OpHandScored, true
	default:
		return 0, false
	}
}

// sendState delivers the user's redacted game view.
func (mh *matchHandler) sendState(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if s.GameID == "" {
		return
	}
	viewer := app.SpectatorSeat
	if seat := s.seatOf(userID); seat >= 0 {
		viewer = domain.Seat(seat)
	}
	view, err := s.App.GetGame(s.GameID, viewer)
	if err != nil {
		logger.Warn("sendState: %v", err)
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		logger.Error("sendState: Failed to marshal view: %v", err)
		return
	}
	p, ok := s.Presences[userID]
	if !ok {
		return
	}
	_ = dispatcher.BroadcastMessage(OpGameState, data, []runtime.Presence{p}, nil, true)
}

func (mh *matchHandler) senderSeat(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) (domain.Seat, bool) {
	if s.GameID == "" {
		mh.sendError(s, dispatcher, logger, userID, 9, "no game in progress")
		return 0, false
	}
	seat := s.seatOf(userID)
	if seat < 0 {
		mh.sendError(s, dispatcher, logger, userID, 7, "sender is not seated at this table")
		return 0, false
	}
	return domain.Seat(seat), true
}

// sendDomainError maps engine error kinds onto stable wire codes.
func (mh *matchHandler) sendDomainError(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	code := 3 // INVALID_ARGUMENT
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		code = 5 // NOT_FOUND
	case errors.Is(err, domain.ErrIllegalPhase):
		code = 9 // FAILED_PRECONDITION
	case errors.Is(err, domain.ErrIllegalPlayer):
		code = 7 // PERMISSION_DENIED
	}
	mh.sendError(s, dispatcher, logger, userID, code, err.Error())
}

func (mh *matchHandler) sendError(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("sendError: Failed to marshal error event: %v", err)
		return
	}
	p, ok := s.Presences[userID]
	if !ok {
		logger.Warn("sendError: Presence not found for %s", userID)
		return
	}
	_ = dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{p}, nil, true)
}

func (mh *matchHandler) updateLabel(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := domain.PhaseCreated
	if s.GameID != "" {
		if view, err := s.App.GetGame(s.GameID, app.SpectatorSeat); err == nil {
			phase = view.Phase
		}
	}
	labelBytes, err := json.Marshal(Label{Open: s.OpenSeats(), Game: GameName, Phase: string(phase)})
	if err != nil {
		logger.Error("updateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

// MatchTerminate is called when the match is shutting down.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

// MatchSignal is unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
