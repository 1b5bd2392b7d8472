package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcRejoinToken is the Nakama RPC id clients call to obtain a signed seat-reclaim token.
	RpcRejoinToken = "rejoin_token"

	// MatchName is the authoritative match handler name registered with Nakama.
	MatchName = "twentyeight_match"

	// GameName is the label value advertised for quick-match queries.
	GameName = "twentyeight"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame    int64 = 1
	OpPlaceBid     int64 = 2
	OpDeclareTrump int64 = 3
	OpSelectCards  int64 = 4
	OpPlayCard     int64 = 5
	OpScoreHand    int64 = 6
	OpGetState     int64 = 7

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpGameState      int64 = 103
	OpHandDealt      int64 = 104 // sent privately
	OpBidPlaced      int64 = 105
	OpBiddingWon     int64 = 106
	OpHandVoided     int64 = 107
	OpTrumpDeclared  int64 = 108
	OpKittyRevealed  int64 = 109 // sent privately to the bid winner
	OpCardsExchanged int64 = 110
	OpCardPlayed     int64 = 111
	OpTrickWon       int64 = 112
	OpHandScored     int64 = 113
	OpGameError      int64 = 120
)
