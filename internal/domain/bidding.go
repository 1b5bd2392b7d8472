package domain

import "fmt"

// ApplyBid records one bidding action for the seat and advances the
// session: looping within PhaseBidding, resolving to PhaseTrumpSelection,
// or voiding the hand when all four players pass without a bid.
func ApplyBid(g *Game, seat Seat, bid Bid) error {
	if err := g.requirePhase(PhaseBidding); err != nil {
		return err
	}
	if seat != g.BidTurn {
		return fmt.Errorf("%w: seat %d bid out of turn (turn is %d)", ErrIllegalPlayer, seat, g.BidTurn)
	}
	if g.Passed[seat] {
		return fmt.Errorf("%w: seat %d already passed", ErrIllegalPlayer, seat)
	}

	switch bid.Kind {
	case BidNumeric:
		if err := validateRaise(g, bid.Amount); err != nil {
			return err
		}
	case BidCheck:
		if g.StandingBid == 0 {
			return fmt.Errorf("%w: cannot check before a numeric bid", ErrIllegalBid)
		}
		if seat == g.BidWinner {
			return fmt.Errorf("%w: seat %d cannot check its own standing bid", ErrIllegalBid, seat)
		}
	case BidPass:
	default:
		return fmt.Errorf("%w: unknown bid kind %q", ErrIllegalBid, bid.Kind)
	}

	// Validation done; commit.
	bid.Seat = seat
	g.BidHistory = append(g.BidHistory, bid)
	switch bid.Kind {
	case BidNumeric:
		g.StandingBid = bid.Amount
		g.BidWinner = seat
		g.ChecksSince = 0
	case BidCheck:
		g.ChecksSince++
	case BidPass:
		g.Passed[seat] = true
	}

	if g.ActiveBidders() == 0 {
		g.Phase = PhaseVoid
		return nil
	}
	if biddingResolved(g) {
		g.Phase = PhaseTrumpSelection
		return nil
	}
	g.BidTurn = nextActiveSeat(g, g.BidTurn)
	return nil
}

func validateRaise(g *Game, amount int) error {
	if amount < g.Rules.MinBid {
		return fmt.Errorf("%w: %d is below the minimum bid %d", ErrIllegalBid, amount, g.Rules.MinBid)
	}
	if amount > g.Rules.MaxBid {
		return fmt.Errorf("%w: %d exceeds the maximum bid %d", ErrIllegalBid, amount, g.Rules.MaxBid)
	}
	if (amount-g.Rules.MinBid)%g.Rules.BidStep != 0 {
		return fmt.Errorf("%w: %d is not aligned to the bid step %d", ErrIllegalBid, amount, g.Rules.BidStep)
	}
	if g.StandingBid > 0 && amount < g.StandingBid+g.Rules.BidStep {
		return fmt.Errorf("%w: %d does not raise the standing bid %d", ErrIllegalBid, amount, g.StandingBid)
	}
	return nil
}

// biddingResolved reports whether the standing bidder has won the
// auction: every other player has passed, or every remaining active
// player has answered the standing bid with a check.
func biddingResolved(g *Game) bool {
	if g.StandingBid == 0 {
		return false
	}
	if g.ActiveBidders() == 1 && !g.Passed[g.BidWinner] {
		return true
	}
	return g.ChecksSince >= g.ActiveBidders()-1
}

// nextActiveSeat returns the next seat in rotation that has not passed.
func nextActiveSeat(g *Game, from Seat) Seat {
	seat := from
	for i := 0; i < NumSeats; i++ {
		seat = g.NextSeat(seat)
		if !g.Passed[seat] {
			return seat
		}
	}
	return from
}
