package domain

// ScoreHand computes the final score record from the accumulated side
// points and the winning bid, moving the game to its terminal phase.
func ScoreHand(g *Game) error {
	if err := g.requirePhase(PhaseScoring); err != nil {
		return err
	}

	biddingSide := SideOf(g.BidWinner)
	taken := g.SidePoints[biddingSide]

	record := &ScoreRecord{
		BidWinner:   g.BidWinner,
		BiddingSide: biddingSide,
		BidValue:    g.StandingBid,
		PointsTaken: taken,
		SideCredits: map[Side]int{
			SideEvens: 0,
			SideOdds:  0,
		},
	}
	if taken >= g.StandingBid {
		record.Won = true
		record.Margin = taken - g.StandingBid
		record.SideCredits[biddingSide] = g.StandingBid + record.Margin
	} else {
		record.Shortfall = g.StandingBid - taken
		record.SideCredits[biddingSide.Opponent()] = record.Shortfall * g.Rules.PenaltyScale
	}

	g.Score = record
	g.Phase = PhaseCompleted
	return nil
}
