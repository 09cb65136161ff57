package models

import (
	"time"
)

// TopMultiplier is the reward factor of the first ranked pitch
const TopMultiplier = 20

// rankMultipliers is the reward factor applied to investments in the top ranked pitches
var rankMultipliers = map[int]int64{
	1: TopMultiplier,
	2: 10,
	3: 5,
	4: 3,
	5: 2,
}

// MultiplierForRank returns the reward multiplier for a pitch rank, 0 outside the top 5
func MultiplierForRank(rank int) int64 {
	return rankMultipliers[rank]
}

// PitchRanking is one pitch's position in the results
type PitchRanking struct {
	Rank          int    `json:"rank"`
	PitchID       int64  `json:"pitch_id"`
	IdeaID        int64  `json:"idea_id"`
	PitcherID     int64  `json:"pitcher_id"`
	IdeaTitle     string `json:"idea_title"`
	PitcherName   string `json:"pitcher_name"`
	TotalFunding  Cents  `json:"total_funding"`
	InvestorCount int    `json:"investor_count"`
	Multiplier    int64  `json:"multiplier"`
}

// InvestorRanking is one angel's outcome in the results
type InvestorRanking struct {
	Rank         int    `json:"rank"`
	InvestorID   int64  `json:"investor_id"`
	InvestorName string `json:"investor_name"`
	Initial      Cents  `json:"initial"`
	Invested     Cents  `json:"invested"`
	Returns      Cents  `json:"returns"`
	FinalBalance Cents  `json:"final_balance"`
}

// ResultsSnapshot is the persisted outcome of a ranking calculation for an event
type ResultsSnapshot struct {
	ID               int64             `db:"id" json:"id"`
	EventID          int64             `db:"event_id" json:"event_id"`
	CalculatedAt     time.Time         `db:"calculated_at" json:"calculated_at"`
	CalculatedBy     int64             `db:"calculated_by" json:"calculated_by"`
	PitchRankings    []PitchRanking    `db:"pitch_rankings" json:"pitch_rankings"`
	InvestorRankings []InvestorRanking `db:"investor_rankings" json:"investor_rankings"`
}

// FinalBalanceFor returns the final balance of an investor, if ranked
func (s *ResultsSnapshot) FinalBalanceFor(investorID int64) (Cents, bool) {
	for _, r := range s.InvestorRankings {
		if r.InvestorID == investorID {
			return r.FinalBalance, true
		}
	}
	return 0, false
}
