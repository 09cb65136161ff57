package service

import (
	"sort"

	"nscollab/models"
)

// Rankings is the outcome of ranking one event
type Rankings struct {
	Pitches   []models.PitchRanking
	Investors []models.InvestorRanking
}

// CalculateRankings ranks pitches by total funding and settles every angel balance.
// Pitches tie-break on earlier submission, then lower id. Investors are ordered by final
// balance, then lower investor id. It does not modify its inputs.
func CalculateRankings(
	pitches []*models.PitchDetail,
	investments []*models.Investment,
	balances []*models.Balance,
	profiles map[int64]*models.Profile,
) Rankings {
	totals := make(map[int64]models.Cents, len(pitches))
	investors := make(map[int64]map[int64]struct{}, len(pitches))
	for _, inv := range investments {
		totals[inv.PitchID] += inv.Amount
		if investors[inv.PitchID] == nil {
			investors[inv.PitchID] = make(map[int64]struct{})
		}
		investors[inv.PitchID][inv.InvestorID] = struct{}{}
	}

	ordered := make([]*models.PitchDetail, len(pitches))
	copy(ordered, pitches)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if totals[a.ID] != totals[b.ID] {
			return totals[a.ID] > totals[b.ID]
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ID < b.ID
	})

	multipliers := make(map[int64]int64, len(ordered))
	pitchRankings := make([]models.PitchRanking, 0, len(ordered))
	for i, p := range ordered {
		rank := i + 1
		multiplier := models.MultiplierForRank(rank)
		multipliers[p.ID] = multiplier
		pitchRankings = append(pitchRankings, models.PitchRanking{
			Rank:          rank,
			PitchID:       p.ID,
			IdeaID:        p.IdeaID,
			PitcherID:     p.PitcherID,
			IdeaTitle:     p.IdeaTitle,
			PitcherName:   p.PitcherName,
			TotalFunding:  totals[p.ID],
			InvestorCount: len(investors[p.ID]),
			Multiplier:    multiplier,
		})
	}

	type settlement struct {
		invested models.Cents
		returns  models.Cents
		payout   models.Cents
	}
	settlements := make(map[int64]*settlement, len(balances))
	for _, inv := range investments {
		s := settlements[inv.InvestorID]
		if s == nil {
			s = &settlement{}
			settlements[inv.InvestorID] = s
		}
		// Investments into pitches missing from the ranking earn nothing
		m := models.Cents(multipliers[inv.PitchID])
		s.invested += inv.Amount
		s.returns += inv.Amount * (m - 1)
		s.payout += inv.Amount * m
	}

	investorRankings := make([]models.InvestorRanking, 0, len(balances))
	for _, b := range balances {
		r := models.InvestorRanking{
			InvestorID:   b.UserID,
			Initial:      b.InitialBalance,
			FinalBalance: b.RemainingBalance,
		}
		if p, ok := profiles[b.UserID]; ok && p != nil {
			r.InvestorName = p.DisplayName
		}
		if s, ok := settlements[b.UserID]; ok {
			r.Invested = s.invested
			r.Returns = s.returns
			r.FinalBalance = b.RemainingBalance + s.payout
		}
		investorRankings = append(investorRankings, r)
	}

	sort.SliceStable(investorRankings, func(i, j int) bool {
		a, b := investorRankings[i], investorRankings[j]
		if a.FinalBalance != b.FinalBalance {
			return a.FinalBalance > b.FinalBalance
		}
		return a.InvestorID < b.InvestorID
	})
	for i := range investorRankings {
		investorRankings[i].Rank = i + 1
	}

	return Rankings{
		Pitches:   pitchRankings,
		Investors: investorRankings,
	}
}
