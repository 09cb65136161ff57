package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nscollab/events"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { Register(reg) })

	// A second registration on the same registry is a programming error
	assert.Panics(t, func() { Register(reg) })
}

func TestRecordEvent(t *testing.T) {
	ctx := context.Background()

	beforeInvested := testutil.ToFloat64(InvestedCentsTotal)
	beforeCount := testutil.ToFloat64(DomainEventsTotal.WithLabelValues(string(events.EventTypeInvestmentMade)))
	beforeForced := testutil.ToFloat64(ForcedRecalculationsTotal)

	recordEvent(ctx, events.InvestmentMadeEvent{Amount: 1250})
	recordEvent(ctx, events.InvestmentMadeEvent{Amount: 50})
	recordEvent(ctx, events.ResultsCalculatedEvent{Forced: false})
	recordEvent(ctx, events.ResultsCalculatedEvent{Forced: true})

	assert.Equal(t, beforeInvested+1300, testutil.ToFloat64(InvestedCentsTotal))
	assert.Equal(t, beforeCount+2, testutil.ToFloat64(DomainEventsTotal.WithLabelValues(string(events.EventTypeInvestmentMade))))
	assert.Equal(t, beforeForced+1, testutil.ToFloat64(ForcedRecalculationsTotal))
}
