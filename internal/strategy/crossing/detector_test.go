package crossing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
)

func rows(pairs ...interface{}) []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Snapshot{Symbol: pairs[i].(string), ShiftPct: pairs[i+1].(float64)})
	}
	return out
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		rows []domain.Snapshot
		want []domain.CrossingEvent
	}{
		{
			name: "long crossing",
			rows: rows("EURUSD", 40.0, "EURUSD", 99.9, "EURUSD", 100.0),
			want: []domain.CrossingEvent{{Index: 2, Symbol: "EURUSD", ShiftPct: 100.0, Direction: domain.Long}},
		},
		{
			name: "short crossing",
			rows: rows("GBPUSD", -50.0, "GBPUSD", -120.5),
			want: []domain.CrossingEvent{{Index: 1, Symbol: "GBPUSD", ShiftPct: -120.5, Direction: domain.Short}},
		},
		{
			name: "first appearance above threshold does not emit",
			rows: rows("USDJPY", 150.0, "USDJPY", 160.0),
			want: []domain.CrossingEvent{},
		},
		{
			name: "staying above threshold emits once",
			rows: rows("USDJPY", 10.0, "USDJPY", 101.0, "USDJPY", 130.0, "USDJPY", -140.0),
			want: []domain.CrossingEvent{{Index: 1, Symbol: "USDJPY", ShiftPct: 101.0, Direction: domain.Long}},
		},
		{
			name: "re-arms after dropping below threshold",
			rows: rows("AUDUSD", 0.0, "AUDUSD", -100.0, "AUDUSD", 20.0, "AUDUSD", 105.0),
			want: []domain.CrossingEvent{
				{Index: 1, Symbol: "AUDUSD", ShiftPct: -100.0, Direction: domain.Short},
				{Index: 3, Symbol: "AUDUSD", ShiftPct: 105.0, Direction: domain.Long},
			},
		},
		{
			name: "symbols are tracked independently and keep row order",
			rows: rows("EURUSD", 50.0, "USDCHF", 50.0, "USDCHF", -110.0, "EURUSD", 110.0),
			want: []domain.CrossingEvent{
				{Index: 2, Symbol: "USDCHF", ShiftPct: -110.0, Direction: domain.Short},
				{Index: 3, Symbol: "EURUSD", ShiftPct: 110.0, Direction: domain.Long},
			},
		},
		{
			name: "empty input",
			rows: nil,
			want: []domain.CrossingEvent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.rows, DefaultThreshold))
		})
	}
}

func TestDetect_CustomThreshold(t *testing.T) {
	events := Detect(rows("EURUSD", 10.0, "EURUSD", 50.0), 50)
	require.Len(t, events, 1)
	assert.Equal(t, domain.Long, events[0].Direction)

	assert.Len(t, Detect(rows("EURUSD", 10.0, "EURUSD", 50.0), 0), 0, "non-positive threshold falls back to 100")
}

func TestDetect_NoConsecutiveCrossingsWithoutReset(t *testing.T) {
	data := rows(
		"EURUSD", 10.0, "EURUSD", 100.0, "EURUSD", -100.0, "EURUSD", 150.0,
		"EURUSD", 99.0, "EURUSD", -101.0, "EURUSD", -200.0, "EURUSD", 0.0, "EURUSD", 100.0,
	)
	events := Detect(data, DefaultThreshold)
	require.Len(t, events, 3)

	for _, ev := range events {
		prev := data[ev.Index-1].ShiftPct
		assert.Less(t, abs(prev), DefaultThreshold, "event at %d must follow a sub-threshold row", ev.Index)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
