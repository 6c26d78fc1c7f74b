package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseStatus(t *testing.T) {
	assert.True(t, ParseStatus("pending").Equal(Pending))
	assert.True(t, ParseStatus(" On Route ").Equal(OnRoute))
	assert.True(t, ParseStatus("CANCELLED").Equal(Cancelled))
	assert.True(t, ParseStatus("").Equal(Pending))

	unknown := ParseStatus("Waiting at gate")
	assert.Equal(t, StatusUnknown, unknown.Kind)
	assert.Equal(t, "Waiting at gate", unknown.String())
	assert.Equal(t, "Waiting at gate", unknown.Label())
	assert.Equal(t, -1, unknown.Index())
}

func TestStatusZeroValueIsPending(t *testing.T) {
	var s Status
	assert.True(t, s.Equal(Pending))
	assert.Equal(t, "Pending", s.String())
}

func TestStatusLabelsAndClasses(t *testing.T) {
	assert.Equal(t, "#1 The Driver is to depart", Pending.Label())
	assert.Equal(t, "#3 Driver has arrived", Arrived.Label())
	assert.Equal(t, "#5 Service finished", Completed.Label())
	assert.Equal(t, "Booking Cancelled", Cancelled.Label())
	assert.Equal(t, "on-route", OnRoute.CSSClass())
	assert.Equal(t, "waiting-at-gate", ParseStatus("Waiting at Gate").CSSClass())
}

func TestStatusNext(t *testing.T) {
	next, ok := Pending.Next()
	require.True(t, ok)
	assert.True(t, next.Equal(Confirmed))

	next, ok = OnRoute.Next()
	require.True(t, ok)
	assert.True(t, next.Equal(Completed))

	_, ok = Completed.Next()
	assert.False(t, ok)
	_, ok = Cancelled.Next()
	assert.False(t, ok)
	_, ok = ParseStatus("Delayed").Next()
	assert.False(t, ok)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, Completed.IsTerminal())
	assert.True(t, Cancelled.IsTerminal())
	assert.False(t, Arrived.IsTerminal())
}

func TestTrack(t *testing.T) {
	states := func(views []StageView) []StageState {
		out := make([]StageState, len(views))
		for i, v := range views {
			out[i] = v.State
		}
		return out
	}

	t.Run("arrived reaches the first three stages", func(t *testing.T) {
		views := Track(Arrived)
		require.Len(t, views, 5)
		assert.Equal(t, []StageState{StageReached, StageReached, StageReached, StageUpcoming, StageUpcoming}, states(views))
		assert.Equal(t, "#1 The Driver is to depart", views[0].Label)
	})

	t.Run("cancelled marks every stage", func(t *testing.T) {
		for _, s := range states(Track(Cancelled)) {
			assert.Equal(t, StageCancelled, s)
		}
	})

	t.Run("unknown reaches nothing", func(t *testing.T) {
		for _, s := range states(Track(ParseStatus("Delayed"))) {
			assert.Equal(t, StageUpcoming, s)
		}
	})

	t.Run("completed reaches everything", func(t *testing.T) {
		for _, s := range states(Track(Completed)) {
			assert.Equal(t, StageReached, s)
		}
	})
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Status Status `json:"status"`
	}{OnRoute})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"On Route"}`, string(data))

	var got struct {
		Status Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Delayed"}`), &got))
	assert.Equal(t, "Delayed", got.Status.String())

	require.NoError(t, json.Unmarshal([]byte(`{"status":null}`), &got))
	assert.True(t, got.Status.Equal(Pending))
}

func TestStatusBSON(t *testing.T) {
	data, err := bson.Marshal(bson.M{"status": Arrived})
	require.NoError(t, err)

	var got struct {
		Status Status `bson:"status"`
	}
	require.NoError(t, bson.Unmarshal(data, &got))
	assert.True(t, got.Status.Equal(Arrived))
}

func TestFlexString(t *testing.T) {
	var s Schedule
	require.NoError(t, json.Unmarshal([]byte(`{"pax":3,"luggage":"2","amount":1500.5,"driverRate":null}`), &s))
	assert.Equal(t, FlexString("3"), s.Pax)
	assert.Equal(t, 2, s.Luggage.Int(1))
	assert.Equal(t, "1500.5", s.Amount.String())
	assert.Equal(t, FlexString(""), s.DriverRate)
	assert.Equal(t, 7, FlexString("n/a").Int(7))

	doc, err := bson.Marshal(bson.M{"pax": int32(4), "amount": 99.5})
	require.NoError(t, err)
	var fromBSON struct {
		Pax    FlexString `bson:"pax"`
		Amount FlexString `bson:"amount"`
	}
	require.NoError(t, bson.Unmarshal(doc, &fromBSON))
	assert.Equal(t, FlexString("4"), fromBSON.Pax)
	assert.Equal(t, FlexString("99.5"), fromBSON.Amount)
}
