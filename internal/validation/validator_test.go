package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

type swipeReq struct {
	ActorID  uint64 `json:"actor_id" validate:"required"`
	TargetID uint64 `json:"target_id" validate:"required,nefield=ActorID"`
	Type     string `json:"type" validate:"required,swipetype"`
}

type prefReq struct {
	MinAge int `json:"min_age" validate:"gte=18,lte=99"`
	MaxAge int `json:"max_age" validate:"gte=18,lte=99,gtefield=MinAge"`
}

func TestStructAccepts(t *testing.T) {
	require.NoError(t, Struct(swipeReq{ActorID: 1, TargetID: 2, Type: "superlike"}))
	require.NoError(t, Struct(prefReq{MinAge: 20, MaxAge: 30}))
}

func TestStructReportsJSONNames(t *testing.T) {
	err := Struct(swipeReq{ActorID: 1, TargetID: 1, Type: "poke"})
	require.Error(t, err)
	assert.ErrorIs(t, err, matching.ErrInvalidParameters)
	assert.Contains(t, err.Error(), "target_id must differ from ActorID")
	assert.Contains(t, err.Error(), "type must be one of [like pass super_like]")
}

func TestStructAgeRange(t *testing.T) {
	err := Struct(prefReq{MinAge: 40, MaxAge: 30})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_age must not be less than MinAge")

	err = Struct(prefReq{MinAge: 10, MaxAge: 30})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_age must be at least 18")
}

func TestSwipeTypeRuleMatchesParser(t *testing.T) {
	for _, in := range []string{"like", "pass", "super_like", "superlike", " Like ", "PASS", "super-like", "wink", " "} {
		_, ok := matching.ParseSwipeType(in)
		err := Struct(swipeReq{ActorID: 1, TargetID: 2, Type: in})
		assert.Equal(t, ok, err == nil, "type %q", in)
	}
}
