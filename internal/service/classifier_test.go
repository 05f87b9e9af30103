package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/planner"
)

func TestClassifierKeywordsSkipModel(t *testing.T) {
	p := &scriptedProvider{}
	c := &Classifier{Provider: p}
	require.Equal(t, planner.Finance, c.Classify(context.Background(), "Pay the electricity bill"))
	require.Equal(t, planner.Study, c.Classify(context.Background(), "Review chapter 4 notes"))
	require.Empty(t, p.calls)
}

func TestClassifierAsksModelWhenInconclusive(t *testing.T) {
	p := &scriptedProvider{answers: map[llm.Role]string{llm.RoleClassify: "Personal."}}
	c := &Classifier{Provider: p}
	require.Equal(t, planner.Personal, c.Classify(context.Background(), "Call grandma"))
	require.Equal(t, []llm.Role{llm.RoleClassify}, p.calls)
}

func TestClassifierDegradesToGeneral(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, planner.General, (&Classifier{}).Classify(ctx, "Call grandma"))

	failing := &scriptedProvider{fail: map[llm.Role]error{llm.RoleClassify: errors.New("offline")}}
	require.Equal(t, planner.General, (&Classifier{Provider: failing}).Classify(ctx, "Call grandma"))

	rambling := &scriptedProvider{answers: map[llm.Role]string{llm.RoleClassify: "I cannot tell."}}
	require.Equal(t, planner.General, (&Classifier{Provider: rambling}).Classify(ctx, "Call grandma"))
}
