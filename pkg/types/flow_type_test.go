package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowTypeInstances(t *testing.T) {
	flowTy, err := NewFlowTypeID("demo", "Pipeline")
	require.NoError(t, err)
	wrapperTy := mustEntityType(t, "demo", "Wrapper")
	wrapper := NewEntityInstance(wrapperTy, NewPropertyType("result", DataTypeNumber))
	flow := NewFlowType(flowTy, "pipeline", wrapper)

	assert.Equal(t, wrapper.ID, flow.ID())
	assert.True(t, flow.HasEntityInstance(wrapper.ID))

	source := NewEntityInstance(mustEntityType(t, "demo", "Counter"))
	require.NoError(t, flow.AddEntityInstance(source))
	assert.ErrorIs(t, flow.AddEntityInstance(source), ErrEntityInstanceAlreadyExists)

	relTy, err := NewRelationTypeID("demo", "Feeds")
	require.NoError(t, err)
	rel := RelationInstance{OutboundID: source.ID, Type: relTy, InboundID: wrapper.ID}
	require.NoError(t, flow.AddRelationInstance(rel))
	assert.ErrorIs(t, flow.AddRelationInstance(rel), ErrRelationInstanceAlreadyExists)

	dangling := RelationInstance{OutboundID: NewEntityInstance(wrapperTy).ID, Type: relTy, InboundID: wrapper.ID}
	assert.ErrorIs(t, flow.AddRelationInstance(dangling), ErrEntityInstanceDoesNotExist)

	assert.Len(t, flow.EntityInstances(), 2)
	assert.Len(t, flow.RelationInstances(), 1)

	_, err = flow.RemoveEntityInstance(source.ID)
	require.NoError(t, err)
	assert.False(t, flow.HasRelationInstance(rel.ID()), "relations of a removed entity go with it")
	_, err = flow.RemoveRelationInstance(rel.ID())
	assert.ErrorIs(t, err, ErrRelationInstanceDoesNotExist)
}

func TestFlowTypeJSON(t *testing.T) {
	flowTy, err := NewFlowTypeID("demo", "Pipeline")
	require.NoError(t, err)
	wrapper := NewEntityInstance(mustEntityType(t, "demo", "Wrapper"))
	flow := NewFlowType(flowTy, "pipeline", wrapper)
	require.NoError(t, flow.Variables.Add(NewPropertyType("threshold", DataTypeNumber)))
	require.NoError(t, flow.AddEntityInstance(NewEntityInstance(mustEntityType(t, "demo", "Counter"))))

	data, err := json.Marshal(flow)
	require.NoError(t, err)

	var decoded FlowType
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, flow.Type, decoded.Type)
	assert.Equal(t, flow.ID(), decoded.ID())
	assert.True(t, decoded.Variables.Has("threshold"))
	assert.Len(t, decoded.EntityInstances(), 2)

	clone := flow.Clone()
	_, err = clone.RemoveEntityInstance(wrapper.ID)
	require.NoError(t, err)
	assert.True(t, flow.HasEntityInstance(wrapper.ID))
}
