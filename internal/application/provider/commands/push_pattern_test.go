package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/application/provider/commands"
	"github.com/andrescamacho/craftplan-go/internal/application/provider/services"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/test/helpers"
)

func TestPushPatternHandler_ThroughMediator(t *testing.T) {
	catalog, err := pattern.NewMemoryCatalogWith(pattern.MustNewDetails("gear", 0,
		[]pattern.InputSlot{{Candidates: []resource.Key{resource.Item("iron_ingot")}, Amount: 4}},
		[]resource.GenericStack{{Key: resource.Item("gear"), Amount: 1}}, 0))
	require.NoError(t, err)

	origin := provider.Position{}
	chest := storage.NewUnboundedMemoryStorage()
	native := helpers.NewMockCapabilityLookup()
	native.Expose(origin.Offset(provider.South), provider.North, chest)
	resolver := services.NewTargetResolver(helpers.NewMockWorld(), native, nil, storage.ActionSource{Actor: "test"})

	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*commands.PushPatternCommand](m,
		commands.NewPushPatternHandler(catalog, services.NewPatternPusher(resolver))))

	resp, err := m.Send(context.Background(), &commands.PushPatternCommand{
		ProviderName: "assembler",
		Position:     origin,
		PatternID:    "gear",
	})

	require.NoError(t, err)
	assert.Equal(t, provider.South, resp.(*commands.PushPatternResponse).Side)
	held, _ := chest.Peek(context.Background(), resource.Item("iron_ingot"))
	assert.Equal(t, int64(4), held)

	_, err = m.Send(context.Background(), &commands.PushPatternCommand{ProviderName: "assembler", PatternID: "unknown"})
	var notFound *pattern.ErrPatternNotFound
	assert.True(t, errors.As(err, &notFound))
}
