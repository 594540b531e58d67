package mediator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
)

type pingQuery struct{ Value string }

type pingHandler struct{}

func (h *pingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return "pong:" + request.(*pingQuery).Value, nil
}

func TestMediator_DispatchesThroughMiddlewareInOrder(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, &pingHandler{}))

	var trace []string
	for _, name := range []string{"outer", "inner"} {
		name := name
		m.RegisterMiddleware(func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			trace = append(trace, name+":before")
			resp, err := next(ctx, request)
			trace = append(trace, name+":after")
			return resp, err
		})
	}

	resp, err := m.Send(context.Background(), &pingQuery{Value: "x"})

	require.NoError(t, err)
	assert.Equal(t, "pong:x", resp)
	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, trace)
}

func TestMediator_Errors(t *testing.T) {
	m := mediator.NewMediator()

	_, err := m.Send(context.Background(), nil)
	assert.Error(t, err)

	_, err = m.Send(context.Background(), &pingQuery{})
	assert.ErrorContains(t, err, "no handler registered")

	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, &pingHandler{}))
	assert.Error(t, mediator.RegisterHandler[*pingQuery](m, &pingHandler{}))
}
