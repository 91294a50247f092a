package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	tg "github.com/m3rciful/estatebot/core/telegram"
	"github.com/m3rciful/estatebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type codedErr struct{}

func (*codedErr) Error() string { return "coded" }

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "start", normalizeHandlerName("/start"))
	assert.Equal(t, "apartment_type", normalizeHandlerName(" Apartment Type "))
	assert.Equal(t, "unknown", normalizeHandlerName(""))
}

func TestDeriveErrorCode(t *testing.T) {
	assert.Empty(t, deriveErrorCode(nil))
	assert.Equal(t, "CODEDERR", deriveErrorCode(fmt.Errorf("wrap: %w", &codedErr{})))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("plain")))
}

func TestCommandRoutesSorted(t *testing.T) {
	reg := tg.NewRegistry()
	noop := func(tele.Context) error { return nil }
	for _, name := range []string{"/stats", "/cancel", "/start"} {
		assert.NoError(t, reg.RegisterCommand(name, commands.Command{Handler: noop, Description: name}))
	}
	routes := CommandRoutes(reg, CommandRouteOptions{AdminID: 1})
	var endpoints []any
	for _, r := range routes {
		endpoints = append(endpoints, r.Endpoint)
		assert.NotNil(t, r.Handler)
	}
	assert.Equal(t, []any{"/cancel", "/start", "/stats"}, endpoints)
	assert.Nil(t, CommandRoutes(nil, CommandRouteOptions{}))
}
