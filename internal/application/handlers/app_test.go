package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/watlas/internal/domain/mocks"
)

func TestNewApp_SearchDisabledWithoutIndex(t *testing.T) {
	app := NewApp(Ports{
		RelationalDB: mocks.NewRelationalDB(),
		Tokens:       &mocks.TokenIssuer{},
	})

	assert.Nil(t, app.Search)
	assert.NotNil(t, app.Pages)
	assert.NotNil(t, app.Images)
}
