package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/wso2gate/internal/cache"
)

func TestExchange_MissingCode(t *testing.T) {
	svc := NewExchangeService(cache.NewMemory("test"))
	_, err := svc.Exchange(context.Background(), "")
	assert.ErrorIs(t, err, ErrCodeMissing)
}

func TestExchange_UnknownCode(t *testing.T) {
	svc := NewExchangeService(cache.NewMemory("test"))
	_, err := svc.Exchange(context.Background(), "nunca-emitido")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestExchange_InvalidPayloadStillBurnsCode(t *testing.T) {
	c := cache.NewMemory("test")
	require.NoError(t, c.Set(context.Background(), loginCodePrefix+"c1", "no-json", time.Minute))

	svc := NewExchangeService(c)
	_, err := svc.Exchange(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrPayloadInvalid)

	// El código se quema aunque el payload fuera inválido.
	_, err = svc.Exchange(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}
